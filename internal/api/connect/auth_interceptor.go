// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"

	"connectrpc.com/connect"
)

const (
	// ControlTokenHeader is the header name for the control token.
	ControlTokenHeader = "X-Control-Token"
)

// tokenInterceptor attaches the control token on the client side and
// validates it on the handler side, for unary and streaming calls alike.
type tokenInterceptor struct {
	token string
}

// NewTokenInterceptor creates an interceptor for the given control token.
func NewTokenInterceptor(token string) connect.Interceptor {
	return &tokenInterceptor{token: token}
}

func (i *tokenInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			req.Header().Set(ControlTokenHeader, i.token)
			return next(ctx, req)
		}
		if err := i.check(req.Header().Get(ControlTokenHeader)); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *tokenInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		conn.RequestHeader().Set(ControlTokenHeader, i.token)
		return conn
	}
}

func (i *tokenInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		if err := i.check(conn.RequestHeader().Get(ControlTokenHeader)); err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

func (i *tokenInterceptor) check(token string) error {
	if token == "" || token != i.token {
		return connect.NewError(connect.CodeUnauthenticated, nil)
	}
	return nil
}
