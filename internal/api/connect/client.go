package connect

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// PlayerClient calls the player control RPCs.
type PlayerClient struct {
	getStatus *connect.Client[structpb.Struct, structpb.Struct]
	press     *connect.Client[structpb.Struct, structpb.Struct]
	release   *connect.Client[structpb.Struct, structpb.Struct]
	subscribe *connect.Client[structpb.Struct, structpb.Struct]
}

// NewPlayerClient creates a client for the player at baseURL.
// An empty token sends no control token.
func NewPlayerClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *PlayerClient {
	if token != "" {
		opts = append(opts, connect.WithInterceptors(NewTokenInterceptor(token)))
	}
	return &PlayerClient{
		getStatus: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+GetStatusProcedure, opts...),
		press:     connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+PressProcedure, opts...),
		release:   connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+ReleaseProcedure, opts...),
		subscribe: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+SubscribeNotificationsProcedure, opts...),
	}
}

// GetStatus returns the player status.
func (c *PlayerClient) GetStatus(ctx context.Context) (*structpb.Struct, error) {
	return unary(ctx, c.getStatus)
}

// Press holds the remote input down and returns the resulting status.
func (c *PlayerClient) Press(ctx context.Context) (*structpb.Struct, error) {
	return unary(ctx, c.press)
}

// Release lets the remote input go and returns the resulting status.
func (c *PlayerClient) Release(ctx context.Context) (*structpb.Struct, error) {
	return unary(ctx, c.release)
}

// SubscribeNotifications opens the notification stream.
func (c *PlayerClient) SubscribeNotifications(ctx context.Context) (*connect.ServerStreamForClient[structpb.Struct], error) {
	return c.subscribe.CallServerStream(ctx, connect.NewRequest(&structpb.Struct{}))
}

func unary(ctx context.Context, client *connect.Client[structpb.Struct, structpb.Struct]) (*structpb.Struct, error) {
	res, err := client.CallUnary(ctx, connect.NewRequest(&structpb.Struct{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
