package connect

import (
	"context"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/flipbook/internal/app/input"
	"github.com/osa030/flipbook/internal/app/notification"
	"github.com/osa030/flipbook/internal/app/session"
)

const (
	// PlayerServiceName is the fully-qualified name of the player service.
	PlayerServiceName = "flipbook.v1.PlayerService"

	GetStatusProcedure              = "/" + PlayerServiceName + "/GetStatus"
	PressProcedure                  = "/" + PlayerServiceName + "/Press"
	ReleaseProcedure                = "/" + PlayerServiceName + "/Release"
	SubscribeNotificationsProcedure = "/" + PlayerServiceName + "/SubscribeNotifications"
)

// Player is the session surface exposed over the control API.
type Player interface {
	GetStatus() session.Status
	Input() *input.Latch
	GetNotificationManager() *notification.Manager
	InitialNotification() *notification.Notification
	Done() <-chan struct{}
}

// PlayerService implements the player control RPCs.
// Messages are google.protobuf.Struct values.
type PlayerService struct {
	player Player
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(player Player) *PlayerService {
	return &PlayerService{player: player}
}

// NewPlayerServiceHandler builds an HTTP handler serving every player procedure.
// It returns the path prefix to mount the handler on.
func NewPlayerServiceHandler(svc *PlayerService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetStatusProcedure, connect.NewUnaryHandler(GetStatusProcedure, svc.GetStatus, opts...))
	mux.Handle(PressProcedure, connect.NewUnaryHandler(PressProcedure, svc.Press, opts...))
	mux.Handle(ReleaseProcedure, connect.NewUnaryHandler(ReleaseProcedure, svc.Release, opts...))
	mux.Handle(SubscribeNotificationsProcedure, connect.NewServerStreamHandler(SubscribeNotificationsProcedure, svc.SubscribeNotifications, opts...))
	return "/" + PlayerServiceName + "/", mux
}

// GetStatus returns the current player status.
func (s *PlayerService) GetStatus(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.statusResponse()
}

// Press holds the remote input source down.
func (s *PlayerService) Press(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	s.player.Input().Press(input.SourceRemote)
	zlog.Debug().Msgf("connect: remote press: peer=%s", req.Peer().Addr)
	return s.statusResponse()
}

// Release lets the remote input source go.
func (s *PlayerService) Release(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	s.player.Input().Release(input.SourceRemote)
	zlog.Debug().Msgf("connect: remote release: peer=%s", req.Peer().Addr)
	return s.statusResponse()
}

// SubscribeNotifications sends the current state, then every playback
// notification until the client goes away or the session ends.
func (s *PlayerService) SubscribeNotifications(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
	stream *connect.ServerStream[structpb.Struct],
) error {
	adapter := &notificationStreamAdapter{stream: stream}

	if err := adapter.Send(s.player.InitialNotification()); err != nil {
		return err
	}

	notifManager := s.player.GetNotificationManager()
	subscriptionID := notifManager.Subscribe(adapter)
	defer notifManager.Unsubscribe(subscriptionID)

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.player.Done():
	}
	return nil
}

func (s *PlayerService) statusResponse() (*connect.Response[structpb.Struct], error) {
	msg, err := StatusToStruct(s.player.GetStatus())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// StatusToStruct converts a session status into its wire form.
func StatusToStruct(st session.Status) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"session_id":     st.SessionID,
		"state":          st.State.String(),
		"pack":           st.PackName,
		"next_pack":      st.NextPackName,
		"cursor":         st.Cursor,
		"pressed":        st.Pressed,
		"audio_unlocked": st.AudioUnlocked,
		"subscribers":    st.Subscribers,
		"progress": map[string]any{
			"expected": st.Progress.Expected,
			"loaded":   st.Progress.Loaded,
			"percent":  st.Progress.Percent(),
		},
	})
}

// NotificationToStruct converts a notification into its wire form.
func NotificationToStruct(n *notification.Notification) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"type":        string(n.Type),
		"sequence_no": n.SequenceNo,
		"state":       n.State,
		"pack":        n.Pack,
		"next_pack":   n.NextPack,
		"cursor":      n.Cursor,
		"time":        n.Time.Format(time.RFC3339Nano),
	})
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Sends are serialized because a timed-out broadcast may still be writing.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[structpb.Struct]
}

func (a *notificationStreamAdapter) Send(n *notification.Notification) error {
	msg, err := NotificationToStruct(n)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(msg)
}
