// Package session provides the player session: it wires the playback machine
// to input, audio cues and notifications and runs one step per tick.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/app/audio"
	"github.com/osa030/flipbook/internal/app/input"
	"github.com/osa030/flipbook/internal/app/notification"
	"github.com/osa030/flipbook/internal/app/playback"
	"github.com/osa030/flipbook/internal/app/render"
	"github.com/osa030/flipbook/internal/domain/pack"
	"github.com/osa030/flipbook/internal/infra/metrics"
)

var (
	ErrInvalidTPS = errors.New("ticks per second must be positive")
)

// Status is the session status exposed to the control API.
type Status struct {
	playback.Status
	SessionID     string
	Pressed       bool
	AudioUnlocked bool
	Subscribers   int
}

// Manager manages the player session.
type Manager struct {
	id    string
	packs []pack.Pack

	// Components
	machine      *playback.Machine
	cues         *audio.Cues
	latch        *input.Latch
	notification *notification.Manager

	// Lifecycle
	closeOnce sync.Once
	pumpDone  chan struct{}
	done      chan struct{}
}

// NewManager creates a session and starts forwarding playback events to
// notification subscribers.
func NewManager(cfg playback.Config, packs []pack.Pack, a playback.Assets, picker playback.Picker, cues *audio.Cues) *Manager {
	if cues == nil {
		cues = audio.NewCues(nil, nil, nil)
	}

	m := &Manager{
		id:           uuid.New().String(),
		packs:        packs,
		machine:      playback.NewMachine(cfg, packs, a, picker),
		cues:         cues,
		latch:        input.NewLatch(),
		notification: notification.NewManager(),
		pumpDone:     make(chan struct{}),
		done:         make(chan struct{}),
	}

	// The first press gesture unlocks audio; releasing stops the press loop at once.
	m.latch.OnPress(cues.Unlock)
	m.latch.OnRelease(cues.Release)

	go m.pump()

	zlog.Info().Msgf("session: created: id=%s packs=%d", m.id, len(packs))
	return m
}

// ID returns the session ID.
func (m *Manager) ID() string {
	return m.id
}

// Input returns the press latch shared by all input sources.
func (m *Manager) Input() *input.Latch {
	return m.latch
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// Tick samples input, steps the machine once, updates audio cues and returns
// what to draw.
func (m *Manager) Tick() render.Command {
	held := m.latch.Pressed()
	t := m.machine.Step(playback.Input{Pressed: held, AudioUnlocked: m.cues.Unlocked()})
	m.cues.Observe(t, held)
	metrics.TicksTotal.Inc()
	return t.Render
}

// Run ticks tps times per second until ctx is cancelled, passing each render
// command to draw.
func (m *Manager) Run(ctx context.Context, tps int, draw func(render.Command)) error {
	if tps <= 0 {
		return ErrInvalidTPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.done:
			return nil
		case <-ticker.C:
			cmd := m.Tick()
			if draw != nil {
				draw(cmd)
			}
		}
	}
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	return Status{
		Status:        m.machine.Status(),
		SessionID:     m.id,
		Pressed:       m.latch.Pressed(),
		AudioUnlocked: m.cues.Unlocked(),
		Subscribers:   m.notification.SubscriberCount(),
	}
}

// InitialNotification builds the notification sent to a new subscriber.
func (m *Manager) InitialNotification() *notification.Notification {
	st := m.machine.Status()
	return &notification.Notification{
		Type:       notification.TypeInitialState,
		SequenceNo: m.notification.NextSequenceNo(),
		State:      st.State.String(),
		Pack:       st.PackName,
		NextPack:   st.NextPackName,
		Cursor:     st.Cursor,
		Time:       time.Now(),
	}
}

// Done returns a channel closed when the session is closed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close stops the session. It is safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.machine.Close()
		<-m.pumpDone
		m.notification.Close()
		close(m.done)
		zlog.Info().Msgf("session: closed: id=%s", m.id)
	})
}

// pump forwards machine events to notification subscribers until the machine closes.
func (m *Manager) pump() {
	defer close(m.pumpDone)

	for e := range m.machine.Events() {
		n := m.toNotification(e)
		if n == nil {
			continue
		}
		m.notification.Broadcast(n)
	}
}

func (m *Manager) toNotification(e playback.Event) *notification.Notification {
	var typ notification.Type
	switch e.Type {
	case playback.EventStateChanged:
		typ = notification.TypeStateChanged
	case playback.EventPackSwitched:
		typ = notification.TypePackSwitched
	case playback.EventPinnedAtEnd:
		typ = notification.TypePinnedAtEnd
	default:
		return nil
	}

	return &notification.Notification{
		Type:     typ,
		State:    e.State.String(),
		Pack:     m.packName(e.Pack),
		NextPack: m.packName(e.NextPack),
		Cursor:   e.Cursor,
		Time:     time.Now(),
	}
}

func (m *Manager) packName(idx int) string {
	if idx < 0 || idx >= len(m.packs) {
		return ""
	}
	return m.packs[idx].Name
}
