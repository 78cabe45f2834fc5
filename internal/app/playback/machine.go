package playback

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/app/render"
	"github.com/osa030/flipbook/internal/domain/pack"
	"github.com/osa030/flipbook/internal/infra/metrics"
)

// Status is a point-in-time view of the machine, safe to read from any goroutine.
type Status struct {
	State        State
	Pack         int
	PackName     string
	NextPack     int
	NextPackName string
	Cursor       float64
	Progress     assets.Progress
}

// Machine owns the playback session and steps it once per tick.
type Machine struct {
	mu sync.RWMutex

	env     Env
	packs   []pack.Pack
	session Session

	// Set while the interactive cursor sits at its end waiting for the outro
	pinned bool

	// Events
	eventCh chan Event

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMachine creates a machine starting in HOLD_IN_INIT on pack 0 and issues
// the initial prefetch for the current and next packs.
func NewMachine(config Config, packs []pack.Pack, a Assets, picker Picker) *Machine {
	ctx, cancel := context.WithCancel(context.Background())

	s := Session{State: StateHoldInInit, Current: 0}
	s.Next = picker.PickNext(s.Current)

	a.EnsurePackAll(s.Current)
	a.EnsurePackAll(s.Next)

	zlog.Debug().Msgf("playback: machine created: packs=%d current=%d next=%d", len(packs), s.Current, s.Next)
	metrics.CurrentPack.Set(float64(s.Current))

	return &Machine{
		env:     Env{Config: config, Assets: a, Picker: picker},
		packs:   packs,
		session: s,
		eventCh: make(chan Event, 32),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the event channel.
func (m *Machine) Events() <-chan Event {
	return m.eventCh
}

// Step runs one tick with the sampled input.
func (m *Machine) Step(in Input) Tick {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, t := Transition(m.session, m.env, in)
	m.session = next

	t.Render.HUD = render.HUD{
		PackName: m.packNameLocked(next.Current),
		State:    next.State.String(),
		Cursor:   next.Cursor.Pos(),
	}

	if t.Changed() {
		metrics.StateTransitionsTotal.WithLabelValues(t.From.String(), t.To.String()).Inc()
		zlog.Debug().Msgf("playback: state changed: from=%s to=%s pack=%s", t.From, t.To, m.packNameLocked(next.Current))
		m.sendEventLocked(Event{Type: EventStateChanged, From: t.From})
		if next.State.IsHold() {
			zlog.Info().Msgf("playback: waiting for frames: pack=%s progress=%d%%",
				m.packNameLocked(next.Current), m.env.Assets.Progress().Percent())
		}
	}

	if t.Switched {
		metrics.PackSwitchesTotal.Inc()
		metrics.CurrentPack.Set(float64(next.Current))
		zlog.Info().Msgf("playback: switched pack: current=%s next=%s",
			m.packNameLocked(next.Current), m.packNameLocked(next.Next))
		m.sendEventLocked(Event{Type: EventPackSwitched})
	}

	if t.Pinned && !m.pinned {
		zlog.Debug().Msgf("playback: interactive end reached, waiting for outro: pack=%s", m.packNameLocked(next.Current))
		m.sendEventLocked(Event{Type: EventPinnedAtEnd})
	}
	m.pinned = t.Pinned

	return t
}

// Session returns a copy of the current session.
func (m *Machine) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// GetState returns the current playback state.
func (m *Machine) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.State
}

// Status returns a snapshot of the machine.
func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Status{
		State:        m.session.State,
		Pack:         m.session.Current,
		PackName:     m.packNameLocked(m.session.Current),
		NextPack:     m.session.Next,
		NextPackName: m.packNameLocked(m.session.Next),
		Cursor:       m.session.Cursor.Pos(),
		Progress:     m.env.Assets.Progress(),
	}
}

// Close closes the machine and its event channel.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()
	close(m.eventCh)
}

func (m *Machine) packNameLocked(idx int) string {
	if idx < 0 || idx >= len(m.packs) {
		return ""
	}
	return m.packs[idx].Name
}

// sendEventLocked fills in the session fields and sends without blocking.
// Must be called with lock held.
func (m *Machine) sendEventLocked(e Event) {
	e.State = m.session.State
	e.Pack = m.session.Current
	e.NextPack = m.session.Next
	e.Cursor = m.session.Cursor.Pos()

	if m.ctx.Err() != nil {
		// Machine closed, don't send
		return
	}

	select {
	case m.eventCh <- e:
		// Successfully sent
	default:
		// Channel full, drop event
	}
}
