package session

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/app/audio"
	"github.com/osa030/flipbook/internal/app/input"
	"github.com/osa030/flipbook/internal/app/notification"
	"github.com/osa030/flipbook/internal/app/playback"
	"github.com/osa030/flipbook/internal/app/render"
	"github.com/osa030/flipbook/internal/app/selector"
	"github.com/osa030/flipbook/internal/domain/pack"
)

type countingPlayer struct {
	mu      sync.Mutex
	playing bool
	plays   int
}

func (p *countingPlayer) Play()             { p.mu.Lock(); p.playing = true; p.plays++; p.mu.Unlock() }
func (p *countingPlayer) Pause()            { p.mu.Lock(); p.playing = false; p.mu.Unlock() }
func (p *countingPlayer) Rewind() error     { return nil }
func (p *countingPlayer) IsPlaying() bool   { p.mu.Lock(); defer p.mu.Unlock(); return p.playing }
func (p *countingPlayer) SetVolume(float64) {}

type collectStream struct {
	mu  sync.Mutex
	got []*notification.Notification
}

func (s *collectStream) Send(n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return nil
}

func (s *collectStream) types() []notification.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.Type, 0, len(s.got))
	for _, n := range s.got {
		out = append(out, n.Type)
	}
	return out
}

func newTestSession(t *testing.T, loop audio.Player) *Manager {
	t.Helper()
	seg := func(name string) pack.SegmentSpec {
		return pack.SegmentSpec{Dir: name + "/", Prefix: name + "_", Pad: 4, Count: 3}
	}
	packs := []pack.Pack{
		{Name: "star", Base: "star/", In: seg("in"), Inter: seg("inter"), Out: seg("out")},
		{Name: "flower", Base: "flower/", In: seg("in"), Inter: seg("inter"), Out: seg("out")},
	}
	fetcher := assets.FetcherFunc(func(_ context.Context, _ string, done func(image.Image, error)) {
		done(image.NewRGBA(image.Rect(0, 0, 2, 2)), nil)
	})
	cache := assets.New(context.Background(), packs, fetcher)
	cues := audio.NewCues(nil, nil, loop)
	return NewManager(playback.DefaultConfig(), packs, cache, selector.New(selector.ModeSequential, len(packs)), cues)
}

func TestManager_TickCycle(t *testing.T) {
	loop := &countingPlayer{}
	m := newTestSession(t, loop)
	defer m.Close()

	stream := &collectStream{}
	m.GetNotificationManager().Subscribe(stream)

	m.Input().Press(input.SourceRemote)
	assert.True(t, m.GetStatus().AudioUnlocked, "first press unlocks audio")

	sawLoop := false
	for i := 0; i < 8; i++ {
		m.Tick()
		if loop.IsPlaying() {
			sawLoop = true
		}
	}
	assert.True(t, sawLoop, "press loop plays during held INTER")
	assert.False(t, loop.IsPlaying(), "press loop stopped after INTER")

	st := m.GetStatus()
	assert.Equal(t, playback.StateHoldInSwitch, st.State)
	assert.Equal(t, "flower", st.PackName)
	assert.True(t, st.Pressed)

	require.Eventually(t, func() bool {
		for _, typ := range stream.types() {
			if typ == notification.TypePackSwitched {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestManager_ReleaseStopsLoop(t *testing.T) {
	loop := &countingPlayer{}
	m := newTestSession(t, loop)
	defer m.Close()

	m.Input().Press(input.SourcePointer)
	for i := 0; i < 4; i++ {
		m.Tick()
	}
	require.Equal(t, playback.StateInter, m.GetStatus().State)
	require.True(t, loop.IsPlaying())

	m.Input().Release(input.SourcePointer)
	assert.False(t, loop.IsPlaying(), "release edge stops the loop before the next tick")
}

func TestManager_Run(t *testing.T) {
	m := newTestSession(t, nil)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var mu sync.Mutex
	draws := 0
	err := m.Run(ctx, 200, func(render.Command) {
		mu.Lock()
		draws++
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Greater(t, draws, 0)
}

func TestManager_RunInvalidTPS(t *testing.T) {
	m := newTestSession(t, nil)
	defer m.Close()

	assert.ErrorIs(t, m.Run(context.Background(), 0, nil), ErrInvalidTPS)
}

func TestManager_CloseIdempotent(t *testing.T) {
	m := newTestSession(t, nil)
	m.Close()
	m.Close()

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestManager_InitialNotification(t *testing.T) {
	m := newTestSession(t, nil)
	defer m.Close()

	n := m.InitialNotification()
	assert.Equal(t, notification.TypeInitialState, n.Type)
	assert.Equal(t, "HOLD_IN_INIT", n.State)
	assert.Equal(t, "star", n.Pack)
	assert.Equal(t, "flower", n.NextPack)
}
