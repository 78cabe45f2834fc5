package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/flipbook/internal/app/playback"
)

type fakePlayer struct {
	playing bool
	plays   int
	rewinds int
}

func (p *fakePlayer) Play()             { p.playing = true; p.plays++ }
func (p *fakePlayer) Pause()            { p.playing = false }
func (p *fakePlayer) Rewind() error     { p.rewinds++; return nil }
func (p *fakePlayer) IsPlaying() bool   { return p.playing }
func (p *fakePlayer) SetVolume(float64) {}

func newTestCues() (*Cues, *fakePlayer, *fakePlayer, *fakePlayer) {
	enter, explode, loop := &fakePlayer{}, &fakePlayer{}, &fakePlayer{}
	return NewCues(enter, explode, loop), enter, explode, loop
}

func tick(from, to playback.State) playback.Tick {
	return playback.Tick{From: from, To: to}
}

func TestCues_NothingPlaysBeforeUnlock(t *testing.T) {
	c, enter, explode, loop := newTestCues()

	c.Observe(tick(playback.StateHoldInInit, playback.StateIn), true)
	c.Observe(tick(playback.StateIn, playback.StateInter), true)
	c.Observe(tick(playback.StateInter, playback.StateInter), true)
	c.Observe(tick(playback.StateInter, playback.StateOut), true)

	assert.Zero(t, enter.plays)
	assert.Zero(t, explode.plays)
	assert.Zero(t, loop.plays)
	assert.False(t, c.Unlocked())
}

func TestCues_EnterOnIn(t *testing.T) {
	c, enter, _, _ := newTestCues()
	c.Unlock()

	c.Observe(tick(playback.StateHoldInInit, playback.StateIn), false)
	assert.Equal(t, 1, enter.plays)

	// Still playing: not restarted.
	c.Observe(tick(playback.StateHoldInSwitch, playback.StateIn), false)
	assert.Equal(t, 1, enter.plays)
}

func TestCues_LoopGatedToHeldInter(t *testing.T) {
	c, _, _, loop := newTestCues()
	c.Unlock()

	c.Observe(tick(playback.StateIn, playback.StateIn), true)
	assert.False(t, loop.playing, "no loop outside INTER")

	c.Observe(tick(playback.StateIn, playback.StateInter), true)
	assert.True(t, loop.playing)
	assert.Equal(t, 1, loop.plays)

	c.Observe(tick(playback.StateInter, playback.StateInter), true)
	assert.Equal(t, 1, loop.plays, "running loop is not restarted")

	c.Observe(tick(playback.StateInter, playback.StateInter), false)
	assert.False(t, loop.playing, "released input stops the loop")

	c.Observe(tick(playback.StateInter, playback.StateInter), true)
	assert.True(t, loop.playing)

	c.Release()
	assert.False(t, loop.playing)
}

func TestCues_LoopStopsWhenPinned(t *testing.T) {
	c, _, _, loop := newTestCues()
	c.Unlock()

	c.Observe(tick(playback.StateInter, playback.StateInter), true)
	assert.True(t, loop.playing)

	c.Observe(playback.Tick{From: playback.StateInter, To: playback.StateInter, Pinned: true}, true)
	assert.False(t, loop.playing)
}

func TestCues_ExplodeOnOut(t *testing.T) {
	c, _, explode, loop := newTestCues()
	c.Unlock()

	c.Observe(tick(playback.StateInter, playback.StateInter), true)
	c.Observe(tick(playback.StateInter, playback.StateOut), true)

	assert.False(t, loop.playing)
	assert.Equal(t, 1, explode.plays)
	assert.Equal(t, 1, explode.rewinds)

	c.Observe(tick(playback.StateHoldInSwitch, playback.StateIn), true)
	c.Observe(tick(playback.StateInter, playback.StateOut), true)
	assert.Equal(t, 2, explode.plays, "explode restarts every outro")
}

func TestCues_NilPlayersAreSilent(t *testing.T) {
	c := NewCues(nil, nil, nil)
	c.Unlock()

	assert.NotPanics(t, func() {
		c.Observe(tick(playback.StateHoldInInit, playback.StateIn), true)
		c.Observe(tick(playback.StateIn, playback.StateInter), true)
		c.Observe(tick(playback.StateInter, playback.StateOut), true)
		c.Release()
	})
}
