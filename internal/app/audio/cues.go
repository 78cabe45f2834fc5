// Package audio drives the three playback sound cues.
package audio

import (
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/app/playback"
)

// Player is a single sound that can be started, stopped and rewound.
type Player interface {
	Play()
	Pause()
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
}

// Cue names used in config and logs.
const (
	CueEnter   = "enter"
	CueExplode = "explode"
	CueLoop    = "loop"
)

// Cues plays the enter and explode one-shots on state changes and keeps the
// press loop running only while the interactive segment is being held.
// Nothing plays before Unlock.
type Cues struct {
	mu sync.Mutex

	enter   Player
	explode Player
	loop    Player

	unlocked bool
}

// NewCues creates a cue controller. Nil players are replaced by silent ones.
func NewCues(enter, explode, loop Player) *Cues {
	return &Cues{
		enter:   orSilent(enter),
		explode: orSilent(explode),
		loop:    orSilent(loop),
	}
}

// Unlock allows audio to play. It is triggered by the first press gesture.
func (c *Cues) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unlocked {
		return
	}
	c.unlocked = true
	zlog.Info().Msg("audio: unlocked")
}

// Unlocked reports whether Unlock has been called.
func (c *Cues) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

// Observe applies the cue rules to the outcome of one tick.
func (c *Cues) Observe(t playback.Tick, held bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Changed() {
		switch t.To {
		case playback.StateIn:
			if c.unlocked && !c.enter.IsPlaying() {
				c.enter.Play()
			}
		case playback.StateOut:
			c.stopLoopLocked()
			if c.unlocked {
				c.explode.Pause()
				if err := c.explode.Rewind(); err != nil {
					zlog.Warn().Msgf("audio: failed to rewind cue: cue=%s error=%v", CueExplode, err)
				}
				c.explode.Play()
			}
		}
	}

	if t.To == playback.StateInter && held && !t.Pinned && c.unlocked {
		if !c.loop.IsPlaying() {
			c.loop.Play()
		}
		return
	}
	c.stopLoopLocked()
}

// Release stops the press loop immediately on a press-end edge.
func (c *Cues) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLoopLocked()
}

func (c *Cues) stopLoopLocked() {
	if !c.loop.IsPlaying() {
		return
	}
	c.loop.Pause()
	if err := c.loop.Rewind(); err != nil {
		zlog.Warn().Msgf("audio: failed to rewind cue: cue=%s error=%v", CueLoop, err)
	}
}

func orSilent(p Player) Player {
	if p == nil {
		return Silent{}
	}
	return p
}

// Silent is a Player that never makes a sound.
type Silent struct{}

func (Silent) Play()             {}
func (Silent) Pause()            {}
func (Silent) Rewind() error     { return nil }
func (Silent) IsPlaying() bool   { return false }
func (Silent) SetVolume(float64) {}
