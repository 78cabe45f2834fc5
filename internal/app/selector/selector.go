// Package selector chooses the pack that plays after the current one.
package selector

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"
)

// Mode represents the pack ordering mode.
type Mode int

const (
	ModeSequential Mode = iota // Packs play in manifest order and wrap around
	ModeRandom                 // Packs are drawn uniformly, never repeating the current one
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as used in config.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sequential":
		return ModeSequential, nil
	case "random":
		return ModeRandom, nil
	default:
		return ModeSequential, errors.Newf("unknown pack order: %q", s)
	}
}

// Selector picks pack indices.
type Selector struct {
	mode  Mode
	count int
	intn  func(n int) int
}

// New creates a selector over count packs using the global random source.
func New(mode Mode, count int) *Selector {
	return &Selector{mode: mode, count: count, intn: rand.IntN}
}

// NewWithRand creates a selector that draws from r.
func NewWithRand(mode Mode, count int, r *rand.Rand) *Selector {
	return &Selector{mode: mode, count: count, intn: r.IntN}
}

// Mode returns the selector mode.
func (s *Selector) Mode() Mode {
	return s.mode
}

// PickNext returns the index of the pack to play after exclude.
// In random mode with more than one pack the result never equals exclude.
func (s *Selector) PickNext(exclude int) int {
	if s.count <= 0 {
		return 0
	}
	if s.mode == ModeSequential {
		return (exclude + 1) % s.count
	}
	if s.count == 1 {
		return 0
	}
	for {
		idx := s.intn(s.count)
		if idx != exclude {
			return idx
		}
	}
}
