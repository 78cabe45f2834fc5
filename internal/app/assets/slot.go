package assets

import (
	"image"
	"sync"
	"sync/atomic"
)

// SlotState represents the resolution state of a frame slot.
type SlotState int32

const (
	SlotPending SlotState = iota // Load not resolved yet
	SlotLoaded                   // Decoded image available
	SlotFailed                   // Load failed, permanently empty
)

// String returns the string representation of the slot state.
func (s SlotState) String() string {
	switch s {
	case SlotPending:
		return "pending"
	case SlotLoaded:
		return "loaded"
	case SlotFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot is a write-once cell holding one frame of a segment.
// The first resolution wins; later ones are ignored.
type Slot struct {
	once  sync.Once
	state atomic.Int32
	img   image.Image
}

// resolve records the outcome of a load. It reports whether this call was the
// one that resolved the slot.
func (s *Slot) resolve(img image.Image, err error) bool {
	applied := false
	s.once.Do(func() {
		applied = true
		if err != nil || img == nil {
			s.state.Store(int32(SlotFailed))
			return
		}
		s.img = img
		s.state.Store(int32(SlotLoaded))
	})
	return applied
}

// State returns the current slot state.
func (s *Slot) State() SlotState {
	return SlotState(s.state.Load())
}

// Image returns the decoded image if the slot loaded successfully.
func (s *Slot) Image() (image.Image, bool) {
	if s.State() != SlotLoaded {
		return nil, false
	}
	return s.img, true
}
