package assets

import (
	"image"
	"sync/atomic"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// Entry is the fixed-length slot array of one (pack, segment) pair.
// It is allocated once, on the first load request for the segment.
type Entry struct {
	segment pack.Segment
	slots   []Slot

	loaded atomic.Int64 // Slots holding an image
	failed atomic.Int64 // Slots whose load failed
}

func newEntry(seg pack.Segment, count int) *Entry {
	return &Entry{
		segment: seg,
		slots:   make([]Slot, count),
	}
}

// Segment returns the segment this entry belongs to.
func (e *Entry) Segment() pack.Segment {
	return e.segment
}

// Len returns the number of frames in the segment.
func (e *Entry) Len() int {
	return len(e.slots)
}

// Frame returns the image at the 0-based index if it loaded successfully.
func (e *Entry) Frame(i int) (image.Image, bool) {
	if i < 0 || i >= len(e.slots) {
		return nil, false
	}
	return e.slots[i].Image()
}

// State returns the state of the slot at the 0-based index.
func (e *Entry) State(i int) SlotState {
	if i < 0 || i >= len(e.slots) {
		return SlotPending
	}
	return e.slots[i].State()
}

// First returns the first successfully loaded frame and its index.
func (e *Entry) First() (image.Image, int, bool) {
	for i := range e.slots {
		if img, ok := e.slots[i].Image(); ok {
			return img, i, true
		}
	}
	return nil, -1, false
}

// Loaded returns the number of frames that decoded successfully.
func (e *Entry) Loaded() int {
	return int(e.loaded.Load())
}

// Failed returns the number of frames that failed to load.
func (e *Entry) Failed() int {
	return int(e.failed.Load())
}

// Resolved returns the number of frames whose load has finished either way.
func (e *Entry) Resolved() int {
	return e.Loaded() + e.Failed()
}

// resolve writes the outcome into slot i. It reports whether the slot was
// resolved by this call.
func (e *Entry) resolve(i int, img image.Image, err error) bool {
	if !e.slots[i].resolve(img, err) {
		return false
	}
	if e.slots[i].State() == SlotLoaded {
		e.loaded.Add(1)
	} else {
		e.failed.Add(1)
	}
	return true
}
