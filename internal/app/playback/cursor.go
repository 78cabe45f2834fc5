package playback

import "math"

// Cursor is the floating-point playback position within a segment.
// One cursor is shared by every segment; it is reset on each state transition.
type Cursor struct {
	pos       float64
	completed bool // One-shot completion already signalled for this run
}

// CursorAt returns a cursor positioned at pos.
func CursorAt(pos float64) Cursor {
	return Cursor{pos: pos}
}

// Pos returns the raw cursor position.
func (c Cursor) Pos() float64 {
	return c.pos
}

// Index returns the frame index the cursor currently shows.
func (c Cursor) Index() int {
	return int(math.Round(c.pos))
}

// Reset moves the cursor back to the first frame and starts a new run.
func (c *Cursor) Reset() {
	*c = Cursor{}
}

// AdvanceOneShot moves the cursor one frame forward, clamped to the segment.
// onDone is called once per run, when the shown frame reaches the last one.
// It returns the frame index to show.
func (c *Cursor) AdvanceOneShot(length int, onDone func()) int {
	last := length - 1
	c.pos = clamp(c.pos+1, 0, float64(last))

	idx := c.Index()
	if idx >= last && !c.completed {
		c.completed = true
		if onDone != nil {
			onDone()
		}
	}
	return idx
}

// AdvanceInteractive moves the cursor forward by forward while held and back by
// backward while released, clamped to the segment. It returns the frame index to
// show and whether that index is the last frame.
func (c *Cursor) AdvanceInteractive(length int, held bool, forward, backward float64) (int, bool) {
	last := length - 1
	if held {
		c.pos = math.Min(c.pos+forward, float64(last))
	} else {
		c.pos = math.Max(c.pos-backward, 0)
	}
	c.pos = clamp(c.pos, 0, float64(last))

	idx := c.Index()
	return idx, idx >= last
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
