// Package pack provides the Pack domain entity.
package pack

import (
	"fmt"
	"strings"
)

// Segment identifies one phase of a pack's animation.
type Segment string

const (
	SegmentIn    Segment = "in"    // Intro, played once
	SegmentInter Segment = "inter" // Interactive, driven by press/release
	SegmentOut   Segment = "out"   // Outro, played once before switching packs
)

// Segments lists every segment in playback order.
var Segments = []Segment{SegmentIn, SegmentInter, SegmentOut}

// String returns the segment name.
func (s Segment) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known segments.
func (s Segment) Valid() bool {
	switch s {
	case SegmentIn, SegmentInter, SegmentOut:
		return true
	default:
		return false
	}
}

// SegmentSpec describes where the frames of one segment live.
type SegmentSpec struct {
	Dir    string // Directory under the pack base, e.g. "in/"
	Prefix string // File name prefix, e.g. "in_"
	Pad    int    // Zero-padding width of the frame number
	Count  int    // Number of frames
}

// FramePath returns the path of the frame with the given 1-based index.
func (s SegmentSpec) FramePath(base string, index int) string {
	return fmt.Sprintf("%s%s%s%0*d.png", base, s.Dir, s.Prefix, s.Pad, index)
}

// Pack represents a themed set of three frame segments.
// Packs are defined at configuration time and never change.
type Pack struct {
	Name  string
	Base  string // Base path, e.g. "assets/star/"
	In    SegmentSpec
	Inter SegmentSpec
	Out   SegmentSpec
}

// Spec returns the spec of the given segment.
func (p Pack) Spec(seg Segment) SegmentSpec {
	switch seg {
	case SegmentIn:
		return p.In
	case SegmentInter:
		return p.Inter
	case SegmentOut:
		return p.Out
	default:
		return SegmentSpec{}
	}
}

// FramePath returns the path of frame index (1-based) of the given segment.
func (p Pack) FramePath(seg Segment, index int) string {
	return p.Spec(seg).FramePath(p.Base, index)
}

// FramePaths returns every frame path of the given segment in order.
func (p Pack) FramePaths(seg Segment) []string {
	spec := p.Spec(seg)
	paths := make([]string, spec.Count)
	for i := 1; i <= spec.Count; i++ {
		paths[i-1] = spec.FramePath(p.Base, i)
	}
	return paths
}

// TotalFrames returns the number of frames across all segments.
func (p Pack) TotalFrames() int {
	return p.In.Count + p.Inter.Count + p.Out.Count
}

// Describe returns a one-line summary used by the CLI.
func (p Pack) Describe() string {
	parts := make([]string, 0, len(Segments))
	for _, seg := range Segments {
		parts = append(parts, fmt.Sprintf("%s=%d", seg, p.Spec(seg).Count))
	}
	return fmt.Sprintf("%s (%s) [%s]", p.Name, p.Base, strings.Join(parts, " "))
}
