// Package render describes what a surface should draw for one tick.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/domain/pack"
)

// DefaultMargin is the share of the surface left empty around a frame.
const DefaultMargin = 0.08

// Kind represents the kind of render command.
type Kind int

const (
	KindLoading Kind = iota // Draw the loading indicator
	KindFrame               // Draw a frame image
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// FrameRef identifies a frame inside the cache.
type FrameRef struct {
	Pack    int
	Segment pack.Segment
	Index   int // 0-based slot index
}

// HUD holds the status bar contents.
type HUD struct {
	PackName string
	State    string
	Cursor   float64
}

// Text returns the status bar line.
func (h HUD) Text() string {
	return fmt.Sprintf("%s • %s • frame ~%d", h.PackName, h.State, int(math.Round(h.Cursor)))
}

// Command is the render output of one tick.
type Command struct {
	Kind        Kind
	Image       image.Image
	Ref         FrameRef
	Placeholder bool // Frame shown while waiting for upcoming content
	Progress    assets.Progress
	HUD         HUD
}

// Frame returns a command drawing img.
func Frame(img image.Image, ref FrameRef) Command {
	return Command{Kind: KindFrame, Image: img, Ref: ref}
}

// Placeholder returns a frame command flagged as a placeholder.
func Placeholder(img image.Image, ref FrameRef) Command {
	return Command{Kind: KindFrame, Image: img, Ref: ref, Placeholder: true}
}

// Loading returns a command drawing the loading indicator.
func Loading(progress assets.Progress) Command {
	return Command{Kind: KindLoading, Progress: progress}
}

// LoadingText returns the loading indicator line.
func LoadingText(p assets.Progress) string {
	return fmt.Sprintf("Loading… %d/%d (%d%%)", p.Loaded, p.Expected, p.Percent())
}
