package render

import (
	"image"
	"math"
)

// Placement is where a frame lands on the surface.
type Placement struct {
	Scale float64
	Rect  image.Rectangle
}

// Fit centers a srcW x srcH image on a dstW x dstH surface, scaled uniformly to
// fit inside the surface shrunk by margin on each axis.
func Fit(srcW, srcH, dstW, dstH int, margin float64) Placement {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Placement{}
	}
	box := 1 - margin
	scale := math.Min(float64(dstW)*box/float64(srcW), float64(dstH)*box/float64(srcH))

	w := float64(srcW) * scale
	h := float64(srcH) * scale
	x := (float64(dstW) - w) / 2
	y := (float64(dstH) - h) / 2

	return Placement{
		Scale: scale,
		Rect: image.Rect(
			int(math.Round(x)), int(math.Round(y)),
			int(math.Round(x+w)), int(math.Round(y+h)),
		),
	}
}

// HUDHeight is the height of the translucent status bar in pixels.
const HUDHeight = 64
