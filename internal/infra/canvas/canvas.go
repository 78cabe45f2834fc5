// Package canvas provides a headless render surface backed by an in-memory image.
package canvas

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/osa030/flipbook/internal/app/render"
)

var (
	background = color.White
	hudColor   = color.NRGBA{A: 120}
)

// Surface draws render commands into an RGBA image.
type Surface struct {
	mu      sync.Mutex
	img     *image.RGBA
	showHUD bool
	margin  float64
	draws   int
}

// New creates a surface of the given size.
func New(width, height int, showHUD bool, margin float64) *Surface {
	return &Surface{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		showHUD: showHUD,
		margin:  margin,
	}
}

// Draw paints cmd onto the surface.
func (s *Surface) Draw(cmd render.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := s.img
	b := dst.Bounds()
	xdraw.Draw(dst, b, image.NewUniform(background), image.Point{}, xdraw.Src)

	switch cmd.Kind {
	case render.KindLoading:
		text := render.LoadingText(cmd.Progress)
		drawText(dst, (b.Dx()-textWidth(text))/2, b.Dy()/2, text, color.Black)

	case render.KindFrame:
		if cmd.Image != nil {
			src := cmd.Image.Bounds()
			p := render.Fit(src.Dx(), src.Dy(), b.Dx(), b.Dy(), s.margin)
			xdraw.ApproxBiLinear.Scale(dst, p.Rect, cmd.Image, src, xdraw.Over, nil)
		}
	}

	if s.showHUD {
		bar := image.Rect(0, b.Dy()-render.HUDHeight, b.Dx(), b.Dy())
		xdraw.Draw(dst, bar, image.NewUniform(hudColor), image.Point{}, xdraw.Over)
		drawText(dst, 16, b.Dy()-render.HUDHeight/2+4, cmd.HUD.Text(), color.White)
	}
	s.draws++
}

// Draws returns how many commands have been drawn.
func (s *Surface) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// Image returns a copy of the current surface contents.
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// SavePNG writes the current surface contents to path.
func (s *Surface) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create snapshot file")
	}
	defer f.Close()

	if err := png.Encode(f, s.Image()); err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	zlog.Info().Msgf("canvas: snapshot saved: path=%s", path)
	return nil
}

func drawText(dst *image.RGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}
