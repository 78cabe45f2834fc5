package canvas

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/app/render"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestSurface_DrawFrame(t *testing.T) {
	s := New(200, 400, false, render.DefaultMargin)
	red := color.RGBA{R: 255, A: 255}

	s.Draw(render.Frame(solid(100, 100, red), render.FrameRef{}))
	img := s.Image()

	assert.Equal(t, red, rgba(img.At(100, 200)), "frame is centered")
	assert.Equal(t, rgba(color.White), rgba(img.At(2, 2)), "margin stays white")
	assert.Equal(t, 1, s.Draws())
}

func TestSurface_DrawHUD(t *testing.T) {
	s := New(200, 400, true, render.DefaultMargin)
	cmd := render.Frame(solid(10, 10, color.White), render.FrameRef{})
	cmd.HUD = render.HUD{PackName: "star", State: "INTER", Cursor: 3}

	s.Draw(cmd)
	px := rgba(s.Image().At(199, 399))
	assert.Less(t, px.R, uint8(255), "status bar darkens the bottom edge")
}

func TestSurface_DrawLoading(t *testing.T) {
	s := New(300, 100, true, render.DefaultMargin)
	cmd := render.Loading(assets.Progress{Expected: 10, Loaded: 5})
	cmd.HUD = render.HUD{PackName: "star", State: "HOLD_IN_INIT"}
	s.Draw(cmd)

	img := s.Image()
	dark := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			if rgba(img.At(x, y)).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "loading text is drawn")
	assert.Less(t, rgba(img.At(299, 99)).R, uint8(255), "status bar is drawn while loading")
}

func TestSurface_DrawLoadingWithoutHUD(t *testing.T) {
	s := New(300, 100, false, render.DefaultMargin)
	cmd := render.Loading(assets.Progress{Expected: 10, Loaded: 5})
	cmd.HUD = render.HUD{PackName: "star", State: "HOLD_IN_INIT"}

	s.Draw(cmd)
	assert.Equal(t, rgba(color.White), rgba(s.Image().At(299, 99)))
}

func TestSurface_SavePNG(t *testing.T) {
	s := New(16, 16, false, 0)
	s.Draw(render.Frame(solid(4, 4, color.Black), render.FrameRef{}))

	path := filepath.Join(t.TempDir(), "snap.png")
	require.NoError(t, s.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 16, cfg.Width)

	assert.Error(t, s.SavePNG(filepath.Join(t.TempDir(), "missing", "snap.png")))
}
