package display

import (
	"context"
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/app/input"
	"github.com/osa030/flipbook/internal/app/render"
)

type stubPlayer struct {
	latch *input.Latch
	ticks int
	held  []bool
}

func (p *stubPlayer) Tick() render.Command {
	p.ticks++
	p.held = append(p.held, p.latch.Pressed())
	return render.Command{Kind: render.KindFrame, HUD: render.HUD{PackName: "star"}}
}

func (p *stubPlayer) Input() *input.Latch {
	return p.latch
}

// stubInput replaces the ebiten input hooks for the duration of a test.
func stubInput(t *testing.T, mouse *bool, touches *int, escape *bool) {
	t.Helper()
	origMouse, origKey, origTouch, origEsc := isMouseButtonPressed, isKeyPressed, touchCount, escapeJustPressed
	t.Cleanup(func() {
		isMouseButtonPressed, isKeyPressed, touchCount, escapeJustPressed = origMouse, origKey, origTouch, origEsc
	})
	isMouseButtonPressed = func(ebiten.MouseButton) bool { return *mouse }
	isKeyPressed = func(ebiten.Key) bool { return false }
	touchCount = func() int { return *touches }
	escapeJustPressed = func() bool { return *escape }
}

func TestGame_UpdateSamplesInput(t *testing.T) {
	mouse, touches, escape := false, 0, false
	stubInput(t, &mouse, &touches, &escape)

	p := &stubPlayer{latch: input.NewLatch()}
	g := NewGame(context.Background(), p, Config{Width: 100, Height: 200})

	require.NoError(t, g.Update())
	mouse = true
	require.NoError(t, g.Update())
	mouse, touches = false, 1
	require.NoError(t, g.Update())
	touches = 0
	require.NoError(t, g.Update())

	assert.Equal(t, []bool{false, true, true, false}, p.held)
	assert.Equal(t, render.KindFrame, g.cmd.Kind)
}

func TestGame_UpdateTerminates(t *testing.T) {
	mouse, touches, escape := false, 0, true
	stubInput(t, &mouse, &touches, &escape)

	p := &stubPlayer{latch: input.NewLatch()}
	g := NewGame(context.Background(), p, Config{})
	assert.ErrorIs(t, g.Update(), ebiten.Termination)

	escape = false
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g = NewGame(ctx, p, Config{})
	assert.ErrorIs(t, g.Update(), ebiten.Termination)
	assert.Zero(t, p.ticks)
}

func TestGame_Layout(t *testing.T) {
	g := NewGame(context.Background(), &stubPlayer{latch: input.NewLatch()}, Config{Width: 720, Height: 1280})

	w, h := g.Layout(400, 300)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
	assert.Equal(t, 400, g.winW)
	assert.Equal(t, 300, g.winH)
}

func TestLoadingLayout(t *testing.T) {
	text := render.LoadingText(assets.Progress{Expected: 20, Loaded: 5})
	at, box := loadingLayout(text, 720, 1280)

	textRect := image.Rect(at.X, at.Y, at.X+len([]rune(text))*debugCharWidth, at.Y+debugCharHeight)
	assert.True(t, textRect.In(box), "backing box covers the text")
	assert.InDelta(t, 720-box.Max.X, box.Min.X, 1, "centered horizontally")
	assert.InDelta(t, 1280-box.Max.Y, box.Min.Y, 1, "centered vertically")

	r, g, b, _ := loadingColor.RGBA()
	br, bg, bb, _ := backgroundColor.RGBA()
	assert.Less(t, r+g+b, (br+bg+bb)/2, "backing is darker than the background")
}
