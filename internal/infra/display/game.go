// Package display runs the player in an ebiten window.
package display

import (
	"context"
	"image"
	"image/color"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/app/input"
	"github.com/osa030/flipbook/internal/app/render"
)

// Input hooks, replaced in tests.
var (
	isMouseButtonPressed = ebiten.IsMouseButtonPressed
	isKeyPressed         = ebiten.IsKeyPressed
	touchCount           = func() int { return len(ebiten.AppendTouchIDs(nil)) }
	escapeJustPressed    = func() bool { return inpututil.IsKeyJustPressed(ebiten.KeyEscape) }
)

// debugCharWidth and debugCharHeight are the glyph size of the ebitenutil debug font.
const (
	debugCharWidth  = 6
	debugCharHeight = 16
	loadingPadding  = 8
)

var (
	backgroundColor = color.White
	hudColor        = color.NRGBA{A: 120}
	loadingColor    = color.NRGBA{R: 40, G: 40, B: 40, A: 230}
)

// Player is what the window drives once per tick.
type Player interface {
	Tick() render.Command
	Input() *input.Latch
}

// Config represents window configuration.
type Config struct {
	Title   string
	Width   int
	Height  int
	TPS     int
	ShowHUD bool
	Margin  float64
}

// Game implements ebiten.Game for the player.
type Game struct {
	ctx    context.Context
	player Player
	cfg    Config

	cmd    render.Command
	images map[render.FrameRef]*ebiten.Image

	winW, winH int
}

// NewGame creates a game that stops when ctx is cancelled or Escape is pressed.
func NewGame(ctx context.Context, player Player, cfg Config) *Game {
	return &Game{
		ctx:    ctx,
		player: player,
		cfg:    cfg,
		images: make(map[render.FrameRef]*ebiten.Image),
		winW:   cfg.Width,
		winH:   cfg.Height,
	}
}

// Update samples pointer, keyboard and touch input into the latch and steps the player.
func (g *Game) Update() error {
	if g.ctx.Err() != nil || escapeJustPressed() {
		return ebiten.Termination
	}

	latch := g.player.Input()
	latch.Set(input.SourcePointer, isMouseButtonPressed(ebiten.MouseButtonLeft) || isKeyPressed(ebiten.KeySpace))
	latch.Set(input.SourceTouch, touchCount() > 0)

	g.cmd = g.player.Tick()
	return nil
}

// Draw paints the last render command.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	switch g.cmd.Kind {
	case render.KindLoading:
		text := render.LoadingText(g.cmd.Progress)
		at, box := loadingLayout(text, g.winW, g.winH)
		vector.DrawFilledRect(screen, float32(box.Min.X), float32(box.Min.Y),
			float32(box.Dx()), float32(box.Dy()), loadingColor, false)
		ebitenutil.DebugPrintAt(screen, text, at.X, at.Y)

	case render.KindFrame:
		if img := g.image(g.cmd); img != nil {
			b := img.Bounds()
			p := render.Fit(b.Dx(), b.Dy(), g.winW, g.winH, g.cfg.Margin)
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(p.Scale, p.Scale)
			op.GeoM.Translate(float64(p.Rect.Min.X), float64(p.Rect.Min.Y))
			op.Filter = ebiten.FilterLinear
			screen.DrawImage(img, op)
		}
	}

	if g.cfg.ShowHUD {
		top := float32(g.winH - render.HUDHeight)
		vector.DrawFilledRect(screen, 0, top, float32(g.winW), render.HUDHeight, hudColor, false)
		ebitenutil.DebugPrintAt(screen, g.cmd.HUD.Text(), 16, g.winH-render.HUDHeight/2-debugCharHeight/2)
	}
}

// Layout follows the window size so frames are refitted on resize.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.winW || outsideHeight != g.winH {
		zlog.Debug().Msgf("display: resized: width=%d height=%d", outsideWidth, outsideHeight)
	}
	g.winW, g.winH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// loadingLayout centers text on the window and returns where to print it and
// the backing box behind it. The debug font is white, so the box keeps it
// readable on the white background.
func loadingLayout(text string, winW, winH int) (image.Point, image.Rectangle) {
	w := len([]rune(text)) * debugCharWidth
	at := image.Pt((winW-w)/2, winH/2-debugCharHeight/2)
	box := image.Rect(at.X, at.Y, at.X+w, at.Y+debugCharHeight).Inset(-loadingPadding)
	return at, box
}

// image returns the GPU image for cmd, converting each frame once.
// Frame slots are write-once, so a cached conversion never goes stale.
func (g *Game) image(cmd render.Command) *ebiten.Image {
	if cmd.Image == nil {
		return nil
	}
	if img, ok := g.images[cmd.Ref]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(cmd.Image)
	g.images[cmd.Ref] = img
	return img
}

// Run opens the window and blocks until it is closed.
func Run(ctx context.Context, player Player, cfg Config) error {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}

	zlog.Info().Msgf("display: window opened: title=%s size=%dx%d tps=%d", cfg.Title, cfg.Width, cfg.Height, cfg.TPS)
	err := ebiten.RunGame(NewGame(ctx, player, cfg))
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return errors.Wrap(err, "window terminated")
	}
	zlog.Info().Msg("display: window closed")
	return nil
}
