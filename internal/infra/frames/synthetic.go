package frames

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type SyntheticSourceConfig struct {
	Width       int      `mapstructure:"width" default:"360" validate:"gte=8,lte=4096"`
	Height      int      `mapstructure:"height" default:"640" validate:"gte=8,lte=4096"`
	LatencyMs   int      `mapstructure:"latency_ms" validate:"gte=0,lte=10000"`
	Fail        []string `mapstructure:"fail"`
	Concurrency int      `mapstructure:"concurrency" default:"8" validate:"gte=1,lte=256"`
}

// SyntheticSource generates labelled solid frames instead of reading files.
// Paths containing one of the configured fail substrings fail to load.
type SyntheticSource struct {
	config *SyntheticSourceConfig
}

// NewSyntheticSource creates a synthetic source from loader settings.
func NewSyntheticSource(settings map[string]any) (*SyntheticSource, error) {
	var config SyntheticSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("frames: synthetic source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("frames: synthetic source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	return &SyntheticSource{config: &config}, nil
}

func (s *SyntheticSource) Name() string {
	return "synthetic"
}

// Load renders the frame for path after the configured latency.
func (s *SyntheticSource) Load(ctx context.Context, p string) (image.Image, error) {
	if s.config.LatencyMs > 0 {
		timer := time.NewTimer(time.Duration(s.config.LatencyMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "load cancelled")
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "load cancelled")
	}

	for _, f := range s.config.Fail {
		if f != "" && strings.Contains(p, f) {
			return nil, errors.Newf("synthetic failure: %s", p)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, s.config.Width, s.config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: tint(path.Dir(p))}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	label := path.Base(p)
	width := d.MeasureString(label).Ceil()
	d.Dot = fixed.P((s.config.Width-width)/2, s.config.Height/2)
	d.DrawString(label)

	return img, nil
}

// tint derives a stable light colour from key so each segment looks different.
func tint(key string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(key))
	sum := h.Sum32()
	return color.RGBA{
		R: 128 + uint8(sum&0x7f),
		G: 128 + uint8(sum>>8&0x7f),
		B: 128 + uint8(sum>>16&0x7f),
		A: 0xff,
	}
}
