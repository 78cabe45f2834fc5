// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// Config represents the application configuration.
type Config struct {
	Packs    []PackConfig   `yaml:"packs" validate:"required,min=1,dive"`
	Playback PlaybackConfig `yaml:"playback"`
	Display  DisplayConfig  `yaml:"display"`
	Loader   LoaderConfig   `yaml:"loader"`
	Audio    AudioConfig    `yaml:"audio"`
	Control  ControlConfig  `yaml:"control"`
}

// PackConfig represents a single pack of the manifest.
type PackConfig struct {
	Name  string        `yaml:"name" validate:"required"`
	Base  string        `yaml:"base"`
	In    SegmentConfig `yaml:"in"`
	Inter SegmentConfig `yaml:"inter"`
	Out   SegmentConfig `yaml:"out"`
}

// SegmentConfig represents where the frames of one segment live.
type SegmentConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Pad    int    `yaml:"pad" validate:"gte=0,lte=9"`
	Count  int    `yaml:"count" validate:"gte=1"`
}

// PlaybackConfig represents playback tuning.
type PlaybackConfig struct {
	ForwardSpeed       float64 `yaml:"forward_speed" default:"0.5" validate:"gt=0,lte=10"`
	BackwardSpeed      float64 `yaml:"backward_speed" default:"0.8" validate:"gt=0,lte=10"`
	PrefetchWindow     int     `yaml:"prefetch_window" default:"15" validate:"gte=0"`
	Order              string  `yaml:"order" default:"random" validate:"oneof=sequential random"`
	TPS                int     `yaml:"tps" default:"60" validate:"gte=1,lte=240"`
	WaitForAudioUnlock bool    `yaml:"wait_for_audio_unlock"`
}

// DisplayConfig represents window and drawing configuration.
type DisplayConfig struct {
	Title   string  `yaml:"title" default:"flipbook"`
	Width   int     `yaml:"width" default:"720" validate:"gte=1"`
	Height  int     `yaml:"height" default:"1280" validate:"gte=1"`
	ShowHUD bool    `yaml:"show_hud"`
	Margin  float64 `yaml:"margin" default:"0.08" validate:"gte=0,lt=0.5"`
}

// LoaderConfig represents the frame source configuration.
type LoaderConfig struct {
	Type     string         `yaml:"type" default:"filesystem" validate:"oneof=filesystem synthetic"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// AudioConfig represents the audio cue configuration.
type AudioConfig struct {
	Enabled    bool      `yaml:"enabled"`
	SampleRate int       `yaml:"sample_rate" default:"44100" validate:"oneof=22050 44100 48000"`
	Enter      CueConfig `yaml:"enter"`
	Explode    CueConfig `yaml:"explode"`
	Loop       CueConfig `yaml:"loop"`
}

// CueConfig represents a single audio cue. An empty path disables the cue.
// Volume is a pointer so that an explicit 0 mutes the cue instead of
// falling back to the default.
type CueConfig struct {
	Path   string   `yaml:"path"`
	Volume *float64 `yaml:"volume" validate:"omitnil,gte=0,lte=1"`
}

// Level returns the cue volume, or 0 when it is unset.
func (c CueConfig) Level() float64 {
	if c.Volume == nil {
		return 0
	}
	return *c.Volume
}

// SetDefaults fills in per-cue volumes left unset.
// It is called by creasty/defaults.
func (a *AudioConfig) SetDefaults() {
	setVolume(&a.Enter, 0.6)
	setVolume(&a.Explode, 0.7)
	setVolume(&a.Loop, 0.35)
}

func setVolume(c *CueConfig, v float64) {
	if c.Volume == nil {
		c.Volume = &v
	}
}

// ControlConfig represents the control API configuration.
type ControlConfig struct {
	Addr  string `yaml:"addr"` // Disabled when empty
	Token string `yaml:"token"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for the asset root
// and the control token.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("FLIPBOOK_ASSET_ROOT"); v != "" {
		if c.Loader.Settings == nil {
			c.Loader.Settings = make(map[string]any)
		}
		c.Loader.Settings["root"] = v
	}
	if v := os.Getenv("FLIPBOOK_CONTROL_TOKEN"); v != "" {
		c.Control.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	seen := make(map[string]bool, len(c.Packs))
	for _, p := range c.Packs {
		if seen[p.Name] {
			return errors.Newf("duplicate pack name: %s", p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}

// ToPacks converts the manifest into domain packs.
func (c *Config) ToPacks() []pack.Pack {
	packs := make([]pack.Pack, 0, len(c.Packs))
	for _, p := range c.Packs {
		packs = append(packs, pack.Pack{
			Name:  p.Name,
			Base:  p.Base,
			In:    p.In.toSpec(),
			Inter: p.Inter.toSpec(),
			Out:   p.Out.toSpec(),
		})
	}
	return packs
}

func (s SegmentConfig) toSpec() pack.SegmentSpec {
	return pack.SegmentSpec{
		Dir:    s.Dir,
		Prefix: s.Prefix,
		Pad:    s.Pad,
		Count:  s.Count,
	}
}
