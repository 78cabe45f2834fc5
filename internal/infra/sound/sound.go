// Package sound loads the audio cues through the ebiten audio context.
package sound

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	zlog "github.com/rs/zerolog/log"

	appaudio "github.com/osa030/flipbook/internal/app/audio"
	"github.com/osa030/flipbook/internal/infra/config"
)

// ErrUnsupportedFormat is returned for cue files that are not mp3, wav or ogg.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// stream is a decoded cue.
type stream interface {
	io.ReadSeeker
	Length() int64
}

// Loader creates players on a shared audio context.
// Only one audio context may exist per process.
type Loader struct {
	context    *audio.Context
	sampleRate int
}

// NewLoader creates the audio context.
func NewLoader(sampleRate int) *Loader {
	return &Loader{
		context:    audio.NewContext(sampleRate),
		sampleRate: sampleRate,
	}
}

// Load decodes the file at path into a player. Looping players restart
// seamlessly at the end of the stream.
func (l *Loader) Load(path string, volume float64, loop bool) (*audio.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cue %s", path)
	}

	s, err := decode(l.sampleRate, path, data)
	if err != nil {
		return nil, err
	}

	var src io.Reader = s
	if loop {
		src = audio.NewInfiniteLoop(s, s.Length())
	}

	p, err := l.context.NewPlayer(src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create player for %s", path)
	}
	p.SetVolume(volume)
	return p, nil
}

// Cues loads the three cues described by cfg. A cue that is not configured or
// fails to load stays silent; audio problems never stop playback.
func (l *Loader) Cues(cfg config.AudioConfig) *appaudio.Cues {
	enter := l.cue(appaudio.CueEnter, cfg.Enter, false)
	explode := l.cue(appaudio.CueExplode, cfg.Explode, false)
	loop := l.cue(appaudio.CueLoop, cfg.Loop, true)
	return appaudio.NewCues(enter, explode, loop)
}

func (l *Loader) cue(name string, cfg config.CueConfig, loop bool) appaudio.Player {
	if cfg.Path == "" {
		zlog.Debug().Msgf("sound: cue not configured: cue=%s", name)
		return nil
	}
	p, err := l.Load(cfg.Path, cfg.Level(), loop)
	if err != nil {
		zlog.Warn().Msgf("sound: cue disabled: cue=%s path=%s error=%v", name, cfg.Path, err)
		return nil
	}
	zlog.Info().Msgf("sound: cue loaded: cue=%s path=%s volume=%.2f loop=%t", name, cfg.Path, cfg.Level(), loop)
	return p
}

// NewCuesFromConfig returns audio cues for cfg, or silent cues when audio is disabled.
func NewCuesFromConfig(cfg config.AudioConfig) *appaudio.Cues {
	if !cfg.Enabled {
		zlog.Info().Msg("sound: audio disabled")
		return appaudio.NewCues(nil, nil, nil)
	}
	return NewLoader(cfg.SampleRate).Cues(cfg)
}

// decode picks a decoder by file extension.
func decode(sampleRate int, path string, data []byte) (stream, error) {
	r := bytes.NewReader(data)

	var (
		s   stream
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, err = mp3.DecodeWithSampleRate(sampleRate, r)
	case ".wav":
		s, err = wav.DecodeWithSampleRate(sampleRate, r)
	case ".ogg":
		s, err = vorbis.DecodeWithSampleRate(sampleRate, r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode cue %s", path)
	}
	return s, nil
}
