package frames

import (
	"context"
	"image"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	// Frame decoders. PNG is the manifest format; WebP and BMP frames are
	// accepted by content regardless of extension.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type FilesystemSourceConfig struct {
	Root        string `mapstructure:"root" default:"."`
	Concurrency int    `mapstructure:"concurrency" default:"8" validate:"gte=1,lte=256"`
}

// FilesystemSource reads frames from a directory tree.
type FilesystemSource struct {
	fsys   fs.FS
	config *FilesystemSourceConfig
}

// NewFilesystemSource creates a filesystem source from loader settings.
func NewFilesystemSource(settings map[string]any) (*FilesystemSource, error) {
	var config FilesystemSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("frames: filesystem source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("frames: filesystem source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}

	info, err := os.Stat(config.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "asset root %s", config.Root)
	}
	if !info.IsDir() {
		return nil, errors.Newf("asset root %s is not a directory", config.Root)
	}

	return NewFilesystemSourceFS(os.DirFS(config.Root), &config), nil
}

// NewFilesystemSourceFS creates a filesystem source over fsys.
func NewFilesystemSourceFS(fsys fs.FS, config *FilesystemSourceConfig) *FilesystemSource {
	if config == nil {
		config = &FilesystemSourceConfig{Root: ".", Concurrency: 8}
	}
	return &FilesystemSource{fsys: fsys, config: config}
}

func (s *FilesystemSource) Name() string {
	return "filesystem"
}

// FS returns the filesystem frames are read from.
func (s *FilesystemSource) FS() fs.FS {
	return s.fsys
}

// Load opens and decodes the frame at path.
func (s *FilesystemSource) Load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "load cancelled")
	}

	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open frame %s", path)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode frame %s", path)
	}
	zlog.Debug().Msgf("frames: decoded: path=%s format=%s size=%v", path, format, img.Bounds().Size())
	return img, nil
}
