package frames

import (
	"io/fs"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/infra/config"
)

// NewFetcherFromConfig creates a fetcher over the source named by the loader config.
func NewFetcherFromConfig(cfg *config.Config) (*Fetcher, error) {
	lcfg := cfg.Loader
	zlog.Debug().Msgf("frames: creating source: type=%s settings=%+v", lcfg.Type, lcfg.Settings)

	var (
		source      Source
		concurrency int
	)
	switch lcfg.Type {
	case "filesystem":
		s, err := NewFilesystemSource(lcfg.Settings)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (type %s)", lcfg.Type)
		}
		source, concurrency = s, s.config.Concurrency

	case "synthetic":
		s, err := NewSyntheticSource(lcfg.Settings)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (type %s)", lcfg.Type)
		}
		source, concurrency = s, s.config.Concurrency

	default:
		return nil, errors.Newf("unsupported loader type: %s", lcfg.Type)
	}

	zlog.Info().Msgf("frames: source ready: type=%s concurrency=%d", source.Name(), concurrency)
	return NewFetcher(source, concurrency), nil
}

// FileSystem returns the filesystem behind source, or nil if it has none.
func FileSystem(source Source) fs.FS {
	if s, ok := source.(interface{ FS() fs.FS }); ok {
		return s.FS()
	}
	return nil
}
