// Package frames provides frame sources and the asynchronous fetcher that
// feeds the asset cache.
package frames

import (
	"context"
	"image"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Source loads and decodes a single frame.
type Source interface {
	// Load returns the decoded image stored at path.
	Load(ctx context.Context, path string) (image.Image, error)
	// Name returns the source type (used in config).
	Name() string
}

// Fetcher decodes frames on background goroutines.
// At most concurrency loads run at once and concurrent requests for the same
// path share one load.
type Fetcher struct {
	source Source
	sem    *semaphore.Weighted
	group  singleflight.Group
	wg     sync.WaitGroup
}

// NewFetcher creates a fetcher over source.
func NewFetcher(source Source, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		source: source,
		sem:    semaphore.NewWeighted(int64(concurrency)),
	}
}

// Source returns the underlying source.
func (f *Fetcher) Source() Source {
	return f.source
}

// Fetch starts loading path and returns immediately. done is called exactly
// once from a background goroutine. A cancelled ctx resolves the load as failed.
func (f *Fetcher) Fetch(ctx context.Context, path string, done func(image.Image, error)) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		v, err, shared := f.group.Do(path, func() (any, error) {
			if err := f.sem.Acquire(ctx, 1); err != nil {
				return nil, errors.Wrap(err, "fetch cancelled")
			}
			defer f.sem.Release(1)

			img, err := f.source.Load(ctx, path)
			if err != nil {
				return nil, err
			}
			return img, nil
		})
		if err != nil {
			zlog.Debug().Msgf("frames: load failed: path=%s shared=%t error=%v", path, shared, err)
			done(nil, err)
			return
		}
		done(v.(image.Image), nil)
	}()
}

// Wait blocks until every started fetch has called its callback.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}
