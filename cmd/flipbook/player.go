package main

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	apiconnect "github.com/osa030/flipbook/internal/api/connect"
	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/app/audio"
	"github.com/osa030/flipbook/internal/app/input"
	"github.com/osa030/flipbook/internal/app/playback"
	"github.com/osa030/flipbook/internal/app/preflight"
	"github.com/osa030/flipbook/internal/app/render"
	"github.com/osa030/flipbook/internal/app/selector"
	"github.com/osa030/flipbook/internal/app/session"
	"github.com/osa030/flipbook/internal/infra/canvas"
	"github.com/osa030/flipbook/internal/infra/config"
	"github.com/osa030/flipbook/internal/infra/display"
	"github.com/osa030/flipbook/internal/infra/frames"
	"github.com/osa030/flipbook/internal/infra/sound"
)

// player bundles everything a run needs.
type player struct {
	session   *session.Manager
	fetcher   *frames.Fetcher
	stopLoads context.CancelFunc
}

// newPlayer wires the frame source, cache, selector and session.
func newPlayer(ctx context.Context, cfg *config.Config, cues *audio.Cues) (*player, error) {
	packs := cfg.ToPacks()

	fetcher, err := frames.NewFetcherFromConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create frame source")
	}

	// Findings are logged only: missing frames freeze playback at that point
	// instead of stopping the player.
	report := preflight.NewDefaultChain().Execute(ctx, packs, frames.FileSystem(fetcher.Source()))
	for _, f := range report.Findings {
		zlog.Warn().Msgf("preflight: %s", f.String())
	}

	mode, err := selector.ParseMode(cfg.Playback.Order)
	if err != nil {
		return nil, err
	}

	// run() cancels loadCtx once the loop returns so queued loads are abandoned.
	loadCtx, stopLoads := context.WithCancel(ctx)
	cache := assets.New(loadCtx, packs, fetcher)
	sel := selector.New(mode, len(packs))
	sess := session.NewManager(playback.Config{
		ForwardSpeed:   cfg.Playback.ForwardSpeed,
		BackwardSpeed:  cfg.Playback.BackwardSpeed,
		PrefetchWindow: cfg.Playback.PrefetchWindow,
		WaitForUnlock:  cfg.Playback.WaitForAudioUnlock,
	}, packs, cache, sel, cues)
	zlog.Info().Msgf("player: ready: packs=%d order=%s source=%s", len(packs), sel.Mode(), fetcher.Source().Name())

	return &player{session: sess, fetcher: fetcher, stopLoads: stopLoads}, nil
}

// run starts the control server, runs loop on the calling goroutine and tears
// everything down once loop returns or the server fails.
func (p *player) run(ctx context.Context, cfg *config.Config, loop func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Control.Addr != "" {
		g.Go(func() error {
			return serveControl(gctx, cfg.Control, p.session)
		})
	}

	loopErr := loop(gctx)

	// Close the session first to end notification streams before server shutdown
	p.session.Close()
	cancel()
	err := g.Wait()
	p.stopLoads()
	p.fetcher.Wait()

	if loopErr != nil {
		return loopErr
	}
	return err
}

// runWindow plays in an ebiten window. It must run on the main goroutine.
func runWindow(ctx context.Context, cfg *config.Config) error {
	p, err := newPlayer(ctx, cfg, sound.NewCuesFromConfig(cfg.Audio))
	if err != nil {
		return err
	}

	return p.run(ctx, cfg, func(ctx context.Context) error {
		return display.Run(ctx, p.session, display.Config{
			Title:   cfg.Display.Title,
			Width:   cfg.Display.Width,
			Height:  cfg.Display.Height,
			TPS:     cfg.Playback.TPS,
			ShowHUD: cfg.Display.ShowHUD,
			Margin:  cfg.Display.Margin,
		})
	})
}

type headlessOptions struct {
	ticks     int
	pressAt   int
	releaseAt int
	snapshot  string
}

// runHeadless plays into an in-memory canvas for a fixed number of ticks.
// Audio stays silent.
func runHeadless(ctx context.Context, cfg *config.Config, opts headlessOptions) error {
	p, err := newPlayer(ctx, cfg, nil)
	if err != nil {
		return err
	}

	surface := canvas.New(cfg.Display.Width, cfg.Display.Height, cfg.Display.ShowHUD, cfg.Display.Margin)

	err = p.run(ctx, cfg, func(ctx context.Context) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		tick := 0
		return p.session.Run(ctx, cfg.Playback.TPS, func(cmd render.Command) {
			tick++
			surface.Draw(cmd)
			latch := p.session.Input()
			if tick == opts.pressAt {
				latch.Press(input.SourceRemote)
			}
			if tick == opts.releaseAt {
				latch.Release(input.SourceRemote)
			}
			if tick >= opts.ticks {
				st := p.session.GetStatus()
				zlog.Info().Msgf("headless: done: ticks=%d state=%s pack=%s cursor=%.2f", tick, st.State, st.PackName, st.Cursor)
				cancel()
			}
		})
	})
	if err != nil {
		return err
	}

	if opts.snapshot != "" {
		return surface.SavePNG(opts.snapshot)
	}
	return nil
}

// serveControl serves the control API and metrics until ctx is cancelled.
func serveControl(ctx context.Context, cfg config.ControlConfig, sess *session.Manager) error {
	var opts []connect.HandlerOption
	if cfg.Token != "" {
		opts = append(opts, connect.WithInterceptors(apiconnect.NewTokenInterceptor(cfg.Token)))
	} else {
		zlog.Warn().Msg("Control token not set, control API is unauthenticated")
	}

	mux := http.NewServeMux()
	path, handler := apiconnect.NewPlayerServiceHandler(apiconnect.NewPlayerService(sess), opts...)
	mux.Handle(path, handler)
	mux.Handle("/metrics", promhttp.Handler())

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting control server: addr=%s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErrCh:
		return errors.Wrap(err, "control server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown control server: %v", err)
	}
	zlog.Info().Msg("Control server stopped")
	return nil
}
