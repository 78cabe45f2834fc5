// Package main provides the flipbook player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/app/preflight"
	"github.com/osa030/flipbook/internal/infra/config"
	"github.com/osa030/flipbook/internal/infra/frames"
	"github.com/osa030/flipbook/internal/infra/logger"
)

var (
	app        = kingpin.New("flipbook", "Press-and-hold sprite flipbook player")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	playCmd = app.Command("play", "Open the player window (default)").Default()

	headlessCmd = app.Command("headless", "Run the player without a window")
	ticks       = headlessCmd.Flag("ticks", "Number of ticks to run").Default("600").Int()
	pressAt     = headlessCmd.Flag("press-at", "Tick at which the input is pressed (0: never)").Default("1").Int()
	releaseAt   = headlessCmd.Flag("release-at", "Tick at which the input is released (0: never)").Default("0").Int()
	snapshot    = headlessCmd.Flag("snapshot", "Write the last drawn frame to this PNG file").String()

	checkCmd      = app.Command("check", "Check the pack manifest and frame files")
	checkNames    = checkCmd.Flag("checks", "Run only the named checks (repeatable, default: all)").Strings()
	listPacksCmd  = app.Command("list-packs", "List configured packs and exit")
	listChecksCmd = app.Command("list-checks", "List available manifest checks and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-checks command
	if command == listChecksCmd.FullCommand() {
		printChecks()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case listPacksCmd.FullCommand():
		printPacks(cfg)
		return
	case checkCmd.FullCommand():
		if !check(ctx, cfg, *checkNames) {
			os.Exit(1)
		}
		return
	case headlessCmd.FullCommand():
		err = runHeadless(ctx, cfg, headlessOptions{
			ticks:     *ticks,
			pressAt:   *pressAt,
			releaseAt: *releaseAt,
			snapshot:  *snapshot,
		})
	case playCmd.FullCommand():
		err = runWindow(ctx, cfg)
	}

	if err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// printChecks prints available manifest checks.
func printChecks() {
	fmt.Println("Available Checks:")
	registry := preflight.GetRegistered()
	for _, name := range preflight.Names() {
		c := registry[name]()
		fmt.Printf("  %-20s - %s\n", c.Name(), c.Description())
	}
}

// printPacks prints the configured packs.
func printPacks(cfg *config.Config) {
	fmt.Println("Packs:")
	for i, p := range cfg.ToPacks() {
		fmt.Printf("  %2d. %s frames=%d\n", i+1, p.Describe(), p.TotalFrames())
	}
}

// check runs the named manifest checks, or all of them when names is empty,
// and reports whether the manifest is usable.
func check(ctx context.Context, cfg *config.Config, names []string) bool {
	chain := preflight.NewDefaultChain()
	if len(names) > 0 {
		var err error
		if chain, err = preflight.NewChainOf(names...); err != nil {
			zlog.Error().Msgf("Failed to select checks: %v", err)
			return false
		}
	}

	fetcher, err := frames.NewFetcherFromConfig(cfg)
	if err != nil {
		zlog.Error().Msgf("Failed to create frame source: %v", err)
		return false
	}

	report := chain.Execute(ctx, cfg.ToPacks(), frames.FileSystem(fetcher.Source()))
	for _, f := range report.Findings {
		fmt.Println(f.String())
	}
	fmt.Printf("%d finding(s), %d error(s)\n", len(report.Findings), report.Errors())
	return !report.HasErrors()
}
