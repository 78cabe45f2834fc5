// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	Output string // "stdout", "stderr", or file path
	Level  string // "debug", "info", "warn", "error"
	File   string // log file path (used when Output is not stdout/stderr)
}

// console reports whether output goes to a terminal stream.
func (c Config) console() bool {
	switch strings.ToLower(c.Output) {
	case "", "stdout", "stderr":
		return true
	default:
		return false
	}
}

// Init initializes the global zerolog logger with the given configuration.
// Terminal output is colored console text; file output is JSON lines.
// Caller information is attached only at debug level.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)

	writer, err := openWriter(cfg)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.TimeOnly
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.CallerMarshalFunc = shortCaller

	logger := New(writer, cfg.console(), level == zerolog.DebugLevel)
	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger

	return nil
}

// New builds a logger on w without touching global state.
func New(w io.Writer, console, caller bool) zerolog.Logger {
	if console {
		cw := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
		}
		if caller {
			cw.PartsOrder = []string{"time", "level", "message", "caller"}
			cw.FormatCaller = func(i interface{}) string {
				s, _ := i.(string)
				return "(" + s + ")"
			}
		}
		w = cw
	}

	ctx := zerolog.New(w).With().Timestamp()
	if caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func openWriter(cfg Config) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	path := cfg.File
	if path == "" {
		path = cfg.Output
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", path)
	}
	return f, nil
}

// shortCaller keeps the last directory and the file name, e.g. "playback/machine.go:42".
func shortCaller(_ uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// parseLevel parses the log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
