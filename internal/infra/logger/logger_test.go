package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestShortCaller(t *testing.T) {
	file := filepath.Join("root", "internal", "app", "playback", "machine.go")
	assert.Equal(t, filepath.Join("playback", "machine.go")+":42", shortCaller(0, file, 42))
	assert.Equal(t, "main.go:7", shortCaller(0, "main.go", 7))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, false)
	l.Info().Msgf("playback: state changed: from=%s to=%s", "IN", "INTER")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "playback: state changed: from=IN to=INTER", line["message"])
	assert.NotContains(t, line, "caller")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true, false)
	l.Warn().Msg("assets: frame failed")

	assert.Contains(t, buf.String(), "assets: frame failed")
}

func TestInit_File(t *testing.T) {
	prev := zlog.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		zlog.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "flipbook.log")
	require.NoError(t, Init(Config{Output: path, File: path, Level: "debug"}))
	zlog.Debug().Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"caller"`)
}

func TestInit_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "flipbook.log")
	assert.Error(t, Init(Config{Output: path, File: path}))
}
