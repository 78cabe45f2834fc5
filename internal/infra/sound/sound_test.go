package sound

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcmWAV builds a 16-bit stereo WAV file holding n silent frames.
func pcmWAV(t *testing.T, sampleRate, n int) []byte {
	t.Helper()
	const channels, bits = 2, 16
	dataLen := n * channels * bits / 8

	var buf bytes.Buffer
	w := func(v any) { require.NoError(t, binary.Write(&buf, binary.LittleEndian, v)) }
	buf.WriteString("RIFF")
	w(uint32(36 + dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1))
	w(uint16(channels))
	w(uint32(sampleRate))
	w(uint32(sampleRate * channels * bits / 8))
	w(uint16(channels * bits / 8))
	w(uint16(bits))
	buf.WriteString("data")
	w(uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestDecode_WAV(t *testing.T) {
	s, err := decode(44100, "assets/sfx/loop.WAV", pcmWAV(t, 44100, 441))
	require.NoError(t, err)
	assert.Equal(t, int64(441*4), s.Length())
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := decode(44100, "assets/sfx/loop.flac", []byte("fLaC"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := decode(44100, "assets/sfx/in.wav", []byte("not a wav"))
	assert.Error(t, err)
}
