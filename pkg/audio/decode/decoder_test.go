// ABOUTME: Tests for format detection and decoding dispatch
// ABOUTME: Tests sniffing, WAV decoding and malformed input handling
package decode

import (
	"errors"
	"testing"

	"github.com/Sendspin/soundstage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"wav", testutil.WAV(t, 8000, 1, []int16{0, 1}), CodecWAV, false},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), CodecFLAC, false},
		{"ogg opus", append([]byte("OggS\x00\x02"), []byte("....OpusHead\x01\x02")...), CodecOpus, false},
		{"ogg vorbis", append([]byte("OggS\x00\x02"), []byte("\x01vorbis")...), "", true},
		{"id3 mp3", []byte("ID3\x04\x00\x00"), CodecMP3, false},
		{"frame sync mp3", []byte{0xFF, 0xFB, 0x90, 0x00}, CodecMP3, false},
		{"garbage", []byte("definitely not audio"), "", true},
		{"short", []byte{0x00}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUnknownCodec(t *testing.T) {
	dec, err := New("aac")
	require.Error(t, err)
	assert.Nil(t, dec)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeWAVMono(t *testing.T) {
	data := testutil.WAV(t, 8000, 1, []int16{0, 16384, -16384, -32768})

	buf, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, CodecWAV, buf.Format.Codec)
	assert.Equal(t, 8000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.Channels)
	assert.Equal(t, 16, buf.Format.BitDepth)
	require.Len(t, buf.Samples, 4)
	assert.InDelta(t, 0.0, buf.Samples[0], 1e-6)
	assert.InDelta(t, 0.5, buf.Samples[1], 1e-6)
	assert.InDelta(t, -0.5, buf.Samples[2], 1e-6)
	assert.InDelta(t, -1.0, buf.Samples[3], 1e-6)
}

func TestDecodeWAVStereo(t *testing.T) {
	data := testutil.WAV(t, 44100, 2, testutil.Constant(100, 2, 8192))

	buf, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, 2, buf.Format.Channels)
	assert.Equal(t, 100, buf.Frames())
	l, r := buf.Frame(50)
	assert.InDelta(t, 0.25, l, 1e-6)
	assert.InDelta(t, 0.25, r, 1e-6)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeTruncatedWAV(t *testing.T) {
	data := testutil.WAV(t, 8000, 1, []int16{1, 2, 3})
	_, err := Decode(data[:20])
	require.Error(t, err)
}
