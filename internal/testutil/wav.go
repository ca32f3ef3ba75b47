// ABOUTME: Test fixtures for audio assets
// ABOUTME: Encodes WAV clips with go-audio for decoder and player tests
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV encodes 16-bit interleaved samples as a PCM WAV file. The encoder
// patches chunk sizes on Close, so it writes through a temp file.
func WAV(tb testing.TB, sampleRate, channels int, samples []int16) []byte {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create wav: %v", err)
	}
	defer func() { _ = f.Close() }()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("finish wav: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read wav: %v", err)
	}
	return out
}

// Constant returns frames*channels samples all set to value
func Constant(frames, channels int, value int16) []int16 {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return samples
}
