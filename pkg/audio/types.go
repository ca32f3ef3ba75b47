// ABOUTME: Audio type definitions
// ABOUTME: Defines source formats and decoded buffers
package audio

import (
	"math"
	"time"
)

// Format describes the encoding an asset was decoded from
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Buffer holds decoded audio for one asset. Samples are interleaved and
// normalized to [-1, 1]. A Buffer is never mutated once decoded.
type Buffer struct {
	Format  Format
	Samples []float32
}

// Frames returns the number of sample frames (samples per channel)
func (b *Buffer) Frames() int {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length at the buffer's sample rate
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// Frame returns the left and right sample of frame i. Mono buffers are
// duplicated to both sides; extra channels beyond the first two are ignored.
func (b *Buffer) Frame(i int) (left, right float32) {
	ch := b.Format.Channels
	base := i * ch
	left = b.Samples[base]
	if ch == 1 {
		return left, left
	}
	return left, b.Samples[base+1]
}

// SampleFromInt16 converts a 16-bit sample to float
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleToInt16 converts a float sample to 16-bit, clipping out-of-range input
func SampleToInt16(sample float32) int16 {
	v := math.Round(float64(sample) * 32767.0)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// SampleFromInt converts a signed integer sample of the given bit depth to float
func SampleFromInt(sample int, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(uint64(1)<<(bitDepth-1)))
}
