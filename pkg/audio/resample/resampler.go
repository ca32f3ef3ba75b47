// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to bring decoded assets to the audio context rate
package resample

import (
	"github.com/Sendspin/soundstage/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts interleaved input at inputRate to interleaved output at
// outputRate. The final input frame is held for positions past the end, so a
// complete asset keeps its tail. Returns the number of samples written.
func (r *Resampler) Resample(input []float32, output []float32) int {
	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels
	if inputFrames == 0 {
		return 0
	}

	last := inputFrames - 1
	for outIdx := 0; outIdx < outputFrames; outIdx++ {
		pos := float64(outIdx) * r.ratio
		idx := int(pos)
		if idx >= last {
			for ch := 0; ch < r.channels; ch++ {
				output[outIdx*r.channels+ch] = input[last*r.channels+ch]
			}
			continue
		}

		frac := float32(pos - float64(idx))
		for ch := 0; ch < r.channels; ch++ {
			s1 := input[idx*r.channels+ch]
			s2 := input[(idx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = s1*(1-frac) + s2*frac
		}
	}

	return outputFrames * r.channels
}

// OutputSamplesNeeded calculates how many output samples a complete input produces
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// Buffer returns buf converted to rate. The input is returned unchanged when
// it is already at the requested rate.
func Buffer(buf *audio.Buffer, rate int) *audio.Buffer {
	if buf == nil || buf.Format.SampleRate == rate || buf.Format.SampleRate <= 0 || rate <= 0 {
		return buf
	}

	r := New(buf.Format.SampleRate, rate, buf.Format.Channels)
	out := make([]float32, r.OutputSamplesNeeded(len(buf.Samples)))
	n := r.Resample(buf.Samples, out)

	format := buf.Format
	format.SampleRate = rate
	return &audio.Buffer{
		Format:  format,
		Samples: out[:n],
	}
}
