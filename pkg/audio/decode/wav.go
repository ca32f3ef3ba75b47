// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE integer PCM files to float32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Sendspin/soundstage/pkg/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVDecoder decodes WAV audio
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode converts WAV bytes to a buffer
func (d *WAVDecoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported wav encoding: %d", decoder.WavAudioFormat)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}
	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels <= 0 {
		return nil, errors.New("wav file has no channel information")
	}

	bitDepth := int(decoder.BitDepth)
	samples := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			samples[i] = float32(v-128) / 128.0
			continue
		}
		samples[i] = audio.SampleFromInt(v, bitDepth)
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      CodecWAV,
			SampleRate: pcm.Format.SampleRate,
			Channels:   pcm.Format.NumChannels,
			BitDepth:   bitDepth,
		},
		Samples: samples,
	}, nil
}
