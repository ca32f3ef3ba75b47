// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes complete Ogg Opus files to float32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/soundstage/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz regardless of the input rate
const opusSampleRate = 48000

// maxOpusFrame is 120ms at 48kHz, the largest opus frame
const maxOpusFrame = 5760

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode converts Ogg Opus bytes to a buffer
func (d *OpusDecoder) Decode(data []byte) (*audio.Buffer, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open opus stream: %w", err)
	}
	defer stream.Close()

	pcm := make([]float32, maxOpusFrame*channels)
	var samples []float32
	for {
		n, err := stream.ReadFloat32(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		samples = append(samples, pcm[:n*channels]...)
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      CodecOpus,
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}

// opusChannels reads the output channel count from the OpusHead packet
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || len(data) < idx+10 {
		return 0, errors.New("missing OpusHead packet")
	}
	channels := int(data[idx+9])
	if channels == 0 {
		return 0, errors.New("opus header declares zero channels")
	}
	return channels, nil
}
