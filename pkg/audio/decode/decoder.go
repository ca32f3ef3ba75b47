// ABOUTME: Decoder interface definition and format detection
// ABOUTME: Common entry point for all asset decoders
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Sendspin/soundstage/pkg/audio"
)

// Codec names reported in audio.Format.Codec
const (
	CodecMP3  = "mp3"
	CodecWAV  = "wav"
	CodecFLAC = "flac"
	CodecOpus = "opus"
)

// ErrUnsupportedFormat is returned when the data matches no known container
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder decodes a complete encoded asset
type Decoder interface {
	// Decode converts encoded audio data to a decoded buffer
	Decode(data []byte) (*audio.Buffer, error)
}

// New returns the decoder for a codec name
func New(codec string) (Decoder, error) {
	switch codec {
	case CodecMP3:
		return NewMP3(), nil
	case CodecWAV:
		return NewWAV(), nil
	case CodecFLAC:
		return NewFLAC(), nil
	case CodecOpus:
		return NewOpus(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, codec)
	}
}

// Detect identifies the codec of data from its leading bytes
func Detect(data []byte) (string, error) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return CodecWAV, nil
	case bytes.HasPrefix(data, []byte("fLaC")):
		return CodecFLAC, nil
	case bytes.HasPrefix(data, []byte("OggS")):
		// Only Opus is decodable from Ogg; Vorbis streams are rejected
		if bytes.Contains(data[:min(len(data), 512)], []byte("OpusHead")) {
			return CodecOpus, nil
		}
		return "", fmt.Errorf("%w: ogg stream without opus header", ErrUnsupportedFormat)
	case bytes.HasPrefix(data, []byte("ID3")):
		return CodecMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return CodecMP3, nil
	}
	return "", ErrUnsupportedFormat
}

// Decode sniffs the format of data and decodes it
func Decode(data []byte) (*audio.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrUnsupportedFormat)
	}

	codec, err := Detect(data)
	if err != nil {
		return nil, err
	}

	dec, err := New(codec)
	if err != nil {
		return nil, err
	}

	buf, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec, err)
	}
	return buf, nil
}
