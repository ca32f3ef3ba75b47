// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import "io"

// bytesPerSample is the size of one float32 sample
const bytesPerSample = 4

// Output represents an audio output device
type Output interface {
	// Open starts pulling float32 LE PCM from src
	Open(sampleRate, channels int, src io.Reader) error

	// Close stops playback and releases the device
	Close() error
}
