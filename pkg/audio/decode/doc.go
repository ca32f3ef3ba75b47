// ABOUTME: Audio decoder package for whole-asset decoding
// ABOUTME: Provides format sniffing and decoders for MP3, WAV, FLAC and Ogg Opus
// Package decode turns complete encoded audio files into audio.Buffer values.
//
// Supports: MP3, WAV (8/16/24/32-bit PCM), FLAC, Ogg Opus
//
// Decode sniffs the container from its magic bytes and dispatches to the
// matching decoder. All decoders produce interleaved float32 samples.
//
// Example:
//
//	buf, err := decode.Decode(data)
//	if errors.Is(err, decode.ErrUnsupportedFormat) { ... }
package decode
