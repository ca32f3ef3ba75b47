// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the fundamental types shared by the soundstage packages.
//
// This package defines:
//   - Format: Describes the source encoding of an asset (codec, sample rate, channels, bit depth)
//   - Buffer: Decoded, interleaved float32 sample data for one asset
//
// It also provides utilities for converting integer PCM samples to and from
// the normalized float32 range used by the audio graph.
//
// Example:
//
//	buf := &audio.Buffer{
//	    Format:  audio.Format{Codec: "wav", SampleRate: 48000, Channels: 2, BitDepth: 16},
//	    Samples: samples,
//	}
//
//	fmt.Println(buf.Frames(), buf.Duration())
package audio
