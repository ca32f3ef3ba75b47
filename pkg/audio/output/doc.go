// ABOUTME: Audio output package for playing rendered audio
// ABOUTME: Provides the Output interface with oto and null backends
// Package output drives an audio device from a rendering source.
//
// Outputs pull interleaved float32 little-endian PCM from an io.Reader,
// usually a graph.Context, at the device's pace.
//
// Example:
//
//	ctx := graph.NewContext(48000)
//	out := output.NewOto()
//	err := out.Open(ctx.SampleRate(), ctx.Channels(), ctx)
//	defer out.Close()
package output
