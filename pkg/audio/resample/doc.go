// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded assets between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	n := r.Resample(inputSamples, outputSamples)
//
//	// or convert a whole decoded asset
//	converted := resample.Buffer(buf, 48000)
package resample
