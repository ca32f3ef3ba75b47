// ABOUTME: Sound instance record
// ABOUTME: Plain data for one registered sound and its live playback
package soundstage

import (
	"github.com/Sendspin/soundstage/pkg/audio"
	"github.com/Sendspin/soundstage/pkg/audio/graph"
)

// SoundID identifies a sound within one Player. IDs are never reused.
type SoundID string

// Sound is one instance of a loaded asset placed in the scene
type Sound struct {
	ID      SoundID
	Path    string
	X, Y, Z float64
	Playing bool
	Loop    bool

	seq      uint64
	buffer   *audio.Buffer
	playback *playback
}

// playback is the graph chain of a playing sound:
// source -> panner -> gain -> master
type playback struct {
	source     *graph.BufferSource
	panner     *graph.Panner
	gain       *graph.GainNode
	loop       bool
	onEnded    func()
	superseded bool
}

// SoundState is a read-only snapshot of a sound
type SoundState struct {
	ID      SoundID
	Path    string
	X, Y, Z float64
	Playing bool
	Loop    bool
	Gain    float64 // per-sound gain while playing, 1 when idle
}

// ListenerState is a snapshot of the listener
type ListenerState struct {
	X, Y, Z float64
	Forward [3]float64
	Up      [3]float64
}
