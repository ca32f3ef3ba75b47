// ABOUTME: Tests for soundstage-ctl argument parsing and output formatting
// ABOUTME: Checks every command maps onto the right protocol op
package main

import (
	"strings"
	"testing"

	"github.com/Sendspin/soundstage/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommandsOps(t *testing.T) {
	tests := []struct {
		args []string
		op   string
	}{
		{[]string{"state"}, protocol.OpState},
		{[]string{"create", "rain.mp3"}, protocol.OpCreate},
		{[]string{"destroy", "snd:0"}, protocol.OpDestroy},
		{[]string{"remove-all"}, protocol.OpRemoveAll},
		{[]string{"play", "snd:0"}, protocol.OpPlay},
		{[]string{"stop", "snd:0"}, protocol.OpStop},
		{[]string{"playing", "snd:0"}, protocol.OpIsPlaying},
		{[]string{"position", "snd:0"}, protocol.OpGetPosition},
		{[]string{"position", "snd:0", "1", "2", "3"}, protocol.OpSetPosition},
		{[]string{"volume"}, protocol.OpGetVolume},
		{[]string{"volume", "0.5"}, protocol.OpSetVolume},
		{[]string{"gain", "snd:0", "0.25"}, protocol.OpUpdateVolume},
		{[]string{"listener", "0", "1", "0"}, protocol.OpSetListenerPosition},
		{[]string{"orient", "0", "0", "-1", "0", "1", "0"}, protocol.OpSetListenerOrientation},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmds, err := buildCommands(tt.args)
			require.NoError(t, err)
			require.Len(t, cmds, 1)
			assert.Equal(t, tt.op, cmds[0].Op)
		})
	}
}

func TestBuildCommandsLoadMany(t *testing.T) {
	cmds, err := buildCommands([]string{"load", "a.wav", "b.mp3"})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "a.wav", cmds[0].Path)
	assert.Equal(t, "b.mp3", cmds[1].Path)
}

func TestBuildCommandsFields(t *testing.T) {
	cmds, err := buildCommands([]string{"play", "snd:3", "loop"})
	require.NoError(t, err)
	assert.Equal(t, "snd:3", cmds[0].Sound)
	assert.True(t, cmds[0].Loop)

	cmds, err = buildCommands([]string{"volume", "0.2", "1.5"})
	require.NoError(t, err)
	require.NotNil(t, cmds[0].Volume)
	require.NotNil(t, cmds[0].Time)
	assert.Equal(t, 0.2, *cmds[0].Volume)
	assert.Equal(t, 1.5, *cmds[0].Time)

	cmds, err = buildCommands([]string{"orient", "1", "0", "0", "0", "1", "0"})
	require.NoError(t, err)
	assert.Equal(t, protocol.Vector{X: 1}, *cmds[0].Forward)
	assert.Equal(t, protocol.Vector{Y: 1}, *cmds[0].Up)
}

func TestBuildCommandsErrors(t *testing.T) {
	bad := [][]string{
		{},
		{"dance"},
		{"load"},
		{"create"},
		{"state", "extra"},
		{"play", "snd:0", "twice"},
		{"position", "snd:0", "1"},
		{"volume", "loud"},
		{"gain", "snd:0"},
		{"listener", "1", "2"},
		{"orient", "0", "0", "-1"},
	}
	for _, args := range bad {
		_, err := buildCommands(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "snd:1", formatResult(protocol.OpCreate, protocol.PlayerResult{Sound: "snd:1"}))
	assert.Equal(t, "true", formatResult(protocol.OpIsPlaying, protocol.PlayerResult{Playing: protocol.Bool(true)}))
	assert.Equal(t, "0.500", formatResult(protocol.OpGetVolume, protocol.PlayerResult{Volume: protocol.Float(0.5)}))
	assert.Equal(t, "1 2 3", formatResult(protocol.OpGetPosition, protocol.PlayerResult{
		X: protocol.Float(1), Y: protocol.Float(2), Z: protocol.Float(3),
	}))
	assert.Equal(t, "ok", formatResult(protocol.OpStop, protocol.PlayerResult{}))
}

func TestFormatState(t *testing.T) {
	out := formatState(protocol.PlayerState{
		Volume: 0.75,
		Sounds: []protocol.SoundState{
			{ID: "snd:0", Path: "rain.mp3", Playing: true, Loop: true},
			{ID: "snd:1", Path: "door.wav"},
		},
	})
	assert.Contains(t, out, "volume   0.750")
	assert.Contains(t, out, "looping")
	assert.Contains(t, out, "door.wav")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "ended snd:2", formatEvent(protocol.PlayerEvent{Kind: protocol.EventEnded, Sound: "snd:2"}))
	assert.Equal(t, "load_complete", formatEvent(protocol.PlayerEvent{Kind: protocol.EventLoadComplete}))
	assert.Contains(t, formatEvent(protocol.PlayerEvent{
		Kind: protocol.EventLoadError, Path: "x.mp3", Code: "io_error", Error: "404",
	}), "[io_error]")
}
