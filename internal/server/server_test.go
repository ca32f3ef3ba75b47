// ABOUTME: Tests for the control server
// ABOUTME: Drives a real Player through the WebSocket protocol
package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sendspin/soundstage/internal/testutil"
	"github.com/Sendspin/soundstage/pkg/protocol"
	"github.com/Sendspin/soundstage/pkg/soundstage"
)

const testRate = 1000

type harness struct {
	srv    *Server
	player *soundstage.Player
	client *protocol.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	clip := testutil.WAV(t, testRate, 2, testutil.Constant(100, 2, 8000))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wav"), clip, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.mp3"), []byte("not audio"), 0644))

	srv := New(Config{Name: "test-stage"})
	player, err := soundstage.NewPlayer(soundstage.Config{
		SampleRate:     testRate,
		AssetRoot:      dir,
		OnLoadStart:    srv.LoadStarted,
		OnLoadComplete: srv.LoadCompleted,
		OnLoadError:    srv.LoadFailed,
	})
	require.NoError(t, err)
	srv.Attach(player)

	ts := httptest.NewServer(srv.Handler())
	client := protocol.NewClient(protocol.Config{
		ServerAddr: strings.TrimPrefix(ts.URL, "http://"),
		Name:       "test-client",
	})
	require.NoError(t, client.Connect())

	t.Cleanup(func() {
		client.Close()
		ts.Close()
		player.Close()
	})
	return &harness{srv: srv, player: player, client: client}
}

func (h *harness) do(t *testing.T, cmd protocol.PlayerCommand) (protocol.PlayerResult, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.client.Do(ctx, cmd)
}

func (h *harness) waitEvent(t *testing.T, kind string) protocol.PlayerEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-h.client.Events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func (h *harness) render(frames int) {
	h.player.Context().Render(make([]float32, frames*2))
}

func codeOf(err error) string {
	var cmdErr *protocol.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ""
}

func TestHandshakeReportsServer(t *testing.T) {
	h := newHarness(t)

	hello := h.client.ServerHello()
	assert.Equal(t, h.srv.ID(), hello.ServerID)
	assert.Equal(t, "test-stage", hello.Name)
	assert.Equal(t, testRate, hello.SampleRate)

	require.Eventually(t, func() bool { return len(h.srv.Clients()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "test-client", h.srv.Clients()[0].Name)
}

func TestLoadCreatePlayLifecycle(t *testing.T) {
	h := newHarness(t)

	_, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpLoad, Path: "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, "a.wav", h.waitEvent(t, protocol.EventLoadStart).Path)
	h.waitEvent(t, protocol.EventLoadComplete)

	res, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpCreate, Path: "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, "snd:0", res.Sound)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpSetPosition, Sound: "snd:0", X: protocol.Float(1), Z: protocol.Float(-2)})
	require.NoError(t, err)

	res, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpGetPosition, Sound: "snd:0"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, *res.X)
	assert.Equal(t, 0.0, *res.Y)
	assert.Equal(t, -2.0, *res.Z)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpPlay, Sound: "snd:0"})
	require.NoError(t, err)

	res, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpIsPlaying, Sound: "snd:0"})
	require.NoError(t, err)
	assert.True(t, *res.Playing)

	h.render(256)
	assert.Equal(t, "snd:0", h.waitEvent(t, protocol.EventEnded).Sound)

	res, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpIsPlaying, Sound: "snd:0"})
	require.NoError(t, err)
	assert.False(t, *res.Playing)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpDestroy, Sound: "snd:0"})
	require.NoError(t, err)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpIsPlaying, Sound: "snd:0"})
	assert.Equal(t, "invalid_handle", codeOf(err))

	// stop on a destroyed sound is not an error
	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpStop, Sound: "snd:0"})
	assert.NoError(t, err)
}

func TestLoadErrorEvent(t *testing.T) {
	h := newHarness(t)

	_, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpLoad, Path: "bad.mp3"})
	require.NoError(t, err)

	ev := h.waitEvent(t, protocol.EventLoadError)
	assert.Equal(t, "bad.mp3", ev.Path)
	assert.Equal(t, "decode_error", ev.Code)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpLoad, Path: "missing.wav"})
	require.NoError(t, err)
	ev = h.waitEvent(t, protocol.EventLoadError)
	assert.Equal(t, "io_error", ev.Code)
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		cmd  protocol.PlayerCommand
		code string
	}{
		{"empty load path", protocol.PlayerCommand{Op: protocol.OpLoad}, "invalid_argument"},
		{"create before load", protocol.PlayerCommand{Op: protocol.OpCreate, Path: "a.wav"}, "not_loaded"},
		{"play unknown", protocol.PlayerCommand{Op: protocol.OpPlay, Sound: "snd:42"}, "invalid_handle"},
		{"destroy unknown", protocol.PlayerCommand{Op: protocol.OpDestroy, Sound: "snd:42"}, "invalid_handle"},
		{"volume missing", protocol.PlayerCommand{Op: protocol.OpSetVolume}, "invalid_argument"},
		{"gain missing", protocol.PlayerCommand{Op: protocol.OpUpdateVolume, Sound: "snd:1"}, "invalid_argument"},
		{"position missing", protocol.PlayerCommand{Op: protocol.OpSetPosition, Sound: "snd:1"}, "invalid_argument"},
		{"orientation missing", protocol.PlayerCommand{Op: protocol.OpSetListenerOrientation}, "invalid_argument"},
		{"unknown op", protocol.PlayerCommand{Op: "explode"}, protocol.CodeUnknownOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.do(t, tt.cmd)
			require.Error(t, err)
			assert.Equal(t, tt.code, codeOf(err))
		})
	}
}

func TestVolumeAndListenerCommands(t *testing.T) {
	h := newHarness(t)

	_, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpSetVolume, Volume: protocol.Float(0.5), Time: protocol.Float(1)})
	require.NoError(t, err)
	h.render(testRate)

	res, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpGetVolume})
	require.NoError(t, err)
	assert.Equal(t, 0.5, *res.Volume)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpSetListenerPosition, X: protocol.Float(4)})
	require.NoError(t, err)
	_, err = h.do(t, protocol.PlayerCommand{
		Op:      protocol.OpSetListenerOrientation,
		Forward: &protocol.Vector{X: 1},
		Up:      &protocol.Vector{Y: 1},
	})
	require.NoError(t, err)

	res, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpState})
	require.NoError(t, err)
	require.NotNil(t, res.State)
	assert.Equal(t, 0.5, res.State.Volume)
	assert.Equal(t, protocol.Vector{X: 4}, res.State.Listener.Position)
	assert.Equal(t, protocol.Vector{X: 1}, res.State.Listener.Forward)
	assert.Empty(t, res.State.Sounds)
}

func TestRemoveAllCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.player.LoadAll(context.Background(), "a.wav"))

	for i := 0; i < 3; i++ {
		_, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpCreate, Path: "a.wav"})
		require.NoError(t, err)
	}
	_, err := h.do(t, protocol.PlayerCommand{Op: protocol.OpPlay, Sound: "snd:1", Loop: true})
	require.NoError(t, err)
	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpUpdateVolume, Sound: "snd:1", Gain: protocol.Float(0.3)})
	require.NoError(t, err)

	state := Snapshot(h.player)
	require.Len(t, state.Sounds, 3)
	assert.True(t, state.Sounds[1].Playing)
	assert.InDelta(t, 0.3, state.Sounds[1].Gain, 1e-9)

	_, err = h.do(t, protocol.PlayerCommand{Op: protocol.OpRemoveAll})
	require.NoError(t, err)
	assert.Empty(t, h.player.Sounds())
}

func TestStartRequiresPlayer(t *testing.T) {
	srv := New(Config{})
	assert.Error(t, srv.Start())
	assert.Equal(t, DefaultPort, srv.config.Port)
}
