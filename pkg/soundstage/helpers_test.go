// ABOUTME: Shared helpers for player tests
// ABOUTME: In-memory fetcher and deterministic rendering utilities
package soundstage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sendspin/soundstage/internal/testutil"
)

const testRate = 1000

// memFetcher serves assets from memory and records fetch order. When gate is
// non-nil every fetch waits for it to be closed.
type memFetcher struct {
	mu       sync.Mutex
	assets   map[string][]byte
	fetched  []string
	inFlight int
	maxIn    int
	gate     chan struct{}
}

func newMemFetcher() *memFetcher {
	return &memFetcher{assets: make(map[string][]byte)}
}

func (f *memFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, path)
	f.inFlight++
	if f.inFlight > f.maxIn {
		f.maxIn = f.inFlight
	}
	gate := f.gate
	data, ok := f.assets[path]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, fmt.Errorf("no such asset: %s", path)
	}
	return data, nil
}

func (f *memFetcher) order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// constantWAV is a stereo clip of frames at testRate with every sample 0.5
func constantWAV(t testing.TB, frames int) []byte {
	t.Helper()
	return testutil.WAV(t, testRate, 2, testutil.Constant(frames, 2, 16384))
}

func newTestPlayer(t *testing.T, f *memFetcher, config Config) *Player {
	t.Helper()
	config.SampleRate = testRate
	config.Fetcher = f
	p, err := NewPlayer(config)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

// loadedPlayer returns a player with each path loaded as a constant clip
func loadedPlayer(t *testing.T, frames int, paths ...string) *Player {
	t.Helper()
	f := newMemFetcher()
	for _, path := range paths {
		f.assets[path] = constantWAV(t, frames)
	}
	p := newTestPlayer(t, f, Config{})
	require.NoError(t, p.LoadAll(context.Background(), paths...))
	return p
}

func renderFrames(p *Player, frames int) []float32 {
	out := make([]float32, frames*2)
	p.Context().Render(out)
	return out
}
