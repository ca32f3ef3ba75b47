// ABOUTME: Tests for the sequential load queue
// ABOUTME: Covers ordering, completion, failure clearing and fetch errors
package soundstage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRunsInOrderOneAtATime(t *testing.T) {
	f := newMemFetcher()
	f.gate = make(chan struct{})
	paths := []string{"a.wav", "b.wav", "c.wav", "d.wav"}
	for _, path := range paths {
		f.assets[path] = constantWAV(t, 10)
	}

	var completions atomic.Int32
	var mu sync.Mutex
	var started []string
	p := newTestPlayer(t, f, Config{
		OnLoadStart: func(path string) {
			mu.Lock()
			started = append(started, path)
			mu.Unlock()
		},
		OnLoadComplete: func() { completions.Add(1) },
	})

	for _, path := range paths {
		require.NoError(t, p.Load(path))
	}
	assert.Equal(t, len(paths), p.Pending())
	close(f.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.WaitIdle(ctx))

	assert.Equal(t, paths, f.order())
	assert.Equal(t, 1, f.maxIn)
	assert.Equal(t, int32(1), completions.Load())
	assert.Zero(t, p.Pending())
	for _, path := range paths {
		assert.True(t, p.Loaded(path), path)
	}

	mu.Lock()
	assert.Equal(t, paths, started)
	mu.Unlock()
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	p := newTestPlayer(t, newMemFetcher(), Config{})

	for _, path := range []string{"", "   "} {
		err := p.Load(path)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Zero(t, p.Pending())
}

func TestDecodeFailureClearsQueueButNotLaterLoads(t *testing.T) {
	f := newMemFetcher()
	f.gate = make(chan struct{})
	f.assets["a.mp3"] = []byte("definitely not audio")
	f.assets["c.wav"] = constantWAV(t, 10)
	f.assets["b.wav"] = constantWAV(t, 10)

	errs := make(chan error, 4)
	var completions atomic.Int32
	p := newTestPlayer(t, f, Config{
		OnLoadError:    func(err error) { errs <- err },
		OnLoadComplete: func() { completions.Add(1) },
	})

	require.NoError(t, p.Load("a.mp3"))
	require.NoError(t, p.Load("c.wav"))
	close(f.gate)

	var err error
	select {
	case err = <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load error")
	}
	require.NoError(t, p.WaitIdle(context.Background()))

	assert.ErrorIs(t, err, ErrDecode)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, DecodeError, loadErr.Kind)
	assert.Equal(t, "a.mp3", loadErr.Path)
	assert.ErrorIs(t, p.LastError(), ErrDecode)

	// the queued item after the failure was dropped, not fetched
	assert.Equal(t, []string{"a.mp3"}, f.order())
	assert.False(t, p.Loaded("c.wav"))
	assert.Zero(t, completions.Load())

	// the queue is usable again
	require.NoError(t, p.LoadAll(context.Background(), "b.wav"))
	assert.True(t, p.Loaded("b.wav"))
	assert.Equal(t, int32(1), completions.Load())
	assert.NoError(t, p.LastError())

	_, err = p.Create("b.wav")
	assert.NoError(t, err)
}

func TestHTTPStatusIsIOError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p, err := NewPlayer(Config{SampleRate: testRate, AssetRoot: srv.URL + "/sfx/"})
	require.NoError(t, err)
	defer p.Close()

	err = p.LoadAll(context.Background(), "missing.mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, IOError, loadErr.Kind)
	assert.Equal(t, http.StatusNotFound, loadErr.StatusCode)
	assert.Contains(t, loadErr.Error(), "HTTP 404")
}

func TestLoadWithoutErrorCallbackLogs(t *testing.T) {
	f := newMemFetcher()
	p := newTestPlayer(t, f, Config{})

	err := p.LoadAll(context.Background(), "nowhere.wav")
	assert.ErrorIs(t, err, ErrIO)
	assert.False(t, p.Loaded("nowhere.wav"))
}

func TestLoadAllHonoursContext(t *testing.T) {
	f := newMemFetcher()
	f.gate = make(chan struct{})
	f.assets["slow.wav"] = constantWAV(t, 10)
	p := newTestPlayer(t, f, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.LoadAll(ctx, "slow.wav")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(f.gate)
	require.NoError(t, p.WaitIdle(context.Background()))
	assert.True(t, p.Loaded("slow.wav"))
}

func TestLoadAfterCloseFails(t *testing.T) {
	p := newTestPlayer(t, newMemFetcher(), Config{})
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Load("a.wav"), ErrClosed)
	assert.NoError(t, p.Close())
}

func TestCloseAbandonsInFlightLoad(t *testing.T) {
	f := newMemFetcher()
	f.gate = make(chan struct{})
	f.assets["a.wav"] = constantWAV(t, 10)

	var reported atomic.Int32
	p := newTestPlayer(t, f, Config{OnLoadError: func(error) { reported.Add(1) }})
	require.NoError(t, p.Load("a.wav"))
	require.NoError(t, p.Load("b.wav"))

	require.NoError(t, p.Close())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.WaitIdle(ctx))

	assert.Zero(t, reported.Load())
	assert.False(t, p.Loaded("a.wav"))
}

func TestLoadedAssetsAreResampled(t *testing.T) {
	f := newMemFetcher()
	f.assets["hi.wav"] = constantWAV(t, 100)

	p, err := NewPlayer(Config{SampleRate: 2 * testRate, Fetcher: f})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.LoadAll(context.Background(), "hi.wav"))

	p.mu.Lock()
	buf := p.buffers["hi.wav"]
	p.mu.Unlock()
	assert.Equal(t, 2*testRate, buf.Format.SampleRate)
	assert.Equal(t, 200, buf.Frames())
}
