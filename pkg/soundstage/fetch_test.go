// ABOUTME: Tests for asset fetchers
// ABOUTME: Tests HTTP download, caching, file reads and routing
package soundstage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestHTTPFetcherResolvesAgainstBase(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL + "/assets/")
	data, err := f.Fetch(context.Background(), "fx/door.mp3")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected body %q", data)
	}
	if gotPath != "/assets/fx/door.mp3" {
		t.Errorf("expected resolved path, got %s", gotPath)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher("").Fetch(context.Background(), server.URL+"/x.wav")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", statusErr.StatusCode)
	}
}

func TestHTTPFetcherCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("cached payload"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL)
	f.CacheDir = filepath.Join(t.TempDir(), "cache")

	for i := 0; i < 3; i++ {
		data, err := f.Fetch(context.Background(), "/a.mp3?v=1")
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if string(data) != "cached payload" {
			t.Errorf("unexpected body %q", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected a single download, got %d", hits.Load())
	}

	entries, err := os.ReadDir(f.CacheDir)
	if err != nil {
		t.Fatalf("cache dir missing: %v", err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".mp3" {
		t.Errorf("unexpected cache contents: %v", entries)
	}
}

func TestHTTPFetcherHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHTTPFetcher(server.URL).Fetch(ctx, "a.wav"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sfx"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sfx", "a.wav"), []byte("wav bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	f := &FileFetcher{Root: dir}
	data, err := f.Fetch(context.Background(), "sfx/a.wav")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(data) != "wav bytes" {
		t.Errorf("unexpected data %q", data)
	}

	abs := filepath.Join(dir, "sfx", "a.wav")
	if _, err := f.Fetch(context.Background(), abs); err != nil {
		t.Errorf("absolute path should bypass root: %v", err)
	}

	if _, err := f.Fetch(context.Background(), "missing.wav"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewFetcherRouting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote"))
	}))
	defer server.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.wav"), []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(dir)
	data, err := f.Fetch(context.Background(), "local.wav")
	if err != nil || string(data) != "local" {
		t.Errorf("local fetch: %q, %v", data, err)
	}
	data, err = f.Fetch(context.Background(), server.URL+"/remote.wav")
	if err != nil || string(data) != "remote" {
		t.Errorf("remote fetch: %q, %v", data, err)
	}

	if _, ok := NewFetcher(server.URL).(*HTTPFetcher); !ok {
		t.Error("expected HTTP fetcher for a URL root")
	}
}
