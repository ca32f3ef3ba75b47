// ABOUTME: Asset fetchers for the load queue
// ABOUTME: Retrieves asset bytes over HTTP(S) or from the local filesystem
package soundstage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher retrieves the raw bytes of an asset
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// StatusError is returned for HTTP responses with status >= 400
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// HTTPFetcher downloads assets, resolving relative paths against BaseURL.
// When CacheDir is set, successful downloads are kept on disk and reused.
type HTTPFetcher struct {
	BaseURL  string
	CacheDir string
	Client   *http.Client
}

// NewHTTPFetcher creates a fetcher for baseURL
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{},
	}
}

// Fetch performs a GET for path
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	target, err := f.resolve(path)
	if err != nil {
		return nil, err
	}

	cachePath := ""
	if f.CacheDir != "" {
		hash := sha256.Sum256([]byte(target))
		cachePath = filepath.Join(f.CacheDir, fmt.Sprintf("%x%s", hash[:8], extension(target)))
		if data, err := os.ReadFile(cachePath); err == nil {
			log.Printf("Asset cache hit: %s", cachePath)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset body: %w", err)
	}

	if cachePath != "" {
		if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
			log.Printf("Failed to create asset cache: %v", err)
		} else if err := os.WriteFile(cachePath, data, 0644); err != nil {
			log.Printf("Failed to cache asset: %v", err)
		}
	}

	return data, nil
}

func (f *HTTPFetcher) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid asset path %q: %w", path, err)
	}
	if ref.IsAbs() || f.BaseURL == "" {
		return ref.String(), nil
	}

	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", f.BaseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// extension extracts the file extension from a URL, ignoring the query
func extension(u string) string {
	u = strings.Split(u, "?")[0]
	return filepath.Ext(u)
}

// FileFetcher reads assets from disk relative to Root
type FileFetcher struct {
	Root string
}

// Fetch reads path from disk
func (f *FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.FromSlash(path)
	if !filepath.IsAbs(name) && f.Root != "" {
		name = filepath.Join(f.Root, name)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}

// routingFetcher sends URLs to HTTP and everything else to disk
type routingFetcher struct {
	http *HTTPFetcher
	file *FileFetcher
}

// NewFetcher returns the default fetcher for root. An http(s) root resolves
// every path against it. Otherwise absolute URLs are downloaded and other
// paths are read from disk relative to root.
func NewFetcher(root string) Fetcher {
	if isURL(root) {
		return NewHTTPFetcher(root)
	}
	return &routingFetcher{
		http: NewHTTPFetcher(""),
		file: &FileFetcher{Root: root},
	}
}

func (f *routingFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if isURL(path) {
		return f.http.Fetch(ctx, path)
	}
	return f.file.Fetch(ctx, path)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
