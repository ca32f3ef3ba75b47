// ABOUTME: Sequential asset load queue
// ABOUTME: Fetches and decodes queued paths one at a time into the buffer cache
package soundstage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Sendspin/soundstage/pkg/audio"
	"github.com/Sendspin/soundstage/pkg/audio/decode"
	"github.com/Sendspin/soundstage/pkg/audio/resample"
)

// Load queues an asset for loading. Assets load strictly in the order they
// were queued, one at a time. A failure discards the rest of the queue and
// is reported through OnLoadError.
func (p *Player) Load(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	p.queue = append(p.queue, path)
	start := !p.loading
	if start {
		p.loading = true
		p.lastErr = nil
		p.idle = make(chan struct{})
	}
	idle := p.idle
	p.mu.Unlock()

	if start {
		go p.runLoader(idle)
	}
	return nil
}

// LoadAll queues paths and waits until they are all loaded. It returns the
// load error that stopped the queue, or ctx's error if ctx ends first.
func (p *Player) LoadAll(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if err := p.Load(path); err != nil {
			return err
		}
	}
	if err := p.WaitIdle(ctx); err != nil {
		return err
	}

	for _, path := range paths {
		if !p.Loaded(path) {
			if err := p.LastError(); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", ErrNotLoaded, path)
		}
	}
	return nil
}

// WaitIdle blocks until the load queue is empty or ctx is done
func (p *Player) WaitIdle(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loaded reports whether path is in the buffer cache
func (p *Player) Loaded(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.buffers[path]
	return ok
}

// Pending returns the number of queued paths, including the one in flight
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// LastError returns the failure that ended the most recent load batch
func (p *Player) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// runLoader drains the queue. Only one runs at a time; idle is closed once
// it stops.
func (p *Player) runLoader(idle chan struct{}) {
	defer close(idle)

	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.loading = false
			p.mu.Unlock()
			return
		}
		path := p.queue[0]
		p.mu.Unlock()

		if p.config.OnLoadStart != nil {
			p.config.OnLoadStart(path)
		}

		buf, err := p.fetchAndDecode(path)

		p.mu.Lock()
		if p.closed {
			p.loading = false
			p.mu.Unlock()
			return
		}

		if err != nil {
			p.queue = nil
			p.lastErr = err
			p.loading = false
			p.mu.Unlock()

			p.reportLoadError(err)
			return
		}

		p.buffers[path] = buf
		p.queue = p.queue[1:]
		if len(p.queue) == 0 {
			p.queue = nil
			p.loading = false
			p.mu.Unlock()

			log.Printf("Asset queue drained")
			if p.config.OnLoadComplete != nil {
				p.config.OnLoadComplete()
			}
			return
		}
		p.mu.Unlock()
	}
}

func (p *Player) fetchAndDecode(path string) (*audio.Buffer, error) {
	data, err := p.fetcher.Fetch(p.runCtx, path)
	if err != nil {
		loadErr := &LoadError{Kind: IOError, Path: path, Err: err}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			loadErr.StatusCode = statusErr.StatusCode
		}
		return nil, loadErr
	}

	buf, err := decode.Decode(data)
	if err != nil {
		return nil, &LoadError{Kind: DecodeError, Path: path, Err: err}
	}

	log.Printf("Loaded %s: %s %dHz %dch, %v", path, buf.Format.Codec, buf.Format.SampleRate, buf.Format.Channels, buf.Duration())
	return resample.Buffer(buf, p.ctx.SampleRate()), nil
}

func (p *Player) reportLoadError(err error) {
	if p.config.OnLoadError != nil {
		p.config.OnLoadError(err)
		return
	}
	log.Printf("Audio load failed: %v", err)
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty asset path", ErrInvalidArgument)
	}
	return nil
}
