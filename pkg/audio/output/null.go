// ABOUTME: Null audio output
// ABOUTME: Pulls audio at real-time pace and discards it
package output

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// DefaultNullPeriod is how much audio the null output pulls per tick
const DefaultNullPeriod = 10 * time.Millisecond

// Null drives a source at real-time speed without a sound device. It keeps
// the render clock moving on headless hosts and in tests.
type Null struct {
	mu     sync.Mutex
	period time.Duration
	stop   chan struct{}
	done   chan struct{}
}

// NewNull creates a null output pulling every DefaultNullPeriod
func NewNull() Output {
	return &Null{period: DefaultNullPeriod}
}

// NewNullWithPeriod creates a null output with a custom pull period
func NewNullWithPeriod(period time.Duration) *Null {
	if period <= 0 {
		period = DefaultNullPeriod
	}
	return &Null{period: period}
}

// Open starts the pull loop
func (n *Null) Open(sampleRate, channels int, src io.Reader) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("invalid format: %dHz %dch", sampleRate, channels)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop != nil {
		return fmt.Errorf("output already open")
	}

	frames := int(int64(sampleRate) * int64(n.period) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	buf := make([]byte, frames*channels*bytesPerSample)

	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.run(src, buf, n.stop, n.done)

	log.Printf("Null audio output started: %dHz, %d channels", sampleRate, channels)
	return nil
}

func (n *Null) run(src io.Reader, buf []byte, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := src.Read(buf); err != nil {
				if err != io.EOF {
					log.Printf("Null output read error: %v", err)
				}
				return
			}
		}
	}
}

// Close stops the pull loop and waits for it to exit
func (n *Null) Close() error {
	n.mu.Lock()
	stop, done := n.stop, n.done
	n.stop, n.done = nil, nil
	n.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}
