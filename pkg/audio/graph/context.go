// ABOUTME: Audio context owning the clock, destination and listener
// ABOUTME: Renders the graph in quanta and delivers ended callbacks
package graph

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/Sendspin/soundstage/pkg/audio"
)

// DefaultSampleRate is used when NewContext is given a non-positive rate
const DefaultSampleRate = 48000

// Context owns a graph and its sample clock
type Context struct {
	mu          sync.Mutex
	sampleRate  int
	frame       int64
	seq         uint64
	destination *Destination
	listener    *Listener
	active      []*BufferSource
	ended       []func()

	readBuf []float32
}

// NewContext creates a context rendering stereo at sampleRate
func NewContext(sampleRate int) *Context {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	c := &Context{sampleRate: sampleRate}
	c.destination = newDestination(c)
	c.listener = newListener(c)
	return c
}

// SampleRate returns the render rate in Hz
func (c *Context) SampleRate() int {
	return c.sampleRate
}

// Channels returns the output channel count
func (c *Context) Channels() int {
	return channels
}

// CurrentTime returns the render clock in seconds
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / float64(c.sampleRate)
}

// Destination returns the final bus
func (c *Context) Destination() *Destination {
	return c.destination
}

// Listener returns the context's single listener
func (c *Context) Listener() *Listener {
	return c.listener
}

// CreateGain creates a gain node at unity gain
func (c *Context) CreateGain() *GainNode {
	return newGainNode(c)
}

// CreatePanner creates an equal-power panner at the origin
func (c *Context) CreatePanner() *Panner {
	return newPanner(c)
}

// CreateBufferSource creates a source that plays buf. The buffer should be
// at the context's sample rate; no rate conversion happens at render time.
func (c *Context) CreateBufferSource(buf *audio.Buffer) *BufferSource {
	return newBufferSource(c, buf)
}

// ActiveSources returns the number of started sources that have not ended
func (c *Context) ActiveSources() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// Render fills out with interleaved stereo samples and advances the clock.
// Ended callbacks queued during the call, or by Stop since the previous
// call, run after the context lock is released.
func (c *Context) Render(out []float32) {
	c.mu.Lock()

	frames := len(out) / channels
	for off := 0; off < frames; {
		n := min(QuantumFrames, frames-off)
		c.seq++
		q := &quantum{seq: c.seq, frame: c.frame, frames: n}

		// Sources advance even when nothing downstream pulls them
		for _, s := range c.active {
			s.pull(q)
		}
		mix := c.destination.pull(q)
		copy(out[off*channels:(off+n)*channels], mix)

		c.frame += int64(n)
		off += n
		c.retire()
	}

	callbacks := c.ended
	c.ended = nil
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Read renders len(p)/8 frames as float32 little-endian stereo, clipped to
// [-1, 1]. Read is meant for a single output device goroutine.
func (c *Context) Read(p []byte) (int, error) {
	samples := len(p) / 4
	samples -= samples % channels
	if samples == 0 {
		return 0, nil
	}

	if cap(c.readBuf) < samples {
		c.readBuf = make([]float32, samples)
	}
	buf := c.readBuf[:samples]
	c.Render(buf)

	for i, v := range buf {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return samples * 4, nil
}

// retire drops ended sources from the active list (must hold c.mu)
func (c *Context) retire() {
	kept := c.active[:0]
	for _, s := range c.active {
		if s.state == sourcePlaying {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(c.active); i++ {
		c.active[i] = nil
	}
	c.active = kept
}

// Destination is the final summing bus of a context
type Destination struct {
	node
}

func newDestination(ctx *Context) *Destination {
	d := &Destination{}
	d.init(ctx, func(_ *quantum, in, out []float32) {
		copy(out, in)
	})
	return d
}
