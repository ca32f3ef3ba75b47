// ABOUTME: Buffer source node
// ABOUTME: Plays a decoded buffer once or looping and reports when it ends
package graph

import "github.com/Sendspin/soundstage/pkg/audio"

type sourceState int

const (
	sourceIdle sourceState = iota
	sourcePlaying
	sourceEnded
)

// BufferSource plays an audio.Buffer. A source can be started once.
type BufferSource struct {
	node
	buffer   *audio.Buffer
	loop     bool
	onEnded  func()
	state    sourceState
	playhead int
}

func newBufferSource(ctx *Context, buf *audio.Buffer) *BufferSource {
	s := &BufferSource{buffer: buf}
	s.init(ctx, s.process)
	return s
}

// Buffer returns the buffer being played
func (s *BufferSource) Buffer() *audio.Buffer {
	return s.buffer
}

// SetLoop toggles looping
func (s *BufferSource) SetLoop(loop bool) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.loop = loop
}

// Loop reports whether the source loops
func (s *BufferSource) Loop() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.loop
}

// OnEnded sets the callback run once when playback finishes or is stopped.
// It is called from the rendering goroutine without any graph lock held.
func (s *BufferSource) OnEnded(fn func()) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.onEnded = fn
}

// Start begins playback on the next rendered block. Starting a source that
// was already started does nothing.
func (s *BufferSource) Start() {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	if s.state != sourceIdle {
		return
	}
	s.state = sourcePlaying
	s.ctx.active = append(s.ctx.active, s)
}

// Stop ends playback. The ended callback is delivered by the next Render.
func (s *BufferSource) Stop() {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	if s.state != sourcePlaying {
		return
	}
	s.finish()
}

// Playing reports whether the source has started and not yet ended
func (s *BufferSource) Playing() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.state == sourcePlaying
}

// finish marks the source ended and queues its callback (must hold ctx.mu)
func (s *BufferSource) finish() {
	s.state = sourceEnded
	if s.onEnded != nil {
		s.ctx.ended = append(s.ctx.ended, s.onEnded)
	}
}

func (s *BufferSource) process(q *quantum, _, out []float32) {
	if s.state != sourcePlaying {
		return
	}

	frames := 0
	if s.buffer != nil {
		frames = s.buffer.Frames()
	}
	if frames == 0 {
		s.finish()
		return
	}

	for i := 0; i < q.frames && s.state == sourcePlaying; i++ {
		l, r := s.buffer.Frame(s.playhead)
		out[i*channels] = l
		out[i*channels+1] = r

		s.playhead++
		if s.playhead >= frames {
			if s.loop {
				s.playhead = 0
			} else {
				s.finish()
			}
		}
	}
}
