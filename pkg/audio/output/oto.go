// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams float32 PCM from a reader to the system audio device
package output

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultBufferSize is the device buffer length requested from oto
const DefaultBufferSize = 40 * time.Millisecond

var (
	// oto allows a single context per process
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	otoRate int
	otoCh   int
)

// Oto output implementation using oto library
type Oto struct {
	mu         sync.Mutex
	player     *oto.Player
	bufferSize time.Duration
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{bufferSize: DefaultBufferSize}
}

// NewOtoWithBuffer creates an Oto output with a custom device buffer
func NewOtoWithBuffer(bufferSize time.Duration) Output {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Oto{bufferSize: bufferSize}
}

// Open initializes the device and starts playback from src
func (o *Oto) Open(sampleRate, channels int, src io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return fmt.Errorf("output already open")
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   o.bufferSize,
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready

		otoCtx = ctx
		otoRate = sampleRate
		otoCh = channels
	})
	if otoErr != nil {
		return otoErr
	}

	// oto cannot be reinitialized with a new format
	if otoRate != sampleRate || otoCh != channels {
		return fmt.Errorf("audio device already opened at %dHz %dch", otoRate, otoCh)
	}

	if err := otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	o.player = otoCtx.NewPlayer(src)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)
	return nil
}

// Close stops the player and suspends the device
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	err := o.player.Close()
	o.player = nil

	if serr := otoCtx.Suspend(); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return fmt.Errorf("failed to close oto output: %w", err)
	}
	return nil
}
