// ABOUTME: Player owning the buffer cache, sound registry and audio graph
// ABOUTME: Implements sound lifecycle, positioning, listener and master volume
package soundstage

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/Sendspin/soundstage/pkg/audio"
	"github.com/Sendspin/soundstage/pkg/audio/graph"
	"github.com/Sendspin/soundstage/pkg/audio/output"
)

const (
	// DefaultSampleRate is the graph rate when Config.SampleRate is unset
	DefaultSampleRate = 48000

	// DefaultRampTime is the master volume ramp used when none is given
	DefaultRampTime = 0.01
	MinRampTime     = 0.01
	MaxRampTime     = 120.0
)

// Config holds player configuration
type Config struct {
	// SampleRate of the audio graph (default 48000)
	SampleRate int

	// AssetRoot is the base URL or directory for relative asset paths
	AssetRoot string

	// Fetcher overrides how asset bytes are retrieved (default NewFetcher(AssetRoot))
	Fetcher Fetcher

	// Output is opened on the graph by NewPlayer and closed by Close. When nil
	// the caller drives rendering through Context().
	Output output.Output

	// OnLoadStart is called before each queued asset is fetched
	OnLoadStart func(path string)

	// OnLoadComplete is called when the load queue drains successfully
	OnLoadComplete func()

	// OnLoadError is called with a *LoadError when a load fails. The rest of
	// the queue is discarded. Failures are logged when unset.
	OnLoadError func(err error)
}

// Player manages loading, sound instances and spatial playback
type Player struct {
	config  Config
	fetcher Fetcher
	ctx     *graph.Context
	master  *graph.GainNode

	mu      sync.Mutex
	buffers map[string]*audio.Buffer
	sounds  map[SoundID]*Sound
	nextID  uint64
	queue   []string
	loading bool
	idle    chan struct{}
	lastErr error
	closed  bool

	runCtx context.Context
	cancel context.CancelFunc
}

// NewPlayer creates a player and opens its output if one is configured
func NewPlayer(config Config) (*Player, error) {
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultSampleRate
	}
	fetcher := config.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(config.AssetRoot)
	}

	gctx := graph.NewContext(config.SampleRate)
	master := gctx.CreateGain()
	master.Connect(gctx.Destination())
	gctx.Listener().SetOrientation(0, 0, -1, 0, 1, 0)

	idle := make(chan struct{})
	close(idle)

	runCtx, cancel := context.WithCancel(context.Background())

	p := &Player{
		config:  config,
		fetcher: fetcher,
		ctx:     gctx,
		master:  master,
		buffers: make(map[string]*audio.Buffer),
		sounds:  make(map[SoundID]*Sound),
		idle:    idle,
		runCtx:  runCtx,
		cancel:  cancel,
	}

	if config.Output != nil {
		if err := config.Output.Open(gctx.SampleRate(), gctx.Channels(), gctx); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to open audio output: %w", err)
		}
	}

	return p, nil
}

// Context returns the audio graph the player renders into
func (p *Player) Context() *graph.Context {
	return p.ctx
}

// Create registers a new sound for a loaded asset, placed at the origin
func (p *Player) Create(path string) (SoundID, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	buf, ok := p.buffers[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotLoaded, path)
	}

	id := SoundID(fmt.Sprintf("snd:%d", p.nextID))
	p.sounds[id] = &Sound{
		ID:     id,
		Path:   path,
		seq:    p.nextID,
		buffer: buf,
	}
	p.nextID++
	return id, nil
}

// Destroy removes a sound. Looping playback is stopped; a one-shot that is
// already playing runs to its end.
func (p *Player) Destroy(id SoundID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(id)
	if err != nil {
		return err
	}
	if s.playback != nil && s.playback.loop {
		p.halt(s, false)
	}
	delete(p.sounds, id)
	return nil
}

// RemoveAllSounds stops every sound and empties the registry
func (p *Player) RemoveAllSounds() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, s := range p.sounds {
		p.halt(s, false)
		delete(p.sounds, id)
	}
}

// Play starts playback of a sound, replacing any playback already running.
// onEnded, if non-nil, runs once when this playback ends naturally or is
// stopped. It does not run when a later Play replaces this playback.
func (p *Player) Play(id SoundID, loop bool, onEnded func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(id)
	if err != nil {
		return err
	}
	p.halt(s, true)

	src := p.ctx.CreateBufferSource(s.buffer)
	src.SetLoop(loop)

	pan := p.ctx.CreatePanner()
	pan.SetPanningModel(graph.HRTF)
	pan.SetDistanceModel(graph.Linear)
	pan.SetPosition(s.X, s.Y, s.Z)

	gain := p.ctx.CreateGain()

	src.Connect(pan)
	pan.Connect(gain)
	gain.Connect(p.master)

	pb := &playback{
		source:  src,
		panner:  pan,
		gain:    gain,
		loop:    loop,
		onEnded: onEnded,
	}
	src.OnEnded(func() { p.ended(s, pb) })

	s.playback = pb
	s.Playing = true
	s.Loop = loop
	src.Start()
	return nil
}

// Stop halts a sound's playback. Unknown ids are ignored.
func (p *Player) Stop(id SoundID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sounds[id]; ok {
		p.halt(s, false)
	}
}

// IsPlaying reports whether a sound has an active playback
func (p *Player) IsPlaying(id SoundID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(id)
	if err != nil {
		return false, err
	}
	return s.Playing, nil
}

// SetX sets the sound's x coordinate
func (p *Player) SetX(id SoundID, x float64) error {
	return p.updatePosition(id, func(s *Sound) { s.X = x }, x)
}

// SetY sets the sound's y coordinate
func (p *Player) SetY(id SoundID, y float64) error {
	return p.updatePosition(id, func(s *Sound) { s.Y = y }, y)
}

// SetZ sets the sound's z coordinate
func (p *Player) SetZ(id SoundID, z float64) error {
	return p.updatePosition(id, func(s *Sound) { s.Z = z }, z)
}

// SetPosition moves a sound, repositioning live playback without restarting it
func (p *Player) SetPosition(id SoundID, x, y, z float64) error {
	return p.updatePosition(id, func(s *Sound) {
		s.X, s.Y, s.Z = x, y, z
	}, x, y, z)
}

func (p *Player) updatePosition(id SoundID, apply func(*Sound), coords ...float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(id)
	if err != nil {
		return err
	}
	if err := validateFinite("coordinate", coords...); err != nil {
		return err
	}

	apply(s)
	if s.playback != nil {
		s.playback.panner.SetPosition(s.X, s.Y, s.Z)
	}
	return nil
}

// X returns the sound's x coordinate
func (p *Player) X(id SoundID) (float64, error) {
	x, _, _, err := p.Position(id)
	return x, err
}

// Y returns the sound's y coordinate
func (p *Player) Y(id SoundID) (float64, error) {
	_, y, _, err := p.Position(id)
	return y, err
}

// Z returns the sound's z coordinate
func (p *Player) Z(id SoundID) (float64, error) {
	_, _, z, err := p.Position(id)
	return z, err
}

// Position returns the sound's coordinates
func (p *Player) Position(id SoundID) (x, y, z float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(id)
	if err != nil {
		return 0, 0, 0, err
	}
	return s.X, s.Y, s.Z, nil
}

// SetVolume ramps the master gain linearly to volume over seconds, starting
// from its current value. Volume is clamped to [0, 1] and seconds to
// [MinRampTime, MaxRampTime]; a NaN duration means DefaultRampTime.
func (p *Player) SetVolume(volume, seconds float64) error {
	if math.IsNaN(volume) {
		return fmt.Errorf("%w: volume is NaN", ErrInvalidArgument)
	}
	volume = clamp(volume, 0, 1)

	if math.IsNaN(seconds) {
		seconds = DefaultRampTime
	}
	seconds = clamp(seconds, MinRampTime, MaxRampTime)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.master.Gain().RampFromCurrent(volume, seconds)
	return nil
}

// Volume returns the instantaneous master gain
func (p *Player) Volume() float64 {
	return p.master.Gain().Value()
}

// UpdateVolume sets a per-sound gain on the current playback, applied on top
// of the master volume. Negative gains clamp to 0. Unknown or idle sounds
// are ignored.
func (p *Player) UpdateVolume(id SoundID, gain float64) error {
	if err := validateFinite("gain", gain); err != nil {
		return err
	}
	if gain < 0 {
		gain = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sounds[id]
	if !ok || s.playback == nil {
		return nil
	}
	s.playback.gain.Gain().SetValue(gain)
	return nil
}

// SetListenerPosition moves the listener
func (p *Player) SetListenerPosition(x, y, z float64) error {
	if err := validateFinite("listener position", x, y, z); err != nil {
		return err
	}
	p.ctx.Listener().SetPosition(x, y, z)
	return nil
}

// SetListenerOrientation sets the listener's forward and up vectors
func (p *Player) SetListenerOrientation(dx, dy, dz, ux, uy, uz float64) error {
	if err := validateFinite("listener orientation", dx, dy, dz, ux, uy, uz); err != nil {
		return err
	}
	p.ctx.Listener().SetOrientation(dx, dy, dz, ux, uy, uz)
	return nil
}

// Listener returns the listener position and orientation
func (p *Player) Listener() ListenerState {
	l := p.ctx.Listener()
	var st ListenerState
	st.X, st.Y, st.Z = l.Position()
	st.Forward[0], st.Forward[1], st.Forward[2], st.Up[0], st.Up[1], st.Up[2] = l.Orientation()
	return st
}

// Sounds returns a snapshot of every registered sound in creation order
func (p *Player) Sounds() []SoundState {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := make([]*Sound, 0, len(p.sounds))
	for _, s := range p.sounds {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })

	states := make([]SoundState, len(list))
	for i, s := range list {
		gain := 1.0
		if s.playback != nil {
			gain = s.playback.gain.Gain().Value()
		}
		states[i] = SoundState{
			ID:      s.ID,
			Path:    s.Path,
			X:       s.X,
			Y:       s.Y,
			Z:       s.Z,
			Playing: s.Playing,
			Loop:    s.Loop,
			Gain:    gain,
		}
	}
	return states
}

// Close stops all playback, abandons pending loads and closes the output
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.queue = nil
	for id, s := range p.sounds {
		p.halt(s, false)
		delete(p.sounds, id)
	}
	p.mu.Unlock()

	p.cancel()

	if p.config.Output != nil {
		if err := p.config.Output.Close(); err != nil {
			return fmt.Errorf("failed to close audio output: %w", err)
		}
	}
	log.Printf("Player closed")
	return nil
}

// lookup finds a registered sound (must hold p.mu)
func (p *Player) lookup(id SoundID) (*Sound, error) {
	s, ok := p.sounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHandle, id)
	}
	return s, nil
}

// halt stops the sound's current playback (must hold p.mu). A superseded
// playback does not run its ended callback.
func (p *Player) halt(s *Sound, superseded bool) {
	pb := s.playback
	if pb == nil {
		return
	}
	// a source that already ended on its own still reports ended
	pb.superseded = superseded && pb.source.Playing()
	pb.source.Stop()
	s.playback = nil
	s.Playing = false
}

// ended runs on the render goroutine when a playback's source finishes
func (p *Player) ended(s *Sound, pb *playback) {
	p.mu.Lock()
	if s.playback == pb {
		s.playback = nil
		s.Playing = false
	}
	notify := !pb.superseded && pb.onEnded != nil
	p.mu.Unlock()

	pb.source.Disconnect()
	pb.panner.Disconnect()
	pb.gain.Disconnect()

	if notify {
		pb.onEnded()
	}
}

func validateFinite(what string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidArgument, what, v)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
