// ABOUTME: Panner node placing a source in 3D space
// ABOUTME: Implements equal-power and head-model panning with distance attenuation
package graph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PanningModel selects how a panner distributes signal between ears
type PanningModel int

const (
	// EqualPower pans with a constant-power sine/cosine law
	EqualPower PanningModel = iota
	// HRTF approximates a head: interaural delay, level difference and
	// head shadow filtering on the far ear
	HRTF
)

func (m PanningModel) String() string {
	switch m {
	case HRTF:
		return "HRTF"
	default:
		return "equalpower"
	}
}

// DistanceModel selects how gain falls off with distance
type DistanceModel int

const (
	Linear DistanceModel = iota
	Inverse
	Exponential
)

func (m DistanceModel) String() string {
	switch m {
	case Inverse:
		return "inverse"
	case Exponential:
		return "exponential"
	default:
		return "linear"
	}
}

// Spherical head model constants
const (
	headRadius   = 0.0875 // meters
	speedOfSound = 343.0  // meters per second
	maxITD       = 0.001  // seconds of delay line
)

// Panner spatializes its input relative to the context listener. Input is
// summed to mono before panning.
type Panner struct {
	node
	model       PanningModel
	distance    DistanceModel
	position    mgl64.Vec3
	refDistance float64
	maxDistance float64
	rolloff     float64

	history []float32
	histPos int
	shadowL float32
	shadowR float32
}

func newPanner(ctx *Context) *Panner {
	p := &Panner{
		model:       EqualPower,
		distance:    Linear,
		refDistance: 1,
		maxDistance: 10000,
		rolloff:     1,
		history:     make([]float32, int(maxITD*float64(ctx.sampleRate))+2),
	}
	p.init(ctx, p.process)
	return p
}

// SetPosition places the source
func (p *Panner) SetPosition(x, y, z float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.position = mgl64.Vec3{x, y, z}
}

// Position returns the source position
func (p *Panner) Position() (x, y, z float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.position.Elem()
}

// SetPanningModel selects the panning algorithm
func (p *Panner) SetPanningModel(m PanningModel) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.model = m
}

// PanningModel returns the panning algorithm
func (p *Panner) PanningModel() PanningModel {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.model
}

// SetDistanceModel selects the attenuation curve
func (p *Panner) SetDistanceModel(m DistanceModel) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.distance = m
}

// DistanceModel returns the attenuation curve
func (p *Panner) DistanceModel() DistanceModel {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.distance
}

// SetRefDistance sets the distance at which attenuation begins
func (p *Panner) SetRefDistance(d float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.refDistance = math.Max(d, 0)
}

// SetMaxDistance sets the distance beyond which attenuation stops changing
func (p *Panner) SetMaxDistance(d float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.maxDistance = math.Max(d, 0)
}

// SetRolloffFactor sets how quickly gain falls with distance
func (p *Panner) SetRolloffFactor(f float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.rolloff = math.Max(f, 0)
}

// azimuth returns the source angle in degrees, 0 straight ahead, positive
// to the listener's right, in (-180, 180].
func (p *Panner) azimuth() float64 {
	l := p.ctx.listener

	src := p.position.Sub(l.position)
	if src.Len() == 0 {
		return 0
	}
	src = src.Normalize()

	right := unit(l.forward.Cross(l.up))
	up := unit(right.Cross(l.forward))
	proj := src.Sub(up.Mul(src.Dot(up)))
	if proj.Len() == 0 {
		// directly above or below
		return 0
	}
	proj = proj.Normalize()

	az := math.Acos(clamp(proj.Dot(right), -1, 1)) * 180 / math.Pi
	if proj.Dot(l.forward) < 0 {
		az = 360 - az
	}
	if az <= 270 {
		return 90 - az
	}
	return 450 - az
}

// distanceGain applies the selected attenuation curve
func (p *Panner) distanceGain() float64 {
	d := p.position.Sub(p.ctx.listener.position).Len()
	ref := p.refDistance

	switch p.distance {
	case Inverse:
		d = math.Max(d, ref)
		denom := ref + p.rolloff*(d-ref)
		if denom == 0 {
			return 1
		}
		return ref / denom
	case Exponential:
		d = math.Max(d, ref)
		if ref == 0 {
			return 1
		}
		return math.Pow(d/ref, -p.rolloff)
	default:
		if p.maxDistance <= ref {
			return 1
		}
		d = clamp(d, ref, p.maxDistance)
		return 1 - math.Min(p.rolloff, 1)*(d-ref)/(p.maxDistance-ref)
	}
}

// frontAzimuth folds rear angles onto the frontal half plane, in degrees
func frontAzimuth(az float64) float64 {
	if az < -90 {
		return -180 - az
	}
	if az > 90 {
		return 180 - az
	}
	return az
}

func (p *Panner) process(q *quantum, in, out []float32) {
	az := frontAzimuth(p.azimuth())
	dg := float32(p.distanceGain())

	if p.model == EqualPower {
		x := (az + 90) / 180
		gl := float32(math.Cos(x*math.Pi/2)) * dg
		gr := float32(math.Sin(x*math.Pi/2)) * dg
		for i := 0; i < q.frames; i++ {
			mono := (in[i*channels] + in[i*channels+1]) * 0.5
			out[i*channels] = mono * gl
			out[i*channels+1] = mono * gr
		}
		return
	}

	theta := az * math.Pi / 180
	s := math.Abs(math.Sin(theta))

	itd := headRadius / speedOfSound * (math.Abs(theta) + s)
	delay := int(math.Round(itd * float64(p.ctx.sampleRate)))
	if delay > len(p.history)-1 {
		delay = len(p.history) - 1
	}
	farGain := float32(1-0.6*s) * dg
	nearGain := dg
	shadow := float32(1 - 0.8*s)

	delayL, delayR := 0, 0
	gl, gr := nearGain, nearGain
	alphaL, alphaR := float32(1), float32(1)
	if theta > 0 {
		delayL, gl, alphaL = delay, farGain, shadow
	} else if theta < 0 {
		delayR, gr, alphaR = delay, farGain, shadow
	}

	n := len(p.history)
	for i := 0; i < q.frames; i++ {
		p.history[p.histPos] = (in[i*channels] + in[i*channels+1]) * 0.5

		l := p.history[(p.histPos-delayL+n)%n]
		r := p.history[(p.histPos-delayR+n)%n]
		p.shadowL += alphaL * (l - p.shadowL)
		p.shadowR += alphaR * (r - p.shadowR)

		out[i*channels] = p.shadowL * gl
		out[i*channels+1] = p.shadowR * gr

		p.histPos = (p.histPos + 1) % n
	}
}

// unit normalizes v, mapping the zero vector to itself
func unit(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
