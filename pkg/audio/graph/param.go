// ABOUTME: Automatable parameter values
// ABOUTME: Supports immediate, scheduled and linearly ramped values
package graph

import "sort"

type automationKind int

const (
	setEvent automationKind = iota
	rampEvent
)

type automation struct {
	kind  automationKind
	time  float64
	value float64
}

// Param is a value that can change over time on the context clock
type Param struct {
	ctx    *Context
	value  float64
	events []automation
}

func newParam(ctx *Context, value float64) *Param {
	return &Param{ctx: ctx, value: value}
}

// Value returns the instantaneous value at the current context time
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAt(p.ctx.now())
}

// SetValue cancels all automation and sets the value immediately
func (p *Param) SetValue(v float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.events = nil
	p.value = v
}

// SetValueAtTime schedules a step to v at time t (seconds)
func (p *Param) SetValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(automation{kind: setEvent, time: t, value: v})
}

// LinearRampToValueAtTime schedules a linear ramp from the previous event to
// v, arriving at time t. Without a previous event the ramp starts now.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	if len(p.events) == 0 {
		now := p.ctx.now()
		p.insert(automation{kind: setEvent, time: now, value: p.value})
	}
	p.insert(automation{kind: rampEvent, time: t, value: v})
}

// CancelScheduledValues removes all events at or after t. When nothing
// remains the parameter holds its instantaneous value.
func (p *Param) CancelScheduledValues(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	hold := p.valueAt(p.ctx.now())
	kept := p.events[:0]
	for _, e := range p.events {
		if e.time < t {
			kept = append(kept, e)
		}
	}
	p.events = kept
	if len(kept) == 0 {
		p.value = hold
	}
}

// RampFromCurrent drops all automation and ramps linearly from the
// instantaneous value to v over the given seconds, anchored at the current
// context time. It is atomic with respect to rendering.
func (p *Param) RampFromCurrent(v, seconds float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	now := p.ctx.now()
	hold := p.valueAt(now)
	p.events = nil
	p.value = hold
	p.insert(automation{kind: setEvent, time: now, value: hold})
	p.insert(automation{kind: rampEvent, time: now + seconds, value: v})
}

// insert keeps events ordered by time; equal times keep insertion order
func (p *Param) insert(e automation) {
	i := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].time > e.time
	})
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// valueAt evaluates the automation timeline (must hold ctx.mu)
func (p *Param) valueAt(t float64) float64 {
	v := p.value
	prev := 0.0
	for _, e := range p.events {
		if e.time <= t {
			v = e.value
			prev = e.time
			continue
		}
		if e.kind == rampEvent {
			frac := (t - prev) / (e.time - prev)
			return v + (e.value-v)*frac
		}
		break
	}
	return v
}

// compact folds events that are fully in the past into the base value
func (p *Param) compact(t float64) {
	for len(p.events) > 0 && p.events[0].time <= t {
		if len(p.events) > 1 && p.events[1].time > t {
			// still the anchor of a pending ramp or step
			return
		}
		p.value = p.events[0].value
		p.events = p.events[1:]
	}
	if len(p.events) == 0 {
		p.events = nil
	}
}
