// ABOUTME: Tests for automatable parameters
// ABOUTME: Verifies steps, ramps, cancellation and compaction
package graph

import (
	"math"
	"testing"
)

func render(ctx *Context, frames int) []float32 {
	out := make([]float32, frames*channels)
	ctx.Render(out)
	return out
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestParamDefaultValue(t *testing.T) {
	ctx := NewContext(1000)
	g := ctx.CreateGain()

	if v := g.Gain().Value(); v != 1 {
		t.Errorf("expected unity gain, got %f", v)
	}

	g.Gain().SetValue(0.25)
	if v := g.Gain().Value(); v != 0.25 {
		t.Errorf("expected 0.25, got %f", v)
	}
}

func TestParamLinearRamp(t *testing.T) {
	ctx := NewContext(1000)
	g := ctx.CreateGain()
	g.Connect(ctx.Destination())

	p := g.Gain()
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 1)

	render(ctx, 500)
	if v := p.Value(); !approx(v, 0.5, 1e-9) {
		t.Errorf("expected 0.5 halfway through ramp, got %f", v)
	}

	render(ctx, 600)
	if v := p.Value(); v != 1 {
		t.Errorf("expected ramp to finish at 1, got %f", v)
	}
	if len(p.events) != 0 {
		t.Errorf("expected past events to be compacted, have %d", len(p.events))
	}
}

func TestParamRampWithoutPriorEventStartsNow(t *testing.T) {
	ctx := NewContext(1000)
	p := ctx.CreateGain().Gain()

	render(ctx, 1000)
	p.LinearRampToValueAtTime(0, 2)

	if v := p.Value(); v != 1 {
		t.Errorf("expected ramp to start from current value, got %f", v)
	}
	render(ctx, 500)
	if v := p.Value(); !approx(v, 0.5, 1e-9) {
		t.Errorf("expected 0.5, got %f", v)
	}
}

func TestParamCancelHoldsCurrentValue(t *testing.T) {
	ctx := NewContext(1000)
	p := ctx.CreateGain().Gain()

	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 1)
	render(ctx, 250)

	p.CancelScheduledValues(0)
	if v := p.Value(); !approx(v, 0.25, 1e-9) {
		t.Errorf("expected value to hold at 0.25, got %f", v)
	}

	render(ctx, 500)
	if v := p.Value(); !approx(v, 0.25, 1e-9) {
		t.Errorf("expected held value to stay at 0.25, got %f", v)
	}
}

func TestParamCancelKeepsEarlierEvents(t *testing.T) {
	ctx := NewContext(1000)
	p := ctx.CreateGain().Gain()

	p.SetValueAtTime(0.5, 0)
	p.SetValueAtTime(0.75, 2)
	p.CancelScheduledValues(1)

	if len(p.events) != 1 {
		t.Fatalf("expected one remaining event, got %d", len(p.events))
	}
	render(ctx, 3000)
	if v := p.Value(); v != 0.5 {
		t.Errorf("expected 0.5 after cancelled step, got %f", v)
	}
}

func TestParamRampFromCurrent(t *testing.T) {
	ctx := NewContext(1000)
	g := ctx.CreateGain()
	g.Connect(ctx.Destination())

	p := g.Gain()
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 1)
	render(ctx, 250)

	// interrupt a ramp in flight: the new one starts from 0.25 now
	p.RampFromCurrent(0, 0.25)
	if v := p.Value(); !approx(v, 0.25, 1e-9) {
		t.Errorf("expected ramp to start at 0.25, got %f", v)
	}
	if len(p.events) != 2 || p.events[0].time != 0.25 || p.events[1].time != 0.5 {
		t.Errorf("expected ramp anchored at the current time, got %+v", p.events)
	}

	render(ctx, 125)
	if v := p.Value(); !approx(v, 0.125, 1e-9) {
		t.Errorf("expected 0.125 halfway, got %f", v)
	}

	render(ctx, 200)
	if v := p.Value(); v != 0 {
		t.Errorf("expected ramp to finish at 0, got %f", v)
	}
}

func TestParamFutureStep(t *testing.T) {
	ctx := NewContext(1000)
	p := ctx.CreateGain().Gain()

	p.SetValueAtTime(0.1, 0.5)
	if v := p.Value(); v != 1 {
		t.Errorf("expected step not applied yet, got %f", v)
	}
	render(ctx, 500)
	if v := p.Value(); v != 0.1 {
		t.Errorf("expected step applied, got %f", v)
	}
}
