// ABOUTME: Gain node
// ABOUTME: Scales its input by an automatable gain parameter
package graph

// GainNode multiplies its input by Gain
type GainNode struct {
	node
	gain *Param
}

func newGainNode(ctx *Context) *GainNode {
	g := &GainNode{gain: newParam(ctx, 1.0)}
	g.init(ctx, g.process)
	return g
}

// Gain returns the gain parameter
func (g *GainNode) Gain() *Param {
	return g.gain
}

func (g *GainNode) process(q *quantum, in, out []float32) {
	rate := float64(g.ctx.sampleRate)
	start := float64(q.frame) / rate

	if len(g.gain.events) == 0 {
		v := float32(g.gain.value)
		for i := range in {
			out[i] = in[i] * v
		}
		return
	}

	for i := 0; i < q.frames; i++ {
		v := float32(g.gain.valueAt(start + float64(i)/rate))
		out[i*channels] = in[i*channels] * v
		out[i*channels+1] = in[i*channels+1] * v
	}
	g.gain.compact(float64(q.frame+int64(q.frames)) / rate)
}
