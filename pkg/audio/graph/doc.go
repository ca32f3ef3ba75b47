// ABOUTME: Software audio graph rendering spatialized sources
// ABOUTME: Provides context, gain, panner, listener and buffer source nodes
// Package graph is a small software audio graph.
//
// It models the handful of node types a 3D sound manager needs:
//   - Context: sample clock, destination bus, listener, render loop
//   - Param: automatable value with set and linear ramp events
//   - GainNode: multiplies its input by an automatable gain
//   - Panner: positions a mono-summed input relative to the listener
//   - BufferSource: plays a decoded audio.Buffer once or looping
//
// The graph renders interleaved stereo float32. Output devices pull from
// Context.Read; tests and offline users call Context.Render directly.
//
// Example:
//
//	ctx := graph.NewContext(48000)
//	master := ctx.CreateGain()
//	master.Connect(ctx.Destination())
//
//	src := ctx.CreateBufferSource(buf)
//	pan := ctx.CreatePanner()
//	pan.SetPosition(2, 0, -1)
//	src.Connect(pan)
//	pan.Connect(master)
//	src.Start()
//
//	out := make([]float32, 2*512)
//	ctx.Render(out)
package graph
