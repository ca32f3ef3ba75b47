// ABOUTME: Shared node plumbing for the audio graph
// ABOUTME: Handles connections and per-quantum pull rendering
package graph

// QuantumFrames is the number of frames rendered per processing block
const QuantumFrames = 128

// channels is the width of every bus in the graph
const channels = 2

// quantum describes one processing block
type quantum struct {
	seq    uint64
	frame  int64 // index of the first frame in the block
	frames int
}

// Node is a vertex in the audio graph
type Node interface {
	base() *node
}

// node holds connection state and render buffers. Every field is guarded by
// the owning context's mutex.
type node struct {
	ctx     *Context
	inputs  []*node
	outputs []*node
	process func(q *quantum, in, out []float32)
	in      []float32
	out     []float32
	seq     uint64
}

func (n *node) init(ctx *Context, process func(q *quantum, in, out []float32)) {
	n.ctx = ctx
	n.process = process
	n.in = make([]float32, QuantumFrames*channels)
	n.out = make([]float32, QuantumFrames*channels)
}

func (n *node) base() *node {
	return n
}

// Connect routes this node's output into dst. Connecting twice is a no-op.
func (n *node) Connect(dst Node) {
	d := dst.base()

	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, o := range n.outputs {
		if o == d {
			return
		}
	}
	n.outputs = append(n.outputs, d)
	d.inputs = append(d.inputs, n)
}

// Disconnect removes every outgoing connection
func (n *node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, o := range n.outputs {
		o.inputs = removeNode(o.inputs, n)
	}
	n.outputs = nil
}

// pull renders the node for q, summing all inputs first. The result is
// memoised so a node feeding several outputs is processed once per block.
func (n *node) pull(q *quantum) []float32 {
	samples := q.frames * channels
	out := n.out[:samples]
	if n.seq == q.seq {
		return out
	}
	n.seq = q.seq

	in := n.in[:samples]
	clear(in)
	for _, src := range n.inputs {
		for i, v := range src.pull(q) {
			in[i] += v
		}
	}

	clear(out)
	n.process(q, in, out)
	return out
}

func removeNode(list []*node, target *node) []*node {
	kept := list[:0]
	for _, n := range list {
		if n != target {
			kept = append(kept, n)
		}
	}
	return kept
}
