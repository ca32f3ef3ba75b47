// ABOUTME: The listener a context renders spatial audio for
// ABOUTME: Holds position and forward/up orientation
package graph

import "github.com/go-gl/mathgl/mgl64"

// Listener is the point of view used by every panner in a context
type Listener struct {
	ctx      *Context
	position mgl64.Vec3
	forward  mgl64.Vec3
	up       mgl64.Vec3
}

func newListener(ctx *Context) *Listener {
	return &Listener{
		ctx:     ctx,
		forward: mgl64.Vec3{0, 0, -1},
		up:      mgl64.Vec3{0, 1, 0},
	}
}

// SetPosition moves the listener
func (l *Listener) SetPosition(x, y, z float64) {
	l.ctx.mu.Lock()
	defer l.ctx.mu.Unlock()
	l.position = mgl64.Vec3{x, y, z}
}

// Position returns the listener position
func (l *Listener) Position() (x, y, z float64) {
	l.ctx.mu.Lock()
	defer l.ctx.mu.Unlock()
	return l.position.Elem()
}

// SetOrientation sets the forward and up vectors
func (l *Listener) SetOrientation(fx, fy, fz, ux, uy, uz float64) {
	l.ctx.mu.Lock()
	defer l.ctx.mu.Unlock()
	l.forward = mgl64.Vec3{fx, fy, fz}
	l.up = mgl64.Vec3{ux, uy, uz}
}

// Orientation returns the forward and up vectors
func (l *Listener) Orientation() (fx, fy, fz, ux, uy, uz float64) {
	l.ctx.mu.Lock()
	defer l.ctx.mu.Unlock()
	fx, fy, fz = l.forward.Elem()
	ux, uy, uz = l.up.Elem()
	return fx, fy, fz, ux, uy, uz
}
