// Package render defines the contracts between the drape layer and the 3D
// renderer it drives: the precision-split camera handed to the renderer
// each frame, and the borrowed-GPU-state restore contract around the draw
// call. It also ships a software reference renderer used by tests and by
// the preview example.
package render

import (
	"github.com/drapemap/drape/internal/d3"
	"github.com/drapemap/drape/scene"
)

// Camera is the precision-split render camera: a camera-relative model/view
// matrix and an adjusted projection matrix whose product equals the naive
// combined host-projection x ECEF-to-Mercator matrix. Both are column-major
// in WebGL convention.
type Camera struct {
	View       [16]float64
	Projection [16]float64
}

// Combined multiplies Projection x View in double precision. Reference
// implementations and tests use it; a GPU renderer must keep the matrices
// separate, that is the whole point of the split.
func (c Camera) Combined() [16]float64 {
	p := d3.NewTransformColMajor(c.Projection)
	v := d3.NewTransformColMajor(c.View)
	return p.Mul(v).ColMajor()
}

// Renderer draws a tile scene graph with the given camera. Implementations
// are the external renderer collaborators; errors are contained by the
// layer, a failed frame never propagates to the host.
type Renderer interface {
	Render(root *scene.Node, cam Camera) error
}

// StateGuard restores a snapshot of mutable GPU state. Restore must be safe
// to call exactly once on every exit path of a draw.
type StateGuard interface {
	Restore()
}

// Context is the borrowed graphics context shared with the host renderer.
// The layer never assumes ownership beyond one draw call: it snapshots
// state with Save, clears only the depth buffer, draws and restores.
type Context interface {
	// Save snapshots every piece of global state the layer's draw may
	// mutate and returns the guard that puts it back.
	Save() StateGuard
	// ClearDepth clears the depth buffer only. The host's raster and
	// vector content in the color buffer must remain visible underneath.
	ClearDepth()
}

// NopContext is a Context for hosts with no shared GPU state, such as the
// software renderer. Save and ClearDepth do nothing.
type NopContext struct{}

type nopGuard struct{}

func (nopGuard) Restore() {}

func (NopContext) Save() StateGuard { return nopGuard{} }

func (NopContext) ClearDepth() {}
