package drape

import (
	"github.com/drapemap/drape/scene"
)

// Stats are the streaming engine's internal counters. They are read-only
// diagnostics and the liveness input for the repaint loop, not a control
// interface.
type Stats struct {
	Downloading int
	Parsing     int
	Queued      int
	Fading      int
	Loaded      int
	Failed      int
	Visible     int
}

// Busy reports whether asynchronous work is still outstanding: pending
// downloads, parses, queued jobs or active cross-fade transitions.
func (s Stats) Busy() bool {
	return s.Downloading > 0 || s.Parsing > 0 || s.Queued > 0 || s.Fading > 0
}

// Engine is the external tile-streaming engine consumed as a black box: it
// owns tile fetch scheduling, LRU eviction and mesh decode. The layer only
// points a traversal camera at it, advances it once per frame and reacts
// to its events.
//
// The engine dispatches events and owns scene lifecycle on the render
// thread; none of these methods are called concurrently.
type Engine interface {
	// SetTraversalCamera registers the camera driving the engine's
	// screen-space-error traversal. Called once at layer attach.
	SetTraversalCamera(LODCamera)
	// SetVirtualResolution sets the screen resolution the engine uses
	// in its error metric. Refreshed every frame.
	SetVirtualResolution(width, height int)
	// SetHooks installs the event observers. Called once, before any
	// tile can load.
	SetHooks(*Hooks)
	// Update advances queued downloads and parses and fires any due
	// load/error events. Called once per frame.
	Update()
	// Scene returns the engine-owned aggregate scene graph of all
	// currently loaded tiles. May be nil before the tileset manifest
	// has loaded.
	Scene() *scene.Node
	Stats() Stats
	// Dispose releases the engine synchronously. In-flight fetches are
	// the engine's own responsibility to cancel or ignore.
	Dispose()
}

// Capabilities is the capability-negotiation surface for optional engine
// traversal parameters. Each field is applied only when non-nil and only
// if the engine supports it, replacing speculative feature probing on
// engine internals.
type Capabilities struct {
	// RefineThreshold is the screen-space-error value below which the
	// engine stops refining. 0 loads every tile whose geometric error
	// is nonzero, streaming the hierarchy to true leaves.
	RefineThreshold *float64
	// KeepParentVisible keeps a parent tile drawn until all its
	// children are ready, avoiding holes during refinement.
	KeepParentVisible *bool
	// SiblingAtomicity swaps sibling groups atomically so REPLACE
	// refinement never shows a half-refined quad.
	SiblingAtomicity *bool
	// OptimizedTraversal toggles the engine's optimized traversal
	// strategy over the exhaustive one.
	OptimizedTraversal *bool
}

// CapableEngine is implemented by engines that accept traversal-parameter
// negotiation.
type CapableEngine interface {
	Engine
	Apply(Capabilities)
}

// Ptr returns a pointer to v, for filling Capabilities fields inline.
func Ptr[T any](v T) *T { return &v }
