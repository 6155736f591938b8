package drape

import (
	"github.com/drapemap/drape/scene"
)

// Phase orders model-loaded observers. Scene normalization must see the
// original materials before any decoration wraps them: a cross-fade
// wrapper registered at PhaseDecorate wraps the replaced unlit material,
// never the raw decoded one. Making the ordering an explicit phase turns a
// fragile registration-order convention into a testable property.
type Phase int

const (
	// PhaseProcess runs first: mesh/material normalization.
	PhaseProcess Phase = iota
	// PhaseDecorate runs after every PhaseProcess observer: fade
	// wrapping, opacity animation and similar decoration.
	PhaseDecorate
)

// Hooks is the priority-ordered observer list for streaming-engine events.
// The engine calls the Emit side on its event-dispatch thread; observers
// are registered up front, before the engine can fire anything.
type Hooks struct {
	tilesetLoaded []func()
	modelLoaded   [2][]func(*scene.Node)
	loadError     []func(url string, err error)
	needsRender   []func()
}

// OnTilesetLoaded registers fn for the tileset-manifest-loaded event.
func (h *Hooks) OnTilesetLoaded(fn func()) {
	h.tilesetLoaded = append(h.tilesetLoaded, fn)
}

// OnModelLoaded registers fn for per-tile model-loaded events in the given
// phase.
func (h *Hooks) OnModelLoaded(p Phase, fn func(*scene.Node)) {
	if p != PhaseProcess && p != PhaseDecorate {
		panic("invalid hook phase")
	}
	h.modelLoaded[p] = append(h.modelLoaded[p], fn)
}

// OnLoadError registers fn for tile load failures.
func (h *Hooks) OnLoadError(fn func(url string, err error)) {
	h.loadError = append(h.loadError, fn)
}

// OnNeedsRender registers fn for the engine's generic repaint request.
func (h *Hooks) OnNeedsRender(fn func()) {
	h.needsRender = append(h.needsRender, fn)
}

// EmitTilesetLoaded fires the tileset-loaded observers.
func (h *Hooks) EmitTilesetLoaded() {
	for _, fn := range h.tilesetLoaded {
		fn()
	}
}

// EmitModelLoaded fires the model-loaded observers, every PhaseProcess
// observer strictly before any PhaseDecorate observer.
func (h *Hooks) EmitModelLoaded(root *scene.Node) {
	for _, fn := range h.modelLoaded[PhaseProcess] {
		fn(root)
	}
	for _, fn := range h.modelLoaded[PhaseDecorate] {
		fn(root)
	}
}

// EmitLoadError fires the load-error observers.
func (h *Hooks) EmitLoadError(url string, err error) {
	for _, fn := range h.loadError {
		fn(url, err)
	}
}

// EmitNeedsRender fires the needs-render observers.
func (h *Hooks) EmitNeedsRender() {
	for _, fn := range h.needsRender {
		fn()
	}
}
