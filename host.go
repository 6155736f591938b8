package drape

// Host is the 2D map renderer the layer drapes tiles onto. The layer reads
// its camera state every frame and never caches it across frames: a zoom
// change between frames must be reflected in the very next transform
// rebuild.
type Host interface {
	// Zoom returns the current map zoom level, fractional.
	Zoom() float64
	// Center returns the current geographic view center in degrees.
	Center() (lng, lat float64)
	// ProjectionMatrix returns the host's combined view-projection
	// matrix mapping world-size-scaled Mercator (XY) and metres (Z) to
	// clip space, column-major.
	ProjectionMatrix() [16]float64
	// CanvasSize returns the drawing surface size in pixels.
	CanvasSize() (width, height int)
	// TriggerRepaint asks the host to schedule another frame. The
	// repaint loop may call it from a timer goroutine; hosts hand it
	// off to their own render thread.
	TriggerRepaint()
}
