package drape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/drapemap/drape/geo"
)

// LODConfig are the policy knobs of the decoupled traversal camera. City
// scale tilesets should raise Height and cap MaxDepth to bound memory and
// bandwidth; the defaults assume a single building-scale block where
// exhaustive loading is acceptable.
type LODConfig struct {
	// Height is the fixed camera height above the anchor in metres.
	// Higher is less aggressive. Default 500.
	Height float64
	// FOVDegrees is the vertical field of view, sized to keep the whole
	// tileset bounding volume in frustum at Height. Default 90.
	FOVDegrees float64
	// ResolutionMultiplier inflates the virtual screen resolution
	// reported to the engine, shrinking its effective screen-space
	// error denominator. Default 4.
	ResolutionMultiplier int
	// MaxDepth caps traversal depth. 0 means uncapped.
	MaxDepth int
}

func (c LODConfig) withDefaults() LODConfig {
	if c.Height == 0 {
		c.Height = 500
	}
	if c.FOVDegrees == 0 {
		c.FOVDegrees = 90
	}
	if c.ResolutionMultiplier == 0 {
		c.ResolutionMultiplier = 4
	}
	return c
}

// LODCamera is the synthetic camera registered with the streaming engine
// purely to drive its screen-space-error traversal. It is created once at
// layer attach and never moves; it is not a visual camera. Keeping it
// fixed above the anchor makes the engine's error metric independent of
// the real map camera, so the full hierarchy streams to leaf detail even
// when the map is zoomed far out.
type LODCamera struct {
	// Position is the fixed ECEF point Height metres above the anchor.
	Position r3.Vec
	// Target is the anchor's ECEF position; the camera looks straight
	// down at it.
	Target r3.Vec
	// Up is the local North direction, the view-up for a nadir look.
	Up         r3.Vec
	FOVDegrees float64
	MaxDepth   int

	multiplier int
}

// NewLODCamera builds the traversal camera for an anchor.
func NewLODCamera(a Anchor, cfg LODConfig) LODCamera {
	cfg = cfg.withDefaults()
	_, north, up := geo.ENUBasis(a.Lng, a.Lat)
	target := geo.ToECEF(a.Lng, a.Lat, 0)
	return LODCamera{
		Position:   r3.Add(target, r3.Scale(cfg.Height, up)),
		Target:     target,
		Up:         north,
		FOVDegrees: cfg.FOVDegrees,
		MaxDepth:   cfg.MaxDepth,
		multiplier: cfg.ResolutionMultiplier,
	}
}

// Height returns the camera's distance to its target in metres.
func (c LODCamera) Height() float64 {
	return r3.Norm(r3.Sub(c.Position, c.Target))
}

// VirtualResolution inflates the host canvas size by the configured
// multiplier. Refreshed every frame so window resizes are tracked.
func (c LODCamera) VirtualResolution(width, height int) (int, int) {
	m := c.multiplier
	if m < 1 {
		m = 1
	}
	return width * m, height * m
}

// ScreenSpaceError computes the engine's screen-space-error metric for a
// tile: the on-screen pixel error of drawing a tile with the given
// geometric error at the given distance, on a screen of the given height
// with the given vertical field of view. Traversal refines children while
// this exceeds the refine threshold.
func ScreenSpaceError(geometricError, distance, fovYDegrees float64, screenHeightPx int) float64 {
	if geometricError <= 0 {
		return 0
	}
	if distance <= 0 {
		return math.Inf(1)
	}
	denom := 2 * math.Tan(fovYDegrees*math.Pi/360)
	return geometricError * float64(screenHeightPx) / (distance * denom)
}
