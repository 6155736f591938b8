package drape

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/drapemap/drape/geo"
	"github.com/drapemap/drape/internal/d3"
	"github.com/drapemap/drape/render"
)

// SplitCamera builds the precision-split render camera from the host's
// combined projection matrix, the current ECEF-to-Mercator transform and
// the view-center Mercator position in world-size-scaled units.
//
// GPU vertex transforms run in single precision. ECEF coordinates are
// ~1e6–1e7 m and Mercator world space at high zoom is ~1e7–1e8 units; a
// single combined matrix forces the GPU through large multiply-subtract
// chains that lose decimetre detail to rounding. The split keeps the
// identity
//
//	adjustedProjection × relativeModel == hostProjection × ecefToMercator
//
// exact in double precision while confining every large-magnitude
// subtraction to the CPU: the relative model matrix maps ECEF to
// camera-relative Mercator space (small values), and re-injecting the
// camera offset into the projection cancels algebraically.
func SplitCamera(hostProjection, ecefToMercator d3.Transform, camMercX, camMercY float64) render.Camera {
	relative := ecefToMercator.Translate(r3.Vec{X: -camMercX, Y: -camMercY})
	adjusted := hostProjection.Mul(d3.Translate3d(r3.Vec{X: camMercX, Y: camMercY}))
	return render.Camera{
		View:       relative.ColMajor(),
		Projection: adjusted.ColMajor(),
	}
}

// ViewCenterMercator returns the world-size-scaled Mercator position of a
// geographic view center, computed in double precision on the host side.
func ViewCenterMercator(lngDeg, latDeg, worldSize float64) (x, y float64) {
	return geo.MercatorX(lngDeg) * worldSize, geo.MercatorY(latDeg) * worldSize
}
