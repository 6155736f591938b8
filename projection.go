package drape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/drapemap/drape/geo"
	"github.com/drapemap/drape/internal/d3"
)

// NadirProjection builds a combined view-projection matrix in the host
// convention: input XY in world-size-scaled Mercator units, input Z in
// metres, output clip space. It models a map camera looking straight down
// at the view center from the given height. Real hosts supply their own
// combined matrix; this one exists for tests, examples and host-less
// previews.
func NadirProjection(lngDeg, latDeg, worldSize, heightMetres float64, width, height int) [16]float64 {
	s := worldSize / (geo.EarthCircumference * math.Cos(latDeg*math.Pi/180))
	cx := geo.MercatorX(lngDeg) * worldSize
	cy := geo.MercatorY(latDeg) * worldSize
	hu := heightMetres * s

	aspect := float64(width) / float64(height)
	p := perspective(60, aspect, hu/100, hu*100)
	// Flip Y so north points up on screen, scale Z from metres to
	// Mercator units, then back the camera off along +Z.
	view := d3.Translate3d(r3.Vec{Z: -hu}).
		Mul(d3.Scale3d(r3.Vec{X: 1, Y: -1, Z: s})).
		Mul(d3.Translate3d(r3.Vec{X: -cx, Y: -cy}))
	return p.Mul(view).ColMajor()
}

// perspective returns a GL-convention perspective projection.
func perspective(fovYDeg, aspect, near, far float64) d3.Transform {
	f := 1 / math.Tan(fovYDeg*math.Pi/360)
	return d3.NewTransform([]float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	})
}
