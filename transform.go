package drape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/drapemap/drape/geo"
	"github.com/drapemap/drape/internal/d3"
)

// Anchor is the fixed tangent point defining the local East-North-Up frame
// for a dataset. It is immutable for the lifetime of a layer.
type Anchor struct {
	// Lng and Lat are the tangent longitude/latitude in degrees.
	Lng, Lat float64
	// AltitudeOffset shifts the dataset vertically, in metres.
	AltitudeOffset float64
}

// DefaultTileSpan is the pixel span of one map tile, the factor relating
// zoom level to world size on 512px-tile hosts.
const DefaultTileSpan = 512

// WorldSize returns the pixel span of the whole projected map at a zoom
// level: tileSpan x 2^zoom. It is derived state, recomputed every frame
// from the host's current zoom.
func WorldSize(tileSpan, zoom float64) float64 {
	return tileSpan * math.Exp2(zoom)
}

// EcefToMercator builds the affine transform from ECEF coordinates into
// world-size-scaled Web Mercator space tangent at the anchor.
//
// The East and North rows carry the conformal horizontal scale
// worldSize/(C·cosφ); Mercator is conformal so the stretch is isotropic at
// a point. The North row is negated because Mercator Y grows southward.
// The Up row is unit: the output Z channel is raw metres, independent of
// worldSize. The host projection applies its own metres-to-world scale to
// Z, so scaling here too would make vertical exaggeration quadratic in
// zoom.
//
// The translation is solved so the anchor's own ECEF position lands
// exactly on (MercatorX·worldSize, MercatorY·worldSize, AltitudeOffset).
//
// An anchor latitude of ±90° is a pole singularity and out of scope;
// photogrammetry tilesets are never polar.
func EcefToMercator(a Anchor, worldSize float64) d3.Transform {
	east, north, up := geo.ENUBasis(a.Lng, a.Lat)
	sH := worldSize / (geo.EarthCircumference * math.Cos(a.Lat*math.Pi/180))
	p0 := geo.ToECEF(a.Lng, a.Lat, 0)

	tx := geo.MercatorX(a.Lng)*worldSize - sH*r3.Dot(east, p0)
	ty := geo.MercatorY(a.Lat)*worldSize + sH*r3.Dot(north, p0)
	tz := a.AltitudeOffset - r3.Dot(up, p0)

	return d3.NewTransform([]float64{
		sH * east.X, sH * east.Y, sH * east.Z, tx,
		-sH * north.X, -sH * north.Y, -sH * north.Z, ty,
		up.X, up.Y, up.Z, tz,
		0, 0, 0, 1,
	})
}
