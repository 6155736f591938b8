// Package geo implements the geodetic conversions shared by every part of
// the drape module: WGS84 geodetic to ECEF, normalized Web Mercator, and
// the local East-North-Up tangent basis at a geodetic point.
//
// Every caller that needs an ECEF or Mercator coordinate goes through this
// package. The tile source data is calibrated against these exact ellipsoid
// constants, so they must not be replaced with rounded variants.
package geo

import (
	"math"

	"github.com/paulmach/orb/maptile"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// SemiMajorAxis is the WGS84 ellipsoid semi-major axis in metres.
	SemiMajorAxis = 6378137.0
	// Eccentricity2 is the WGS84 first eccentricity squared.
	Eccentricity2 = 0.00669437999014
	// EarthCircumference is the equatorial circumference of the
	// WGS84 ellipsoid in metres.
	EarthCircumference = 2 * math.Pi * SemiMajorAxis

	// MaxLatitude is the latitude bound of the Web Mercator projection,
	// arctan(sinh(pi)) in degrees.
	MaxLatitude = 85.0511

	deg2rad = math.Pi / 180
)

// ToECEF converts geodetic longitude/latitude (degrees) and altitude above
// the ellipsoid (metres) to Earth-Centered-Earth-Fixed coordinates (metres).
func ToECEF(lngDeg, latDeg, alt float64) r3.Vec {
	lng := lngDeg * deg2rad
	lat := latDeg * deg2rad
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	// Prime vertical radius of curvature.
	n := SemiMajorAxis / math.Sqrt(1-Eccentricity2*sinLat*sinLat)
	return r3.Vec{
		X: (n + alt) * cosLat * math.Cos(lng),
		Y: (n + alt) * cosLat * math.Sin(lng),
		Z: (n*(1-Eccentricity2) + alt) * sinLat,
	}
}

// MercatorX returns the normalized [0,1] Web Mercator X for a longitude in
// degrees, before world-size scaling.
func MercatorX(lngDeg float64) float64 {
	return (lngDeg + 180) / 360
}

// MercatorY returns the normalized [0,1] Web Mercator Y for a latitude in
// degrees, before world-size scaling. Y grows southward.
func MercatorY(latDeg float64) float64 {
	return (1 - math.Log(math.Tan(math.Pi/4+latDeg*math.Pi/360))/math.Pi) / 2
}

// MercatorScale returns the conformal Mercator scale factor at a latitude
// in degrees: the horizontal stretch of the projection relative to the
// equator, 1/cos(lat).
func MercatorScale(latDeg float64) float64 {
	return 1 / math.Cos(latDeg*deg2rad)
}

// ENUBasis returns the East, North and Up unit basis vectors of the local
// tangent plane at a geodetic point. East carries no vertical component;
// North and Up span the meridian plane.
func ENUBasis(lngDeg, latDeg float64) (east, north, up r3.Vec) {
	lng := lngDeg * deg2rad
	lat := latDeg * deg2rad
	sinLng, cosLng := math.Sincos(lng)
	sinLat, cosLat := math.Sincos(lat)
	east = r3.Vec{X: -sinLng, Y: cosLng}
	north = r3.Vec{X: -sinLat * cosLng, Y: -sinLat * sinLng, Z: cosLat}
	up = r3.Vec{X: cosLat * cosLng, Y: cosLat * sinLng, Z: sinLat}
	return east, north, up
}

// Tile returns the slippy-map tile containing the point at the given zoom.
// Used for attach-time diagnostics, not for any transform math.
func Tile(lngDeg, latDeg float64, zoom maptile.Zoom) maptile.Tile {
	return maptile.At([2]float64{lngDeg, latDeg}, zoom)
}
