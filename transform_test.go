package drape

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/drapemap/drape/geo"
)

var testAnchors = []Anchor{
	{Lng: 119.41, Lat: -5.14},
	{Lng: -73.99, Lat: 40.71, AltitudeOffset: 12},
	{Lng: 9.19, Lat: 45.46, AltitudeOffset: -30},
	{Lng: 151.2, Lat: -33.87},
	{Lng: 0.1, Lat: 0.1},
	{Lng: 18.07, Lat: 59.33},
}

func TestWorldSize(t *testing.T) {
	if ws := WorldSize(512, 16); ws != 33554432 {
		t.Fatalf("WorldSize(512,16) = %v, want 33554432", ws)
	}
	if ws := WorldSize(512, 20); ws != 536870912 {
		t.Fatalf("WorldSize(512,20) = %v, want 536870912", ws)
	}
}

// The defining correctness property: the anchor's own ECEF position maps
// exactly onto its scaled Mercator position at the configured altitude
// offset.
func TestAnchorInvariance(t *testing.T) {
	for _, a := range testAnchors {
		for zoom := 10.0; zoom <= 22; zoom++ {
			ws := WorldSize(DefaultTileSpan, zoom)
			m := EcefToMercator(a, ws)
			got := m.Transform(geo.ToECEF(a.Lng, a.Lat, 0))
			want := r3.Vec{
				X: geo.MercatorX(a.Lng) * ws,
				Y: geo.MercatorY(a.Lat) * ws,
				Z: a.AltitudeOffset,
			}
			if math.Abs(got.X-want.X) > 0.01 || math.Abs(got.Y-want.Y) > 0.01 || math.Abs(got.Z-want.Z) > 0.01 {
				t.Fatalf("anchor %+v z%v: got %v want %v", a, zoom, got, want)
			}
		}
	}
}

// The Z channel carries raw metres: a 100m altitude delta produces a
// Z delta of 100 at any zoom, and identical Z deltas across zooms. This is
// the regression test for the vertical scale being independent of world
// size; scaling Z by world size too makes vertical exaggeration quadratic
// in zoom.
func TestVerticalLinearityAndZoomInvariance(t *testing.T) {
	for _, a := range testAnchors {
		p0 := geo.ToECEF(a.Lng, a.Lat, 0)
		p100 := geo.ToECEF(a.Lng, a.Lat, 100)
		var deltas []float64
		for _, zoom := range []float64{12, 16, 20} {
			ws := WorldSize(DefaultTileSpan, zoom)
			m := EcefToMercator(a, ws)
			dz := m.Transform(p100).Z - m.Transform(p0).Z
			if math.Abs(dz-100) > 0.5 {
				t.Fatalf("anchor %+v z%v: dZ = %v, want 100±0.5", a, zoom, dz)
			}
			deltas = append(deltas, dz)
		}
		for _, dz := range deltas[1:] {
			if math.Abs(dz-deltas[0]) > 0.01 {
				t.Fatalf("anchor %+v: dZ varies with zoom: %v", a, deltas)
			}
		}
	}
}

// Mercator is conformal: horizontal stretch at a point is isotropic, so
// equal metric displacements east and north must produce equal transformed
// displacements.
func TestHorizontalConformality(t *testing.T) {
	const ws = 512 * (1 << 16)
	for _, a := range testAnchors {
		east, north, _ := geo.ENUBasis(a.Lng, a.Lat)
		p0 := geo.ToECEF(a.Lng, a.Lat, 0)
		m := EcefToMercator(a, ws)

		o := m.Transform(p0)
		de := m.Transform(r3.Add(p0, r3.Scale(100, east)))
		dn := m.Transform(r3.Add(p0, r3.Scale(100, north)))
		lenE := math.Hypot(de.X-o.X, de.Y-o.Y)
		lenN := math.Hypot(dn.X-o.X, dn.Y-o.Y)
		if ratio := lenE / lenN; math.Abs(ratio-1) > 0.01 {
			t.Errorf("anchor %+v: east/north displacement ratio %v", a, ratio)
		}
		// East displacement stays east: +X, no Y drift beyond curvature.
		if de.X-o.X <= 0 {
			t.Errorf("anchor %+v: eastward point moved -X", a)
		}
		// North displacement decreases Mercator Y.
		if dn.Y-o.Y >= 0 {
			t.Errorf("anchor %+v: northward point moved +Y (Mercator Y grows south)", a)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	a := Anchor{Lng: 119.41, Lat: -5.14}
	p0 := geo.ToECEF(a.Lng, a.Lat, 0)
	p100 := geo.ToECEF(a.Lng, a.Lat, 100)

	const ws16 = 33554432
	m := EcefToMercator(a, ws16)
	got := m.Transform(p0)
	if want := 0.8317 * ws16; math.Abs(got.X-want) > 0.001*ws16 {
		t.Errorf("z16 X = %v, want ≈ %v", got.X, want)
	}
	if want := geo.MercatorY(a.Lat) * ws16; math.Abs(got.Y-want) > 0.01 {
		t.Errorf("z16 Y = %v, want %v", got.Y, want)
	}
	if math.Abs(got.Z) > 0.01 {
		t.Errorf("z16 Z = %v, want 0", got.Z)
	}

	const ws20 = 536870912
	m20 := EcefToMercator(a, ws20)
	if z := m20.Transform(p0).Z; math.Abs(z) > 0.01 {
		t.Errorf("z20 Z = %v, want 0", z)
	}
	if dz := m20.Transform(p100).Z - m20.Transform(p0).Z; math.Abs(dz-100) > 0.5 {
		t.Errorf("z20 dZ = %v, want 100", dz)
	}
}
