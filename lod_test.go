package drape

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/drapemap/drape/geo"
)

func TestNewLODCameraGeometry(t *testing.T) {
	a := Anchor{Lng: 119.41, Lat: -5.14}
	cam := NewLODCamera(a, LODConfig{})

	if h := cam.Height(); math.Abs(h-500) > 1e-6 {
		t.Fatalf("Height() = %v, want 500", h)
	}
	if cam.FOVDegrees != 90 {
		t.Fatalf("FOVDegrees = %v, want 90", cam.FOVDegrees)
	}

	// Nadir look: the view direction is the negated local up.
	_, north, up := geo.ENUBasis(a.Lng, a.Lat)
	dir := r3.Unit(r3.Sub(cam.Target, cam.Position))
	if d := r3.Dot(dir, up); math.Abs(d+1) > 1e-9 {
		t.Errorf("view direction dot up = %v, want -1", d)
	}
	if d := r3.Dot(cam.Up, north); math.Abs(d-1) > 1e-9 {
		t.Errorf("camera up dot north = %v, want 1", d)
	}

	custom := NewLODCamera(a, LODConfig{Height: 1200, FOVDegrees: 60, MaxDepth: 18})
	if h := custom.Height(); math.Abs(h-1200) > 1e-6 {
		t.Errorf("custom Height() = %v, want 1200", h)
	}
	if custom.MaxDepth != 18 {
		t.Errorf("MaxDepth = %v, want 18", custom.MaxDepth)
	}
}

func TestVirtualResolution(t *testing.T) {
	cam := NewLODCamera(Anchor{}, LODConfig{})
	if w, h := cam.VirtualResolution(1280, 720); w != 5120 || h != 2880 {
		t.Fatalf("VirtualResolution(1280,720) = %v,%v, want 5120,2880", w, h)
	}
	doubled := NewLODCamera(Anchor{}, LODConfig{ResolutionMultiplier: 2})
	if w, h := doubled.VirtualResolution(100, 50); w != 200 || h != 100 {
		t.Fatalf("VirtualResolution(100,50) = %v,%v, want 200,100", w, h)
	}
	// Zero-value camera never divides the canvas away.
	var zero LODCamera
	if w, h := zero.VirtualResolution(64, 64); w != 64 || h != 64 {
		t.Fatalf("zero camera VirtualResolution = %v,%v, want 64,64", w, h)
	}
}

// With the fixed camera, the inflated resolution and a refine threshold of
// zero, every tile with any geometric error refines: the metric saturates
// above the threshold down to millimetre-scale errors.
func TestScreenSpaceErrorDrivesLeafRefinement(t *testing.T) {
	cam := NewLODCamera(Anchor{Lng: 9.19, Lat: 45.46}, LODConfig{})
	_, screenH := cam.VirtualResolution(1280, 720)

	for _, geomErr := range []float64{64, 4, 0.25, 0.001} {
		sse := ScreenSpaceError(geomErr, cam.Height(), cam.FOVDegrees, screenH)
		if sse <= 0 {
			t.Errorf("geomErr %v: sse = %v, want > 0 so a zero threshold refines", geomErr, sse)
		}
	}

	// Zero geometric error never refines regardless of threshold.
	if sse := ScreenSpaceError(0, cam.Height(), cam.FOVDegrees, screenH); sse != 0 {
		t.Errorf("zero geometric error: sse = %v, want 0", sse)
	}
	// Degenerate distance saturates rather than dividing by zero.
	if sse := ScreenSpaceError(1, 0, cam.FOVDegrees, screenH); !math.IsInf(sse, 1) {
		t.Errorf("zero distance: sse = %v, want +Inf", sse)
	}
}

func TestScreenSpaceErrorScaling(t *testing.T) {
	base := ScreenSpaceError(8, 500, 90, 720)
	// fov 90: sse = geomErr*screenH/(2*dist).
	if want := 8 * 720 / (2.0 * 500); math.Abs(base-want) > 1e-9 {
		t.Fatalf("sse = %v, want %v", base, want)
	}
	if far := ScreenSpaceError(8, 1000, 90, 720); math.Abs(far-base/2) > 1e-9 {
		t.Errorf("doubling distance: sse %v, want %v", far, base/2)
	}
	if bigger := ScreenSpaceError(8, 500, 90, 2880); math.Abs(bigger-4*base) > 1e-9 {
		t.Errorf("4x screen height: sse %v, want %v", bigger, 4*base)
	}
}
