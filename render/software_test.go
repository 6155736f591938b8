package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"gonum.org/v1/plot/cmpimg"

	"github.com/drapemap/drape/scene"
)

var identityCamera = Camera{
	View:       [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	Projection: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
}

// clipQuad covers most of the viewport at the given NDC depth.
func clipQuad(z float32, mat *scene.Material) *scene.Node {
	g := &scene.Geometry{
		Positions: []float32{
			-0.9, -0.9, z,
			0.9, -0.9, z,
			0.9, 0.9, z,
			-0.9, 0.9, z,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	return &scene.Node{Meshes: []*scene.Mesh{{Geometry: g, Material: mat}}}
}

func pixel(img image.Image, x, y int) (r, g, b uint32) {
	r, g, b, _ = color.RGBAModel.Convert(img.At(x, y)).(color.RGBA).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestSoftwareDrawsUnlitColor(t *testing.T) {
	s := NewSoftware(64, 64)
	s.ClearColor(color.Black)
	s.ClearDepth()

	mat := &scene.Material{Unlit: true, Color: [4]float32{1, 0, 0, 1}, DoubleSided: true, DepthWrite: true}
	if err := s.Render(clipQuad(0, mat), identityCamera); err != nil {
		t.Fatalf("Render: %v", err)
	}

	img := s.Image()
	if r, g, b := pixel(img, 32, 32); r < 200 || g > 50 || b > 50 {
		t.Fatalf("center pixel = %v,%v,%v, want red", r, g, b)
	}
	// The quad stops short of the viewport edge; the corner keeps the
	// background.
	if r, g, b := pixel(img, 0, 0); r > 20 || g > 20 || b > 20 {
		t.Fatalf("corner pixel = %v,%v,%v, want background", r, g, b)
	}
}

func TestSoftwareDepthOcclusion(t *testing.T) {
	s := NewSoftware(32, 32)
	s.ClearColor(color.Black)
	s.ClearDepth()

	near := &scene.Material{Unlit: true, Color: [4]float32{0, 1, 0, 1}, DoubleSided: true, DepthWrite: true}
	far := &scene.Material{Unlit: true, Color: [4]float32{1, 0, 0, 1}, DoubleSided: true, DepthWrite: true}

	// Near drawn first; the far quad must lose the depth test everywhere.
	if err := s.Render(clipQuad(-0.5, near), identityCamera); err != nil {
		t.Fatalf("Render near: %v", err)
	}
	if err := s.Render(clipQuad(0.5, far), identityCamera); err != nil {
		t.Fatalf("Render far: %v", err)
	}
	if r, g, _ := pixel(s.Image(), 16, 16); g < 200 || r > 50 {
		t.Fatalf("center pixel r=%v g=%v, want the near green quad", r, g)
	}

	// Clearing depth forfeits occlusion: the far quad now paints over.
	s.ClearDepth()
	if err := s.Render(clipQuad(0.5, far), identityCamera); err != nil {
		t.Fatalf("Render after depth clear: %v", err)
	}
	if r, g, _ := pixel(s.Image(), 16, 16); r < 200 || g > 50 {
		t.Fatalf("center pixel r=%v g=%v, want red after depth clear", r, g)
	}
}

func TestSoftwareDeterministic(t *testing.T) {
	renderOnce := func() []byte {
		s := NewSoftware(48, 48)
		s.Supersample = 2
		s.ClearColor(color.White)
		s.ClearDepth()
		mat := &scene.Material{Unlit: true, Color: [4]float32{0.2, 0.4, 0.8, 1}, DoubleSided: true, DepthWrite: true}
		if err := s.Render(clipQuad(0, mat), identityCamera); err != nil {
			t.Fatalf("Render: %v", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, s.Image()); err != nil {
			t.Fatalf("png encode: %v", err)
		}
		return buf.Bytes()
	}

	a, b := renderOnce(), renderOnce()
	ok, err := cmpimg.EqualApprox("png", a, b, 0)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !ok {
		t.Fatal("two identical renders differ")
	}
}

func TestSoftwareNilAndEmptyScene(t *testing.T) {
	s := NewSoftware(8, 8)
	if err := s.Render(nil, identityCamera); err != nil {
		t.Fatalf("nil scene: %v", err)
	}
	if err := s.Render(&scene.Node{}, identityCamera); err != nil {
		t.Fatalf("empty scene: %v", err)
	}
	if err := s.Render(&scene.Node{Meshes: []*scene.Mesh{{Geometry: &scene.Geometry{}}}}, identityCamera); err != nil {
		t.Fatalf("empty geometry: %v", err)
	}
}

func TestCameraCombined(t *testing.T) {
	c := Camera{
		View:       [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 3, 4, 5, 1},
		Projection: [16]float64{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1},
	}
	got := c.Combined()
	// Column-major: translation lands in elements 12..14, scaled by the
	// projection.
	if got[12] != 6 || got[13] != 8 || got[14] != 10 {
		t.Fatalf("combined translation = %v,%v,%v, want 6,8,10", got[12], got[13], got[14])
	}
	if got[0] != 2 || got[5] != 2 || got[10] != 2 || got[15] != 1 {
		t.Fatalf("combined diagonal wrong: %v", got)
	}
}
