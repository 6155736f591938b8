package render

import (
	"image"
	"image/color"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"

	"github.com/drapemap/drape/scene"
)

// Software is a reference Renderer backed by the fauxgl software
// rasterizer. It exists for tests and offline previews: it honors the unlit
// material contract (base color, front-face culling, depth writes) without
// needing a GPU. It also implements Context so it can stand in for the
// borrowed graphics context in a host-less setup.
type Software struct {
	width, height int
	// Supersample renders at a multiple of the output size and
	// downsamples for antialiasing. 1 disables it.
	Supersample int
	ctx         *fauxgl.Context
}

// NewSoftware returns a software renderer producing width x height images.
func NewSoftware(width, height int) *Software {
	if width <= 0 || height <= 0 {
		panic("software renderer needs positive dimensions")
	}
	return &Software{
		width:       width,
		height:      height,
		Supersample: 1,
	}
}

// context returns the rasterizer sized for the current supersample factor,
// reallocating when the factor changed since the last call.
func (s *Software) context() *fauxgl.Context {
	ss := s.Supersample
	if ss < 1 {
		ss = 1
	}
	if s.ctx == nil || s.ctx.Width != s.width*ss {
		s.ctx = fauxgl.NewContext(s.width*ss, s.height*ss)
	}
	return s.ctx
}

// ClearColor fills the color buffer. Tests use a background fill where a
// map host would already have drawn its raster content.
func (s *Software) ClearColor(c color.Color) {
	s.context().ClearColorBufferWith(fauxgl.MakeColor(c))
}

// ClearDepth clears only the depth buffer, implementing Context.
func (s *Software) ClearDepth() {
	s.context().ClearDepthBuffer()
}

// Save implements Context. The software rasterizer shares no global state
// with a host, so the guard is a no-op.
func (s *Software) Save() StateGuard { return nopGuard{} }

// Render draws the scene graph with the split camera. The two matrices are
// recombined in double precision here; a GPU implementation must not do
// that, but the software path runs entirely in float64 so the naive product
// is exact.
func (s *Software) Render(root *scene.Node, cam Camera) error {
	if root == nil {
		return nil
	}
	s.context()
	m := matrixFromColMajor(cam.Combined())
	root.Walk(func(n *scene.Node) {
		for _, mesh := range n.Meshes {
			s.drawMesh(mesh, m)
		}
	})
	return nil
}

func (s *Software) drawMesh(mesh *scene.Mesh, m fauxgl.Matrix) {
	if mesh == nil || mesh.Geometry == nil || len(mesh.Geometry.Indices) == 0 {
		return
	}
	mat := mesh.Material
	col := fauxgl.Color{R: 1, G: 1, B: 1, A: 1}
	if mat != nil {
		col = fauxgl.Color{
			R: float64(mat.Color[0]),
			G: float64(mat.Color[1]),
			B: float64(mat.Color[2]),
			A: float64(mat.Color[3]),
		}
	}
	s.ctx.Shader = fauxgl.NewSolidColorShader(m, col)
	if mat != nil && mat.DoubleSided {
		s.ctx.Cull = fauxgl.CullNone
	} else {
		s.ctx.Cull = fauxgl.CullBack
	}
	s.ctx.ReadDepth = true
	s.ctx.WriteDepth = mat == nil || mat.DepthWrite
	if mat != nil {
		// fauxgl exposes a single scalar depth bias rather than the
		// GL factor/units pair; units dominate for near-coplanar
		// photogrammetry skirts.
		s.ctx.DepthBias = float64(mat.PolygonOffsetUnits) * depthBiasUnit
	} else {
		s.ctx.DepthBias = 0
	}
	s.ctx.DrawTriangles(triangles(mesh.Geometry))
}

// Image returns the rendered frame, downsampled if supersampling is on.
func (s *Software) Image() image.Image {
	img := s.context().Image()
	if s.Supersample > 1 {
		img = resize.Resize(uint(s.width), uint(s.height), img, resize.Bilinear)
	}
	return img
}

// depthBiasUnit maps one GL polygon-offset unit to fauxgl's scalar bias.
const depthBiasUnit = 1e-5

func triangles(g *scene.Geometry) []*fauxgl.Triangle {
	tris := make([]*fauxgl.Triangle, 0, len(g.Indices)/3)
	hasNormals := len(g.Normals) == len(g.Positions)
	for i := 0; i+2 < len(g.Indices); i += 3 {
		var t fauxgl.Triangle
		for j := 0; j < 3; j++ {
			idx := g.Indices[i+j]
			v := fauxgl.Vertex{Position: fauxgl.Vector{
				X: float64(g.Positions[idx*3]),
				Y: float64(g.Positions[idx*3+1]),
				Z: float64(g.Positions[idx*3+2]),
			}}
			if hasNormals {
				v.Normal = fauxgl.Vector{
					X: float64(g.Normals[idx*3]),
					Y: float64(g.Normals[idx*3+1]),
					Z: float64(g.Normals[idx*3+2]),
				}
			}
			switch j {
			case 0:
				t.V1 = v
			case 1:
				t.V2 = v
			case 2:
				t.V3 = v
			}
		}
		if !hasNormals {
			t.FixNormals()
		}
		tris = append(tris, &t)
	}
	return tris
}

func matrixFromColMajor(a [16]float64) fauxgl.Matrix {
	return fauxgl.Matrix{
		X00: a[0], X01: a[4], X02: a[8], X03: a[12],
		X10: a[1], X11: a[5], X12: a[9], X13: a[13],
		X20: a[2], X21: a[6], X22: a[10], X23: a[14],
		X30: a[3], X31: a[7], X32: a[11], X33: a[15],
	}
}
