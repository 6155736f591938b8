package scene

import (
	"math"

	"github.com/chewxy/math32"
)

// Vertex welding for hairline seam cracks at tile-cut boundaries. Tiles cut
// from one continuous photogrammetry surface duplicate boundary vertices
// with float truncation differences; snapping positions to a tolerance grid
// and merging grid cells closes the cracks.
//
// Welding merges UV and normal data by first-wins, which can create visible
// texture seams on meshes with divergent attributes at shared positions.
// It is a policy choice, not a default-on fix.

// Weld merges vertices whose positions fall in the same tolerance grid cell
// and rewrites the geometry's indices to the surviving vertices. It returns
// the number of vertices removed. Normals are dropped; call RecomputeNormals
// on the welded geometry.
func Weld(g *Geometry, tolerance float32) int {
	if g == nil || len(g.Positions) == 0 || tolerance <= 0 {
		return 0
	}
	before := g.VertexCount()
	// Cell indices in float64/int64: positions can be absolute ECEF,
	// where metre coordinates over a sub-millimetre grid overflow int32.
	ri := 1 / float64(tolerance)

	// Map of grid cell to surviving vertex index.
	cache := make(map[[3]int64]uint32, before)
	remap := make([]uint32, before)

	var positions []float32
	var uvs []float32
	hasUV := len(g.UVs) == before*2

	for i := 0; i < before; i++ {
		x := g.Positions[i*3]
		y := g.Positions[i*3+1]
		z := g.Positions[i*3+2]
		cell := [3]int64{
			int64(math.Round(float64(x) * ri)),
			int64(math.Round(float64(y) * ri)),
			int64(math.Round(float64(z) * ri)),
		}
		idx, ok := cache[cell]
		if !ok {
			idx = uint32(len(positions) / 3)
			cache[cell] = idx
			positions = append(positions, x, y, z)
			if hasUV {
				uvs = append(uvs, g.UVs[i*2], g.UVs[i*2+1])
			}
		}
		remap[i] = idx
	}

	for i, old := range g.Indices {
		g.Indices[i] = remap[old]
	}
	// Drop triangles that collapsed to a line or point.
	kept := g.Indices[:0]
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if a == b || b == c || a == c {
			continue
		}
		kept = append(kept, a, b, c)
	}
	g.Indices = kept
	g.Positions = positions
	g.UVs = uvs
	g.Normals = nil
	return before - len(positions)/3
}

// RecomputeNormals rebuilds per-vertex normals from the triangle faces,
// weighting each face contribution by the opening angle at the vertex.
func RecomputeNormals(g *Geometry) {
	if g == nil || len(g.Positions) == 0 {
		return
	}
	n := g.VertexCount()
	g.Normals = make([]float32, n*3)
	for i := 0; i+2 < len(g.Indices); i += 3 {
		ia, ib, ic := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		a := vertex(g, ia)
		b := vertex(g, ib)
		c := vertex(g, ic)
		nx, ny, nz := faceNormal(a, b, c)
		for j, idx := range [3]uint32{ia, ib, ic} {
			var p, q [3]float32
			switch j {
			case 0:
				p, q = sub(b, a), sub(c, a)
			case 1:
				p, q = sub(c, b), sub(a, b)
			case 2:
				p, q = sub(a, c), sub(b, c)
			}
			w := openingAngle(p, q)
			g.Normals[idx*3] += nx * w
			g.Normals[idx*3+1] += ny * w
			g.Normals[idx*3+2] += nz * w
		}
	}
	for i := 0; i < n; i++ {
		x := g.Normals[i*3]
		y := g.Normals[i*3+1]
		z := g.Normals[i*3+2]
		l := math32.Sqrt(x*x + y*y + z*z)
		if l == 0 {
			continue
		}
		g.Normals[i*3] = x / l
		g.Normals[i*3+1] = y / l
		g.Normals[i*3+2] = z / l
	}
}

func vertex(g *Geometry, i uint32) [3]float32 {
	return [3]float32{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func faceNormal(a, b, c [3]float32) (x, y, z float32) {
	u := sub(b, a)
	v := sub(c, a)
	x = u[1]*v[2] - u[2]*v[1]
	y = u[2]*v[0] - u[0]*v[2]
	z = u[0]*v[1] - u[1]*v[0]
	l := math32.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return 0, 0, 0
	}
	return x / l, y / l, z / l
}

func openingAngle(p, q [3]float32) float32 {
	lp := math32.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	lq := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2])
	if lp == 0 || lq == 0 {
		return 0
	}
	cos := (p[0]*q[0] + p[1]*q[1] + p[2]*q[2]) / (lp * lq)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math32.Acos(cos)
}
