// Package scene models the mesh/material graph of one loaded photogrammetry
// tile. The streaming engine owns the lifecycle of these nodes; the drape
// layer only mutates visual properties in place while a node exists.
package scene

// TextureRef identifies a decoded texture owned by the streaming engine.
// The zero value means no texture.
type TextureRef uint32

// Material describes how a mesh is shaded. Photogrammetry tiles arrive with
// whatever lit material the decoder produced; the layer replaces it with an
// unlit variant preserving only color, texture and transparency.
type Material struct {
	Unlit       bool
	Color       [4]float32
	Texture     TextureRef
	Transparent bool
	// DoubleSided renders back faces too. Off hides the inward-facing
	// skirt walls photogrammetry tiles carry at their boundaries.
	DoubleSided bool
	DepthWrite  bool
	// Polygon offset pushes fragments back in the depth buffer. Used by
	// the depth-bias seam mitigation, zero otherwise.
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32
}

// Geometry holds indexed triangle data with float32 vertex buffers, the
// layout decoded b3dm payloads arrive in.
type Geometry struct {
	Positions []float32 // xyz triplets
	Normals   []float32 // xyz triplets, len 0 or len(Positions)
	UVs       []float32 // uv pairs, len 0 or len(Positions)/3*2
	Indices   []uint32  // triangle list
}

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int { return len(g.Positions) / 3 }

// Mesh pairs a geometry with its material.
type Mesh struct {
	Geometry *Geometry
	Material *Material
	// FrustumCulled enables per-mesh frustum culling in the renderer.
	FrustumCulled bool
}

// Node is one node of a tile's scene graph.
type Node struct {
	Name          string
	Meshes        []*Mesh
	Children      []*Node
	FrustumCulled bool
}

// Walk calls fn for n and every node below it, depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Empty reports whether the subtree contains no drawable triangles.
func (n *Node) Empty() bool {
	empty := true
	n.Walk(func(nd *Node) {
		for _, m := range nd.Meshes {
			if m.Geometry != nil && len(m.Geometry.Indices) > 0 {
				empty = false
			}
		}
	})
	return empty
}
