package drape

import (
	"github.com/sirupsen/logrus"

	"github.com/drapemap/drape/scene"
)

// SeamPolicy selects the mitigation for hairline cracks and z-fighting at
// tile-cut boundaries. Pick exactly one per deployment: welding and depth
// bias are not composable, applying both can visibly separate surfaces at
// oblique view angles.
type SeamPolicy int

const (
	// SeamNone applies no mitigation.
	SeamNone SeamPolicy = iota
	// SeamWeld merges coincident boundary vertices and recomputes
	// normals. Unsafe for meshes with divergent UVs at shared
	// positions; can create texture-seam artifacts.
	SeamWeld
	// SeamDepthBias pushes tile fragments back with polygon offset so
	// near-coplanar skirt overlaps stop z-fighting.
	SeamDepthBias
)

// ProcessorConfig configures the per-tile scene normalization.
type ProcessorConfig struct {
	Seam SeamPolicy
	// WeldTolerance is the vertex merge distance for SeamWeld, in the
	// tile's local units. Default 1e-4.
	WeldTolerance float32
	// DepthBiasFactor and DepthBiasUnits are the polygon offset for
	// SeamDepthBias. Defaults 1 and 1.
	DepthBiasFactor float32
	DepthBiasUnits  float32
}

func (c ProcessorConfig) withDefaults() ProcessorConfig {
	if c.WeldTolerance == 0 {
		c.WeldTolerance = 1e-4
	}
	if c.Seam == SeamDepthBias {
		if c.DepthBiasFactor == 0 {
			c.DepthBiasFactor = 1
		}
		if c.DepthBiasUnits == 0 {
			c.DepthBiasUnits = 1
		}
	}
	return c
}

// TileProcessor normalizes one loaded tile's mesh graph. It runs exactly
// once per model-loaded event, at PhaseProcess, before any decoration.
type TileProcessor struct {
	cfg ProcessorConfig
	log *logrus.Logger
}

// NewTileProcessor returns a processor with the given policy.
func NewTileProcessor(cfg ProcessorConfig, log *logrus.Logger) *TileProcessor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TileProcessor{cfg: cfg.withDefaults(), log: log}
}

// Process mutates the tile scene in place:
//
//   - Per-mesh frustum culling is disabled throughout the subtree. The
//     combined ECEF-to-clip matrix defeats plane-extraction culling
//     heuristics and discards valid geometry; culling stays with the
//     engine's tile-level bounding-volume test, which the precision issue
//     does not touch.
//   - Every material is replaced with an unlit variant preserving only
//     base color, texture and transparency, rendering front faces only so
//     inward-facing skirt walls stop z-fighting, and writing depth so
//     later tiles respect occlusion.
//   - The configured seam mitigation is applied.
//
// A nil or empty scene is skipped with a warning; a load event without a
// traversable graph must never break the render loop.
func (p *TileProcessor) Process(root *scene.Node) {
	if root == nil || root.Empty() {
		p.log.Warn("tile model event without traversable scene, skipping post-process")
		return
	}
	root.Walk(func(n *scene.Node) {
		n.FrustumCulled = false
		for _, m := range n.Meshes {
			m.FrustumCulled = false
			m.Material = p.unlit(m.Material)
			if p.cfg.Seam == SeamWeld && m.Geometry != nil {
				if removed := scene.Weld(m.Geometry, p.cfg.WeldTolerance); removed > 0 {
					scene.RecomputeNormals(m.Geometry)
				}
			}
		}
	})
}

func (p *TileProcessor) unlit(old *scene.Material) *scene.Material {
	m := &scene.Material{
		Unlit:      true,
		Color:      [4]float32{1, 1, 1, 1},
		DepthWrite: true,
	}
	if old != nil {
		m.Color = old.Color
		m.Texture = old.Texture
		m.Transparent = old.Transparent
	}
	if p.cfg.Seam == SeamDepthBias {
		m.PolygonOffsetFactor = p.cfg.DepthBiasFactor
		m.PolygonOffsetUnits = p.cfg.DepthBiasUnits
	}
	return m
}
