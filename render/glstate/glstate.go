// Package glstate implements the render.Context borrow/restore contract
// over an OpenGL context shared with the host map renderer. The layer
// mutates depth, blend, cull and polygon-offset state while drawing tiles;
// the guard puts every flag back so the host's next frame sees the context
// exactly as it left it.
//
// The caller must hold a current GL context on the calling goroutine, the
// usual go-gl contract.
package glstate

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/drapemap/drape/render"
)

// Context implements render.Context over the current OpenGL context.
type Context struct{}

var _ render.Context = Context{}

type snapshot struct {
	depthTest     bool
	depthFunc     int32
	depthMask     bool
	blend         bool
	blendSrc      int32
	blendDst      int32
	cullFace      bool
	cullFaceMode  int32
	polygonOffset bool
	offsetFactor  float32
	offsetUnits   float32
	framebuffer   int32
}

// Save snapshots the GL state the tile draw mutates.
func (Context) Save() render.StateGuard {
	s := &snapshot{
		depthTest:     gl.IsEnabled(gl.DEPTH_TEST),
		blend:         gl.IsEnabled(gl.BLEND),
		cullFace:      gl.IsEnabled(gl.CULL_FACE),
		polygonOffset: gl.IsEnabled(gl.POLYGON_OFFSET_FILL),
	}
	gl.GetIntegerv(gl.DEPTH_FUNC, &s.depthFunc)
	gl.GetBooleanv(gl.DEPTH_WRITEMASK, &s.depthMask)
	gl.GetIntegerv(gl.BLEND_SRC_ALPHA, &s.blendSrc)
	gl.GetIntegerv(gl.BLEND_DST_ALPHA, &s.blendDst)
	gl.GetIntegerv(gl.CULL_FACE_MODE, &s.cullFaceMode)
	gl.GetFloatv(gl.POLYGON_OFFSET_FACTOR, &s.offsetFactor)
	gl.GetFloatv(gl.POLYGON_OFFSET_UNITS, &s.offsetUnits)
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &s.framebuffer)
	return s
}

// ClearDepth clears the depth buffer only, leaving the host's color
// content in place.
func (Context) ClearDepth() {
	gl.ClearDepth(1)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// Restore puts back every flag captured by Save.
func (s *snapshot) Restore() {
	setCap(gl.DEPTH_TEST, s.depthTest)
	gl.DepthFunc(uint32(s.depthFunc))
	gl.DepthMask(s.depthMask)
	setCap(gl.BLEND, s.blend)
	gl.BlendFunc(uint32(s.blendSrc), uint32(s.blendDst))
	setCap(gl.CULL_FACE, s.cullFace)
	gl.CullFace(uint32(s.cullFaceMode))
	setCap(gl.POLYGON_OFFSET_FILL, s.polygonOffset)
	gl.PolygonOffset(s.offsetFactor, s.offsetUnits)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(s.framebuffer))
}

func setCap(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}
