// Package gldevice implements gpu.Device on OpenGL 3.3 core. It shares the
// context raylib creates, so New must run after the window is open and on
// the thread that owns it.
package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/gpu"
)

// Device implements gpu.Device on the current OpenGL 3.3 core context.
type Device struct {
	logger *zap.Logger
}

var _ gpu.Device = (*Device)(nil)

// New loads the GL function pointers. A context must be current on the
// calling thread.
func New(logger *zap.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init OpenGL: %w", err)
	}
	logger.Info("OpenGL ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return &Device{logger: logger}, nil
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u gpu.BufferUsage) uint32 {
	switch u {
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.StreamDraw:
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func indexType(f gpu.IndexFormat) uint32 {
	switch f {
	case gpu.IndexUint8:
		return gl.UNSIGNED_BYTE
	case gpu.IndexUint16:
		return gl.UNSIGNED_SHORT
	}
	return gl.UNSIGNED_INT
}

func textureTarget(t gpu.TextureTarget) uint32 {
	switch t {
	case gpu.Texture2DMultisample:
		return gl.TEXTURE_2D_MULTISAMPLE
	case gpu.TextureCubeMap:
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func compareFunc(f gpu.CompareFunc) uint32 {
	switch f {
	case gpu.Never:
		return gl.NEVER
	case gpu.Less:
		return gl.LESS
	case gpu.LessEqual:
		return gl.LEQUAL
	case gpu.Equal:
		return gl.EQUAL
	case gpu.NotEqual:
		return gl.NOTEQUAL
	}
	return gl.ALWAYS
}

func stencilAction(a gpu.StencilAction) uint32 {
	switch a {
	case gpu.Replace:
		return gl.REPLACE
	case gpu.Zero:
		return gl.ZERO
	}
	return gl.KEEP
}

func primitive(p gpu.Primitive) uint32 {
	if p == gpu.Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

// gl.Ptr rejects empty slices, so zero-length uploads pass nil.
func (d *Device) CreateBuffer(target gpu.BufferTarget, data []byte, usage gpu.BufferUsage) gpu.Handle {
	var id uint32
	gl.GenBuffers(1, &id)
	t := bufferTarget(target)
	gl.BindBuffer(t, id)
	if len(data) == 0 {
		gl.BufferData(t, 0, nil, bufferUsage(usage))
	} else {
		gl.BufferData(t, len(data), gl.Ptr(data), bufferUsage(usage))
	}
	return gpu.Handle(id)
}

func (d *Device) BufferSubData(target gpu.BufferTarget, h gpu.Handle, data []byte) {
	if len(data) == 0 {
		return
	}
	t := bufferTarget(target)
	gl.BindBuffer(t, uint32(h))
	gl.BufferSubData(t, 0, len(data), gl.Ptr(data))
}

func (d *Device) BindBuffer(target gpu.BufferTarget, h gpu.Handle) {
	gl.BindBuffer(bufferTarget(target), uint32(h))
}

func (d *Device) DeleteBuffer(h gpu.Handle) {
	id := uint32(h)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) CreateVertexArray() gpu.Handle {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return gpu.Handle(id)
}

func (d *Device) BindVertexArray(h gpu.Handle) {
	gl.BindVertexArray(uint32(h))
}

func (d *Device) VertexAttribute(index uint32, components int32, normalized bool, stride int32, offset int) {
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointerWithOffset(index, components, gl.FLOAT, normalized, stride, uintptr(offset))
}

func (d *Device) DeleteVertexArray(h gpu.Handle) {
	id := uint32(h)
	gl.DeleteVertexArrays(1, &id)
}

func internalFormat(f gpu.TextureFormat) uint32 {
	switch f {
	case gpu.RGBA16F:
		return gl.RGBA16F
	case gpu.Depth24Stencil8:
		return gl.DEPTH24_STENCIL8
	}
	return gl.RGBA8
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) gpu.Handle {
	var id uint32
	gl.GenTextures(1, &id)

	if desc.Multisampled {
		gl.BindTexture(gl.TEXTURE_2D_MULTISAMPLE, id)
		gl.TexImage2DMultisample(gl.TEXTURE_2D_MULTISAMPLE, desc.Samples,
			internalFormat(desc.Format), desc.Width, desc.Height, false)
		return gpu.Handle(id)
	}

	gl.BindTexture(gl.TEXTURE_2D, id)
	switch desc.Format {
	case gpu.Depth24Stencil8:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH24_STENCIL8, desc.Width, desc.Height, 0,
			gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8, nil)
	case gpu.RGBA16F:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, desc.Width, desc.Height, 0,
			gl.RGBA, gl.FLOAT, nil)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, desc.Width, desc.Height, 0,
			gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return gpu.Handle(id)
}

func (d *Device) BindTexture(slot uint32, target gpu.TextureTarget, h gpu.Handle) {
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(textureTarget(target), uint32(h))
}

func (d *Device) DeleteTexture(h gpu.Handle) {
	id := uint32(h)
	gl.DeleteTextures(1, &id)
}

func (d *Device) CreateFramebuffer() gpu.Handle {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return gpu.Handle(id)
}

func (d *Device) BindFramebuffer(h gpu.Handle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(h))
}

func (d *Device) FramebufferTexture(point gpu.AttachmentPoint, index int, h gpu.Handle, multisampled bool) {
	target := uint32(gl.TEXTURE_2D)
	if multisampled {
		target = gl.TEXTURE_2D_MULTISAMPLE
	}
	attachment := uint32(gl.COLOR_ATTACHMENT0 + index)
	if point == gpu.DepthStencilAttachment {
		attachment = gl.DEPTH_STENCIL_ATTACHMENT
	}
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, target, uint32(h), 0)
}

func (d *Device) DrawBuffers(count int) {
	bufs := make([]uint32, count)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(count), &bufs[0])
}

func (d *Device) FramebufferComplete() bool {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.logger.Error("framebuffer status", zap.Uint32("status", status))
		return false
	}
	return true
}

func (d *Device) DeleteFramebuffer(h gpu.Handle) {
	id := uint32(h)
	gl.DeleteFramebuffers(1, &id)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) SetClearColor(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

func (d *Device) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&gpu.ClearStencil != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

func toggle(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (d *Device) SetDepthTest(enabled bool)   { toggle(gl.DEPTH_TEST, enabled) }
func (d *Device) SetStencilTest(enabled bool) { toggle(gl.STENCIL_TEST, enabled) }

func (d *Device) SetDepthFunc(fn gpu.CompareFunc) {
	gl.DepthFunc(compareFunc(fn))
}

func (d *Device) StencilFunc(fn gpu.CompareFunc, ref int32, mask uint32) {
	gl.StencilFunc(compareFunc(fn), ref, mask)
}

func (d *Device) StencilOp(sfail, dpfail, dppass gpu.StencilAction) {
	gl.StencilOp(stencilAction(sfail), stencilAction(dpfail), stencilAction(dppass))
}

func (d *Device) StencilMask(mask uint32) {
	gl.StencilMask(mask)
}

func (d *Device) SetPolygonLines(enabled bool) {
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (d *Device) SetLineWidth(width float32) {
	gl.LineWidth(width)
}

func (d *Device) DrawElements(mode gpu.Primitive, count int32, format gpu.IndexFormat, byteOffset int, baseVertex int32) {
	gl.DrawElementsBaseVertex(primitive(mode), count, indexType(format), gl.PtrOffset(byteOffset), baseVertex)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {
	gl.DrawArrays(primitive(mode), first, count)
}
