// Package gpu holds the GPU resource objects the renderer builds on. Every
// object talks to the graphics API through a Device so the same code runs
// against OpenGL in the editor and against a Recorder in tests.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Handle is a device-side object name. Zero is never a live object.
type Handle uint32

// BufferTarget selects the binding point of a buffer.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// BufferUsage hints how often a buffer is rewritten.
type BufferUsage int

const (
	StaticDraw BufferUsage = iota
	DynamicDraw
	StreamDraw
)

// TextureTarget selects the texture binding point.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	Texture2DMultisample
	TextureCubeMap
)

// TextureFormat is the internal format of a texture or attachment.
type TextureFormat int

const (
	FormatNone TextureFormat = iota
	RGBA8
	RGBA16F
	Depth24Stencil8
)

func (f TextureFormat) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case RGBA16F:
		return "RGBA16F"
	case Depth24Stencil8:
		return "Depth24Stencil8"
	}
	return "None"
}

// IsDepth reports whether the format belongs in the depth-stencil group.
func (f TextureFormat) IsDepth() bool { return f == Depth24Stencil8 }

// TextureDesc describes storage for a render target texture.
type TextureDesc struct {
	Format       TextureFormat
	Width        int32
	Height       int32
	Samples      int32
	Multisampled bool
}

// AttachmentPoint is where a texture attaches to a framebuffer.
type AttachmentPoint int

const (
	ColorAttachment AttachmentPoint = iota
	DepthStencilAttachment
)

// ClearMask selects the buffers Clear resets.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// CompareFunc is a depth or stencil comparison.
type CompareFunc int

const (
	Always CompareFunc = iota
	Never
	Less
	LessEqual
	Equal
	NotEqual
)

// StencilAction is what a stencil test outcome writes.
type StencilAction int

const (
	Keep StencilAction = iota
	Replace
	Zero
)

// Primitive is the topology of a draw call.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// Device is the set of graphics calls the resource objects and the renderer
// issue. Calls are synchronous and must come from the thread that owns the
// context.
type Device interface {
	CreateBuffer(target BufferTarget, data []byte, usage BufferUsage) Handle
	BufferSubData(target BufferTarget, h Handle, data []byte)
	BindBuffer(target BufferTarget, h Handle)
	DeleteBuffer(h Handle)

	CreateVertexArray() Handle
	BindVertexArray(h Handle)
	VertexAttribute(index uint32, components int32, normalized bool, stride int32, offset int)
	DeleteVertexArray(h Handle)

	CreateTexture(desc TextureDesc) Handle
	BindTexture(slot uint32, target TextureTarget, h Handle)
	DeleteTexture(h Handle)

	CreateFramebuffer() Handle
	BindFramebuffer(h Handle)
	FramebufferTexture(point AttachmentPoint, index int, h Handle, multisampled bool)
	DrawBuffers(count int)
	FramebufferComplete() bool
	DeleteFramebuffer(h Handle)

	Viewport(x, y, width, height int32)
	SetClearColor(c mgl32.Vec4)
	Clear(mask ClearMask)
	SetDepthTest(enabled bool)
	SetDepthFunc(fn CompareFunc)
	SetStencilTest(enabled bool)
	StencilFunc(fn CompareFunc, ref int32, mask uint32)
	StencilOp(sfail, dpfail, dppass StencilAction)
	StencilMask(mask uint32)
	SetPolygonLines(enabled bool)
	SetLineWidth(width float32)

	DrawElements(mode Primitive, count int32, format IndexFormat, byteOffset int, baseVertex int32)
	DrawArrays(mode Primitive, first, count int32)

	CompileShader(name string, src ShaderSource) (Shader, error)
}

// Texture is a sampled 2D texture. A zero Handle marks a texture that failed
// to load.
type Texture struct {
	Handle Handle
	Width  int32
	Height int32
	Path   string
}

// IsLoaded reports whether the texture has a device handle.
func (t *Texture) IsLoaded() bool { return t != nil && t.Handle != 0 }

// Bind binds the texture to a sampler slot.
func (t *Texture) Bind(dev Device, slot uint32) {
	dev.BindTexture(slot, Texture2D, t.Handle)
}

// TextureCube is an environment cube map.
type TextureCube struct {
	Handle Handle
	Size   int32
	Path   string
}

// IsLoaded reports whether the cube map has a device handle.
func (t *TextureCube) IsLoaded() bool { return t != nil && t.Handle != 0 }

// Bind binds the cube map to a sampler slot.
func (t *TextureCube) Bind(dev Device, slot uint32) {
	dev.BindTexture(slot, TextureCubeMap, t.Handle)
}
