package gpu

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []any
}

// Recorder is a headless Device. It hands out increasing handles, keeps
// track of live objects and records every call in order.
type Recorder struct {
	Calls []Call

	// Incomplete makes FramebufferComplete report failure.
	Incomplete bool
	// ReuseHandles hands freed handles back out, lowest first, the way GL
	// recycles object names.
	ReuseHandles bool
	// ShaderErrors fails CompileShader for the named shaders.
	ShaderErrors map[string]error

	Shaders  map[string]*RecordedShader
	Textures map[Handle]TextureDesc

	BoundFramebuffer Handle
	ViewportRect     [4]int32
	DepthTest        bool
	StencilTest      bool
	PolygonLines     bool

	next  Handle
	live  map[Handle]string
	freed []Handle
}

var _ Device = (*Recorder)(nil)

// NewRecorder returns a recorder with no live objects.
func NewRecorder() *Recorder {
	return &Recorder{
		ShaderErrors: make(map[string]error),
		Shaders:      make(map[string]*RecordedShader),
		Textures:     make(map[Handle]TextureDesc),
		live:         make(map[Handle]string),
	}
}

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) alloc(kind string) Handle {
	if r.ReuseHandles && len(r.freed) > 0 {
		slices.Sort(r.freed)
		h := r.freed[0]
		r.freed = r.freed[1:]
		r.live[h] = kind
		return h
	}
	r.next++
	r.live[r.next] = kind
	return r.next
}

func (r *Recorder) free(h Handle) {
	if _, ok := r.live[h]; ok {
		r.freed = append(r.freed, h)
	}
	delete(r.live, h)
	delete(r.Textures, h)
}

// Alive reports whether h was created and not yet deleted.
func (r *Recorder) Alive(h Handle) bool {
	_, ok := r.live[h]
	return ok
}

// LiveCount counts live objects of one kind ("buffer", "vertexarray",
// "texture", "framebuffer", "shader").
func (r *Recorder) LiveCount(kind string) int {
	n := 0
	for _, k := range r.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Count counts recorded calls of one op.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the recorded op names in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset forgets recorded calls but keeps live objects.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

func (r *Recorder) CreateBuffer(target BufferTarget, data []byte, usage BufferUsage) Handle {
	h := r.alloc("buffer")
	r.record("CreateBuffer", target, h, len(data), usage)
	return h
}

func (r *Recorder) BufferSubData(target BufferTarget, h Handle, data []byte) {
	r.record("BufferSubData", target, h, len(data))
}

func (r *Recorder) BindBuffer(target BufferTarget, h Handle) {
	r.record("BindBuffer", target, h)
}

func (r *Recorder) DeleteBuffer(h Handle) {
	r.free(h)
	r.record("DeleteBuffer", h)
}

func (r *Recorder) CreateVertexArray() Handle {
	h := r.alloc("vertexarray")
	r.record("CreateVertexArray", h)
	return h
}

func (r *Recorder) BindVertexArray(h Handle) {
	r.record("BindVertexArray", h)
}

func (r *Recorder) VertexAttribute(index uint32, components int32, normalized bool, stride int32, offset int) {
	r.record("VertexAttribute", index, components, normalized, stride, offset)
}

func (r *Recorder) DeleteVertexArray(h Handle) {
	r.free(h)
	r.record("DeleteVertexArray", h)
}

func (r *Recorder) CreateTexture(desc TextureDesc) Handle {
	h := r.alloc("texture")
	r.Textures[h] = desc
	r.record("CreateTexture", h, desc)
	return h
}

func (r *Recorder) BindTexture(slot uint32, target TextureTarget, h Handle) {
	r.record("BindTexture", slot, target, h)
}

func (r *Recorder) DeleteTexture(h Handle) {
	r.free(h)
	r.record("DeleteTexture", h)
}

func (r *Recorder) CreateFramebuffer() Handle {
	h := r.alloc("framebuffer")
	r.record("CreateFramebuffer", h)
	return h
}

func (r *Recorder) BindFramebuffer(h Handle) {
	r.BoundFramebuffer = h
	r.record("BindFramebuffer", h)
}

func (r *Recorder) FramebufferTexture(point AttachmentPoint, index int, h Handle, multisampled bool) {
	r.record("FramebufferTexture", point, index, h, multisampled)
}

func (r *Recorder) DrawBuffers(count int) {
	r.record("DrawBuffers", count)
}

func (r *Recorder) FramebufferComplete() bool {
	r.record("FramebufferComplete")
	return !r.Incomplete
}

func (r *Recorder) DeleteFramebuffer(h Handle) {
	r.free(h)
	r.record("DeleteFramebuffer", h)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.ViewportRect = [4]int32{x, y, width, height}
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) SetClearColor(c mgl32.Vec4) {
	r.record("SetClearColor", c)
}

func (r *Recorder) Clear(mask ClearMask) {
	r.record("Clear", mask)
}

func (r *Recorder) SetDepthTest(enabled bool) {
	r.DepthTest = enabled
	r.record("SetDepthTest", enabled)
}

func (r *Recorder) SetDepthFunc(fn CompareFunc) {
	r.record("SetDepthFunc", fn)
}

func (r *Recorder) SetStencilTest(enabled bool) {
	r.StencilTest = enabled
	r.record("SetStencilTest", enabled)
}

func (r *Recorder) StencilFunc(fn CompareFunc, ref int32, mask uint32) {
	r.record("StencilFunc", fn, ref, mask)
}

func (r *Recorder) StencilOp(sfail, dpfail, dppass StencilAction) {
	r.record("StencilOp", sfail, dpfail, dppass)
}

func (r *Recorder) StencilMask(mask uint32) {
	r.record("StencilMask", mask)
}

func (r *Recorder) SetPolygonLines(enabled bool) {
	r.PolygonLines = enabled
	r.record("SetPolygonLines", enabled)
}

func (r *Recorder) SetLineWidth(width float32) {
	r.record("SetLineWidth", width)
}

func (r *Recorder) DrawElements(mode Primitive, count int32, format IndexFormat, byteOffset int, baseVertex int32) {
	r.record("DrawElements", mode, count, format, byteOffset, baseVertex)
}

func (r *Recorder) DrawArrays(mode Primitive, first, count int32) {
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) CompileShader(name string, src ShaderSource) (Shader, error) {
	if err := r.ShaderErrors[name]; err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	sh := &RecordedShader{
		rec:    r,
		name:   name,
		handle: r.alloc("shader"),
		Source: src,
		Ints:   make(map[string]int32),
		Floats: make(map[string]float32),
		Vec3s:  make(map[string]mgl32.Vec3),
		Vec4s:  make(map[string]mgl32.Vec4),
		Mats:   make(map[string]mgl32.Mat4),
	}
	r.Shaders[name] = sh
	r.record("CompileShader", name, sh.handle)
	return sh, nil
}

// RecordedShader keeps the last value written to each uniform.
type RecordedShader struct {
	rec    *Recorder
	name   string
	handle Handle

	Source ShaderSource
	Ints   map[string]int32
	Floats map[string]float32
	Vec3s  map[string]mgl32.Vec3
	Vec4s  map[string]mgl32.Vec4
	Mats   map[string]mgl32.Mat4
}

func (s *RecordedShader) Name() string { return s.name }

func (s *RecordedShader) Bind() {
	s.rec.record("BindShader", s.name)
}

func (s *RecordedShader) SetInt(name string, v int32) {
	s.Ints[name] = v
	s.rec.record("SetInt", s.name, name, v)
}

func (s *RecordedShader) SetFloat(name string, v float32) {
	s.Floats[name] = v
	s.rec.record("SetFloat", s.name, name, v)
}

func (s *RecordedShader) SetFloat3(name string, v mgl32.Vec3) {
	s.Vec3s[name] = v
	s.rec.record("SetFloat3", s.name, name, v)
}

func (s *RecordedShader) SetFloat4(name string, v mgl32.Vec4) {
	s.Vec4s[name] = v
	s.rec.record("SetFloat4", s.name, name, v)
}

func (s *RecordedShader) SetMat4(name string, m mgl32.Mat4) {
	s.Mats[name] = m
	s.rec.record("SetMat4", s.name, name, m)
}

func (s *RecordedShader) Release() {
	s.rec.free(s.handle)
	s.rec.record("DeleteShader", s.name)
}
