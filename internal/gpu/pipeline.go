package gpu

import "errors"

// ErrNoVertexBuffer is returned by Create for a pipeline without vertices.
var ErrNoVertexBuffer = errors.New("pipeline has no vertex buffer")

// VertexFormat is the type of one vertex attribute.
type VertexFormat int

const (
	Float1 VertexFormat = iota
	Float2
	Float3
	Float4
)

// Components is the number of float elements in the attribute.
func (f VertexFormat) Components() int32 { return int32(f) + 1 }

// Size is the attribute width in bytes.
func (f VertexFormat) Size() int { return int(f.Components()) * 4 }

// Attribute is one named vertex input.
type Attribute struct {
	Name       string
	Format     VertexFormat
	Normalized bool
}

// PipelineLayout is the ordered list of interleaved vertex attributes.
type PipelineLayout struct {
	Attributes []Attribute
}

// NewPipelineLayout lays the attributes out back to back, in order.
func NewPipelineLayout(attrs ...Attribute) PipelineLayout {
	return PipelineLayout{Attributes: attrs}
}

// Stride is the byte size of one vertex.
func (l PipelineLayout) Stride() int {
	stride := 0
	for _, a := range l.Attributes {
		stride += a.Format.Size()
	}
	return stride
}

// Offset sums the sizes of the attributes before index i.
func (l PipelineLayout) Offset(i int) int {
	offset := 0
	for _, a := range l.Attributes[:i] {
		offset += a.Format.Size()
	}
	return offset
}

// GraphicsPipeline binds a vertex layout to a vertex buffer and an optional
// index buffer through a vertex array object.
type GraphicsPipeline struct {
	Layout       PipelineLayout
	VertexBuffer *VertexBuffer
	IndexBuffer  *IndexBuffer

	dev         Device
	vertexArray Handle
}

// NewGraphicsPipeline describes a pipeline. The vertex array is created by
// Create. ib may be nil.
func NewGraphicsPipeline(dev Device, layout PipelineLayout, vb *VertexBuffer, ib *IndexBuffer) *GraphicsPipeline {
	return &GraphicsPipeline{
		Layout:       layout,
		VertexBuffer: vb,
		IndexBuffer:  ib,
		dev:          dev,
	}
}

// Create builds the vertex array. Calling it again replaces the previous one.
func (p *GraphicsPipeline) Create() error {
	if p.VertexBuffer == nil {
		return ErrNoVertexBuffer
	}
	if p.vertexArray != 0 {
		p.dev.DeleteVertexArray(p.vertexArray)
	}

	p.vertexArray = p.dev.CreateVertexArray()
	p.dev.BindVertexArray(p.vertexArray)

	p.VertexBuffer.Bind()
	if p.IndexBuffer != nil {
		p.IndexBuffer.Bind()
	}

	stride := int32(p.Layout.Stride())
	for i, a := range p.Layout.Attributes {
		p.dev.VertexAttribute(uint32(i), a.Format.Components(), a.Normalized, stride, p.Layout.Offset(i))
	}
	return nil
}

// VertexCount is the number of whole vertices in the vertex buffer.
func (p *GraphicsPipeline) VertexCount() int {
	stride := p.Layout.Stride()
	if p.VertexBuffer == nil || stride == 0 {
		return 0
	}
	return p.VertexBuffer.Size() / stride
}

// Bind makes the pipeline current. Binding a pipeline that was never created
// is a programming error.
func (p *GraphicsPipeline) Bind() {
	if p.vertexArray == 0 {
		panic("gpu: Bind on a pipeline that was never created")
	}
	p.dev.BindVertexArray(p.vertexArray)
}

// Created reports whether Create has run.
func (p *GraphicsPipeline) Created() bool { return p.vertexArray != 0 }

// Release frees the vertex array and both buffers.
func (p *GraphicsPipeline) Release() {
	if p.vertexArray != 0 {
		p.dev.DeleteVertexArray(p.vertexArray)
		p.vertexArray = 0
	}
	if p.VertexBuffer != nil {
		p.VertexBuffer.Release()
	}
	if p.IndexBuffer != nil {
		p.IndexBuffer.Release()
	}
}
