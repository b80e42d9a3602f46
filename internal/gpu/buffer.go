package gpu

import "unsafe"

// Bytes views a slice of plain values as raw bytes without copying. T must
// not contain pointers.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

// IndexFormat is the integer width of an index buffer.
type IndexFormat int

const (
	IndexUint8 IndexFormat = iota
	IndexUint16
	IndexUint32
)

// Size is the width of one index in bytes.
func (f IndexFormat) Size() int {
	switch f {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	}
	return 4
}

func (f IndexFormat) String() string {
	switch f {
	case IndexUint8:
		return "Uint8"
	case IndexUint16:
		return "Uint16"
	}
	return "Uint32"
}

// VertexBuffer owns one device buffer of vertex data.
type VertexBuffer struct {
	dev    Device
	handle Handle
	size   int
	usage  BufferUsage
}

// NewVertexBuffer uploads data into a new device buffer.
func NewVertexBuffer(dev Device, data []byte, usage BufferUsage) *VertexBuffer {
	return &VertexBuffer{
		dev:    dev,
		handle: dev.CreateBuffer(ArrayBuffer, data, usage),
		size:   len(data),
		usage:  usage,
	}
}

// NewStreamVertexBuffer creates a zero-length buffer that SetData fills later.
func NewStreamVertexBuffer(dev Device, usage BufferUsage) *VertexBuffer {
	return NewVertexBuffer(dev, nil, usage)
}

// SetData overwrites the buffer from offset zero without reallocating. The
// caller guarantees data fits the allocation.
func (b *VertexBuffer) SetData(data []byte) {
	b.dev.BufferSubData(ArrayBuffer, b.handle, data)
}

func (b *VertexBuffer) Bind() { b.dev.BindBuffer(ArrayBuffer, b.handle) }

func (b *VertexBuffer) Handle() Handle { return b.handle }
func (b *VertexBuffer) Size() int      { return b.size }

// Release deletes the device buffer. Calling it twice is harmless.
func (b *VertexBuffer) Release() {
	if b.handle != 0 {
		b.dev.DeleteBuffer(b.handle)
		b.handle = 0
	}
}

// IndexBuffer owns one device buffer of indices and tracks how many elements
// it holds at the current format.
type IndexBuffer struct {
	dev    Device
	handle Handle
	size   int
	format IndexFormat
	count  int
}

// NewIndexBuffer uploads data into a new element buffer of the given format.
func NewIndexBuffer(dev Device, data []byte, format IndexFormat, usage BufferUsage) *IndexBuffer {
	return &IndexBuffer{
		dev:    dev,
		handle: dev.CreateBuffer(ElementArrayBuffer, data, usage),
		size:   len(data),
		format: format,
		count:  len(data) / format.Size(),
	}
}

// SetData overwrites the indices and recomputes the element count for format.
func (b *IndexBuffer) SetData(data []byte, format IndexFormat) {
	b.format = format
	b.count = len(data) / format.Size()
	b.dev.BufferSubData(ElementArrayBuffer, b.handle, data)
}

// Bind binds the element buffer to the current vertex array.
func (b *IndexBuffer) Bind() { b.dev.BindBuffer(ElementArrayBuffer, b.handle) }

// Count is the number of indices.
func (b *IndexBuffer) Count() int          { return b.count }
func (b *IndexBuffer) Format() IndexFormat { return b.format }
func (b *IndexBuffer) Handle() Handle      { return b.handle }
func (b *IndexBuffer) Size() int           { return b.size }

// ByteOffset converts an element index into a byte offset for draw calls.
func (b *IndexBuffer) ByteOffset(index int) int {
	return index * b.format.Size()
}

// Release deletes the device buffer. Calling it twice is harmless.
func (b *IndexBuffer) Release() {
	if b.handle != 0 {
		b.dev.DeleteBuffer(b.handle)
		b.handle = 0
	}
}
