package gpu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrFramebufferIncomplete is returned when the driver rejects an attachment set.
var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

// FramebufferSpec describes a render target before it is created.
type FramebufferSpec struct {
	Width        int32
	Height       int32
	Samples      int32
	Multisampled bool
	Attachments  []TextureFormat
}

// Framebuffer is an offscreen render target. Every successful Create or
// Resize replaces the attachment textures, so attachment handles must be
// re-fetched afterwards.
type Framebuffer struct {
	Width        int32
	Height       int32
	Samples      int32
	Multisampled bool
	Attachments  []TextureFormat

	dev        Device
	logger     *zap.Logger
	handle     Handle
	colors     []Handle
	depth      []Handle
	generation uint64
}

// NewFramebuffer describes a target. Nothing is allocated until Create.
func NewFramebuffer(dev Device, spec FramebufferSpec, logger *zap.Logger) *Framebuffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	samples := spec.Samples
	if samples < 1 {
		samples = 1
	}
	return &Framebuffer{
		Width:        spec.Width,
		Height:       spec.Height,
		Samples:      samples,
		Multisampled: spec.Multisampled,
		Attachments:  append([]TextureFormat(nil), spec.Attachments...),
		dev:          dev,
		logger:       logger,
	}
}

// Create builds a fresh framebuffer and attachment set. New objects are
// allocated before the old ones are deleted, so the attachment handles always
// change. On failure the new objects are deleted and the previous set stays.
func (f *Framebuffer) Create() error {
	handle := f.dev.CreateFramebuffer()
	f.dev.BindFramebuffer(handle)

	var colors, depth []Handle
	for _, format := range f.Attachments {
		desc := TextureDesc{
			Format:       format,
			Width:        f.Width,
			Height:       f.Height,
			Samples:      f.Samples,
			Multisampled: f.Multisampled,
		}
		tex := f.dev.CreateTexture(desc)
		if format.IsDepth() {
			f.dev.FramebufferTexture(DepthStencilAttachment, len(depth), tex, f.Multisampled)
			depth = append(depth, tex)
			continue
		}
		f.dev.FramebufferTexture(ColorAttachment, len(colors), tex, f.Multisampled)
		colors = append(colors, tex)
	}

	if len(colors) > 1 {
		f.dev.DrawBuffers(len(colors))
	}

	complete := f.dev.FramebufferComplete()
	f.dev.BindFramebuffer(0)
	if !complete {
		deleteObjects(f.dev, handle, colors, depth)
		return fmt.Errorf("create %dx%d framebuffer with %d samples: %w",
			f.Width, f.Height, f.Samples, ErrFramebufferIncomplete)
	}

	if f.handle != 0 {
		f.destroy()
	}
	f.handle, f.colors, f.depth = handle, colors, depth

	f.generation++
	f.logger.Debug("framebuffer created",
		zap.Int32("width", f.Width),
		zap.Int32("height", f.Height),
		zap.Int32("samples", f.Samples),
		zap.Uint64("generation", f.generation),
	)
	return nil
}

// Resize recreates the attachments at the new size. A failed resize keeps
// the previous size and attachments.
func (f *Framebuffer) Resize(width, height int32) error {
	prevWidth, prevHeight := f.Width, f.Height
	f.Width = width
	f.Height = height
	if err := f.Create(); err != nil {
		f.Width, f.Height = prevWidth, prevHeight
		return err
	}
	return nil
}

// Bind makes the framebuffer the render target and sets the viewport to its
// size.
func (f *Framebuffer) Bind() {
	f.dev.BindFramebuffer(f.handle)
	f.dev.Viewport(0, 0, f.Width, f.Height)
}

// Unbind restores the default framebuffer.
func (f *Framebuffer) Unbind() {
	f.dev.BindFramebuffer(0)
}

// ColorAttachment returns color texture i, or 0 when out of range.
func (f *Framebuffer) ColorAttachment(i int) Handle {
	if i < 0 || i >= len(f.colors) {
		return 0
	}
	return f.colors[i]
}

// ColorAttachmentRendererID is the first color texture.
func (f *Framebuffer) ColorAttachmentRendererID() Handle {
	return f.ColorAttachment(0)
}

// DepthAttachment is the first depth/stencil texture, or 0.
func (f *Framebuffer) DepthAttachment() Handle {
	if len(f.depth) == 0 {
		return 0
	}
	return f.depth[0]
}

// BindColorAttachment binds color attachment i as a sampled texture.
func (f *Framebuffer) BindColorAttachment(slot uint32, i int) {
	target := Texture2D
	if f.Multisampled {
		target = Texture2DMultisample
	}
	f.dev.BindTexture(slot, target, f.ColorAttachment(i))
}

// Handle is the device framebuffer, 0 before Create.
func (f *Framebuffer) Handle() Handle { return f.handle }

// Generation counts successful creations.
func (f *Framebuffer) Generation() uint64 { return f.generation }

// Release deletes the framebuffer and its attachments.
func (f *Framebuffer) Release() {
	if f.handle != 0 {
		f.destroy()
	}
}

func (f *Framebuffer) destroy() {
	deleteObjects(f.dev, f.handle, f.colors, f.depth)
	f.handle = 0
	f.colors = nil
	f.depth = nil
}

func deleteObjects(dev Device, handle Handle, colors, depth []Handle) {
	dev.DeleteFramebuffer(handle)
	for _, t := range colors {
		dev.DeleteTexture(t)
	}
	for _, t := range depth {
		dev.DeleteTexture(t)
	}
}
