package render

import (
	"fmt"

	"go.uber.org/zap"

	"mirgo/internal/engine"
	"mirgo/internal/gpu"
)

// Pipeline owns the two render targets and runs the main and composition
// passes into them. Output is only valid until the next Resize.
type Pipeline struct {
	Main  *gpu.Framebuffer
	Final *gpu.Framebuffer

	Scene       *ScenePass
	Composition *CompositionPass

	renderer *Renderer
	logger   *zap.Logger

	// size of the last successful Create or Resize
	width, height int32
}

// NewPipeline describes a multisampled RGBA16F + depth/stencil main target and
// an RGBA8 final target of the same size. Nothing is allocated until Create.
func NewPipeline(r *Renderer, width, height, samples int32, opts SceneOptions, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	dev := r.Device()
	main := gpu.NewFramebuffer(dev, gpu.FramebufferSpec{
		Width:        width,
		Height:       height,
		Samples:      samples,
		Multisampled: true,
		Attachments:  []gpu.TextureFormat{gpu.RGBA16F, gpu.Depth24Stencil8},
	}, logger.Named("main"))
	final := gpu.NewFramebuffer(dev, gpu.FramebufferSpec{
		Width:       width,
		Height:      height,
		Attachments: []gpu.TextureFormat{gpu.RGBA8},
	}, logger.Named("final"))

	return &Pipeline{
		Main:        main,
		Final:       final,
		Scene:       NewScenePass(r, main, opts, logger),
		Composition: NewCompositionPass(r, main, final),
		renderer:    r,
		logger:      logger,
	}
}

// Create allocates both targets at the described size.
func (p *Pipeline) Create() error {
	if err := p.Main.Create(); err != nil {
		return fmt.Errorf("main target: %w", err)
	}
	if err := p.Final.Create(); err != nil {
		return fmt.Errorf("final target: %w", err)
	}
	p.width, p.height = p.Main.Width, p.Main.Height
	return nil
}

// Resize recreates both targets when the viewport size changed. Zero sizes
// (a collapsed panel) and sizes equal to the last successful one are ignored,
// so a failed resize is retried on the next call. It reports whether the
// targets were recreated.
func (p *Pipeline) Resize(width, height int32) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, nil
	}
	if width == p.width && height == p.height {
		return false, nil
	}
	p.logger.Debug("resizing render targets",
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	if err := p.Main.Resize(width, height); err != nil {
		return false, fmt.Errorf("resize main target: %w", err)
	}
	if err := p.Final.Resize(width, height); err != nil {
		return false, fmt.Errorf("resize final target: %w", err)
	}
	p.width, p.height = width, height
	return true, nil
}

// Size is the size both targets were last created at.
func (p *Pipeline) Size() (int32, int32) { return p.width, p.height }

// Render runs the main pass then the composition pass.
func (p *Pipeline) Render(scene *engine.Scene, view View, selected engine.EntityID) {
	p.Scene.Render(scene, view, selected)
	p.Composition.Render(scene.Environment)
}

// Output is the final color texture. Re-fetch it after every Resize.
func (p *Pipeline) Output() gpu.Handle {
	return p.Final.ColorAttachmentRendererID()
}

// Release deletes both targets.
func (p *Pipeline) Release() {
	p.Main.Release()
	p.Final.Release()
}
