package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/engine"
	"mirgo/internal/gpu"
)

// MaxDirectionalLights is the number of light slots the PBR shader declares.
const MaxDirectionalLights = 4

// Environment map slots, after the four material slots.
const (
	SlotRadiance uint32 = iota + 4
	SlotIrradiance
	SlotBRDFLUT
)

const (
	DefaultOutlineScale = 1.03
	gridScale           = 16
	gridResolution      = 0.025
)

var DefaultOutlineColor = mgl32.Vec4{1, 0.5, 0, 1}

// View is the camera state a pass renders from.
type View struct {
	Projection mgl32.Mat4
	View       mgl32.Mat4
	Position   mgl32.Vec3
}

func (v View) ViewProjection() mgl32.Mat4 {
	return v.Projection.Mul4(v.View)
}

// SceneOptions toggles the optional parts of the main pass.
type SceneOptions struct {
	ShowSkybox     bool
	ShowGrid       bool
	FrustumCulling bool
	OutlineScale   float32
	OutlineColor   mgl32.Vec4
	// Wireframe draws scene meshes as lines. The outline stays filled.
	Wireframe bool
}

func DefaultSceneOptions() SceneOptions {
	return SceneOptions{
		ShowSkybox:     true,
		FrustumCulling: true,
		OutlineScale:   DefaultOutlineScale,
		OutlineColor:   DefaultOutlineColor,
	}
}

// PassStats counts what the last main pass did.
type PassStats struct {
	Submitted int
	Culled    int
	Outlined  bool
}

// ScenePass draws every renderable entity into the offscreen target. The
// selected entity is drawn last with stencil writes and then outlined.
type ScenePass struct {
	Options SceneOptions

	renderer *Renderer
	target   *gpu.Framebuffer
	logger   *zap.Logger
	stats    PassStats
}

func NewScenePass(r *Renderer, target *gpu.Framebuffer, opts SceneOptions, logger *zap.Logger) *ScenePass {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScenePass{Options: opts, renderer: r, target: target, logger: logger}
}

func (p *ScenePass) Stats() PassStats { return p.stats }

func (p *ScenePass) Render(scene *engine.Scene, view View, selected engine.EntityID) {
	r := p.renderer
	dev := r.Device()
	p.stats = PassStats{}

	p.target.Bind()
	dev.SetDepthTest(true)
	dev.SetStencilTest(true)
	dev.StencilMask(0xFF)
	r.Clear()

	// Non-selected geometry never touches the stencil buffer.
	dev.StencilOp(gpu.Keep, gpu.Keep, gpu.Replace)
	dev.StencilMask(0x00)

	env := scene.Environment
	vp := view.ViewProjection()
	p.setSceneUniforms(env, view, vp)

	if p.Options.ShowSkybox && env.RadianceMap.IsLoaded() {
		sky := r.mustShader(ShaderSkybox)
		sky.Bind()
		sky.SetMat4("u_ViewProjection", view.Projection.Mul4(view.View.Mat3().Mat4()))
		sky.SetFloat("u_TextureLod", env.TextureLod)
		sky.SetInt("u_Texture", 0)
		r.SubmitSkybox(env.RadianceMap, sky)
	}

	var frustum Frustum
	if p.Options.FrustumCulling {
		frustum = ExtractFrustum(vp)
	}

	var selectedTransform mgl32.Mat4
	var selectedRef *engine.MeshRef
	r.SetLineMode(p.Options.Wireframe)
	engine.Each2(scene.Registry(), func(id engine.EntityID, t *engine.Transform, ref *engine.MeshRef) {
		if !ref.Loaded() {
			return
		}
		m := t.Matrix()
		if p.Options.FrustumCulling && !frustum.ContainsAABB(ref.Mesh.Bounds().Transform(m)) {
			p.stats.Culled++
			return
		}
		if id == selected {
			selectedTransform, selectedRef = m, ref
			return
		}
		r.SubmitMesh(ref.Mesh, m)
		p.stats.Submitted++
	})

	if selectedRef != nil {
		p.drawSelected(selectedRef, selectedTransform, vp)
	}
	r.SetLineMode(false)

	if p.Options.ShowGrid {
		dev.StencilMask(0x00)
		grid := r.mustShader(ShaderGrid)
		grid.Bind()
		grid.SetMat4("u_ViewProjection", vp)
		grid.SetMat4("u_Transform", mgl32.HomogRotate3DX(mgl32.DegToRad(90)).Mul4(mgl32.Scale3D(gridScale, gridScale, gridScale)))
		grid.SetFloat("u_Scale", gridScale)
		grid.SetFloat("u_Resolution", gridResolution)
		r.SubmitQuad(grid)
	}

	dev.SetStencilTest(false)
	p.target.Unbind()
}

func (p *ScenePass) setSceneUniforms(env engine.Environment, view View, vp mgl32.Mat4) {
	r := p.renderer
	pbr := r.mustShader(ShaderPBR)
	pbr.Bind()
	pbr.SetMat4("u_ViewProjectionMatrix", vp)
	pbr.SetFloat3("u_CameraPosition", view.Position)

	for i := 0; i < MaxDirectionalLights; i++ {
		light := engine.DirectionalLight{}
		if i == 0 {
			light = env.DirectionalLight
		}
		prefix := fmt.Sprintf("u_DirectionalLights[%d].", i)
		pbr.SetInt(prefix+"Active", boolInt(light.Active))
		pbr.SetFloat3(prefix+"Direction", light.Direction)
		pbr.SetFloat3(prefix+"Radiance", light.Radiance)
		pbr.SetFloat(prefix+"Multiplier", light.Intensity)
	}

	ibl := env.RadianceMap.IsLoaded() && env.IrradianceMap.IsLoaded() && env.BRDFLUT.IsLoaded()
	pbr.SetInt("u_EnableIBL", boolInt(ibl))
	pbr.SetFloat("u_TextureLod", env.TextureLod)
	pbr.SetInt("u_EnvRadianceTex", int32(SlotRadiance))
	pbr.SetInt("u_EnvIrradianceTex", int32(SlotIrradiance))
	pbr.SetInt("u_BRDFLUTTexture", int32(SlotBRDFLUT))
	if ibl {
		dev := r.Device()
		env.RadianceMap.Bind(dev, SlotRadiance)
		env.IrradianceMap.Bind(dev, SlotIrradiance)
		env.BRDFLUT.Bind(dev, SlotBRDFLUT)
	}
}

func (p *ScenePass) drawSelected(ref *engine.MeshRef, transform, vp mgl32.Mat4) {
	r := p.renderer
	dev := r.Device()

	dev.StencilFunc(gpu.Always, 1, 0xFF)
	dev.StencilMask(0xFF)
	r.SubmitMesh(ref.Mesh, transform)
	p.stats.Submitted++

	outline := r.mustShader(ShaderOutline)
	outline.Bind()
	outline.SetMat4("u_ViewProjection", vp)
	outline.SetFloat4("u_Color", p.Options.OutlineColor)

	dev.StencilFunc(gpu.NotEqual, 1, 0xFF)
	dev.StencilMask(0x00)
	dev.SetDepthTest(false)
	r.SetLineMode(false)

	s := p.Options.OutlineScale
	r.SubmitMeshWithShader(ref.Mesh, transform.Mul4(mgl32.Scale3D(s, s, s)), outline)
	p.stats.Outlined = true

	dev.StencilMask(0xFF)
	dev.StencilFunc(gpu.Always, 0, 0xFF)
	dev.SetDepthTest(true)
}

// CompositionPass tonemaps the main target into the final target. The shader
// reads every sample of the multisampled source itself.
type CompositionPass struct {
	renderer *Renderer
	source   *gpu.Framebuffer
	target   *gpu.Framebuffer
}

func NewCompositionPass(r *Renderer, source, target *gpu.Framebuffer) *CompositionPass {
	return &CompositionPass{renderer: r, source: source, target: target}
}

func (p *CompositionPass) Render(env engine.Environment) {
	r := p.renderer
	p.target.Bind()
	r.Clear()

	sh := r.mustShader(ShaderComposition)
	sh.Bind()
	p.source.BindColorAttachment(0, 0)
	sh.SetInt("u_Texture", 0)
	sh.SetFloat("u_Exposure", env.Exposure)
	sh.SetInt("u_Tonemap", boolInt(env.Tonemap))
	sh.SetInt("u_TextureSamples", p.source.Samples)
	r.SubmitQuad(sh)

	p.target.Unbind()
}
