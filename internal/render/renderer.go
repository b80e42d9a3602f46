// Package render turns a scene into draw submissions on a gpu.Device: a
// shader library, the shared quad and skybox pipelines, the main pass with its
// selection outline and the composition pass into the displayed target.
package render

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
)

const (
	ShaderPBR         = "PBR"
	ShaderSkybox      = "Skybox"
	ShaderGrid        = "Grid"
	ShaderOutline     = "Outline"
	ShaderComposition = "Composition"
)

// ShaderNames lists every shader Init loads, in load order.
var ShaderNames = []string{ShaderPBR, ShaderSkybox, ShaderGrid, ShaderOutline, ShaderComposition}

var ErrUnknownShader = errors.New("unknown shader")

// Material texture slots used by SubmitMesh.
const (
	SlotAlbedo uint32 = iota
	SlotNormal
	SlotMetalness
	SlotRoughness
)

var quadVertices = []float32{
	-1, -1, 0.1, 0, 0,
	1, -1, 0.1, 1, 0,
	1, 1, 0.1, 1, 1,
	-1, 1, 0.1, 0, 1,
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

var skyboxVertices = []float32{
	// back
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// front
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// left
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// right
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// bottom
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// top
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

const skyboxVertexCount = 36

// Renderer issues draw submissions. It holds no per-frame state; passes bind
// their own targets and set per-frame uniforms before submitting.
type Renderer struct {
	dev     gpu.Device
	logger  *zap.Logger
	shaders map[string]gpu.Shader

	quad   *gpu.GraphicsPipeline
	skybox *gpu.GraphicsPipeline

	clearColor mgl32.Vec4
}

func NewRenderer(dev gpu.Device, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		dev:     dev,
		logger:  logger,
		shaders: make(map[string]gpu.Shader),
	}
}

// Init builds the quad and skybox pipelines and loads the shader library from
// shaderDir (one <Name>.glsl per shader).
func (r *Renderer) Init(shaderDir string) error {
	r.logger.Info("initializing renderer", zap.String("shader_dir", shaderDir))

	quadLayout := gpu.NewPipelineLayout(
		gpu.Attribute{Name: "a_Position", Format: gpu.Float3},
		gpu.Attribute{Name: "a_TexCoords", Format: gpu.Float2},
	)
	r.quad = gpu.NewGraphicsPipeline(r.dev, quadLayout,
		gpu.NewVertexBuffer(r.dev, gpu.Bytes(quadVertices), gpu.StaticDraw),
		gpu.NewIndexBuffer(r.dev, gpu.Bytes(quadIndices), gpu.IndexUint32, gpu.StaticDraw),
	)
	if err := r.quad.Create(); err != nil {
		return fmt.Errorf("create quad pipeline: %w", err)
	}

	skyboxLayout := gpu.NewPipelineLayout(gpu.Attribute{Name: "a_Position", Format: gpu.Float3})
	r.skybox = gpu.NewGraphicsPipeline(r.dev, skyboxLayout,
		gpu.NewVertexBuffer(r.dev, gpu.Bytes(skyboxVertices), gpu.StaticDraw), nil)
	if err := r.skybox.Create(); err != nil {
		return fmt.Errorf("create skybox pipeline: %w", err)
	}

	for _, name := range ShaderNames {
		sh, err := gpu.LoadShaderFile(r.dev, filepath.Join(shaderDir, name+".glsl"))
		if err != nil {
			return err
		}
		r.shaders[name] = sh
		r.logger.Debug("shader loaded", zap.String("name", name))
	}
	return nil
}

// Shutdown releases the shader library and the shared pipelines.
func (r *Renderer) Shutdown() {
	r.logger.Info("shutting down renderer")
	for name, sh := range r.shaders {
		sh.Release()
		delete(r.shaders, name)
	}
	if r.quad != nil {
		r.quad.Release()
		r.quad = nil
	}
	if r.skybox != nil {
		r.skybox.Release()
		r.skybox = nil
	}
}

func (r *Renderer) Device() gpu.Device { return r.dev }

// Shader returns a shader from the library by name.
func (r *Renderer) Shader(name string) (gpu.Shader, error) {
	sh, ok := r.shaders[name]
	if !ok {
		return nil, fmt.Errorf("shader %q: %w", name, ErrUnknownShader)
	}
	return sh, nil
}

func (r *Renderer) mustShader(name string) gpu.Shader {
	sh, err := r.Shader(name)
	if err != nil {
		panic("render: " + err.Error() + " (Init not called?)")
	}
	return sh
}

func (r *Renderer) Clear() {
	r.dev.Clear(gpu.ClearAll)
}

func (r *Renderer) SetClearColor(c mgl32.Vec4) {
	r.clearColor = c
	r.dev.SetClearColor(c)
}

func (r *Renderer) ClearColor() mgl32.Vec4 { return r.clearColor }

// SetLineMode switches between wireframe and filled polygons.
func (r *Renderer) SetLineMode(enabled bool) {
	r.dev.SetPolygonLines(enabled)
}

func (r *Renderer) SetLineWidth(width float32) {
	r.dev.SetLineWidth(width)
}

// SubmitMesh draws every submesh of m with the PBR shader and the submesh's
// material. Unloaded meshes draw nothing.
func (r *Renderer) SubmitMesh(m *mesh.Mesh, transform mgl32.Mat4) {
	if !m.IsLoaded() {
		return
	}
	sh := r.mustShader(ShaderPBR)
	sh.Bind()
	m.Pipeline().Bind()

	for _, sub := range m.SubMeshes() {
		mat := m.Material(sub)

		sh.SetMat4("u_Transform", transform.Mul4(sub.Transform))

		sh.SetInt("u_EnableAlbedoTexture", boolInt(mat.UseAlbedoTexture))
		sh.SetInt("u_EnableNormalMapTexture", boolInt(mat.UseNormalTexture))
		sh.SetInt("u_EnableMetalnessTexture", boolInt(mat.UseMetalnessTexture))
		sh.SetInt("u_EnableRoughnessTexture", boolInt(mat.UseRoughnessTexture))

		sh.SetInt("u_AlbedoTexture", int32(SlotAlbedo))
		sh.SetInt("u_NormalMapTexture", int32(SlotNormal))
		sh.SetInt("u_MetalnessTexture", int32(SlotMetalness))
		sh.SetInt("u_RoughnessTexture", int32(SlotRoughness))

		bindIfLoaded(r.dev, mat.AlbedoTexture, SlotAlbedo)
		bindIfLoaded(r.dev, mat.NormalTexture, SlotNormal)
		bindIfLoaded(r.dev, mat.MetalnessTexture, SlotMetalness)
		bindIfLoaded(r.dev, mat.RoughnessTexture, SlotRoughness)

		sh.SetFloat3("u_AlbedoColor", mat.AlbedoColor)
		sh.SetFloat("u_Metalness", mat.Metalness)
		sh.SetFloat("u_Roughness", mat.Roughness)

		r.drawSubMesh(sub)
	}
}

// SubmitMeshWithShader draws m with a caller-bound shader, setting only
// u_Transform per submesh.
func (r *Renderer) SubmitMeshWithShader(m *mesh.Mesh, transform mgl32.Mat4, sh gpu.Shader) {
	if !m.IsLoaded() {
		return
	}
	sh.Bind()
	m.Pipeline().Bind()

	for _, sub := range m.SubMeshes() {
		sh.SetMat4("u_Transform", transform.Mul4(sub.Transform))
		r.drawSubMesh(sub)
	}
}

func (r *Renderer) drawSubMesh(sub mesh.SubMesh) {
	r.dev.DrawElements(gpu.Triangles, int32(sub.IndexCount), gpu.IndexUint32,
		int(sub.BaseIndex)*gpu.IndexUint32.Size(), int32(sub.BaseVertex))
}

// SubmitQuad draws the full-screen quad with sh.
func (r *Renderer) SubmitQuad(sh gpu.Shader) {
	sh.Bind()
	r.SubmitPipeline(r.quad)
}

// SubmitSkybox draws the unit cube around the camera with depth func
// LessEqual so it lands behind everything at the far plane.
func (r *Renderer) SubmitSkybox(skybox *gpu.TextureCube, sh gpu.Shader) {
	sh.Bind()
	if skybox.IsLoaded() {
		skybox.Bind(r.dev, 0)
	}
	r.skybox.Bind()

	r.dev.SetDepthFunc(gpu.LessEqual)
	r.dev.DrawArrays(gpu.Triangles, 0, skyboxVertexCount)
	r.dev.SetDepthFunc(gpu.Less)
}

// SubmitPipeline binds p and draws its whole index buffer, or every vertex
// when it has none.
func (r *Renderer) SubmitPipeline(p *gpu.GraphicsPipeline) {
	p.Bind()
	if ib := p.IndexBuffer; ib != nil {
		r.dev.DrawElements(gpu.Triangles, int32(ib.Count()), ib.Format(), 0, 0)
		return
	}
	r.dev.DrawArrays(gpu.Triangles, 0, int32(p.VertexCount()))
}

func bindIfLoaded(dev gpu.Device, tex *gpu.Texture, slot uint32) {
	if tex.IsLoaded() {
		tex.Bind(dev, slot)
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
