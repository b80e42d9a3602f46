// Package mesh holds imported geometry: one shared vertex/index buffer pair
// per file, split into submeshes that each carry a node transform and a
// material index.
package mesh

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/gpu"
	"mirgo/internal/physics"
)

var (
	ErrNoMeshes   = errors.New("file has no meshes")
	ErrAnimated   = errors.New("animated meshes are not supported")
	ErrNoImporter = errors.New("no importer")
)

// Vertex is the interleaved layout uploaded to the GPU.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Binormal  mgl32.Vec3
	TexCoords mgl32.Vec2
}

// VertexSize is the byte stride of Vertex.
const VertexSize = 56

type Triangle struct {
	V1, V2, V3 Vertex
}

// SubMesh is a draw range of the shared buffers. Indices are relative to
// BaseVertex. Bounds is in the submesh's own space, before Transform.
type SubMesh struct {
	Name          string
	BaseVertex    uint32
	BaseIndex     uint32
	VertexCount   uint32
	IndexCount    uint32
	MaterialIndex int
	Transform     mgl32.Mat4
	Bounds        physics.AABB

	firstTriangle int
	triangleCount int
}

// Layout is the vertex layout of every mesh pipeline.
var Layout = gpu.NewPipelineLayout(
	gpu.Attribute{Name: "a_Position", Format: gpu.Float3},
	gpu.Attribute{Name: "a_Normal", Format: gpu.Float3},
	gpu.Attribute{Name: "a_Tangent", Format: gpu.Float3},
	gpu.Attribute{Name: "a_Binormal", Format: gpu.Float3},
	gpu.Attribute{Name: "a_TexCoord", Format: gpu.Float2},
)

type Mesh struct {
	path     string
	loaded   bool
	importer Importer
	dev      gpu.Device
	logger   *zap.Logger

	vertices  []Vertex
	indices   []uint32
	subMeshes []SubMesh
	materials []Material
	triangles []Triangle
	bounds    physics.AABB

	pipeline *gpu.GraphicsPipeline
}

func New(importer Importer, dev gpu.Device, logger *zap.Logger) *Mesh {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mesh{
		importer: importer,
		dev:      dev,
		logger:   logger,
		bounds:   physics.EmptyAABB(),
	}
}

// Load imports path and builds a mesh. Failures are logged and leave the
// mesh unloaded.
func Load(path string, importer Importer, dev gpu.Device, logger *zap.Logger) *Mesh {
	m := New(importer, dev, logger)
	m.Load(path)
	return m
}

// Load replaces the mesh contents with the file at path. On failure the mesh
// is left empty and IsLoaded reports false.
func (m *Mesh) Load(path string) {
	m.release()
	m.path = path

	m.logger.Info("loading mesh", zap.String("path", path))
	if err := m.load(path); err != nil {
		m.logger.Error("mesh load failed", zap.String("path", path), zap.Error(err))
		m.release()
		return
	}
	m.loaded = true
	m.logger.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("submeshes", len(m.subMeshes)),
		zap.Int("materials", len(m.materials)),
		zap.Int("vertices", len(m.vertices)),
		zap.Int("triangles", len(m.triangles)),
	)
}

func (m *Mesh) load(path string) error {
	if m.importer == nil {
		return ErrNoImporter
	}
	scene, err := m.importer.Import(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	if scene == nil || scene.Root == nil || len(scene.Meshes) == 0 {
		return ErrNoMeshes
	}
	if scene.HasAnimations {
		return ErrAnimated
	}

	b := builder{mesh: m, scene: scene, dir: filepath.Dir(path), byName: make(map[string]int)}
	b.processNode(scene.Root, mgl32.Ident4())
	if len(m.subMeshes) == 0 {
		return ErrNoMeshes
	}
	m.buildTriangles()
	return m.buildPipeline()
}

type builder struct {
	mesh   *Mesh
	scene  *ImportedScene
	dir    string
	byName map[string]int
}

// processNode walks depth first, children after the node's own meshes.
func (b *builder) processNode(n *Node, parent mgl32.Mat4) {
	transform := parent.Mul4(n.local())
	for _, idx := range n.Meshes {
		if idx < 0 || idx >= len(b.scene.Meshes) {
			b.mesh.logger.Warn("node references missing mesh",
				zap.String("node", n.Name), zap.Int("mesh", idx))
			continue
		}
		b.processMesh(&b.scene.Meshes[idx], transform)
	}
	for _, child := range n.Children {
		if child != nil {
			b.processNode(child, transform)
		}
	}
}

func (b *builder) processMesh(im *ImportedMesh, transform mgl32.Mat4) {
	m := b.mesh
	sub := SubMesh{
		Name:       im.Name,
		BaseVertex: uint32(len(m.vertices)),
		BaseIndex:  uint32(len(m.indices)),
		Transform:  transform,
		Bounds:     physics.EmptyAABB(),
	}

	for i, p := range im.Positions {
		v := Vertex{Position: p}
		if i < len(im.Normals) {
			v.Normal = im.Normals[i]
		}
		if i < len(im.Tangents) {
			v.Tangent = im.Tangents[i]
		}
		if i < len(im.Bitangents) {
			v.Binormal = im.Bitangents[i]
		}
		if i < len(im.TexCoords) {
			v.TexCoords = im.TexCoords[i]
		}
		m.vertices = append(m.vertices, v)
		sub.Bounds = sub.Bounds.Extend(p)
	}
	m.indices = append(m.indices, im.Indices...)

	sub.VertexCount = uint32(len(m.vertices)) - sub.BaseVertex
	sub.IndexCount = uint32(len(m.indices)) - sub.BaseIndex
	sub.MaterialIndex = b.material(im.MaterialIndex)

	m.subMeshes = append(m.subMeshes, sub)
	if !sub.Bounds.IsEmpty() {
		m.bounds = m.bounds.Union(sub.Bounds.Transform(transform))
	}
}

// material returns the mesh material index for an imported material,
// reusing an earlier entry with the same name.
func (b *builder) material(imported int) int {
	var im ImportedMaterial
	if imported >= 0 && imported < len(b.scene.Materials) {
		im = b.scene.Materials[imported]
	}
	name := im.Name
	if name == "" {
		name = DefaultMaterialName
	}
	if idx, ok := b.byName[name]; ok {
		return idx
	}

	mat := materialFrom(im)
	mat.AlbedoTexture, mat.UseAlbedoTexture = b.texture(im.Albedo, name, "albedo")
	mat.NormalTexture, mat.UseNormalTexture = b.texture(im.Normal, name, "normal")
	mat.MetalnessTexture, mat.UseMetalnessTexture = b.texture(im.Metalness, name, "metalness")
	mat.RoughnessTexture, mat.UseRoughnessTexture = b.texture(im.Roughness, name, "roughness")

	b.mesh.logger.Debug("material",
		zap.String("name", name),
		zap.Float32s("albedo", mat.AlbedoColor[:]),
		zap.Float32("metalness", mat.Metalness),
		zap.Float32("roughness", mat.Roughness),
	)

	idx := len(b.mesh.materials)
	b.mesh.materials = append(b.mesh.materials, mat)
	b.byName[name] = idx
	return idx
}

func (b *builder) texture(ref TextureRef, material, kind string) (*gpu.Texture, bool) {
	if ref.empty() {
		return nil, false
	}
	if ref.Texture != nil {
		return ref.Texture, ref.Texture.IsLoaded()
	}
	path := filepath.Join(b.dir, ref.Path)
	tex, err := b.mesh.importer.LoadTexture(path)
	if err != nil || !tex.IsLoaded() {
		b.mesh.logger.Warn("material texture not loaded",
			zap.String("material", material),
			zap.String("kind", kind),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, false
	}
	return tex, true
}

func (m *Mesh) buildTriangles() {
	for i := range m.subMeshes {
		sub := &m.subMeshes[i]
		sub.firstTriangle = len(m.triangles)
		idx := m.indices[sub.BaseIndex : sub.BaseIndex+sub.IndexCount]
		for j := 0; j+2 < len(idx); j += 3 {
			a, okA := m.vertexAt(sub.BaseVertex + idx[j])
			b, okB := m.vertexAt(sub.BaseVertex + idx[j+1])
			c, okC := m.vertexAt(sub.BaseVertex + idx[j+2])
			if !okA || !okB || !okC {
				continue
			}
			m.triangles = append(m.triangles, Triangle{V1: a, V2: b, V3: c})
		}
		sub.triangleCount = len(m.triangles) - sub.firstTriangle
	}
}

func (m *Mesh) vertexAt(i uint32) (Vertex, bool) {
	if int(i) >= len(m.vertices) {
		return Vertex{}, false
	}
	return m.vertices[i], true
}

func (m *Mesh) buildPipeline() error {
	if m.dev == nil {
		return nil
	}
	vb := gpu.NewVertexBuffer(m.dev, gpu.Bytes(m.vertices), gpu.StaticDraw)
	ib := gpu.NewIndexBuffer(m.dev, gpu.Bytes(m.indices), gpu.IndexUint32, gpu.StaticDraw)
	p := gpu.NewGraphicsPipeline(m.dev, Layout, vb, ib)
	if err := p.Create(); err != nil {
		vb.Release()
		ib.Release()
		return fmt.Errorf("mesh pipeline: %w", err)
	}
	m.pipeline = p
	return nil
}

func (m *Mesh) release() {
	if m.pipeline != nil {
		m.pipeline.Release()
		m.pipeline = nil
	}
	m.loaded = false
	m.vertices = nil
	m.indices = nil
	m.subMeshes = nil
	m.materials = nil
	m.triangles = nil
	m.bounds = physics.EmptyAABB()
}

// Release frees the GPU buffers. The mesh reads as unloaded afterwards.
func (m *Mesh) Release() {
	m.release()
}

func (m *Mesh) IsLoaded() bool { return m != nil && m.loaded }
func (m *Mesh) Path() string   { return m.path }

func (m *Mesh) SubMeshes() []SubMesh  { return m.subMeshes }
func (m *Mesh) Materials() []Material { return m.materials }
func (m *Mesh) Triangles() []Triangle { return m.triangles }
func (m *Mesh) Vertices() []Vertex    { return m.vertices }
func (m *Mesh) Indices() []uint32     { return m.indices }
func (m *Mesh) Bounds() physics.AABB  { return m.bounds }

// Pipeline is nil for meshes built without a device.
func (m *Mesh) Pipeline() *gpu.GraphicsPipeline { return m.pipeline }

// SubMeshTriangles returns the triangles built from one submesh's indices.
func (m *Mesh) SubMeshTriangles(i int) []Triangle {
	if i < 0 || i >= len(m.subMeshes) {
		return nil
	}
	sub := m.subMeshes[i]
	return m.triangles[sub.firstTriangle : sub.firstTriangle+sub.triangleCount]
}

// Material returns the material of a submesh, or the default material when
// the index is out of range.
func (m *Mesh) Material(sub SubMesh) Material {
	if sub.MaterialIndex >= 0 && sub.MaterialIndex < len(m.materials) {
		return m.materials[sub.MaterialIndex]
	}
	return NewMaterial("")
}
