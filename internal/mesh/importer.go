package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/gpu"
)

// Importer turns a model file into an in-memory node tree.
type Importer interface {
	TextureLoader
	Import(path string) (*ImportedScene, error)
}

// TextureLoader uploads an image file as a 2D texture.
type TextureLoader interface {
	LoadTexture(path string) (*gpu.Texture, error)
}

type ImportedScene struct {
	Root          *Node
	Meshes        []ImportedMesh
	Materials     []ImportedMaterial
	HasAnimations bool
}

// Node is one entry of the import hierarchy. A zero Transform is read as
// identity.
type Node struct {
	Name      string
	Transform mgl32.Mat4
	Meshes    []int
	Children  []*Node
}

func (n *Node) local() mgl32.Mat4 {
	if n.Transform == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return n.Transform
}

// ImportedMesh holds per-vertex streams. Optional streams may be shorter than
// Positions; missing entries read as zero. Indices are local to the mesh.
type ImportedMesh struct {
	Name       string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	TexCoords  []mgl32.Vec2
	Indices    []uint32

	MaterialIndex int
}

// TextureRef names a texture by path relative to the model file, or carries
// one the importer already uploaded.
type TextureRef struct {
	Path    string
	Texture *gpu.Texture
}

func (r TextureRef) empty() bool {
	return r.Path == "" && r.Texture == nil
}

// ImportedMaterial mirrors the classic diffuse/shininess material model.
// Absent values fall back to the defaults applied by the mesh loader.
type ImportedMaterial struct {
	Name    string
	Diffuse mgl32.Vec3

	Shininess       float32
	HasShininess    bool
	Reflectivity    float32
	HasReflectivity bool

	Albedo    TextureRef
	Normal    TextureRef
	Metalness TextureRef
	Roughness TextureRef
}
