package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
)

var ErrInvalidModel = errors.New("raylib could not load model")

// raylib binds its 1x1 white texture to every unused material map.
const defaultTextureID = 1

// RaylibImporter reads models and textures through raylib. Texture handles
// are raylib's GL names, valid in the shared context. Models stay loaded
// until Close so their material textures remain alive.
type RaylibImporter struct {
	logger   *zap.Logger
	models   []rl.Model
	textures []rl.Texture2D
}

var (
	_ mesh.Importer = (*RaylibImporter)(nil)
	_ CubemapLoader = (*RaylibImporter)(nil)
)

func NewRaylibImporter(logger *zap.Logger) *RaylibImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RaylibImporter{logger: logger}
}

func (r *RaylibImporter) Import(path string) (*mesh.ImportedScene, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	model := rl.LoadModel(path)
	if !rl.IsModelValid(model) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidModel)
	}
	r.models = append(r.models, model)

	anims := rl.LoadModelAnimations(path)
	hasAnims := len(anims) > 0
	if hasAnims {
		rl.UnloadModelAnimations(anims)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	scene := &mesh.ImportedScene{
		Root:          &mesh.Node{Name: base, Transform: toMat4(model.Transform)},
		HasAnimations: hasAnims,
	}

	materials := unsafe.Slice(model.Materials, model.MaterialCount)
	for i := range materials {
		scene.Materials = append(scene.Materials, importMaterial(fmt.Sprintf("%s#%d", base, i), &materials[i]))
	}

	meshes := unsafe.Slice(model.Meshes, model.MeshCount)
	meshMaterial := unsafe.Slice(model.MeshMaterial, model.MeshCount)
	for i := range meshes {
		im := importMesh(&meshes[i])
		im.Name = fmt.Sprintf("%s.%d", base, i)
		im.MaterialIndex = int(meshMaterial[i])
		scene.Meshes = append(scene.Meshes, im)
		scene.Root.Meshes = append(scene.Root.Meshes, i)
	}

	r.logger.Debug("model imported",
		zap.String("path", path),
		zap.Int("meshes", len(scene.Meshes)),
		zap.Int("materials", len(scene.Materials)),
		zap.Bool("animated", hasAnims),
	)
	return scene, nil
}

func (r *RaylibImporter) LoadTexture(path string) (*gpu.Texture, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	tex := rl.LoadTexture(path)
	if !rl.IsTextureValid(tex) {
		return nil, fmt.Errorf("raylib could not load texture %s", path)
	}
	r.textures = append(r.textures, tex)
	return &gpu.Texture{
		Handle: gpu.Handle(tex.ID),
		Width:  tex.Width,
		Height: tex.Height,
		Path:   path,
	}, nil
}

// LoadCubemap builds a cube map from one image holding all six faces in any
// layout raylib can detect (cross or strip).
func (r *RaylibImporter) LoadCubemap(path string) (*gpu.TextureCube, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	img := rl.LoadImage(path)
	defer rl.UnloadImage(img)

	tex := rl.LoadTextureCubemap(img, rl.CubemapLayoutAutoDetect)
	if !rl.IsTextureValid(tex) {
		return nil, fmt.Errorf("raylib could not load cube map %s", path)
	}
	r.textures = append(r.textures, tex)
	return &gpu.TextureCube{Handle: gpu.Handle(tex.ID), Size: tex.Width, Path: path}, nil
}

// Close unloads every model and texture this importer created.
func (r *RaylibImporter) Close() {
	for _, m := range r.models {
		rl.UnloadModel(m)
	}
	for _, t := range r.textures {
		rl.UnloadTexture(t)
	}
	r.models = nil
	r.textures = nil
}

func toMat4(m rl.Matrix) mgl32.Mat4 {
	return mgl32.Mat4{
		m.M0, m.M1, m.M2, m.M3,
		m.M4, m.M5, m.M6, m.M7,
		m.M8, m.M9, m.M10, m.M11,
		m.M12, m.M13, m.M14, m.M15,
	}
}

func importMesh(m *rl.Mesh) mesh.ImportedMesh {
	n := int(m.VertexCount)
	var im mesh.ImportedMesh

	positions := unsafe.Slice(m.Vertices, n*3)
	im.Positions = make([]mgl32.Vec3, n)
	for i := range im.Positions {
		im.Positions[i] = mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}

	if m.Normals != nil {
		normals := unsafe.Slice(m.Normals, n*3)
		im.Normals = make([]mgl32.Vec3, n)
		for i := range im.Normals {
			im.Normals[i] = mgl32.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
		}
	}

	// raylib stores xyz plus handedness in w; the bitangent is rebuilt from it.
	if m.Tangents != nil && m.Normals != nil {
		tangents := unsafe.Slice(m.Tangents, n*4)
		im.Tangents = make([]mgl32.Vec3, n)
		im.Bitangents = make([]mgl32.Vec3, n)
		for i := range im.Tangents {
			t := mgl32.Vec3{tangents[i*4], tangents[i*4+1], tangents[i*4+2]}
			im.Tangents[i] = t
			im.Bitangents[i] = im.Normals[i].Cross(t).Mul(tangents[i*4+3])
		}
	}

	if m.Texcoords != nil {
		uv := unsafe.Slice(m.Texcoords, n*2)
		im.TexCoords = make([]mgl32.Vec2, n)
		for i := range im.TexCoords {
			im.TexCoords[i] = mgl32.Vec2{uv[i*2], uv[i*2+1]}
		}
	}

	if m.Indices != nil {
		indices := unsafe.Slice(m.Indices, m.TriangleCount*3)
		im.Indices = make([]uint32, len(indices))
		for i, idx := range indices {
			im.Indices[i] = uint32(idx)
		}
	} else {
		im.Indices = make([]uint32, n)
		for i := range im.Indices {
			im.Indices[i] = uint32(i)
		}
	}
	return im
}

func importMaterial(name string, m *rl.Material) mesh.ImportedMaterial {
	maps := unsafe.Slice(m.Maps, rl.MaxMaterialMaps)
	albedo := maps[rl.MapAlbedo]

	im := mesh.ImportedMaterial{
		Name: name,
		Diffuse: mgl32.Vec3{
			float32(albedo.Color.R) / 255,
			float32(albedo.Color.G) / 255,
			float32(albedo.Color.B) / 255,
		},
	}
	if v := maps[rl.MapMetalness].Value; v > 0 {
		im.Reflectivity, im.HasReflectivity = v, true
	}
	im.Albedo = textureRef(maps[rl.MapAlbedo].Texture)
	im.Normal = textureRef(maps[rl.MapNormal].Texture)
	im.Metalness = textureRef(maps[rl.MapMetalness].Texture)
	im.Roughness = textureRef(maps[rl.MapRoughness].Texture)
	return im
}

func textureRef(t rl.Texture2D) mesh.TextureRef {
	if t.ID == 0 || t.ID == defaultTextureID {
		return mesh.TextureRef{}
	}
	return mesh.TextureRef{Texture: &gpu.Texture{
		Handle: gpu.Handle(t.ID),
		Width:  t.Width,
		Height: t.Height,
	}}
}
