package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/gpu"
)

const (
	DefaultMaterialName = "Unknown Material"

	defaultShininess = 80
)

// Material holds PBR parameters plus up to four textures. A texture is only
// sampled when its Use flag is set, which happens when it loaded.
type Material struct {
	Name        string
	AlbedoColor mgl32.Vec3
	Metalness   float32
	Roughness   float32

	AlbedoTexture    *gpu.Texture
	NormalTexture    *gpu.Texture
	MetalnessTexture *gpu.Texture
	RoughnessTexture *gpu.Texture

	UseAlbedoTexture    bool
	UseNormalTexture    bool
	UseMetalnessTexture bool
	UseRoughnessTexture bool
}

func NewMaterial(name string) Material {
	if name == "" {
		name = DefaultMaterialName
	}
	return Material{
		Name:        name,
		AlbedoColor: mgl32.Vec3{0.8, 0.2, 0.15},
		Metalness:   0.5,
		Roughness:   0.5,
	}
}

// RoughnessFromShininess maps a Phong exponent in [0,100] to roughness.
func RoughnessFromShininess(shininess float32) float32 {
	return 1 - float32(math.Sqrt(float64(shininess/100)))
}

// materialFrom converts the imported values. Textures are attached by the
// caller.
func materialFrom(im ImportedMaterial) Material {
	m := NewMaterial(im.Name)
	shininess := float32(defaultShininess)
	if im.HasShininess {
		shininess = im.Shininess
	}
	var metalness float32
	if im.HasReflectivity {
		metalness = im.Reflectivity
	}
	m.AlbedoColor = im.Diffuse
	m.Metalness = metalness
	m.Roughness = RoughnessFromShininess(shininess)
	return m
}
