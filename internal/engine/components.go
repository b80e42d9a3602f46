package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
	"mirgo/internal/physics"
)

// Identity names an entity and gives it an id that survives snapshot and
// restore, unlike its EntityID.
type Identity struct {
	UUID uuid.UUID
	Name string
}

// Transform holds translation, Euler rotation in radians and scale.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

const fullTurn = 2 * math.Pi

// SetRotation wraps each axis that reached a full turn back by one turn.
func (t *Transform) SetRotation(r mgl32.Vec3) {
	for i := range r {
		if r[i] >= fullTurn {
			r[i] -= fullTurn
		}
	}
	t.Rotation = r
}

func (t *Transform) Rotate(offset mgl32.Vec3) {
	t.SetRotation(t.Rotation.Add(offset))
}

// RotationMatrix applies X, then Y, then Z.
func (t Transform) RotationMatrix() mgl32.Mat4 {
	if t.Rotation == (mgl32.Vec3{}) {
		return mgl32.Ident4()
	}
	return mgl32.HomogRotate3DZ(t.Rotation[2]).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DX(t.Rotation[0]))
}

// Matrix composes translate * rotate * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.RotationMatrix()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// MeshRef points at a mesh shared by every entity that loaded the same path.
type MeshRef struct {
	Mesh *mesh.Mesh
}

// Loaded reports whether the reference is safe to render or pick.
func (m MeshRef) Loaded() bool {
	return m.Mesh != nil && m.Mesh.IsLoaded()
}

// Camera is a perspective scene camera placed by the entity's Transform.
type Camera struct {
	FOV         float32 // degrees
	Near        float32
	Far         float32
	AspectRatio float32
	Primary     bool
}

func NewCamera() Camera {
	return Camera{FOV: 45, Near: 0.1, Far: 1000, AspectRatio: 1280.0 / 720.0}
}

// SetBounds updates the aspect ratio from a viewport size.
func (c *Camera) SetBounds(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
	}
}

func (c Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.Near, c.Far)
}

// View inverts the camera's placement. Scale is ignored.
func (c Camera) View(t Transform) mgl32.Mat4 {
	place := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.RotationMatrix())
	return place.Inv()
}

func (c Camera) ProjectionView(t Transform) mgl32.Mat4 {
	return c.Projection().Mul4(c.View(t))
}

type Rigidbody2D struct {
	Type physics.BodyType
	// Runtime is set between Play and Reset only.
	Runtime physics.BodyID
}

// BoxCollider2D's Size holds half extents.
type BoxCollider2D struct {
	Offset mgl32.Vec2
	Size   mgl32.Vec2

	Density              float32
	Friction             float32
	Restitution          float32
	RestitutionThreshold float32

	Runtime physics.FixtureID
}

func NewBoxCollider2D() BoxCollider2D {
	return BoxCollider2D{
		Size:                 mgl32.Vec2{0.5, 0.5},
		Density:              1,
		Friction:             0.5,
		RestitutionThreshold: 0.5,
	}
}

func (c BoxCollider2D) material() physics.FixtureMaterial {
	return physics.FixtureMaterial{
		Density:              c.Density,
		Friction:             c.Friction,
		Restitution:          c.Restitution,
		RestitutionThreshold: c.RestitutionThreshold,
	}
}

type CircleCollider2D struct {
	Offset mgl32.Vec2
	Radius float32

	Density              float32
	Friction             float32
	Restitution          float32
	RestitutionThreshold float32

	Runtime physics.FixtureID
}

func NewCircleCollider2D() CircleCollider2D {
	return CircleCollider2D{
		Radius:               0.5,
		Density:              1,
		Friction:             1,
		RestitutionThreshold: 0.5,
	}
}

func (c CircleCollider2D) material() physics.FixtureMaterial {
	return physics.FixtureMaterial{
		Density:              c.Density,
		Friction:             c.Friction,
		Restitution:          c.Restitution,
		RestitutionThreshold: c.RestitutionThreshold,
	}
}

type DirectionalLight struct {
	Active    bool
	Direction mgl32.Vec3
	Radiance  mgl32.Vec3
	Intensity float32
}

// Environment carries the lighting inputs of the main pass.
type Environment struct {
	RadianceMap   *gpu.TextureCube
	IrradianceMap *gpu.TextureCube
	BRDFLUT       *gpu.Texture

	DirectionalLight DirectionalLight
	TextureLod       float32
	Exposure         float32
	Tonemap          bool
}

func NewEnvironment() Environment {
	return Environment{
		DirectionalLight: DirectionalLight{
			Active:    true,
			Direction: mgl32.Vec3{0.5, 0.25, 0},
			Radiance:  mgl32.Vec3{1, 1, 1},
			Intensity: 1,
		},
		Exposure: 1,
		Tonemap:  true,
	}
}
