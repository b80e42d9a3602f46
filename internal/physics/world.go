package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// Fixed solver iteration counts used for every step.
const (
	VelocityIterations = 6
	PositionIterations = 2
)

// DefaultGravity is the gravity every play session starts with.
var DefaultGravity = mgl32.Vec2{0, -9.81}

// DefaultCollisionSlop is the allowed overlap between resting shapes.
const DefaultCollisionSlop = 0.005

type BodyType int

const (
	BodyStatic BodyType = iota
	BodyDynamic
	BodyKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyStatic:
		return "Static"
	case BodyDynamic:
		return "Dynamic"
	case BodyKinematic:
		return "Kinematic"
	}
	return "Unknown"
}

// BodyID indexes the body arena of one PhysicsWorld. The zero value means
// "no runtime body".
type BodyID uint32

func (id BodyID) Valid() bool { return id != 0 }

// FixtureID indexes the shape arena of one PhysicsWorld. Zero means none.
type FixtureID uint32

func (id FixtureID) Valid() bool { return id != 0 }

type BodyDef struct {
	Type     BodyType
	Position mgl32.Vec2
	Angle    float32
	// FixedRotation locks the angular degree of freedom.
	FixedRotation bool
}

// FixtureMaterial carries the per-shape material values. RestitutionThreshold
// is stored for the editor but Chipmunk applies elasticity unconditionally.
type FixtureMaterial struct {
	Density              float32
	Friction             float32
	Restitution          float32
	RestitutionThreshold float32
}

type BoxDef struct {
	Offset      mgl32.Vec2
	HalfExtents mgl32.Vec2
	FixtureMaterial
}

type CircleDef struct {
	Offset mgl32.Vec2
	Radius float32
	FixtureMaterial
}

// FixtureShape is the geometry a fixture was created with, in body space.
// HalfExtents is zero for circles and Radius is zero for boxes.
type FixtureShape struct {
	Offset      mgl32.Vec2
	HalfExtents mgl32.Vec2
	Radius      float32
}

type bodySlot struct {
	owner  uint64
	body   *cp.Body
	shapes []FixtureID
}

type fixtureSlot struct {
	body     BodyID
	shape    *cp.Shape
	geometry FixtureShape
	material FixtureMaterial
}

// PhysicsWorld owns a Chipmunk space and every body in it. Bodies are
// addressed by BodyID and looked up by owner key, so no caller ever holds a
// raw engine pointer.
type PhysicsWorld struct {
	space    *cp.Space
	bodies   []bodySlot
	fixtures []fixtureSlot
	byOwner  map[uint64]BodyID
	logger   *zap.Logger

	destroyed bool
	steps     uint64
}

func NewPhysicsWorld(gravity mgl32.Vec2, logger *zap.Logger) *PhysicsWorld {
	if logger == nil {
		logger = zap.NewNop()
	}
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: float64(gravity[0]), Y: float64(gravity[1])})
	space.SetCollisionSlop(DefaultCollisionSlop)
	space.Iterations = VelocityIterations + PositionIterations

	return &PhysicsWorld{
		space:   space,
		byOwner: make(map[uint64]BodyID),
		logger:  logger,
	}
}

func (p *PhysicsWorld) Gravity() mgl32.Vec2 {
	g := p.space.Gravity()
	return mgl32.Vec2{float32(g.X), float32(g.Y)}
}

// SetCollisionSlop overrides the resting overlap tolerance.
func (p *PhysicsWorld) SetCollisionSlop(slop float64) {
	p.space.SetCollisionSlop(slop)
}

// CreateBody adds a body for owner. An owner that already has a body gets
// the existing handle back.
func (p *PhysicsWorld) CreateBody(owner uint64, def BodyDef) BodyID {
	if id, ok := p.byOwner[owner]; ok {
		return id
	}

	var body *cp.Body
	switch def.Type {
	case BodyDynamic:
		// unit mass until fixtures contribute their own
		body = cp.NewBody(1, 1)
	case BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewStaticBody()
	}
	p.space.AddBody(body)
	body.SetPosition(cp.Vector{X: float64(def.Position[0]), Y: float64(def.Position[1])})
	body.SetAngle(float64(def.Angle))
	if def.FixedRotation && def.Type == BodyDynamic {
		body.SetMoment(math.Inf(1))
	}

	p.bodies = append(p.bodies, bodySlot{owner: owner, body: body})
	id := BodyID(len(p.bodies))
	p.byOwner[owner] = id
	body.UserData = id

	p.logger.Debug("body created",
		zap.Uint64("owner", owner),
		zap.Stringer("type", def.Type),
		zap.Float32("x", def.Position[0]),
		zap.Float32("y", def.Position[1]),
	)
	return id
}

func (p *PhysicsWorld) slot(id BodyID) *bodySlot {
	if p.destroyed || !id.Valid() || int(id) > len(p.bodies) {
		return nil
	}
	return &p.bodies[id-1]
}

// AddBox attaches a box fixture. HalfExtents follow the half-size convention
// of the collider component.
func (p *PhysicsWorld) AddBox(id BodyID, def BoxDef) FixtureID {
	s := p.slot(id)
	if s == nil {
		return 0
	}
	hw := float64(def.HalfExtents[0])
	hh := float64(def.HalfExtents[1])
	ox := float64(def.Offset[0])
	oy := float64(def.Offset[1])
	bb := cp.BB{L: ox - hw, B: oy - hh, R: ox + hw, T: oy + hh}
	shape := cp.NewBox2(s.body, bb, 0)
	geometry := FixtureShape{Offset: def.Offset, HalfExtents: def.HalfExtents}
	return p.attach(id, s, shape, geometry, def.FixtureMaterial)
}

func (p *PhysicsWorld) AddCircle(id BodyID, def CircleDef) FixtureID {
	s := p.slot(id)
	if s == nil {
		return 0
	}
	offset := cp.Vector{X: float64(def.Offset[0]), Y: float64(def.Offset[1])}
	shape := cp.NewCircle(s.body, float64(def.Radius), offset)
	geometry := FixtureShape{Offset: def.Offset, Radius: def.Radius}
	return p.attach(id, s, shape, geometry, def.FixtureMaterial)
}

func (p *PhysicsWorld) attach(id BodyID, s *bodySlot, shape *cp.Shape, geometry FixtureShape, m FixtureMaterial) FixtureID {
	p.space.AddShape(shape)
	shape.SetFriction(float64(m.Friction))
	shape.SetElasticity(float64(m.Restitution))
	if s.body.GetType() == cp.BODY_DYNAMIC {
		shape.SetDensity(float64(m.Density))
	}

	p.fixtures = append(p.fixtures, fixtureSlot{body: id, shape: shape, geometry: geometry, material: m})
	fid := FixtureID(len(p.fixtures))
	s.shapes = append(s.shapes, fid)
	return fid
}

// Step advances the simulation by dt seconds.
func (p *PhysicsWorld) Step(dt float32) {
	if p.destroyed || dt <= 0 {
		return
	}
	p.space.Step(float64(dt))
	p.steps++
}

// BodyTransform reports the body's position and rotation angle in radians.
func (p *PhysicsWorld) BodyTransform(id BodyID) (mgl32.Vec2, float32, bool) {
	s := p.slot(id)
	if s == nil {
		return mgl32.Vec2{}, 0, false
	}
	pos := s.body.Position()
	return mgl32.Vec2{float32(pos.X), float32(pos.Y)}, float32(s.body.Angle()), true
}

func (p *PhysicsWorld) BodyVelocity(id BodyID) (mgl32.Vec2, bool) {
	s := p.slot(id)
	if s == nil {
		return mgl32.Vec2{}, false
	}
	v := s.body.Velocity()
	return mgl32.Vec2{float32(v.X), float32(v.Y)}, true
}

func (p *PhysicsWorld) BodyType(id BodyID) (BodyType, bool) {
	s := p.slot(id)
	if s == nil {
		return BodyStatic, false
	}
	switch s.body.GetType() {
	case cp.BODY_DYNAMIC:
		return BodyDynamic, true
	case cp.BODY_KINEMATIC:
		return BodyKinematic, true
	}
	return BodyStatic, true
}

func (p *PhysicsWorld) BodyFor(owner uint64) (BodyID, bool) {
	id, ok := p.byOwner[owner]
	return id, ok && !p.destroyed
}

// Fixtures returns the fixtures attached to a body in creation order.
func (p *PhysicsWorld) Fixtures(id BodyID) []FixtureID {
	s := p.slot(id)
	if s == nil {
		return nil
	}
	return s.shapes
}

// FixtureMaterial returns the material a fixture was created with.
func (p *PhysicsWorld) FixtureMaterial(id FixtureID) (FixtureMaterial, bool) {
	f := p.fixture(id)
	if f == nil {
		return FixtureMaterial{}, false
	}
	return f.material, true
}

// FixtureShape returns the offset and extents a fixture was created with.
func (p *PhysicsWorld) FixtureShape(id FixtureID) (FixtureShape, bool) {
	f := p.fixture(id)
	if f == nil {
		return FixtureShape{}, false
	}
	return f.geometry, true
}

func (p *PhysicsWorld) fixture(id FixtureID) *fixtureSlot {
	if p.destroyed || !id.Valid() || int(id) > len(p.fixtures) {
		return nil
	}
	return &p.fixtures[id-1]
}

func (p *PhysicsWorld) BodyCount() int {
	if p.destroyed {
		return 0
	}
	return len(p.bodies)
}

func (p *PhysicsWorld) Steps() uint64 { return p.steps }

// Destroy removes every shape and body. All handles issued by this world
// become invalid.
func (p *PhysicsWorld) Destroy() {
	if p.destroyed {
		return
	}
	for _, f := range p.fixtures {
		p.space.RemoveShape(f.shape)
	}
	for _, b := range p.bodies {
		p.space.RemoveBody(b.body)
	}
	p.logger.Debug("physics world destroyed",
		zap.Int("bodies", len(p.bodies)),
		zap.Uint64("steps", p.steps),
	)
	p.bodies = nil
	p.fixtures = nil
	p.byOwner = map[uint64]BodyID{}
	p.destroyed = true
}
