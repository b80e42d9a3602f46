package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mirgo/internal/physics"
)

type SceneState int

const (
	SceneEditing SceneState = iota
	ScenePlaying
	ScenePausing
)

func (s SceneState) String() string {
	switch s {
	case ScenePlaying:
		return "Playing"
	case ScenePausing:
		return "Pausing"
	}
	return "Editing"
}

const defaultEntityName = "Unknown"

// Scene owns the registry, the render environment and, while a play session
// runs, the physics world.
type Scene struct {
	Name        string
	Environment Environment

	// StateChanged fires after every real state transition.
	StateChanged EventWithArg[SceneState]

	registry *Registry
	state    SceneState
	gravity  mgl32.Vec2
	slop     float64
	physics  *physics.PhysicsWorld
	backup   *snapshot
	logger   *zap.Logger
}

func NewScene(name string, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scene{
		Name:        name,
		Environment: NewEnvironment(),
		registry:    NewRegistry(),
		gravity:     physics.DefaultGravity,
		slop:        physics.DefaultCollisionSlop,
		logger:      logger,
	}
}

func (s *Scene) Registry() *Registry { return s.registry }
func (s *Scene) State() SceneState   { return s.state }

// Physics returns the live physics world, or nil while editing.
func (s *Scene) Physics() *physics.PhysicsWorld { return s.physics }

func (s *Scene) Gravity() mgl32.Vec2 { return s.gravity }

// SetGravity changes the gravity used by the next play session.
func (s *Scene) SetGravity(g mgl32.Vec2) { s.gravity = g }

// SetCollisionSlop changes the resting overlap used by the next play session.
func (s *Scene) SetCollisionSlop(slop float64) { s.slop = slop }

// Entity wraps an id of this scene in a handle.
func (s *Scene) Entity(id EntityID) Entity {
	return Entity{ID: id, scene: s}
}

// CreateEntity creates an entity with a fresh Identity and a unit Transform.
func (s *Scene) CreateEntity(name string) Entity {
	return s.CreateEntityWithUUID(uuid.New(), name)
}

// CreateEntityWithUUID is CreateEntity with a caller supplied UUID, used
// when loading scene files.
func (s *Scene) CreateEntityWithUUID(id uuid.UUID, name string) Entity {
	if name == "" {
		name = defaultEntityName
	}
	// a fresh id holds no components, so neither Add can fail
	e := s.Entity(s.registry.Create())
	_, _ = Add(s.registry, e.ID, Identity{UUID: id, Name: name})
	_, _ = Add(s.registry, e.ID, NewTransform())

	s.logger.Debug("entity created",
		zap.String("name", name),
		zap.Stringer("id", e.ID),
	)
	return e
}

func (s *Scene) DestroyEntity(e Entity) error {
	if e.scene != s {
		return fmt.Errorf("destroy entity of another scene: %w", ErrInvalidEntity)
	}
	name := e.Name()
	if err := s.registry.Destroy(e.ID); err != nil {
		return err
	}
	s.logger.Debug("entity destroyed",
		zap.String("name", name),
		zap.Stringer("id", e.ID),
	)
	return nil
}

// DuplicateEntity creates a new entity with the source's name and a fresh
// UUID, then copies Transform, MeshRef, Rigidbody2D, BoxCollider2D and
// CircleCollider2D by value. Runtime physics handles are not copied, and a
// Camera stays with the source so only one camera can be primary.
func (s *Scene) DuplicateEntity(src Entity) (Entity, error) {
	if !src.Valid() || src.scene != s {
		return Entity{}, fmt.Errorf("duplicate %s: %w", src.ID, ErrInvalidEntity)
	}
	comps := captureComponents(s.registry, src.ID)
	comps.camera = nil
	dst := s.CreateEntity(src.Name())
	if err := comps.apply(s.registry, dst.ID); err != nil {
		return dst, fmt.Errorf("duplicate %s: %w", src.ID, err)
	}
	return dst, nil
}

// Entities returns handles for every live entity in slot order.
func (s *Scene) Entities() []Entity {
	ids := s.registry.Entities()
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = s.Entity(id)
	}
	return out
}

// FindByName returns the first entity in slot order with the given name.
func (s *Scene) FindByName(name string) (Entity, bool) {
	var found Entity
	ok := false
	s.registry.Each(func(id EntityID) {
		if ok {
			return
		}
		if ident, has := TryGet[Identity](s.registry, id); has && ident.Name == name {
			found, ok = s.Entity(id), true
		}
	})
	return found, ok
}

func (s *Scene) EntityByUUID(u uuid.UUID) (Entity, bool) {
	for _, id := range View[Identity](s.registry) {
		if ident, _ := TryGet[Identity](s.registry, id); ident.UUID == u {
			return s.Entity(id), true
		}
	}
	return Entity{}, false
}

func (s *Scene) setState(state SceneState) {
	prev := s.state
	s.state = state
	s.logger.Info("scene state changed",
		zap.String("scene", s.Name),
		zap.Stringer("from", prev),
		zap.Stringer("to", state),
	)
	s.StateChanged.Invoke(state)
}

// Play starts or resumes simulation. From Editing it snapshots the registry
// and builds a physics world from the Rigidbody2D components.
func (s *Scene) Play() {
	switch s.state {
	case ScenePlaying:
		return
	case ScenePausing:
		s.setState(ScenePlaying)
		return
	}

	s.backup = takeSnapshot(s.registry)
	s.startPhysics()
	s.setState(ScenePlaying)
}

// Pause stops stepping but keeps the physics world alive.
func (s *Scene) Pause() {
	if s.state != ScenePlaying {
		return
	}
	s.setState(ScenePausing)
}

// Reset drops the physics world and rebuilds the registry from the snapshot
// taken by Play. Entity ids change; UUIDs and names are kept.
func (s *Scene) Reset() {
	if s.state == SceneEditing {
		return
	}
	if s.physics != nil {
		s.physics.Destroy()
		s.physics = nil
	}
	if s.backup != nil {
		s.restore(s.backup)
		s.backup = nil
	}
	s.setState(SceneEditing)
}

func (s *Scene) restore(snap *snapshot) {
	s.registry.Clear()
	for _, e := range snap.entries {
		id := s.registry.Create()
		_, err := Add(s.registry, id, e.identity)
		if err == nil {
			err = e.comps.apply(s.registry, id)
		}
		if err != nil {
			s.logger.Error("entity not restored",
				zap.String("name", e.identity.Name),
				zap.Error(err),
			)
		}
	}
	s.logger.Debug("scene restored", zap.Int("entities", len(snap.entries)))
}

func (s *Scene) startPhysics() {
	s.physics = physics.NewPhysicsWorld(s.gravity, s.logger.Named("physics"))
	s.physics.SetCollisionSlop(s.slop)

	Each1(s.registry, func(id EntityID, rb *Rigidbody2D) {
		t := NewTransform()
		if tc, ok := TryGet[Transform](s.registry, id); ok {
			t = *tc
		}

		rb.Runtime = s.physics.CreateBody(uint64(id), physics.BodyDef{
			Type:     rb.Type,
			Position: mgl32.Vec2{t.Translation[0], t.Translation[1]},
			Angle:    t.Rotation[2],
		})

		if box, ok := TryGet[BoxCollider2D](s.registry, id); ok {
			box.Runtime = s.physics.AddBox(rb.Runtime, physics.BoxDef{
				Offset:          mgl32.Vec2{box.Offset[0] * t.Scale[0], box.Offset[1] * t.Scale[1]},
				HalfExtents:     mgl32.Vec2{box.Size[0] * t.Scale[0], box.Size[1] * t.Scale[1]},
				FixtureMaterial: box.material(),
			})
		}
		if circle, ok := TryGet[CircleCollider2D](s.registry, id); ok {
			circle.Runtime = s.physics.AddCircle(rb.Runtime, physics.CircleDef{
				Offset:          mgl32.Vec2{circle.Offset[0] * t.Scale[0], circle.Offset[1] * t.Scale[1]},
				Radius:          circle.Radius * t.Scale[0],
				FixtureMaterial: circle.material(),
			})
		}
	})

	s.logger.Info("physics world started",
		zap.Int("bodies", s.physics.BodyCount()),
		zap.Float32("gravity_x", s.gravity[0]),
		zap.Float32("gravity_y", s.gravity[1]),
	)
}

// OnUpdate steps physics and writes body positions and angles back into
// Transform.Translation.XY and Transform.Rotation.Z. It does nothing unless
// the scene is playing.
func (s *Scene) OnUpdate(delta float32) {
	if s.state != ScenePlaying || s.physics == nil {
		return
	}
	s.physics.Step(delta)

	Each2(s.registry, func(id EntityID, rb *Rigidbody2D, t *Transform) {
		pos, angle, ok := s.physics.BodyTransform(rb.Runtime)
		if !ok {
			return
		}
		t.Translation[0] = pos[0]
		t.Translation[1] = pos[1]
		t.Rotation[2] = angle
	})
}
