package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newGroundAndBox(t *testing.T, boxY float32) (*PhysicsWorld, BodyID) {
	t.Helper()
	w := NewPhysicsWorld(DefaultGravity, nil)

	ground := w.CreateBody(1, BodyDef{Type: BodyStatic, Position: mgl32.Vec2{0, 0}})
	w.AddBox(ground, BoxDef{
		HalfExtents:     mgl32.Vec2{5, 0.5},
		FixtureMaterial: FixtureMaterial{Density: 1, Friction: 0.5, RestitutionThreshold: 0.5},
	})

	box := w.CreateBody(2, BodyDef{Type: BodyDynamic, Position: mgl32.Vec2{0, boxY}})
	w.AddBox(box, BoxDef{
		HalfExtents:     mgl32.Vec2{0.5, 0.5},
		FixtureMaterial: FixtureMaterial{Density: 1, Friction: 0.5, RestitutionThreshold: 0.5},
	})
	return w, box
}

func TestFallingBoxComesToRestOnGround(t *testing.T) {
	w, box := newGroundAndBox(t, 5)
	const dt = float32(1.0 / 60.0)

	pos, _, ok := w.BodyTransform(box)
	if !ok {
		t.Fatal("Expected body transform to be available")
	}
	prevY := pos[1]
	contact := false
	// resting center height: ground top (0.5) plus box half height (0.5)
	const restY = 1.0

	for i := 0; i < 240; i++ {
		w.Step(dt)
		pos, _, _ = w.BodyTransform(box)
		y := pos[1]
		if y < restY-0.2 {
			t.Fatalf("Box tunneled into ground at step %d: y=%f", i, y)
		}

		if !contact {
			// position integrates before velocity, so the first step may not move
			if y > prevY {
				t.Fatalf("Box rose before contact at step %d: prev=%f y=%f", i, prevY, y)
			}
			prevY = y
			contact = y <= restY+0.2
			continue
		}

		if y > restY+0.2 {
			t.Fatalf("Box bounced away from ground at step %d: y=%f", i, y)
		}
	}

	if !contact {
		t.Fatal("Expected box to reach a resting contact")
	}
	pos, _, _ = w.BodyTransform(box)
	if math.Abs(float64(pos[1]-restY)) > 0.05 {
		t.Errorf("Expected box to rest near y=%f, got %f", restY, pos[1])
	}
}

func TestFallingBoxDescendsBeforeContact(t *testing.T) {
	w, box := newGroundAndBox(t, 20)
	const dt = float32(1.0 / 60.0)

	// the first step only builds up velocity
	w.Step(dt)
	pos, _, _ := w.BodyTransform(box)
	prev := pos[1]
	for i := 0; i < 60; i++ {
		w.Step(dt)
		pos, _, _ = w.BodyTransform(box)
		if pos[1] >= prev {
			t.Fatalf("Expected y to decrease at step %d: prev=%f got=%f", i, prev, pos[1])
		}
		prev = pos[1]
	}

	v, _ := w.BodyVelocity(box)
	if v[1] >= 0 {
		t.Errorf("Expected negative vertical velocity, got %f", v[1])
	}
}

func TestStaticBodyDoesNotMove(t *testing.T) {
	w := NewPhysicsWorld(DefaultGravity, nil)
	id := w.CreateBody(7, BodyDef{Type: BodyStatic, Position: mgl32.Vec2{3, 4}, Angle: 0.25})
	w.AddBox(id, BoxDef{HalfExtents: mgl32.Vec2{1, 1}, FixtureMaterial: FixtureMaterial{Density: 1}})

	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60.0)
	}

	pos, angle, ok := w.BodyTransform(id)
	if !ok {
		t.Fatal("Expected static body to exist")
	}
	if !pos.ApproxEqual(mgl32.Vec2{3, 4}) {
		t.Errorf("Expected static body at (3,4), got %v", pos)
	}
	if math.Abs(float64(angle-0.25)) > 1e-6 {
		t.Errorf("Expected angle 0.25, got %f", angle)
	}
}

func TestCreateBodyReturnsExistingForOwner(t *testing.T) {
	w := NewPhysicsWorld(DefaultGravity, nil)
	a := w.CreateBody(42, BodyDef{Type: BodyDynamic})
	b := w.CreateBody(42, BodyDef{Type: BodyStatic})

	if a != b {
		t.Errorf("Expected same body for same owner, got %d and %d", a, b)
	}
	if w.BodyCount() != 1 {
		t.Errorf("Expected 1 body, got %d", w.BodyCount())
	}
	if typ, _ := w.BodyType(a); typ != BodyDynamic {
		t.Errorf("Expected Dynamic body, got %s", typ)
	}
}

func TestFixtureMaterialIsKept(t *testing.T) {
	w := NewPhysicsWorld(DefaultGravity, nil)
	id := w.CreateBody(1, BodyDef{Type: BodyDynamic})
	m := FixtureMaterial{Density: 2, Friction: 0.3, Restitution: 0.1, RestitutionThreshold: 0.7}
	fid := w.AddCircle(id, CircleDef{Radius: 0.5, FixtureMaterial: m})

	if !fid.Valid() {
		t.Fatal("Expected valid fixture id")
	}
	got, ok := w.FixtureMaterial(fid)
	if !ok || got != m {
		t.Errorf("Expected material %+v, got %+v", m, got)
	}
	if len(w.Fixtures(id)) != 1 {
		t.Errorf("Expected 1 fixture on body, got %d", len(w.Fixtures(id)))
	}
	shape, _ := w.FixtureShape(fid)
	if shape.Radius != 0.5 || shape.HalfExtents != (mgl32.Vec2{}) {
		t.Errorf("Expected a 0.5 circle, got %+v", shape)
	}
}

func TestFixtureShapeKeepsBoxGeometry(t *testing.T) {
	w := NewPhysicsWorld(DefaultGravity, nil)
	id := w.CreateBody(1, BodyDef{Type: BodyDynamic})
	fid := w.AddBox(id, BoxDef{Offset: mgl32.Vec2{1, -1}, HalfExtents: mgl32.Vec2{2, 3}})

	want := FixtureShape{Offset: mgl32.Vec2{1, -1}, HalfExtents: mgl32.Vec2{2, 3}}
	if got, ok := w.FixtureShape(fid); !ok || got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if _, ok := w.FixtureShape(fid + 1); ok {
		t.Error("Expected an unknown fixture to report false")
	}
	w.Destroy()
	if _, ok := w.FixtureShape(fid); ok {
		t.Error("Expected fixture lookups to fail after Destroy")
	}
}

func TestDestroyInvalidatesHandles(t *testing.T) {
	w, box := newGroundAndBox(t, 3)
	w.Destroy()

	if _, _, ok := w.BodyTransform(box); ok {
		t.Error("Expected body handle to be invalid after Destroy")
	}
	if _, ok := w.BodyFor(2); ok {
		t.Error("Expected owner lookup to fail after Destroy")
	}
	if w.BodyCount() != 0 {
		t.Errorf("Expected 0 bodies after Destroy, got %d", w.BodyCount())
	}

	// stepping a destroyed world is a no-op
	w.Step(1.0 / 60.0)
	if w.Steps() != 0 {
		t.Errorf("Expected no steps after Destroy, got %d", w.Steps())
	}
}

func TestZeroBodyIDIsInvalid(t *testing.T) {
	w := NewPhysicsWorld(DefaultGravity, nil)
	if _, _, ok := w.BodyTransform(0); ok {
		t.Error("Expected zero BodyID to be invalid")
	}
	if fid := w.AddBox(0, BoxDef{HalfExtents: mgl32.Vec2{1, 1}}); fid.Valid() {
		t.Error("Expected AddBox on zero BodyID to fail")
	}
}
