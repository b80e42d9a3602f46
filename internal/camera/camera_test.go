package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/input"
)

// near compares per component with an absolute tolerance.
func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-4 {
			return false
		}
	}
	return true
}

func TestOrbitDefaultPosition(t *testing.T) {
	o := NewOrbit(DefaultLens, 1.778)

	// 45 degrees above the focal point, 10 units away, looking down -Z.
	want := mgl32.Vec3{0, 7.0710678, 7.0710678}
	if !near(o.Position(), want) {
		t.Errorf("Expected %v, got %v", want, o.Position())
	}
}

func TestOrbitViewMapsFocalPointAhead(t *testing.T) {
	o := NewOrbit(DefaultLens, 1.778)
	o.Focus(mgl32.Vec3{1, 2, 3})

	p := o.view.Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	want := mgl32.Vec4{0, 0, -10, 1}
	if !near(p.Vec3(), want.Vec3()) || math.Abs(float64(p[3]-1)) > 1e-4 {
		t.Errorf("Expected focal point at %v in view space, got %v", want, p)
	}
}

func TestOrbitZoomClamps(t *testing.T) {
	o := NewOrbit(DefaultLens, 1.778)
	o.Zoom(4)
	if o.Distance() != 8 {
		t.Errorf("Expected distance 8, got %f", o.Distance())
	}
	o.Zoom(1000)
	if o.Distance() != minOrbitDistance {
		t.Errorf("Expected distance clamped to %f, got %f", minOrbitDistance, o.Distance())
	}
}

func TestOrbitRotateNeedsMiddleButton(t *testing.T) {
	o := NewOrbit(DefaultLens, 1.778)
	held := input.NewHeld()
	start := o.Position()

	o.OnEvent(&input.Event{Type: input.MouseMoved, Position: mgl32.Vec2{100, 0}}, held)
	if !near(o.Position(), start) {
		t.Error("Camera should not rotate without the middle button")
	}

	held.Buttons[input.MouseMiddle] = true
	o.OnEvent(&input.Event{Type: input.MouseMoved, Position: mgl32.Vec2{200, 0}}, held)
	if near(o.Position(), start) {
		t.Error("Camera should rotate while the middle button is held")
	}
	if d := o.Position().Sub(o.FocalPoint()).Len(); d < 9.999 || d > 10.001 {
		t.Errorf("Rotation should keep distance 10, got %f", d)
	}
}

func TestOrbitScrollZooms(t *testing.T) {
	o := NewOrbit(DefaultLens, 1.778)
	o.OnEvent(&input.Event{Type: input.MouseScrolled, Offset: mgl32.Vec2{0, 2}}, input.NewHeld())
	if o.Distance() != 9 {
		t.Errorf("Expected distance 9, got %f", o.Distance())
	}
}

func TestOrbitMovePans(t *testing.T) {
	o := NewOrbit(DefaultLens, 1.778)
	o.Move(mgl32.Vec2{1, 0})

	// Right is +X at yaw 0; a positive offset pans left by 0.25 * distance.
	want := mgl32.Vec3{-2.5, 0, 0}
	if !near(o.FocalPoint(), want) {
		t.Errorf("Expected focal point %v, got %v", want, o.FocalPoint())
	}
}

func TestFPSMovesOnlyWithMiddleButton(t *testing.T) {
	f := NewFPS(DefaultLens, 1.778)
	held := input.NewHeld()
	held.Keys[input.KeyW] = true
	start := f.Position()

	f.OnUpdate(1, held)
	if f.Position() != start {
		t.Error("FPS camera should not move without the middle button")
	}

	held.Buttons[input.MouseMiddle] = true
	f.OnUpdate(1, held)
	moved := f.Position().Sub(start).Len()
	if moved < 2.49 || moved > 2.51 {
		t.Errorf("Expected to move 2.5 units, moved %f", moved)
	}

	held.Keys[input.KeyLeftShift] = true
	before := f.Position()
	f.OnUpdate(1, held)
	if d := f.Position().Sub(before).Len(); d < 9.99 || d > 10.01 {
		t.Errorf("Expected shift to move 10 units, moved %f", d)
	}
}

func TestFPSPitchClamp(t *testing.T) {
	f := NewFPS(DefaultLens, 1.778)
	held := input.NewHeld()
	held.Buttons[input.MouseMiddle] = true

	f.OnEvent(&input.Event{Type: input.MouseMoved, Position: mgl32.Vec2{0, 0}}, held)
	f.OnEvent(&input.Event{Type: input.MouseMoved, Position: mgl32.Vec2{0, -100000}}, held)

	if f.pitch > mgl32.DegToRad(90) {
		t.Errorf("Pitch should be clamped below 90 degrees, got %f", mgl32.RadToDeg(f.pitch))
	}
}

func TestEditorSwitchKeepsAspect(t *testing.T) {
	e := NewEditor(ModeOrbit, DefaultLens)
	e.OnResize(800, 400)
	e.SetMode(ModeFPS)

	if e.Mode() != ModeFPS {
		t.Fatalf("Expected fps mode, got %s", e.Mode())
	}
	if d := e.fps.aspect - e.orbit.aspect; d > 1e-6 || d < -1e-6 {
		t.Errorf("Expected aspect %f to carry over, got %f", e.orbit.aspect, e.fps.aspect)
	}
	if e.Position() != (mgl32.Vec3{0, 2, 0}) {
		t.Errorf("Expected fps start position, got %v", e.Position())
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("fps") != ModeFPS {
		t.Error("Expected fps")
	}
	if ParseMode("anything") != ModeOrbit {
		t.Error("Expected orbit fallback")
	}
}
