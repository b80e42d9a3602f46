package game

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/engine"
	"mirgo/internal/physics"
)

var gizmoEye = mgl32.Vec3{0, 0, 10}

// rayTo casts from the test camera through a point.
func rayTo(p mgl32.Vec3) physics.Ray {
	return physics.Ray{Origin: gizmoEye, Direction: p.Sub(gizmoEye).Normalize()}
}

func startDrag(t *testing.T, g *Gizmo, axis int, through mgl32.Vec3, tr engine.Transform) {
	t.Helper()
	g.hovered = axis
	if !g.Begin(rayTo(through), tr, gizmoEye) {
		t.Fatal("Expected Begin to start a drag")
	}
}

func TestGizmoHoverPicksAxis(t *testing.T) {
	g := NewGizmo()
	g.UpdateHover(rayTo(mgl32.Vec3{1, 0, 0}), mgl32.Vec3{})
	if g.HoveredAxis() != 0 {
		t.Errorf("Expected the X axis hovered, got %d", g.HoveredAxis())
	}

	g.UpdateHover(rayTo(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{})
	if g.HoveredAxis() != 1 {
		t.Errorf("Expected the Y axis hovered, got %d", g.HoveredAxis())
	}

	g.UpdateHover(rayTo(mgl32.Vec3{5, 5, 0}), mgl32.Vec3{})
	if g.Hovered() {
		t.Errorf("Expected nothing hovered, got %d", g.HoveredAxis())
	}
}

func TestGizmoHoverRotateRing(t *testing.T) {
	g := NewGizmo()
	g.Mode = GizmoRotate
	g.UpdateHover(rayTo(mgl32.Vec3{ringRadius, 0, 0}), mgl32.Vec3{})
	if g.HoveredAxis() != 2 {
		t.Errorf("Expected the Z ring hovered, got %d", g.HoveredAxis())
	}
}

func TestGizmoBeginNeedsHover(t *testing.T) {
	g := NewGizmo()
	if g.Begin(rayTo(mgl32.Vec3{}), engine.NewTransform(), gizmoEye) {
		t.Error("Expected Begin to fail with nothing hovered")
	}
	if g.InUse() {
		t.Error("Expected no drag")
	}
}

func TestGizmoMoveDrag(t *testing.T) {
	g := NewGizmo()
	tr := engine.NewTransform()
	startDrag(t, g, 0, mgl32.Vec3{0.5, 0, 0}, tr)

	g.Drag(rayTo(mgl32.Vec3{2, 0, 0}), &tr)
	if !tr.Translation.ApproxEqualThreshold(mgl32.Vec3{1.5, 0, 0}, 1e-4) {
		t.Errorf("Expected translation (1.5,0,0), got %v", tr.Translation)
	}
	if g.ActiveAxis() != 0 {
		t.Errorf("Expected active axis 0, got %d", g.ActiveAxis())
	}
}

func TestGizmoHoverFrozenWhileDragging(t *testing.T) {
	g := NewGizmo()
	startDrag(t, g, 0, mgl32.Vec3{0.5, 0, 0}, engine.NewTransform())

	g.UpdateHover(rayTo(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{})
	if g.HoveredAxis() != 0 {
		t.Errorf("Expected hover unchanged during a drag, got %d", g.HoveredAxis())
	}
}

func TestGizmoRotateDrag(t *testing.T) {
	g := NewGizmo()
	g.Mode = GizmoRotate
	tr := engine.NewTransform()
	startDrag(t, g, 1, mgl32.Vec3{}, tr)

	g.Drag(rayTo(mgl32.Vec3{0, 1, 0}), &tr)
	want := float64(mgl32.DegToRad(45))
	if math.Abs(float64(tr.Rotation[1])-want) > 1e-4 {
		t.Errorf("Expected Y rotation %f, got %f", want, tr.Rotation[1])
	}
}

func TestGizmoScaleDrag(t *testing.T) {
	g := NewGizmo()
	g.Mode = GizmoScale
	tr := engine.NewTransform()
	startDrag(t, g, 0, mgl32.Vec3{}, tr)

	g.Drag(rayTo(mgl32.Vec3{2, 0, 0}), &tr)
	if math.Abs(float64(tr.Scale[0])-2) > 1e-4 || tr.Scale[1] != 1 {
		t.Errorf("Expected scale (2,1,1), got %v", tr.Scale)
	}

	g.Drag(rayTo(mgl32.Vec3{-4, 0, 0}), &tr)
	if tr.Scale[0] != minScale {
		t.Errorf("Expected scale clamped to %f, got %f", minScale, tr.Scale[0])
	}
}

func TestGizmoCancelRestores(t *testing.T) {
	g := NewGizmo()
	tr := engine.NewTransform()
	tr.Translation = mgl32.Vec3{1, 2, 3}
	startDrag(t, g, 0, mgl32.Vec3{1, 2, 3}, tr)

	g.Drag(rayTo(mgl32.Vec3{4, 2, 3}), &tr)
	g.Cancel(&tr)
	if tr.Translation != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Expected the original translation, got %v", tr.Translation)
	}
	if g.InUse() {
		t.Error("Expected the drag ended")
	}
}

func TestGizmoEnd(t *testing.T) {
	g := NewGizmo()
	if g.End() {
		t.Error("Expected End without a drag to report false")
	}
	startDrag(t, g, 2, mgl32.Vec3{}, engine.NewTransform())
	if !g.End() {
		t.Error("Expected End to report the finished drag")
	}
}

func TestGizmoNextModeWraps(t *testing.T) {
	g := NewGizmo()
	for _, want := range []GizmoMode{GizmoRotate, GizmoScale, GizmoMove} {
		g.NextMode()
		if g.Mode != want {
			t.Errorf("Expected %s, got %s", want, g.Mode)
		}
	}
}

func TestClosestPointBetweenParallelRays(t *testing.T) {
	_, _, dist := closestPointBetweenRays(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0})
	if dist != math.MaxFloat32 {
		t.Errorf("Expected parallel rays to report no closest point, got %f", dist)
	}
}

func TestRayPlaneIntersectBehind(t *testing.T) {
	ray := physics.Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, 1}}
	if _, ok := rayPlaneIntersect(ray, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}); ok {
		t.Error("Expected no hit for a plane behind the ray")
	}
}

func TestWorldToViewport(t *testing.T) {
	size := mgl32.Vec2{200, 100}

	center, ok := worldToViewport(mgl32.Vec3{}, mgl32.Ident4(), size)
	if !ok || center != (mgl32.Vec2{100, 50}) {
		t.Errorf("Expected (100,50), got %v", center)
	}
	corner, _ := worldToViewport(mgl32.Vec3{1, 1, 0}, mgl32.Ident4(), size)
	if corner != (mgl32.Vec2{200, 0}) {
		t.Errorf("Expected the top right corner, got %v", corner)
	}

	proj := mgl32.Perspective(mgl32.DegToRad(45), 2, 0.1, 100)
	view := mgl32.LookAtV(gizmoEye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if _, ok := worldToViewport(mgl32.Vec3{0, 0, 20}, proj.Mul4(view), size); ok {
		t.Error("Expected points behind the camera to be rejected")
	}
}
