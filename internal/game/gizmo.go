package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/engine"
	"mirgo/internal/physics"
)

type GizmoMode int

const (
	GizmoMove GizmoMode = iota
	GizmoRotate
	GizmoScale
)

func (m GizmoMode) String() string {
	switch m {
	case GizmoRotate:
		return "Rotate"
	case GizmoScale:
		return "Scale"
	}
	return "Move"
}

const (
	gizmoLength  float32 = 2.0
	gizmoHitDist float32 = 0.3
	ringHitDist  float32 = 0.4
	ringRadius           = gizmoLength * 0.8
	minScale     float32 = 0.1
	noAxis               = -1
)

var gizmoAxes = [3]mgl32.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// Gizmo edits the selected entity's Transform by dragging one axis. It holds
// no entity reference; callers pass the Transform in on every call.
type Gizmo struct {
	Mode GizmoMode

	hovered  int
	dragging bool
	axis     int

	planeNormal mgl32.Vec3
	start       float32
	origin      mgl32.Vec3
	initial     engine.Transform
}

func NewGizmo() *Gizmo {
	return &Gizmo{hovered: noAxis, axis: noAxis}
}

func (g *Gizmo) Hovered() bool    { return g.hovered != noAxis }
func (g *Gizmo) HoveredAxis() int { return g.hovered }
func (g *Gizmo) InUse() bool      { return g.dragging }

// ActiveAxis is the dragged axis, or the hovered one when idle.
func (g *Gizmo) ActiveAxis() int {
	if g.dragging {
		return g.axis
	}
	return g.hovered
}

func (g *Gizmo) NextMode() {
	g.Mode = (g.Mode + 1) % 3
}

func (g *Gizmo) ClearHover() { g.hovered = noAxis }

// UpdateHover finds the handle under ray for a gizmo drawn at center.
func (g *Gizmo) UpdateHover(ray physics.Ray, center mgl32.Vec3) {
	if g.dragging {
		return
	}
	g.hovered = g.pickAxis(ray, center)
}

func (g *Gizmo) pickAxis(ray physics.Ray, center mgl32.Vec3) int {
	best := float32(math.MaxFloat32)
	bestAxis := noAxis

	if g.Mode == GizmoRotate {
		for i, normal := range gizmoAxes {
			pt, ok := rayPlaneIntersect(ray, center, normal)
			if !ok {
				continue
			}
			fromRing := float32(math.Abs(float64(pt.Sub(center).Len() - ringRadius)))
			if fromRing < ringHitDist && fromRing < best {
				best = fromRing
				bestAxis = i
			}
		}
		return bestAxis
	}

	for i, axis := range gizmoAxes {
		_, along, dist := closestPointBetweenRays(ray.Origin, ray.Direction, center, axis)
		if along > 0 && along < gizmoLength && dist < gizmoHitDist && dist < best {
			best = dist
			bestAxis = i
		}
	}
	return bestAxis
}

// Begin starts dragging the hovered axis. The drag plane contains the axis
// and faces the camera as much as the axis allows.
func (g *Gizmo) Begin(ray physics.Ray, t engine.Transform, cameraPos mgl32.Vec3) bool {
	if g.hovered == noAxis {
		return false
	}
	g.dragging = true
	g.axis = g.hovered
	g.initial = t
	g.origin = t.Translation

	axis := gizmoAxes[g.axis]
	viewDir := g.origin.Sub(cameraPos)
	if viewDir.Len() > 0 {
		viewDir = viewDir.Normalize()
	}
	g.planeNormal = axis.Cross(viewDir.Cross(axis))
	if g.planeNormal.Len() < 1e-6 {
		// looking straight down the axis; any plane through it will do
		g.planeNormal = gizmoAxes[(g.axis+1)%3]
	}
	g.planeNormal = g.planeNormal.Normalize()

	g.start = 0
	if pt, ok := rayPlaneIntersect(ray, g.origin, g.planeNormal); ok {
		g.start = pt.Sub(g.origin).Dot(axis)
	}
	return true
}

// Drag applies the motion along the dragged axis since Begin to t.
func (g *Gizmo) Drag(ray physics.Ray, t *engine.Transform) {
	if !g.dragging {
		return
	}
	pt, ok := rayPlaneIntersect(ray, g.origin, g.planeNormal)
	if !ok {
		return
	}
	axis := gizmoAxes[g.axis]
	delta := pt.Sub(g.origin).Dot(axis) - g.start

	switch g.Mode {
	case GizmoMove:
		t.Translation = g.initial.Translation.Add(axis.Mul(delta))
	case GizmoRotate:
		// one unit of drag is 45 degrees
		rot := g.initial.Rotation
		rot[g.axis] += mgl32.DegToRad(45) * delta
		t.SetRotation(rot)
	case GizmoScale:
		factor := 1 + delta*0.5
		if factor < minScale {
			factor = minScale
		}
		s := g.initial.Scale
		s[g.axis] *= factor
		t.Scale = s
	}
}

// End finishes a drag and reports whether one was running.
func (g *Gizmo) End() bool {
	was := g.dragging
	g.dragging = false
	g.axis = noAxis
	return was
}

// Cancel aborts a drag and puts t back the way Begin found it.
func (g *Gizmo) Cancel(t *engine.Transform) {
	if g.dragging && t != nil {
		*t = g.initial
	}
	g.End()
}

// closestPointBetweenRays returns the parameters of the closest approach
// along each ray and the distance between those points.
func closestPointBetweenRays(a, u, b, v mgl32.Vec3) (t1, t2, dist float32) {
	w := a.Sub(b)
	uu := u.Dot(u)
	uv := u.Dot(v)
	vv := v.Dot(v)
	uw := u.Dot(w)
	vw := v.Dot(w)

	denom := uu*vv - uv*uv
	if denom < 1e-6 {
		return 0, 0, math.MaxFloat32
	}

	t1 = (uv*vw - vv*uw) / denom
	t2 = (uu*vw - uv*uw) / denom

	p1 := a.Add(u.Mul(t1))
	p2 := b.Add(v.Mul(t2))
	return t1, t2, p1.Sub(p2).Len()
}

func rayPlaneIntersect(ray physics.Ray, point, normal mgl32.Vec3) (mgl32.Vec3, bool) {
	denom := ray.Direction.Dot(normal)
	if math.Abs(float64(denom)) < 1e-6 {
		return mgl32.Vec3{}, false
	}
	t := point.Sub(ray.Origin).Dot(normal) / denom
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return ray.At(t), true
}

// worldToViewport projects p into viewport pixels, origin top left. ok is
// false for points behind the camera.
func worldToViewport(p mgl32.Vec3, viewProjection mgl32.Mat4, size mgl32.Vec2) (mgl32.Vec2, bool) {
	clip := viewProjection.Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return mgl32.Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return mgl32.Vec2{
		(ndc[0] + 1) / 2 * size[0],
		(1 - ndc[1]) / 2 * size[1],
	}, true
}
