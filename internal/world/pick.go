package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/engine"
	"mirgo/internal/physics"
)

// ScreenRay builds a world-space ray through a pixel of the viewport. The
// pixel is unprojected at the near plane with the inverse projection and
// rotated by the inverse view rotation; translation comes from the camera
// position.
func ScreenRay(mouse, viewport mgl32.Vec2, projection, view mgl32.Mat4, cameraPos mgl32.Vec3) physics.Ray {
	x := 2*mouse[0]/viewport[0] - 1
	y := 1 - 2*mouse[1]/viewport[1]

	eye := projection.Inv().Mul4x1(mgl32.Vec4{x, y, -1, 1})
	dir := view.Mat3().Inv().Mul3x1(mgl32.Vec3{eye[0], eye[1], -1})

	return physics.Ray{Origin: cameraPos, Direction: dir.Normalize()}
}

// Hit is the closest triangle a ray struck.
type Hit struct {
	Entity   engine.EntityID
	SubMesh  int
	Distance float32
}

// Pick tests ray against every submesh of every entity with a Transform and a
// loaded MeshRef and returns the nearest hit.
func Pick(scene *engine.Scene, ray physics.Ray) (Hit, bool) {
	best := Hit{Distance: float32(math.Inf(1))}
	found := false

	engine.Each2(scene.Registry(), func(id engine.EntityID, t *engine.Transform, ref *engine.MeshRef) {
		if !ref.Loaded() {
			return
		}
		m := ref.Mesh
		entity := t.Matrix()

		for i, sub := range m.SubMeshes() {
			local := ray.Transform(entity.Mul4(sub.Transform).Inv())

			// ray parameters are preserved by the affine transform
			if enter, ok := sub.Bounds.IntersectRay(local); !ok || enter > best.Distance {
				continue
			}
			for _, tri := range m.SubMeshTriangles(i) {
				d, ok := physics.RayIntersectsTriangle(local, tri.V1.Position, tri.V2.Position, tri.V3.Position)
				if ok && d < best.Distance {
					best = Hit{Entity: id, SubMesh: i, Distance: d}
					found = true
				}
			}
		}
	})
	return best, found
}

// SelectAt picks along ray and makes the hit entity the selection. A miss
// clears the selection.
func (w *World) SelectAt(ray physics.Ray) (engine.Entity, bool) {
	hit, ok := Pick(w.Scene, ray)
	if !ok {
		w.ClearSelection()
		w.logger.Debug("pick missed")
		return engine.Entity{}, false
	}
	e := w.Scene.Entity(hit.Entity)
	w.Select(e)
	w.logger.Debug("picked entity",
		zap.String("name", e.Name()),
		zap.Stringer("id", hit.Entity),
		zap.Float32("distance", hit.Distance),
	)
	return e, true
}
