package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/physics"
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// ExtractFrustum extracts the planes of a projection * view matrix using the
// Gribb/Hartmann method.
func ExtractFrustum(viewProjection mgl32.Mat4) Frustum {
	r0 := viewProjection.Row(0)
	r1 := viewProjection.Row(1)
	r2 := viewProjection.Row(2)
	r3 := viewProjection.Row(3)

	var f Frustum
	f.planes[0] = planeFrom(r3.Add(r0))
	f.planes[1] = planeFrom(r3.Sub(r0))
	f.planes[2] = planeFrom(r3.Add(r1))
	f.planes[3] = planeFrom(r3.Sub(r1))
	f.planes[4] = planeFrom(r3.Add(r2))
	f.planes[5] = planeFrom(r3.Sub(r2))
	return f
}

func planeFrom(v mgl32.Vec4) Plane {
	p := Plane{Normal: v.Vec3(), Distance: v[3]}
	length := p.Normal.Len()
	if length == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / length), Distance: p.Distance / length}
}

// SignedDistance is positive on the inner side of the plane.
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

func (f *Frustum) Planes() [6]Plane { return f.planes }

// ContainsSphere tests if a sphere is inside or intersects the frustum
func (f *Frustum) ContainsSphere(center mgl32.Vec3, radius float32) bool {
	for _, p := range f.planes {
		if p.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum
func (f *Frustum) ContainsPoint(point mgl32.Vec3) bool {
	for _, p := range f.planes {
		if p.SignedDistance(point) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports false only when the whole box lies behind one plane.
func (f *Frustum) ContainsAABB(box physics.AABB) bool {
	if box.IsEmpty() {
		return false
	}
	for _, p := range f.planes {
		// corner furthest along the plane normal
		var far mgl32.Vec3
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				far[i] = box.Max[i]
			} else {
				far[i] = box.Min[i]
			}
		}
		if p.SignedDistance(far) < 0 {
			return false
		}
	}
	return true
}
