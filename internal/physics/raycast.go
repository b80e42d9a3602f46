package physics

import "github.com/go-gl/mathgl/mgl32"

// RayEpsilon rejects near-parallel rays and hits at or behind the origin.
const RayEpsilon = 1e-7

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform moves the ray into the space described by inv. The origin takes the
// full affine transform, the direction only the inverse of the 3x3 linear part
// so translation never leaks into it.
func (r Ray) Transform(inv mgl32.Mat4) Ray {
	return Ray{
		Origin:    mgl32.TransformCoordinate(r.Origin, inv),
		Direction: inv.Mat3().Mul3x1(r.Direction),
	}
}

// RayIntersectsTriangle runs Möller–Trumbore against the triangle (v0, v1, v2)
// and returns the ray parameter t of the hit. The distance is measured in units
// of the ray direction, so it equals the euclidean distance only when the
// direction is normalized.
func RayIntersectsTriangle(r Ray, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -RayEpsilon && a < RayEpsilon {
		return 0, false
	}

	f := 1 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t > RayEpsilon {
		return t, true
	}
	// line hit behind the origin
	return 0, false
}
