package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/input"
)

const (
	minOrbitDistance = 0.5
	panFactor        = 0.25
	pitchDamping     = 0.8
	// pixels to pan offset when shift is held with the middle button
	panPerPixel = 0.002
)

// Orbit circles a focal point at a fixed distance.
type Orbit struct {
	lens   Lens
	aspect float32

	focalPoint mgl32.Vec3
	distance   float32
	yaw, pitch float32

	MovementSpeed float32
	RotationSpeed float32
	ZoomSpeed     float32

	position   mgl32.Vec3
	projection mgl32.Mat4
	view       mgl32.Mat4

	previousMouse mgl32.Vec2
}

func NewOrbit(lens Lens, aspect float32) *Orbit {
	o := &Orbit{
		lens:          lens,
		aspect:        aspect,
		distance:      10,
		pitch:         mgl32.DegToRad(45),
		MovementSpeed: 1,
		RotationSpeed: 0.005,
		ZoomSpeed:     0.5,
	}
	o.recalculate()
	return o
}

func (o *Orbit) orientation() mgl32.Quat {
	return mgl32.QuatRotate(-o.yaw, mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(-o.pitch, mgl32.Vec3{1, 0, 0}))
}

func (o *Orbit) Up() mgl32.Vec3      { return o.orientation().Rotate(mgl32.Vec3{0, 1, 0}) }
func (o *Orbit) Right() mgl32.Vec3   { return o.orientation().Rotate(mgl32.Vec3{1, 0, 0}) }
func (o *Orbit) Forward() mgl32.Vec3 { return o.orientation().Rotate(mgl32.Vec3{0, 0, -1}) }

// Rotate turns the camera by a mouse delta in pixels. Yaw flips when the
// camera is upside down so dragging stays intuitive.
func (o *Orbit) Rotate(offset mgl32.Vec2) {
	yawSign := float32(-1)
	if o.Up()[1] < 0 {
		yawSign = 1
	}
	o.yaw += yawSign * offset[0] * o.RotationSpeed
	o.pitch += -offset[1] * pitchDamping * o.RotationSpeed
	o.recalculate()
}

func (o *Orbit) Zoom(offset float32) {
	o.distance -= offset * o.ZoomSpeed
	if o.distance < minOrbitDistance {
		o.distance = minOrbitDistance
	}
	o.recalculate()
}

// Move pans the focal point in the view plane, scaled by distance.
func (o *Orbit) Move(offset mgl32.Vec2) {
	scale := panFactor * o.distance * o.MovementSpeed
	o.focalPoint = o.focalPoint.
		Add(o.Right().Mul(-offset[0] * scale)).
		Add(o.Up().Mul(offset[1] * scale))
	o.recalculate()
}

// Focus recenters the orbit on p.
func (o *Orbit) Focus(p mgl32.Vec3) {
	o.focalPoint = p
	o.recalculate()
}

func (o *Orbit) Distance() float32      { return o.distance }
func (o *Orbit) FocalPoint() mgl32.Vec3 { return o.focalPoint }
func (o *Orbit) Position() mgl32.Vec3   { return o.position }

func (o *Orbit) OnEvent(ev *input.Event, state input.State) {
	switch ev.Type {
	case input.MouseScrolled:
		o.Zoom(ev.Offset[1])
	case input.MouseMoved:
		delta := o.previousMouse.Sub(ev.Position)
		o.previousMouse = ev.Position
		if !state.MouseButtonDown(input.MouseMiddle) {
			return
		}
		if state.KeyDown(input.KeyLeftShift) {
			o.Move(delta.Mul(panPerPixel))
		} else {
			o.Rotate(delta)
		}
	}
}

func (o *Orbit) OnResize(width, height uint32) {
	o.aspect = aspectFor(width, height)
	o.recalculate()
}

func (o *Orbit) recalculate() {
	o.position = o.focalPoint.Sub(o.Forward().Mul(o.distance))
	o.projection = o.lens.projection(o.aspect)
	place := mgl32.Translate3D(o.position[0], o.position[1], o.position[2]).
		Mul4(o.orientation().Mat4())
	o.view = place.Inv()
}
