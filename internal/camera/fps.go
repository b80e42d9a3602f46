package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/input"
)

const (
	fpsVelocity   = 2.5
	fpsBoost      = 4
	fpsLookSpeed  = 0.005
	fpsPitchLimit = 89.999
)

// FPS flies freely while the middle mouse button is held.
type FPS struct {
	lens   Lens
	aspect float32

	position   mgl32.Vec3
	yaw, pitch float32

	front, right, up mgl32.Vec3
	projection       mgl32.Mat4
	view             mgl32.Mat4

	previousMouse mgl32.Vec2
}

func NewFPS(lens Lens, aspect float32) *FPS {
	f := &FPS{
		lens:     lens,
		aspect:   aspect,
		position: mgl32.Vec3{0, 2, 0},
		pitch:    mgl32.DegToRad(45),
	}
	f.recalculate()
	return f
}

func (f *FPS) Position() mgl32.Vec3 { return f.position }
func (f *FPS) Front() mgl32.Vec3    { return f.front }

// OnUpdate moves along the view axes with WASD; shift moves faster.
func (f *FPS) OnUpdate(delta float32, state input.State) {
	velocity := fpsVelocity * delta
	if state.KeyDown(input.KeyLeftShift) {
		velocity *= fpsBoost
	}
	if state.MouseButtonDown(input.MouseMiddle) {
		if state.KeyDown(input.KeyW) {
			f.position = f.position.Add(f.front.Mul(velocity))
		}
		if state.KeyDown(input.KeyS) {
			f.position = f.position.Sub(f.front.Mul(velocity))
		}
		if state.KeyDown(input.KeyA) {
			f.position = f.position.Sub(f.right.Mul(velocity))
		}
		if state.KeyDown(input.KeyD) {
			f.position = f.position.Add(f.right.Mul(velocity))
		}
	}
	f.recalculate()
}

func (f *FPS) OnEvent(ev *input.Event, state input.State) {
	if ev.Type == input.MouseMoved {
		delta := f.previousMouse.Sub(ev.Position)
		f.previousMouse = ev.Position
		if state.MouseButtonDown(input.MouseMiddle) {
			yawSign := float32(-1)
			if f.up[1] < 0 {
				yawSign = 1
			}
			f.yaw += yawSign * delta[0] * fpsLookSpeed
			f.pitch += delta[1] * fpsLookSpeed

			limit := mgl32.DegToRad(fpsPitchLimit)
			if f.pitch >= mgl32.DegToRad(90) {
				f.pitch = limit
			}
			if f.pitch <= mgl32.DegToRad(-90) {
				f.pitch = -limit
			}
		}
	}
	f.recalculate()
}

func (f *FPS) OnResize(width, height uint32) {
	f.aspect = aspectFor(width, height)
	f.recalculate()
}

func (f *FPS) recalculate() {
	yaw, pitch := float64(f.yaw), float64(f.pitch)
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	worldUp := mgl32.Vec3{0, 1, 0}
	f.front = front.Normalize()
	f.right = f.front.Cross(worldUp).Normalize()
	f.up = f.right.Cross(f.front).Normalize()

	f.projection = f.lens.projection(f.aspect)
	f.view = mgl32.LookAtV(f.position, f.position.Add(f.front), f.up)
}
