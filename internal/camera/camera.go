// Package camera provides the editor viewpoint: an orbit camera around a
// focal point and a free-flying FPS camera, switchable at runtime.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/input"
)

// Lens holds the projection parameters shared by both camera kinds.
type Lens struct {
	FOV  float32 // degrees
	Near float32
	Far  float32
}

var DefaultLens = Lens{FOV: 45, Near: 0.1, Far: 1000}

const defaultAspect = 1.778

func (l Lens) projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(l.FOV), aspect, l.Near, l.Far)
}

// aspectFor divides with a small bias so a zero height never divides by zero.
func aspectFor(width, height uint32) float32 {
	return float32(width) / (float32(height) + 0.001)
}

type Mode int

const (
	ModeOrbit Mode = iota
	ModeFPS
)

func (m Mode) String() string {
	if m == ModeFPS {
		return "fps"
	}
	return "orbit"
}

// ParseMode accepts "orbit" and "fps"; anything else is orbit.
func ParseMode(s string) Mode {
	if s == "fps" {
		return ModeFPS
	}
	return ModeOrbit
}

// Editor dispatches to whichever camera is active.
type Editor struct {
	lens  Lens
	mode  Mode
	orbit *Orbit
	fps   *FPS
}

func NewEditor(mode Mode, lens Lens) *Editor {
	return &Editor{
		lens:  lens,
		mode:  mode,
		orbit: NewOrbit(lens, defaultAspect),
		fps:   NewFPS(lens, defaultAspect),
	}
}

func (e *Editor) Mode() Mode { return e.mode }

// SetMode switches cameras. The newly active camera starts fresh with the
// aspect ratio of the one it replaces.
func (e *Editor) SetMode(mode Mode) {
	if mode == e.mode {
		return
	}
	switch mode {
	case ModeOrbit:
		e.orbit = NewOrbit(e.lens, e.fps.aspect)
	case ModeFPS:
		e.fps = NewFPS(e.lens, e.orbit.aspect)
	}
	e.mode = mode
}

func (e *Editor) OnUpdate(delta float32, state input.State) {
	if e.mode == ModeFPS {
		e.fps.OnUpdate(delta, state)
	}
}

func (e *Editor) OnEvent(ev *input.Event, state input.State) {
	if e.mode == ModeOrbit {
		e.orbit.OnEvent(ev, state)
	} else {
		e.fps.OnEvent(ev, state)
	}
}

func (e *Editor) OnResize(width, height uint32) {
	if e.mode == ModeOrbit {
		e.orbit.OnResize(width, height)
	} else {
		e.fps.OnResize(width, height)
	}
}

func (e *Editor) Position() mgl32.Vec3 {
	if e.mode == ModeOrbit {
		return e.orbit.position
	}
	return e.fps.position
}

func (e *Editor) Projection() mgl32.Mat4 {
	if e.mode == ModeOrbit {
		return e.orbit.projection
	}
	return e.fps.projection
}

func (e *Editor) View() mgl32.Mat4 {
	if e.mode == ModeOrbit {
		return e.orbit.view
	}
	return e.fps.view
}

func (e *Editor) ProjectionView() mgl32.Mat4 {
	return e.Projection().Mul4(e.View())
}

// Orbit returns the orbit camera, used by the editor's focus action.
func (e *Editor) Orbit() *Orbit { return e.orbit }
