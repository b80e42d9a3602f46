package game

import (
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"

	"mirgo/internal/input"
)

var raylibKeys = map[input.Key]int32{
	input.KeyW:           rl.KeyW,
	input.KeyA:           rl.KeyA,
	input.KeyS:           rl.KeyS,
	input.KeyD:           rl.KeyD,
	input.KeyG:           rl.KeyG,
	input.KeyP:           rl.KeyP,
	input.KeyZ:           rl.KeyZ,
	input.KeyLeftShift:   rl.KeyLeftShift,
	input.KeyLeftControl: rl.KeyLeftControl,
	input.KeyDelete:      rl.KeyDelete,
	input.KeyEscape:      rl.KeyEscape,
	input.KeySpace:       rl.KeySpace,
}

var raylibButtons = map[input.MouseButton]rl.MouseButton{
	input.MouseLeft:   rl.MouseLeftButton,
	input.MouseRight:  rl.MouseRightButton,
	input.MouseMiddle: rl.MouseMiddleButton,
}

// poller turns raylib's per-frame polling into discrete events.
type poller struct {
	mouse  mgl32.Vec2
	width  int32
	height int32
	events []input.Event
}

func newPoller() *poller {
	return &poller{
		width:  int32(rl.GetScreenWidth()),
		height: int32(rl.GetScreenHeight()),
	}
}

// poll returns this frame's events in a fixed order: window, keys, buttons,
// motion, scroll. The slice is reused by the next call.
func (p *poller) poll() []input.Event {
	p.events = p.events[:0]

	if rl.WindowShouldClose() {
		p.events = append(p.events, input.Event{Type: input.WindowClosed})
	}
	if rl.IsWindowResized() {
		w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		if w != p.width || h != p.height {
			p.width, p.height = w, h
			p.events = append(p.events, input.Event{
				Type: input.WindowResized,
				Size: mgl32.Vec2{float32(w), float32(h)},
			})
		}
	}

	for _, key := range input.Keys {
		code := raylibKeys[key]
		if rl.IsKeyPressed(code) {
			p.events = append(p.events, input.Event{Type: input.KeyPressed, Key: key})
		}
		if rl.IsKeyReleased(code) {
			p.events = append(p.events, input.Event{Type: input.KeyReleased, Key: key})
		}
	}

	pos := rl.GetMousePosition()
	mouse := mgl32.Vec2{pos.X, pos.Y}
	for _, button := range input.MouseButtons {
		code := raylibButtons[button]
		if rl.IsMouseButtonPressed(code) {
			p.events = append(p.events, input.Event{Type: input.MouseButtonPressed, Button: button, Position: mouse})
		}
		if rl.IsMouseButtonReleased(code) {
			p.events = append(p.events, input.Event{Type: input.MouseButtonReleased, Button: button, Position: mouse})
		}
	}

	if mouse != p.mouse {
		p.mouse = mouse
		p.events = append(p.events, input.Event{Type: input.MouseMoved, Position: mouse})
	}

	if wheel := rl.GetMouseWheelMoveV(); wheel.X != 0 || wheel.Y != 0 {
		p.events = append(p.events, input.Event{
			Type:     input.MouseScrolled,
			Position: mouse,
			Offset:   mgl32.Vec2{wheel.X, wheel.Y},
		})
	}
	return p.events
}
