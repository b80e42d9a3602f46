// Package input carries window and device events from the platform layer to
// the editor, so cameras and selection can be driven without a window.
package input

import "github.com/go-gl/mathgl/mgl32"

type EventType int

const (
	EventNone EventType = iota
	WindowClosed
	WindowResized
	KeyPressed
	KeyReleased
	MouseButtonPressed
	MouseButtonReleased
	MouseMoved
	MouseScrolled
)

func (t EventType) String() string {
	switch t {
	case WindowClosed:
		return "WindowClosed"
	case WindowResized:
		return "WindowResized"
	case KeyPressed:
		return "KeyPressed"
	case KeyReleased:
		return "KeyReleased"
	case MouseButtonPressed:
		return "MouseButtonPressed"
	case MouseButtonReleased:
		return "MouseButtonReleased"
	case MouseMoved:
		return "MouseMoved"
	case MouseScrolled:
		return "MouseScrolled"
	}
	return "None"
}

type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyG
	KeyP
	KeyZ
	KeyLeftShift
	KeyLeftControl
	KeyDelete
	KeyEscape
	KeySpace
)

// Keys lists every key the platform layer polls.
var Keys = []Key{
	KeyW, KeyA, KeyS, KeyD, KeyG, KeyP, KeyZ,
	KeyLeftShift, KeyLeftControl, KeyDelete, KeyEscape, KeySpace,
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

var MouseButtons = []MouseButton{MouseLeft, MouseRight, MouseMiddle}

// Event is one input occurrence. Only the fields of its Type are set:
// Key for key events, Button for button events, Position for mouse moves and
// presses, Offset for scrolls and Size for resizes.
type Event struct {
	Type     EventType
	Key      Key
	Button   MouseButton
	Position mgl32.Vec2
	Offset   mgl32.Vec2
	Size     mgl32.Vec2

	Handled bool
}

// State answers "is it held right now" queries during event handling.
type State interface {
	KeyDown(Key) bool
	MouseButtonDown(MouseButton) bool
}

// Held is a State backed by plain sets.
type Held struct {
	Keys    map[Key]bool
	Buttons map[MouseButton]bool
}

func NewHeld() *Held {
	return &Held{Keys: make(map[Key]bool), Buttons: make(map[MouseButton]bool)}
}

func (h *Held) KeyDown(k Key) bool                 { return h.Keys[k] }
func (h *Held) MouseButtonDown(b MouseButton) bool { return h.Buttons[b] }

// Apply updates the held sets from a press or release event.
func (h *Held) Apply(ev Event) {
	switch ev.Type {
	case KeyPressed:
		h.Keys[ev.Key] = true
	case KeyReleased:
		delete(h.Keys, ev.Key)
	case MouseButtonPressed:
		h.Buttons[ev.Button] = true
	case MouseButtonReleased:
		delete(h.Buttons, ev.Button)
	}
}
