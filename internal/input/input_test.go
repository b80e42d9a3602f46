package input

import "testing"

func TestHeldTracksPressAndRelease(t *testing.T) {
	h := NewHeld()

	h.Apply(Event{Type: KeyPressed, Key: KeyLeftShift})
	h.Apply(Event{Type: MouseButtonPressed, Button: MouseMiddle})
	if !h.KeyDown(KeyLeftShift) || !h.MouseButtonDown(MouseMiddle) {
		t.Fatal("Expected shift and the middle button held")
	}

	h.Apply(Event{Type: KeyReleased, Key: KeyLeftShift})
	h.Apply(Event{Type: MouseButtonReleased, Button: MouseMiddle})
	if h.KeyDown(KeyLeftShift) || h.MouseButtonDown(MouseMiddle) {
		t.Error("Expected both released")
	}
}

func TestHeldIgnoresOtherEvents(t *testing.T) {
	h := NewHeld()
	h.Apply(Event{Type: MouseMoved, Key: KeyW})
	if h.KeyDown(KeyW) {
		t.Error("Mouse moves must not press keys")
	}
}

func TestEventTypeString(t *testing.T) {
	if MouseScrolled.String() != "MouseScrolled" {
		t.Errorf("Expected MouseScrolled, got %s", MouseScrolled)
	}
	if EventType(99).String() != "None" {
		t.Errorf("Expected None for unknown types, got %s", EventType(99))
	}
}

func TestKeysAreUnique(t *testing.T) {
	seen := make(map[Key]bool)
	for _, k := range Keys {
		if seen[k] {
			t.Errorf("Key %d listed twice", k)
		}
		seen[k] = true
	}
}
