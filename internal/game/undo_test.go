package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/engine"
)

func moveTo(t *testing.T, e engine.Entity, x float32) {
	t.Helper()
	tr, err := engine.GetComponent[engine.Transform](e)
	if err != nil {
		t.Fatal(err)
	}
	tr.Translation = mgl32.Vec3{x, 0, 0}
}

func TestUndoPopRestoresNewest(t *testing.T) {
	scene := engine.NewScene("Undo", nil)
	e := scene.CreateEntity("Box")

	var stack undoStack
	stack.push(e)
	moveTo(t, e, 1)
	stack.push(e)
	moveTo(t, e, 2)

	got, ok := stack.pop(scene)
	if !ok || got.ID != e.ID {
		t.Fatal("Expected Box restored")
	}
	tr, _ := engine.GetComponent[engine.Transform](e)
	if tr.Translation[0] != 1 {
		t.Errorf("Expected x 1, got %f", tr.Translation[0])
	}

	stack.pop(scene)
	if tr.Translation[0] != 0 {
		t.Errorf("Expected x 0, got %f", tr.Translation[0])
	}
	if _, ok := stack.pop(scene); ok {
		t.Error("Expected an empty stack")
	}
}

func TestUndoSkipsDestroyedEntities(t *testing.T) {
	scene := engine.NewScene("Undo", nil)
	kept := scene.CreateEntity("Kept")
	gone := scene.CreateEntity("Gone")

	var stack undoStack
	stack.push(kept)
	stack.push(gone)
	moveTo(t, kept, 5)
	if err := scene.DestroyEntity(gone); err != nil {
		t.Fatal(err)
	}

	got, ok := stack.pop(scene)
	if !ok || got.Name() != "Kept" {
		t.Fatalf("Expected Kept restored, got %v", ok)
	}
	if stack.len() != 0 {
		t.Errorf("Expected the stale state dropped, got %d left", stack.len())
	}
}

func TestUndoStackIsBounded(t *testing.T) {
	scene := engine.NewScene("Undo", nil)
	e := scene.CreateEntity("Box")

	var stack undoStack
	for i := 0; i < maxUndoStack+10; i++ {
		stack.push(e)
	}
	if stack.len() != maxUndoStack {
		t.Errorf("Expected %d states, got %d", maxUndoStack, stack.len())
	}
	stack.clear()
	if stack.len() != 0 {
		t.Errorf("Expected an empty stack after clear, got %d", stack.len())
	}
}
