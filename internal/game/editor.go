package game

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/camera"
	"mirgo/internal/engine"
	"mirgo/internal/input"
	"mirgo/internal/physics"
	"mirgo/internal/render"
	"mirgo/internal/world"
)

// maxCatchUpSteps bounds how many fixed steps one slow frame may run.
const maxCatchUpSteps = 5

// Rect is a window-space rectangle in pixels, origin top left.
type Rect struct {
	X, Y, Width, Height float32
}

func (r Rect) Contains(p mgl32.Vec2) bool {
	return p[0] >= r.X && p[0] < r.X+r.Width && p[1] >= r.Y && p[1] < r.Y+r.Height
}

func (r Rect) Size() mgl32.Vec2 { return mgl32.Vec2{r.Width, r.Height} }

// Editor holds everything the editor UI acts on: the world, the editor
// camera, the gizmo and the viewport panel state.
type Editor struct {
	world  *world.World
	camera *camera.Editor
	gizmo  *Gizmo
	held   *input.Held
	undo   undoStack

	viewport        Rect
	viewportHovered bool
	viewportFocused bool
	mouse           mgl32.Vec2

	// FixedStep is the physics step in seconds; zero steps once per frame.
	FixedStep   float32
	accumulator float32

	ScenePath string
	status    string
	logger    *zap.Logger
}

func NewEditor(w *world.World, cam *camera.Editor, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		world:  w,
		camera: cam,
		gizmo:  NewGizmo(),
		held:   input.NewHeld(),
		logger: logger,
	}
}

func (e *Editor) World() *world.World    { return e.world }
func (e *Editor) Camera() *camera.Editor { return e.camera }
func (e *Editor) Gizmo() *Gizmo          { return e.gizmo }
func (e *Editor) Held() input.State      { return e.held }
func (e *Editor) Viewport() Rect         { return e.viewport }
func (e *Editor) ViewportHovered() bool  { return e.viewportHovered }
func (e *Editor) Status() string         { return e.status }

func (e *Editor) State() engine.SceneState { return e.world.Scene.State() }

func (e *Editor) setStatus(msg string) {
	e.status = msg
	e.logger.Debug("status", zap.String("message", msg))
}

// SetViewport records where the viewport panel sits this frame. A size
// change recreates the render targets and updates every camera. A target
// that cannot be recreated is fatal and returned to the caller.
func (e *Editor) SetViewport(bounds Rect, hovered, focused bool) error {
	e.viewport = bounds
	e.viewportHovered = hovered
	e.viewportFocused = focused

	w, h := int32(bounds.Width), int32(bounds.Height)
	changed, err := e.world.Resize(w, h)
	if err != nil {
		return fmt.Errorf("resize viewport to %dx%d: %w", w, h, err)
	}
	if changed {
		e.camera.OnResize(uint32(w), uint32(h))
		e.logger.Debug("viewport resized", zap.Int32("width", w), zap.Int32("height", h))
	}
	return nil
}

// EditorView is the view the editor camera renders from.
func (e *Editor) EditorView() render.View {
	return render.View{
		Projection: e.camera.Projection(),
		View:       e.camera.View(),
		Position:   e.camera.Position(),
	}
}

// MouseRay casts a ray from the editor camera through a window position.
func (e *Editor) MouseRay(pos mgl32.Vec2) physics.Ray {
	local := mgl32.Vec2{pos[0] - e.viewport.X, pos[1] - e.viewport.Y}
	return world.ScreenRay(local, e.viewport.Size(), e.camera.Projection(), e.camera.View(), e.camera.Position())
}

// OnEvent handles one input event. Events already marked handled by the UI
// only update the held state.
func (e *Editor) OnEvent(ev *input.Event) {
	e.held.Apply(*ev)
	if ev.Type == input.MouseMoved {
		e.mouse = ev.Position
	}
	if ev.Handled {
		return
	}

	switch ev.Type {
	case input.MouseMoved:
		e.onMouseMoved(ev)
	case input.MouseScrolled:
		if e.viewportHovered {
			e.camera.OnEvent(ev, e.held)
			ev.Handled = true
		}
	case input.MouseButtonPressed:
		ev.Handled = e.HandleMousePress(ev)
	case input.MouseButtonReleased:
		if ev.Button == input.MouseLeft && e.gizmo.End() {
			ev.Handled = true
		}
	case input.KeyPressed:
		ev.Handled = e.onKeyPressed(ev.Key)
	}
}

func (e *Editor) onMouseMoved(ev *input.Event) {
	// the cameras track the previous position, so they see every move
	e.camera.OnEvent(ev, e.held)

	selected, ok := e.world.Selected()
	if !ok || e.State() == engine.ScenePlaying || !e.viewportHovered {
		e.gizmo.ClearHover()
		return
	}
	t, err := engine.GetComponent[engine.Transform](selected)
	if err != nil {
		return
	}
	ray := e.MouseRay(ev.Position)
	if e.gizmo.InUse() {
		e.gizmo.Drag(ray, t)
		return
	}
	e.gizmo.UpdateHover(ray, t.Translation)
}

// HandleMousePress starts a gizmo drag or picks an entity with the left
// button. Picking only happens over the viewport, outside play mode and
// while the gizmo is neither hovered nor in use.
func (e *Editor) HandleMousePress(ev *input.Event) bool {
	if ev.Button != input.MouseLeft || !e.viewportHovered {
		return false
	}
	if e.State() == engine.ScenePlaying || e.gizmo.InUse() {
		return false
	}

	ray := e.MouseRay(ev.Position)
	if e.gizmo.Hovered() {
		selected, ok := e.world.Selected()
		if !ok {
			e.gizmo.ClearHover()
			return false
		}
		t, err := engine.GetComponent[engine.Transform](selected)
		if err != nil {
			return false
		}
		e.undo.push(selected)
		return e.gizmo.Begin(ray, *t, e.camera.Position())
	}

	e.world.SelectAt(ray)
	return true
}

func (e *Editor) onKeyPressed(key input.Key) bool {
	ctrl := e.held.KeyDown(input.KeyLeftControl)
	switch {
	case key == input.KeyP:
		e.TogglePlay()
	case key == input.KeyEscape:
		if e.gizmo.InUse() {
			e.cancelDrag()
		} else if e.State() != engine.SceneEditing {
			e.Reset()
		} else {
			e.world.ClearSelection()
		}
	case key == input.KeyG && !ctrl:
		e.gizmo.NextMode()
		e.setStatus("gizmo: " + e.gizmo.Mode.String())
	case key == input.KeyD && ctrl:
		e.Duplicate()
	case key == input.KeyDelete:
		e.Delete()
	case key == input.KeyZ && ctrl:
		e.Undo()
	case key == input.KeyS && ctrl:
		e.Save()
	default:
		return false
	}
	return true
}

func (e *Editor) cancelDrag() {
	var t *engine.Transform
	if selected, ok := e.world.Selected(); ok {
		t, _ = engine.TryGetComponent[engine.Transform](selected)
	}
	e.gizmo.Cancel(t)
}

// OnUpdate advances the editor camera and the scene. With a FixedStep the
// scene is stepped in fixed increments carried across frames.
func (e *Editor) OnUpdate(delta float32) {
	if e.viewportHovered || e.viewportFocused {
		e.camera.OnUpdate(delta, e.held)
	}

	if e.State() != engine.ScenePlaying {
		e.accumulator = 0
		e.world.Update(delta)
		return
	}
	if e.FixedStep <= 0 {
		e.world.Update(delta)
		return
	}

	e.accumulator += delta
	steps := 0
	for e.accumulator >= e.FixedStep && steps < maxCatchUpSteps {
		e.world.Update(e.FixedStep)
		e.accumulator -= e.FixedStep
		steps++
	}
	if steps == maxCatchUpSteps {
		e.accumulator = 0
	}
}

func (e *Editor) Render() {
	e.world.Render(e.EditorView())
}

// --- play controls ---

func (e *Editor) Play() {
	e.gizmo.End()
	e.gizmo.ClearHover()
	e.world.Scene.Play()
	e.setStatus("playing")
}

func (e *Editor) Pause() {
	e.world.Scene.Pause()
	e.setStatus("paused")
}

func (e *Editor) Reset() {
	e.world.Scene.Reset()
	e.accumulator = 0
	e.setStatus("reset")
}

// TogglePlay plays from Editing or Pausing and pauses while Playing.
func (e *Editor) TogglePlay() {
	if e.State() == engine.ScenePlaying {
		e.Pause()
		return
	}
	e.Play()
}

// --- entity commands ---

func (e *Editor) Duplicate() {
	if e.State() != engine.SceneEditing {
		return
	}
	dup, err := e.world.DuplicateSelected()
	if err != nil {
		if !errors.Is(err, world.ErrNoSelection) {
			e.logger.Error("duplicate failed", zap.Error(err))
		}
		return
	}
	e.setStatus("duplicated " + dup.Name())
}

// Spawn adds an entity showing the mesh at path and selects it.
func (e *Editor) Spawn(name, path string) {
	if e.State() != engine.SceneEditing {
		return
	}
	ent := e.world.SpawnMesh(name, path)
	e.world.Select(ent)
	e.setStatus("added " + ent.Name())
}

func (e *Editor) Delete() {
	if e.State() != engine.SceneEditing {
		return
	}
	selected, ok := e.world.Selected()
	if !ok {
		return
	}
	name := selected.Name()
	e.gizmo.End()
	if err := e.world.DestroySelected(); err != nil {
		e.logger.Error("delete failed", zap.Error(err))
		return
	}
	e.setStatus("deleted " + name)
}

func (e *Editor) Undo() {
	if e.State() != engine.SceneEditing {
		return
	}
	if ent, ok := e.undo.pop(e.world.Scene); ok {
		e.world.Select(ent)
		e.setStatus("undo " + ent.Name())
	}
}

// Select makes the entity at index i of the scene's entity list the
// selection. Used by the hierarchy panel.
func (e *Editor) Select(i int) {
	entities := e.world.Scene.Entities()
	if i < 0 || i >= len(entities) {
		e.world.ClearSelection()
		return
	}
	e.world.Select(entities[i])
}

// SelectedIndex is the selection's position in the scene's entity list, or
// -1.
func (e *Editor) SelectedIndex() int {
	selected, ok := e.world.Selected()
	if !ok {
		return -1
	}
	for i, ent := range e.world.Scene.Entities() {
		if ent.ID == selected.ID {
			return i
		}
	}
	return -1
}

// --- scene files ---

func (e *Editor) Save() {
	if e.ScenePath == "" {
		e.setStatus("no scene file configured")
		return
	}
	if err := e.world.SaveScene(e.ScenePath); err != nil {
		e.logger.Error("save failed", zap.String("path", e.ScenePath), zap.Error(err))
		e.setStatus("save failed")
		return
	}
	e.setStatus("saved " + e.ScenePath)
}

// Open loads the scene at path and makes it the save target.
func (e *Editor) Open(path string) error {
	if err := e.world.LoadScene(path); err != nil {
		return err
	}
	e.ScenePath = path
	e.undo.clear()
	e.gizmo.End()
	e.setStatus("opened " + path)
	return nil
}
