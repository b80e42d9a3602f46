// Package world ties one editor scene to the asset cache, the renderer and
// its render targets, and tracks the editor's selection.
package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mirgo/internal/assets"
	"mirgo/internal/engine"
	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
	"mirgo/internal/physics"
	"mirgo/internal/render"
)

var (
	ErrNotEditing  = errors.New("scene is not in edit mode")
	ErrNoSelection = errors.New("nothing selected")
)

type Options struct {
	ShaderDir     string
	Width         int32
	Height        int32
	Samples       int32
	ClearColor    mgl32.Vec4
	Render        render.SceneOptions
	Gravity       mgl32.Vec2
	CollisionSlop float64
	// Exposure and Tonemap seed the environment of every new scene.
	Exposure float32
	Tonemap  bool
}

func DefaultOptions() Options {
	return Options{
		ShaderDir:     "assets/shaders",
		Width:         1280,
		Height:        720,
		Samples:       4,
		ClearColor:    mgl32.Vec4{0.1, 0.1, 0.1, 1},
		Render:        render.DefaultSceneOptions(),
		Gravity:       physics.DefaultGravity,
		CollisionSlop: physics.DefaultCollisionSlop,
		Exposure:      1,
		Tonemap:       true,
	}
}

type World struct {
	Scene    *engine.Scene
	Assets   *assets.Manager
	Renderer *render.Renderer
	Pipeline *render.Pipeline

	opts     Options
	selected uuid.UUID
	logger   *zap.Logger
}

// New wires a world to a device and an importer. Nothing touches the device
// until Initialize.
func New(dev gpu.Device, importer mesh.Importer, opts Options, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := render.NewRenderer(dev, logger.Named("renderer"))
	w := &World{
		Assets:   assets.NewManager(importer, dev, logger.Named("assets")),
		Renderer: r,
		Pipeline: render.NewPipeline(r, opts.Width, opts.Height, opts.Samples, opts.Render, logger.Named("pipeline")),
		opts:     opts,
		logger:   logger,
	}
	w.Scene = w.newScene("Untitled")
	return w
}

func (w *World) newScene(name string) *engine.Scene {
	s := engine.NewScene(name, w.logger.Named("scene"))
	s.SetGravity(w.opts.Gravity)
	s.SetCollisionSlop(w.opts.CollisionSlop)
	if w.opts.Exposure > 0 {
		s.Environment.Exposure = w.opts.Exposure
	}
	s.Environment.Tonemap = w.opts.Tonemap
	return s
}

func (w *World) Initialize() error {
	if err := w.Renderer.Init(w.opts.ShaderDir); err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	w.Renderer.SetClearColor(w.opts.ClearColor)
	if err := w.Pipeline.Create(); err != nil {
		return fmt.Errorf("create render targets: %w", err)
	}
	return nil
}

// NewScene replaces the scene with an empty one. Only allowed while editing.
func (w *World) NewScene(name string) error {
	if w.Scene.State() != engine.SceneEditing {
		return ErrNotEditing
	}
	w.Scene = w.newScene(name)
	w.selected = uuid.Nil
	return nil
}

func (w *World) Update(deltaTime float32) {
	w.Scene.OnUpdate(deltaTime)
}

// Render draws the scene from editorView, or from the scene's primary camera
// while a play session runs and one exists.
func (w *World) Render(editorView render.View) {
	view := editorView
	if runtime, ok := w.RuntimeView(); ok {
		view = runtime
	}
	selected := engine.NullEntity
	if e, ok := w.Selected(); ok {
		selected = e.ID
	}
	w.Pipeline.Render(w.Scene, view, selected)
}

// RuntimeView returns the view of the primary scene camera when the scene is
// not being edited.
func (w *World) RuntimeView() (render.View, bool) {
	if w.Scene.State() == engine.SceneEditing {
		return render.View{}, false
	}
	var view render.View
	found := false
	engine.Each2(w.Scene.Registry(), func(id engine.EntityID, cam *engine.Camera, t *engine.Transform) {
		if found || !cam.Primary {
			return
		}
		view = render.View{
			Projection: cam.Projection(),
			View:       cam.View(*t),
			Position:   t.Translation,
		}
		found = true
	})
	return view, found
}

// Resize recreates the render targets and updates every scene camera's
// aspect ratio when the viewport size changed.
func (w *World) Resize(width, height int32) (bool, error) {
	changed, err := w.Pipeline.Resize(width, height)
	if err != nil || !changed {
		return changed, err
	}
	engine.Each1(w.Scene.Registry(), func(id engine.EntityID, cam *engine.Camera) {
		cam.SetBounds(float32(width), float32(height))
	})
	return true, nil
}

// Output is the composed image shown in the viewport panel.
func (w *World) Output() gpu.Handle { return w.Pipeline.Output() }

// Selected resolves the selection by UUID, so it survives Reset.
func (w *World) Selected() (engine.Entity, bool) {
	if w.selected == uuid.Nil {
		return engine.Entity{}, false
	}
	return w.Scene.EntityByUUID(w.selected)
}

func (w *World) Select(e engine.Entity) {
	ident, err := engine.GetComponent[engine.Identity](e)
	if err != nil {
		w.selected = uuid.Nil
		return
	}
	w.selected = ident.UUID
}

func (w *World) ClearSelection() { w.selected = uuid.Nil }

// SpawnMesh creates an entity showing the mesh at path. A mesh that fails to
// load is still attached and renders as nothing.
func (w *World) SpawnMesh(name, path string) engine.Entity {
	e := w.Scene.CreateEntity(name)
	m := w.Assets.Mesh(path)
	// a new entity has no MeshRef yet
	_, _ = engine.AddComponent(e, engine.MeshRef{Mesh: m})
	if !m.IsLoaded() {
		w.logger.Warn("spawned entity with unloaded mesh",
			zap.String("name", e.Name()),
			zap.String("path", path),
		)
	}
	return e
}

// DuplicateSelected copies the selected entity and selects the copy.
func (w *World) DuplicateSelected() (engine.Entity, error) {
	src, ok := w.Selected()
	if !ok {
		return engine.Entity{}, ErrNoSelection
	}
	dup, err := w.Scene.DuplicateEntity(src)
	if err != nil {
		return engine.Entity{}, err
	}
	w.Select(dup)
	return dup, nil
}

func (w *World) DestroySelected() error {
	e, ok := w.Selected()
	if !ok {
		return ErrNoSelection
	}
	w.selected = uuid.Nil
	return w.Scene.DestroyEntity(e)
}

func (w *World) Unload() {
	w.Pipeline.Release()
	w.Renderer.Shutdown()
	w.Assets.Unload()
}
