// Package game runs the editor: a raylib window with raygui panels around a
// viewport that shows the scene renderer's output.
package game

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirgo/internal/assets"
	"mirgo/internal/camera"
	"mirgo/internal/config"
	"mirgo/internal/gpu/gldevice"
	"mirgo/internal/input"
	"mirgo/internal/render"
	"mirgo/internal/world"
)

type Game struct {
	cfg    *config.Config
	logger *zap.Logger

	world  *world.World
	editor *Editor
	poller *poller
	panels *panels

	focused bool
}

func New(cfg *config.Config, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{cfg: cfg, logger: logger}
}

// WorldOptions maps the renderer and physics settings onto world options.
func WorldOptions(cfg *config.Config) world.Options {
	opts := world.DefaultOptions()
	r := cfg.Renderer
	opts.ShaderDir = r.ShaderDir
	opts.Width = cfg.Window.Width - hierarchyWidth - inspectorWidth
	opts.Height = cfg.Window.Height - toolbarHeight - statusHeight
	if opts.Width < 1 {
		opts.Width = 1
	}
	if opts.Height < 1 {
		opts.Height = 1
	}
	opts.Samples = r.MSAASamples
	opts.ClearColor = mgl32.Vec4(r.ClearColor)
	opts.Render = render.SceneOptions{
		ShowSkybox:     r.ShowSkybox,
		ShowGrid:       r.ShowGrid,
		FrustumCulling: r.FrustumCulling,
		OutlineScale:   r.OutlineScale,
		OutlineColor:   render.DefaultOutlineColor,
	}
	if opts.Render.OutlineScale <= 0 {
		opts.Render.OutlineScale = render.DefaultOutlineScale
	}
	opts.Gravity = mgl32.Vec2{cfg.Physics.GravityX, cfg.Physics.GravityY}
	opts.CollisionSlop = cfg.Physics.CollisionSlop
	opts.Exposure = r.Exposure
	opts.Tonemap = r.Tonemap
	return opts
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() error {
	flags := uint32(rl.FlagWindowResizable)
	if g.cfg.Window.HighDPI {
		flags |= rl.FlagWindowHighdpi
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(g.cfg.Window.Width, g.cfg.Window.Height, g.cfg.Window.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(g.cfg.Window.TargetFPS)
	// Esc belongs to the editor
	rl.SetExitKey(0)

	dev, err := gldevice.New(g.logger.Named("gl"))
	if err != nil {
		return fmt.Errorf("init graphics: %w", err)
	}
	importer := assets.NewRaylibImporter(g.logger.Named("importer"))
	defer importer.Close()

	g.world = world.New(dev, importer, WorldOptions(g.cfg), g.logger)
	if err := g.world.Initialize(); err != nil {
		return fmt.Errorf("init world: %w", err)
	}
	defer g.world.Unload()

	lens := camera.Lens{FOV: g.cfg.Editor.FOV, Near: g.cfg.Editor.Near, Far: g.cfg.Editor.Far}
	cam := camera.NewEditor(camera.ParseMode(g.cfg.Editor.Camera), lens)
	g.editor = NewEditor(g.world, cam, g.logger.Named("editor"))
	g.editor.FixedStep = g.cfg.Physics.FixedTimestep

	if path := g.cfg.Editor.SceneFile; path != "" {
		if err := g.editor.Open(path); err != nil {
			g.logger.Warn("scene not loaded", zap.String("path", path), zap.Error(err))
			g.editor.ScenePath = path
		}
	}

	g.poller = newPoller()
	g.panels = &panels{editor: g.editor}
	initRayguiStyle()

	g.logger.Info("editor started",
		zap.String("camera", cam.Mode().String()),
		zap.String("scene", g.editor.ScenePath))

	for {
		open, err := g.frame()
		if err != nil {
			return err
		}
		if !open {
			return nil
		}
	}
}

// frame runs one update and draw. It returns false once the window closes.
func (g *Game) frame() (bool, error) {
	l := computeLayout(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))

	pos := rl.GetMousePosition()
	mouse := mgl32.Vec2{pos.X, pos.Y}
	hovered := l.viewport.Contains(mouse) && !gui.IsLocked()
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		g.focused = hovered
	}
	if err := g.editor.SetViewport(l.viewport, hovered, g.focused); err != nil {
		return false, err
	}

	for _, ev := range g.poller.poll() {
		if ev.Type == input.WindowClosed {
			return false, nil
		}
		g.editor.OnEvent(&ev)
	}

	start := time.Now()
	g.editor.OnUpdate(rl.GetFrameTime())
	g.panels.updateMs = float64(time.Since(start).Microseconds()) / 1000

	start = time.Now()
	g.editor.Render()
	// hand the context back to raylib in the state it expects
	dev := g.world.Renderer.Device()
	dev.Viewport(0, 0, int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight()))
	dev.SetDepthTest(false)
	g.panels.renderMs = float64(time.Since(start).Microseconds()) / 1000

	rl.BeginDrawing()
	rl.ClearBackground(colorBgDark)
	g.panels.draw(l)
	rl.EndDrawing()
	return true, nil
}
