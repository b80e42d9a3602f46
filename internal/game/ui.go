package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"mirgo/internal/camera"
	"mirgo/internal/engine"
	"mirgo/internal/physics"
)

const (
	toolbarHeight  = 36
	statusHeight   = 24
	hierarchyWidth = 210
	inspectorWidth = 280
	hierarchyItemH = 22
	inspectorLineH = 20
	gizmoLineWidth = 3
	ringSegments   = 32
)

const cubeMesh = "assets/models/cube.obj"

// Theme colors, indigo on dark.
var (
	colorBgDark    = rl.NewColor(10, 10, 15, 255)
	colorBgPanel   = rl.NewColor(18, 18, 24, 245)
	colorBgElement = rl.NewColor(28, 28, 38, 255)
	colorBgHover   = rl.NewColor(38, 38, 52, 255)

	colorAccent    = rl.NewColor(108, 99, 255, 255)
	colorSelection = rl.NewColor(108, 99, 255, 60)
	colorBorder    = rl.NewColor(255, 255, 255, 13)

	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)

	gizmoColors = [3]rl.Color{rl.Red, rl.Green, rl.Blue}
)

func initRayguiStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.LINE_COLOR, gui.NewColorPropertyValue(rl.NewColor(40, 40, 55, 255)))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// layout splits the window into toolbar, hierarchy, viewport, inspector and
// status bar.
type layout struct {
	toolbar   Rect
	hierarchy Rect
	viewport  Rect
	inspector Rect
	status    Rect
}

func computeLayout(width, height float32) layout {
	bodyH := height - toolbarHeight - statusHeight
	if bodyH < 1 {
		bodyH = 1
	}
	viewW := width - hierarchyWidth - inspectorWidth
	if viewW < 1 {
		viewW = 1
	}
	return layout{
		toolbar:   Rect{0, 0, width, toolbarHeight},
		hierarchy: Rect{0, toolbarHeight, hierarchyWidth, bodyH},
		viewport:  Rect{hierarchyWidth, toolbarHeight, viewW, bodyH},
		inspector: Rect{hierarchyWidth + viewW, toolbarHeight, inspectorWidth, bodyH},
		status:    Rect{0, toolbarHeight + bodyH, width, statusHeight},
	}
}

func rect(r Rect) rl.Rectangle {
	return rl.Rectangle{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type panels struct {
	editor          *Editor
	hierarchyScroll int32

	// frame timings in milliseconds
	updateMs float64
	renderMs float64
}

func (p *panels) draw(l layout) {
	p.drawViewport(l.viewport)
	p.drawGizmo(l.viewport)
	p.drawToolbar(l.toolbar)
	p.drawHierarchy(l.hierarchy)
	p.drawInspector(l.inspector)
	p.drawStatus(l.status)
}

// drawViewport shows the composed image. GL textures start at the bottom
// left, so the source rectangle is flipped.
func (p *panels) drawViewport(r Rect) {
	w := p.editor.World()
	width, height := w.Pipeline.Size()
	tex := rl.Texture2D{
		ID:      uint32(w.Output()),
		Width:   width,
		Height:  height,
		Mipmaps: 1,
		Format:  rl.UncompressedR8g8b8a8,
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(width), Height: -float32(height)}
	rl.DrawTexturePro(tex, src, rect(r), rl.Vector2{}, 0, rl.White)

	if p.editor.State() != engine.SceneEditing {
		rl.DrawRectangleLinesEx(rect(r), 2, colorAccent)
	}
}

func (p *panels) drawGizmo(r Rect) {
	e := p.editor
	if e.State() == engine.ScenePlaying {
		return
	}
	selected, ok := e.World().Selected()
	if !ok {
		return
	}
	t, ok := engine.TryGetComponent[engine.Transform](selected)
	if !ok {
		return
	}

	vp := e.Camera().ProjectionView()
	size := r.Size()
	origin := mgl32.Vec2{r.X, r.Y}
	toScreen := func(world mgl32.Vec3) (rl.Vector2, bool) {
		px, ok := worldToViewport(world, vp, size)
		px = px.Add(origin)
		return rl.Vector2{X: px[0], Y: px[1]}, ok
	}

	center, ok := toScreen(t.Translation)
	if !ok {
		return
	}

	g := e.Gizmo()
	for i, axis := range gizmoAxes {
		color := gizmoColors[i]
		if g.ActiveAxis() == i {
			color = rl.Yellow
		}

		switch g.Mode {
		case GizmoRotate:
			p.drawRing(t.Translation, i, color, toScreen)
		default:
			end, ok := toScreen(t.Translation.Add(axis.Mul(gizmoLength)))
			if !ok {
				continue
			}
			rl.DrawLineEx(center, end, gizmoLineWidth, color)
			if g.Mode == GizmoScale {
				rl.DrawRectangleV(rl.Vector2{X: end.X - 5, Y: end.Y - 5}, rl.Vector2{X: 10, Y: 10}, color)
			} else {
				rl.DrawCircleV(end, 6, color)
			}
		}
	}
}

func (p *panels) drawRing(center mgl32.Vec3, axis int, color rl.Color, toScreen func(mgl32.Vec3) (rl.Vector2, bool)) {
	u := gizmoAxes[(axis+1)%3]
	v := gizmoAxes[(axis+2)%3]
	var prev rl.Vector2
	prevOK := false
	for s := 0; s <= ringSegments; s++ {
		a := float64(s) / ringSegments * 2 * math.Pi
		pt := center.Add(u.Mul(ringRadius * float32(math.Cos(a)))).Add(v.Mul(ringRadius * float32(math.Sin(a))))
		cur, ok := toScreen(pt)
		if ok && prevOK {
			rl.DrawLineEx(prev, cur, gizmoLineWidth-1, color)
		}
		prev, prevOK = cur, ok
	}
}

func (p *panels) drawToolbar(r Rect) {
	e := p.editor
	rl.DrawRectangleRec(rect(r), colorBgPanel)
	rl.DrawRectangle(int32(r.X), int32(r.Y+r.Height-1), int32(r.Width), 1, colorBorder)

	x := r.X + 8
	button := func(w float32, label string) bool {
		clicked := gui.Button(rl.Rectangle{X: x, Y: r.Y + 6, Width: w, Height: r.Height - 12}, label)
		x += w + 6
		return clicked
	}

	playLabel := "Play"
	if e.State() == engine.ScenePlaying {
		playLabel = "Pause"
	}
	if button(64, playLabel) {
		e.TogglePlay()
	}
	if button(64, "Reset") {
		e.Reset()
	}
	x += 12

	for _, mode := range []GizmoMode{GizmoMove, GizmoRotate, GizmoScale} {
		label := mode.String()
		if e.Gizmo().Mode == mode {
			label = "[" + label + "]"
		}
		if button(76, label) {
			e.Gizmo().Mode = mode
		}
	}
	x += 12

	cam := e.Camera()
	if button(96, "Camera: "+cam.Mode().String()) {
		if cam.Mode() == camera.ModeOrbit {
			cam.SetMode(camera.ModeFPS)
		} else {
			cam.SetMode(camera.ModeOrbit)
		}
		vp := e.Viewport()
		cam.OnResize(uint32(vp.Width), uint32(vp.Height))
	}
	if button(72, "Add Cube") {
		e.Spawn("Cube", cubeMesh)
	}
	if button(80, "Duplicate") {
		e.Duplicate()
	}
	if button(64, "Delete") {
		e.Delete()
	}
	if button(56, "Save") {
		e.Save()
	}
}

func (p *panels) drawHierarchy(r Rect) {
	e := p.editor
	rl.DrawRectangleRec(rect(r), colorBgPanel)
	rl.DrawRectangle(int32(r.X+r.Width-2), int32(r.Y), 2, int32(r.Height), colorBorder)
	rl.DrawText(e.World().Scene.Name, int32(r.X)+12, int32(r.Y)+8, 18, colorTextSecondary)

	mouse := rl.GetMousePosition()
	inPanel := r.Contains(mgl32.Vec2{mouse.X, mouse.Y})
	entities := e.World().Scene.Entities()

	if inPanel {
		p.hierarchyScroll -= int32(rl.GetMouseWheelMove() * 20)
	}
	maxScroll := int32(len(entities))*hierarchyItemH - int32(r.Height) + 40
	if p.hierarchyScroll > maxScroll {
		p.hierarchyScroll = maxScroll
	}
	if p.hierarchyScroll < 0 {
		p.hierarchyScroll = 0
	}

	top := int32(r.Y) + 32
	selected := e.SelectedIndex()
	editing := e.State() == engine.SceneEditing

	rl.BeginScissorMode(int32(r.X), top, int32(r.Width), int32(r.Height)-32)
	for i, ent := range entities {
		y := top + int32(i)*hierarchyItemH - p.hierarchyScroll
		if y+hierarchyItemH < top || y > int32(r.Y+r.Height) {
			continue
		}
		hovered := inPanel && mouse.Y >= float32(y) && mouse.Y < float32(y+hierarchyItemH)

		switch {
		case i == selected:
			rl.DrawRectangle(int32(r.X), y, int32(r.Width), hierarchyItemH, colorSelection)
			rl.DrawRectangle(int32(r.X), y, 3, hierarchyItemH, colorAccent)
		case hovered:
			rl.DrawRectangle(int32(r.X), y, int32(r.Width), hierarchyItemH, colorBgHover)
		}
		if hovered && editing && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			e.Select(i)
		}

		color := colorTextSecondary
		if i == selected {
			color = colorTextPrimary
		}
		rl.DrawText(ent.Name(), int32(r.X)+12, y+4, 14, color)
	}
	rl.EndScissorMode()
}

func (p *panels) drawInspector(r Rect) {
	e := p.editor
	rl.DrawRectangleRec(rect(r), colorBgPanel)
	rl.DrawRectangle(int32(r.X), int32(r.Y), 2, int32(r.Height), colorBorder)

	x := int32(r.X) + 12
	y := int32(r.Y) + 8
	line := func(text string, color rl.Color) {
		rl.DrawText(text, x, y, 14, color)
		y += inspectorLineH
	}
	slider := func(label string, value, lo, hi float32) float32 {
		bounds := rl.Rectangle{X: float32(x) + 90, Y: float32(y), Width: r.Width - 150, Height: 16}
		rl.DrawText(label, x, y+1, 14, colorTextMuted)
		v := gui.Slider(bounds, "", fmt.Sprintf("%.2f", value), value, lo, hi)
		y += inspectorLineH + 2
		return v
	}

	env := &e.World().Scene.Environment
	line("Environment", colorTextPrimary)
	env.Exposure = slider("Exposure", env.Exposure, 0.1, 5)
	env.DirectionalLight.Intensity = slider("Light", env.DirectionalLight.Intensity, 0, 5)
	env.Tonemap = gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14}, "Tonemap", env.Tonemap)
	y += inspectorLineH
	env.DirectionalLight.Active = gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14}, "Directional light", env.DirectionalLight.Active)
	y += inspectorLineH

	opts := &e.World().Pipeline.Scene.Options
	opts.ShowGrid = gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14}, "Grid", opts.ShowGrid)
	opts.Wireframe = gui.CheckBox(rl.Rectangle{X: float32(x) + 90, Y: float32(y), Width: 14, Height: 14}, "Wireframe", opts.Wireframe)
	y += inspectorLineH + 8

	selected, ok := e.World().Selected()
	if !ok {
		line("Nothing selected", colorTextMuted)
		return
	}
	line(selected.Name(), colorTextPrimary)
	if ident, ok := engine.TryGetComponent[engine.Identity](selected); ok {
		line(ident.UUID.String()[:8], colorTextMuted)
	}

	if t, ok := engine.TryGetComponent[engine.Transform](selected); ok {
		line("Transform", colorAccent)
		line(fmt.Sprintf("Position %.2f %.2f %.2f", t.Translation[0], t.Translation[1], t.Translation[2]), colorTextSecondary)
		line(fmt.Sprintf("Rotation %.1f %.1f %.1f",
			mgl32.RadToDeg(t.Rotation[0]), mgl32.RadToDeg(t.Rotation[1]), mgl32.RadToDeg(t.Rotation[2])), colorTextSecondary)
		line(fmt.Sprintf("Scale    %.2f %.2f %.2f", t.Scale[0], t.Scale[1], t.Scale[2]), colorTextSecondary)
	}

	if ref, ok := engine.TryGetComponent[engine.MeshRef](selected); ok {
		line("Mesh", colorAccent)
		if ref.Loaded() {
			line(fmt.Sprintf("%s (%d submeshes)", ref.Mesh.Path(), len(ref.Mesh.SubMeshes())), colorTextSecondary)
		} else {
			line("not loaded", rl.Red)
		}
	}

	editing := e.State() == engine.SceneEditing
	if rb, ok := engine.TryGetComponent[engine.Rigidbody2D](selected); ok {
		line("Rigidbody 2D", colorAccent)
		bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: 120, Height: 18}
		if gui.Button(bounds, rb.Type.String()) && editing {
			rb.Type = (rb.Type + 1) % (physics.BodyKinematic + 1)
		}
		y += inspectorLineH + 4
	}
	if box, ok := engine.TryGetComponent[engine.BoxCollider2D](selected); ok {
		line("Box Collider 2D", colorAccent)
		box.Friction = slider("Friction", box.Friction, 0, 1)
		box.Restitution = slider("Bounce", box.Restitution, 0, 1)
	}
	if circle, ok := engine.TryGetComponent[engine.CircleCollider2D](selected); ok {
		line("Circle Collider 2D", colorAccent)
		circle.Radius = slider("Radius", circle.Radius, 0.05, 5)
		circle.Restitution = slider("Bounce", circle.Restitution, 0, 1)
	}
	if cam, ok := engine.TryGetComponent[engine.Camera](selected); ok {
		line("Camera", colorAccent)
		cam.FOV = slider("FOV", cam.FOV, 10, 120)
		cam.Primary = gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14}, "Primary", cam.Primary)
		y += inspectorLineH
	}
}

func (p *panels) drawStatus(r Rect) {
	e := p.editor
	w := e.World()
	stats := w.Pipeline.Scene.Stats()
	text := fmt.Sprintf("%s | %d entities, %d meshes | %d drawn, %d culled | update %.2f ms, render %.2f ms | %d fps",
		e.State(), len(w.Scene.Entities()), len(w.Assets.Meshes()), stats.Submitted, stats.Culled,
		p.updateMs, p.renderMs, rl.GetFPS())
	if msg := e.Status(); msg != "" {
		text += " | " + msg
	}
	gui.StatusBar(rect(r), text)
}
