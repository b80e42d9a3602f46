package render

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/engine"
	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
)

func testView() View {
	return View{
		Projection: mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 1000),
		View:       mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Position:   mgl32.Vec3{0, 0, 10},
	}
}

type passFixture struct {
	renderer *Renderer
	rec      *gpu.Recorder
	pipeline *Pipeline
	scene    *engine.Scene
	quad     *mesh.Mesh
}

func newPassFixture(t *testing.T) *passFixture {
	t.Helper()
	r, rec := newTestRenderer(t)
	p := NewPipeline(r, 320, 180, 4, DefaultSceneOptions(), nil)
	if err := p.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return &passFixture{
		renderer: r,
		rec:      rec,
		pipeline: p,
		scene:    engine.NewScene("Pass", nil),
		quad:     mesh.Load("quad.obj", quadImporter{}, rec, nil),
	}
}

func (f *passFixture) spawn(name string, at mgl32.Vec3) engine.Entity {
	e := f.scene.CreateEntity(name)
	tr, _ := engine.GetComponent[engine.Transform](e)
	tr.Translation = at
	engine.AddComponent(e, engine.MeshRef{Mesh: f.quad})
	return e
}

func TestScenePassDrawsRenderables(t *testing.T) {
	f := newPassFixture(t)
	f.spawn("A", mgl32.Vec3{})
	f.spawn("B", mgl32.Vec3{2, 0, 0})
	f.scene.CreateEntity("Empty")
	f.rec.Reset()

	f.pipeline.Scene.Render(f.scene, testView(), engine.NullEntity)

	stats := f.pipeline.Scene.Stats()
	if stats.Submitted != 2 {
		t.Errorf("Expected 2 submissions, got %d", stats.Submitted)
	}
	if stats.Outlined {
		t.Error("Nothing selected, no outline expected")
	}
	// two submeshes per quad mesh
	if len(drawCalls(f.rec)) != 4 {
		t.Errorf("Expected 4 draws, got %d", len(drawCalls(f.rec)))
	}
	ops := f.rec.Ops()
	if ops[0] != "BindFramebuffer" {
		t.Errorf("Expected main target bound first, got %s", ops[0])
	}
	if f.rec.Calls[0].Args[0] != f.pipeline.Main.Handle() {
		t.Error("Expected the main target to be bound")
	}
	clearAt := indexOf(ops, "Clear", 0)
	if clearAt < 0 || f.rec.Calls[clearAt].Args[0] != gpu.ClearAll {
		t.Error("Expected color, depth and stencil to be cleared")
	}
}

func TestScenePassLightSlots(t *testing.T) {
	f := newPassFixture(t)
	f.scene.Environment.DirectionalLight.Intensity = 3

	f.pipeline.Scene.Render(f.scene, testView(), engine.NullEntity)

	pbr := f.rec.Shaders[ShaderPBR]
	if pbr.Ints["u_DirectionalLights[0].Active"] != 1 {
		t.Error("Slot 0 should carry the environment light")
	}
	if pbr.Floats["u_DirectionalLights[0].Multiplier"] != 3 {
		t.Errorf("Expected multiplier 3, got %f", pbr.Floats["u_DirectionalLights[0].Multiplier"])
	}
	for _, slot := range []string{"1", "2", "3"} {
		if v, ok := pbr.Ints["u_DirectionalLights["+slot+"].Active"]; !ok || v != 0 {
			t.Errorf("Slot %s should be explicitly inactive", slot)
		}
	}
	if pbr.Vec3s["u_CameraPosition"] != (mgl32.Vec3{0, 0, 10}) {
		t.Errorf("Unexpected camera position %v", pbr.Vec3s["u_CameraPosition"])
	}
	if pbr.Ints["u_EnableIBL"] != 0 {
		t.Error("IBL should be off without environment maps")
	}
}

func TestScenePassOutlinesSelection(t *testing.T) {
	f := newPassFixture(t)
	f.spawn("A", mgl32.Vec3{})
	selected := f.spawn("B", mgl32.Vec3{2, 0, 0})
	f.rec.Reset()

	f.pipeline.Scene.Render(f.scene, testView(), selected.ID)

	stats := f.pipeline.Scene.Stats()
	if stats.Submitted != 2 || !stats.Outlined {
		t.Fatalf("Expected 2 submissions and an outline, got %+v", stats)
	}
	// A, selected B, outline of B; two submeshes each
	if len(drawCalls(f.rec)) != 6 {
		t.Errorf("Expected 6 draws, got %d", len(drawCalls(f.rec)))
	}

	var notEqual, depthOff, outlineBind int = -1, -1, -1
	for i, c := range f.rec.Calls {
		switch {
		case c.Op == "StencilFunc" && c.Args[0] == gpu.NotEqual && c.Args[1] == int32(1):
			notEqual = i
		case c.Op == "SetDepthTest" && c.Args[0] == false && depthOff < 0:
			depthOff = i
		case c.Op == "BindShader" && c.Args[0] == ShaderOutline:
			outlineBind = i
		}
	}
	if notEqual < 0 || depthOff < 0 || outlineBind < 0 {
		t.Fatalf("Missing outline state: notEqual=%d depthOff=%d bind=%d", notEqual, depthOff, outlineBind)
	}
	lastDraw := -1
	for i, c := range f.rec.Calls {
		if c.Op == "DrawElements" {
			lastDraw = i
		}
	}
	if notEqual > lastDraw || depthOff > lastDraw {
		t.Error("Stencil and depth state must be set before the outline draw")
	}
	if !f.rec.DepthTest {
		t.Error("Depth test should be restored after the outline")
	}

	outline := f.rec.Shaders[ShaderOutline]
	tr, _ := engine.GetComponent[engine.Transform](selected)
	want := tr.Matrix().Mul4(mgl32.Scale3D(1.03, 1.03, 1.03)).Mul4(mgl32.Translate3D(0, 2, 0))
	if !outline.Mats["u_Transform"].ApproxEqual(want) {
		t.Errorf("Expected scaled outline transform %v, got %v", want, outline.Mats["u_Transform"])
	}
}

func TestScenePassSelectedDrawsWithStencilWrites(t *testing.T) {
	f := newPassFixture(t)
	selected := f.spawn("A", mgl32.Vec3{})
	f.rec.Reset()

	f.pipeline.Scene.Render(f.scene, testView(), selected.ID)

	always := -1
	for i, c := range f.rec.Calls {
		if c.Op == "StencilFunc" && c.Args[0] == gpu.Always && c.Args[1] == int32(1) {
			always = i
			break
		}
	}
	if always < 0 {
		t.Fatal("Expected StencilFunc(Always, 1)")
	}
	if indexOf(f.rec.Ops(), "DrawElements", 0) < always {
		t.Error("The selected entity should be drawn after stencil writes are enabled")
	}
}

func TestScenePassSkipsUnloadedMeshes(t *testing.T) {
	f := newPassFixture(t)
	e := f.scene.CreateEntity("Broken")
	engine.AddComponent(e, engine.MeshRef{Mesh: mesh.Load("x.obj", quadImporter{fail: true}, f.rec, nil)})
	engine.AddComponent(f.scene.CreateEntity("Nil"), engine.MeshRef{})
	f.rec.Reset()

	f.pipeline.Scene.Render(f.scene, testView(), e.ID)

	if len(drawCalls(f.rec)) != 0 {
		t.Errorf("Expected no draws, got %d", len(drawCalls(f.rec)))
	}
}

func TestScenePassFrustumCulling(t *testing.T) {
	f := newPassFixture(t)
	f.spawn("Visible", mgl32.Vec3{})
	f.spawn("Behind", mgl32.Vec3{0, 0, 50})

	f.pipeline.Scene.Render(f.scene, testView(), engine.NullEntity)
	if s := f.pipeline.Scene.Stats(); s.Submitted != 1 || s.Culled != 1 {
		t.Errorf("Expected 1 submitted and 1 culled, got %+v", s)
	}

	f.pipeline.Scene.Options.FrustumCulling = false
	f.pipeline.Scene.Render(f.scene, testView(), engine.NullEntity)
	if s := f.pipeline.Scene.Stats(); s.Submitted != 2 || s.Culled != 0 {
		t.Errorf("Expected 2 submitted without culling, got %+v", s)
	}
}

func TestScenePassSkyboxAndGrid(t *testing.T) {
	f := newPassFixture(t)
	f.scene.Environment.RadianceMap = &gpu.TextureCube{Handle: 99}
	f.scene.Environment.TextureLod = 2
	f.pipeline.Scene.Options.ShowGrid = true
	f.rec.Reset()

	f.pipeline.Scene.Render(f.scene, testView(), engine.NullEntity)

	if f.rec.Count("DrawArrays") != 1 {
		t.Error("Expected a skybox draw")
	}
	if f.rec.Shaders[ShaderSkybox].Floats["u_TextureLod"] != 2 {
		t.Error("Expected texture LOD on the skybox shader")
	}
	if _, ok := f.rec.Shaders[ShaderGrid].Mats["u_ViewProjection"]; !ok {
		t.Error("Expected the grid to be drawn")
	}
}

func TestCompositionPass(t *testing.T) {
	f := newPassFixture(t)
	f.scene.Environment.Exposure = 1.5
	f.scene.Environment.Tonemap = false
	f.rec.Reset()

	f.pipeline.Composition.Render(f.scene.Environment)

	if f.rec.Calls[0].Op != "BindFramebuffer" || f.rec.Calls[0].Args[0] != f.pipeline.Final.Handle() {
		t.Error("Expected the final target to be bound first")
	}
	comp := f.rec.Shaders[ShaderComposition]
	if comp.Floats["u_Exposure"] != 1.5 || comp.Ints["u_Tonemap"] != 0 {
		t.Errorf("Unexpected tonemap uniforms %v %v", comp.Floats, comp.Ints)
	}
	if comp.Ints["u_TextureSamples"] != 4 {
		t.Errorf("Expected 4 samples, got %d", comp.Ints["u_TextureSamples"])
	}

	bound := false
	for _, c := range f.rec.Calls {
		if c.Op == "BindTexture" && c.Args[1] == gpu.Texture2DMultisample && c.Args[2] == f.pipeline.Main.ColorAttachment(0) {
			bound = true
		}
	}
	if !bound {
		t.Error("Expected the multisampled main color attachment to be bound")
	}
	if f.rec.Count("DrawElements") != 1 {
		t.Errorf("Expected a single quad draw, got %d", f.rec.Count("DrawElements"))
	}
}

func TestPipelineResize(t *testing.T) {
	f := newPassFixture(t)
	before := f.pipeline.Output()

	if changed, _ := f.pipeline.Resize(0, 100); changed {
		t.Error("Zero width should be ignored")
	}
	if changed, _ := f.pipeline.Resize(320, 180); changed {
		t.Error("Unchanged size should be ignored")
	}
	changed, err := f.pipeline.Resize(640, 360)
	if err != nil || !changed {
		t.Fatalf("Expected resize, got %v %v", changed, err)
	}
	if f.pipeline.Output() == before {
		t.Error("Output handle should change after resize")
	}
	if f.rec.Alive(before) {
		t.Error("Old output texture should be deleted")
	}
	if w, h := f.pipeline.Size(); w != 640 || h != 360 {
		t.Errorf("Expected 640x360, got %dx%d", w, h)
	}
	if f.rec.LiveCount("framebuffer") != 2 {
		t.Errorf("Expected 2 live framebuffers, got %d", f.rec.LiveCount("framebuffer"))
	}
}

func TestPipelineResizeRetriesAfterFailure(t *testing.T) {
	f := newPassFixture(t)
	f.rec.Incomplete = true
	if _, err := f.pipeline.Resize(640, 480); !errors.Is(err, gpu.ErrFramebufferIncomplete) {
		t.Fatalf("Expected ErrFramebufferIncomplete, got %v", err)
	}
	if w, h := f.pipeline.Size(); w != 320 || h != 180 {
		t.Errorf("Expected the previous size 320x180, got %dx%d", w, h)
	}

	f.rec.Incomplete = false
	changed, err := f.pipeline.Resize(640, 480)
	if err != nil || !changed {
		t.Fatalf("Expected the same size to be retried, got %v %v", changed, err)
	}
	if f.pipeline.Main.Width != 640 || f.pipeline.Final.Width != 640 {
		t.Errorf("Expected both targets at 640 wide, got %d and %d", f.pipeline.Main.Width, f.pipeline.Final.Width)
	}
	if f.pipeline.Final.Generation() != 2 {
		t.Errorf("Expected the final target recreated once, got generation %d", f.pipeline.Final.Generation())
	}
}

func TestPipelineRenderRunsBothPasses(t *testing.T) {
	f := newPassFixture(t)
	f.spawn("A", mgl32.Vec3{})
	f.rec.Reset()

	f.pipeline.Render(f.scene, testView(), engine.NullEntity)

	var bound []gpu.Handle
	for _, c := range f.rec.Calls {
		if c.Op == "BindFramebuffer" && c.Args[0] != gpu.Handle(0) {
			bound = append(bound, c.Args[0].(gpu.Handle))
		}
	}
	if len(bound) != 2 || bound[0] != f.pipeline.Main.Handle() || bound[1] != f.pipeline.Final.Handle() {
		t.Errorf("Expected main then final target, got %v", bound)
	}
}

func TestScenePassWireframe(t *testing.T) {
	f := newPassFixture(t)
	f.spawn("A", mgl32.Vec3{})
	f.pipeline.Scene.Options.Wireframe = true
	f.rec.Reset()

	f.pipeline.Scene.Render(f.scene, testView(), engine.NullEntity)

	ops := f.rec.Ops()
	on := indexOf(ops, "SetPolygonLines", 0)
	if on < 0 || f.rec.Calls[on].Args[0] != true {
		t.Fatal("Expected line mode enabled before the meshes")
	}
	if indexOf(ops, "DrawElements", 0) < on {
		t.Error("Expected meshes drawn after line mode was enabled")
	}
	if f.rec.PolygonLines {
		t.Error("Expected line mode switched off when the pass ends")
	}
}
