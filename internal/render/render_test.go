package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
)

const stubShader = "#type vertex\nvoid main() {}\n#type fragment\nvoid main() {}\n"

func writeShaders(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range ShaderNames {
		if err := os.WriteFile(filepath.Join(dir, name+".glsl"), []byte(stubShader), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestRenderer(t *testing.T) (*Renderer, *gpu.Recorder) {
	t.Helper()
	rec := gpu.NewRecorder()
	r := NewRenderer(rec, nil)
	if err := r.Init(writeShaders(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	rec.Reset()
	return r, rec
}

type quadImporter struct{ fail bool }

func (q quadImporter) Import(path string) (*mesh.ImportedScene, error) {
	if q.fail {
		return nil, errors.New("missing")
	}
	quad := mesh.ImportedMesh{
		Positions: []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
	}
	return &mesh.ImportedScene{
		Root: &mesh.Node{
			Meshes:   []int{0},
			Children: []*mesh.Node{{Transform: mgl32.Translate3D(0, 2, 0), Meshes: []int{1}}},
		},
		Meshes:    []mesh.ImportedMesh{quad, quad},
		Materials: []mesh.ImportedMaterial{{Name: "Red", Diffuse: mgl32.Vec3{1, 0, 0}}},
	}, nil
}

func (quadImporter) LoadTexture(path string) (*gpu.Texture, error) {
	return nil, errors.New("no textures")
}

func drawCalls(rec *gpu.Recorder) []gpu.Call {
	var out []gpu.Call
	for _, c := range rec.Calls {
		if c.Op == "DrawElements" {
			out = append(out, c)
		}
	}
	return out
}

func indexOf(ops []string, op string, from int) int {
	for i := from; i < len(ops); i++ {
		if ops[i] == op {
			return i
		}
	}
	return -1
}

func TestRendererInitLoadsLibrary(t *testing.T) {
	rec := gpu.NewRecorder()
	r := NewRenderer(rec, nil)
	if err := r.Init(writeShaders(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if rec.LiveCount("shader") != len(ShaderNames) {
		t.Errorf("Expected %d shaders, got %d", len(ShaderNames), rec.LiveCount("shader"))
	}
	if rec.LiveCount("vertexarray") != 2 {
		t.Errorf("Expected quad and skybox pipelines, got %d vertex arrays", rec.LiveCount("vertexarray"))
	}
	if _, err := r.Shader(ShaderOutline); err != nil {
		t.Errorf("Expected Outline shader, got %v", err)
	}
	if _, err := r.Shader("Nope"); !errors.Is(err, ErrUnknownShader) {
		t.Errorf("Expected ErrUnknownShader, got %v", err)
	}

	r.Shutdown()
	if rec.LiveCount("shader") != 0 || rec.LiveCount("buffer") != 0 {
		t.Error("Shutdown should release shaders and buffers")
	}
}

func TestRendererInitMissingShader(t *testing.T) {
	r := NewRenderer(gpu.NewRecorder(), nil)
	if err := r.Init(t.TempDir()); err == nil {
		t.Error("Init should fail without shader files")
	}
}

func TestRendererLoadsBundledShaders(t *testing.T) {
	rec := gpu.NewRecorder()
	r := NewRenderer(rec, nil)
	if err := r.Init(filepath.Join("..", "..", "assets", "shaders")); err != nil {
		t.Fatalf("Bundled shaders should parse: %v", err)
	}
}

func TestSubmitMeshSetsMaterialAndOffsets(t *testing.T) {
	r, rec := newTestRenderer(t)
	m := mesh.Load("quad.obj", quadImporter{}, rec, nil)
	rec.Reset()

	transform := mgl32.Translate3D(5, 0, 0)
	r.SubmitMesh(m, transform)

	draws := drawCalls(rec)
	if len(draws) != 2 {
		t.Fatalf("Expected 2 draws, got %d", len(draws))
	}
	second := draws[1].Args
	if second[1] != int32(6) || second[3] != 24 || second[4] != int32(4) {
		t.Errorf("Expected count 6, byte offset 24, base vertex 4, got %v", second)
	}

	pbr := rec.Shaders[ShaderPBR]
	want := transform.Mul4(mgl32.Translate3D(0, 2, 0))
	if !pbr.Mats["u_Transform"].ApproxEqual(want) {
		t.Errorf("Expected last u_Transform %v, got %v", want, pbr.Mats["u_Transform"])
	}
	if pbr.Vec3s["u_AlbedoColor"] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Expected red albedo, got %v", pbr.Vec3s["u_AlbedoColor"])
	}
	if pbr.Ints["u_RoughnessTexture"] != 3 || pbr.Ints["u_EnableAlbedoTexture"] != 0 {
		t.Errorf("Unexpected texture uniforms %v", pbr.Ints)
	}
	if rec.Count("BindTexture") != 0 {
		t.Error("Unloaded textures should not be bound")
	}
}

func TestSubmitUnloadedMeshIsNoOp(t *testing.T) {
	r, rec := newTestRenderer(t)
	m := mesh.Load("missing.obj", quadImporter{fail: true}, rec, nil)
	rec.Reset()

	r.SubmitMesh(m, mgl32.Ident4())
	r.SubmitMesh(nil, mgl32.Ident4())
	outline, _ := r.Shader(ShaderOutline)
	r.SubmitMeshWithShader(m, mgl32.Ident4(), outline)

	if len(rec.Calls) != 0 {
		t.Errorf("Expected no device calls, got %v", rec.Ops())
	}
}

func TestSubmitMeshWithShaderOnlySetsTransform(t *testing.T) {
	r, rec := newTestRenderer(t)
	m := mesh.Load("quad.obj", quadImporter{}, rec, nil)
	outline, _ := r.Shader(ShaderOutline)
	rec.Reset()

	r.SubmitMeshWithShader(m, mgl32.Ident4(), outline)

	recorded := rec.Shaders[ShaderOutline]
	if len(recorded.Mats) != 1 || len(recorded.Ints) != 0 || len(recorded.Vec3s) != 0 {
		t.Errorf("Expected only u_Transform, got mats %v ints %v", recorded.Mats, recorded.Ints)
	}
	if len(drawCalls(rec)) != 2 {
		t.Errorf("Expected 2 draws, got %d", len(drawCalls(rec)))
	}
}

func TestSubmitSkyboxRestoresDepthFunc(t *testing.T) {
	r, rec := newTestRenderer(t)
	sky, _ := r.Shader(ShaderSkybox)

	r.SubmitSkybox(&gpu.TextureCube{Handle: 77}, sky)

	var funcs []gpu.CompareFunc
	for _, c := range rec.Calls {
		if c.Op == "SetDepthFunc" {
			funcs = append(funcs, c.Args[0].(gpu.CompareFunc))
		}
		if c.Op == "DrawArrays" && c.Args[2] != int32(36) {
			t.Errorf("Expected 36 skybox vertices, got %v", c.Args[2])
		}
	}
	if len(funcs) != 2 || funcs[0] != gpu.LessEqual || funcs[1] != gpu.Less {
		t.Errorf("Expected LessEqual then Less, got %v", funcs)
	}
	if rec.Count("BindTexture") != 1 {
		t.Error("Expected the cube map to be bound")
	}
}

func TestSubmitQuadDrawsSixIndices(t *testing.T) {
	r, rec := newTestRenderer(t)
	comp, _ := r.Shader(ShaderComposition)
	r.SubmitQuad(comp)

	draws := drawCalls(rec)
	if len(draws) != 1 || draws[0].Args[1] != int32(6) {
		t.Errorf("Expected one 6-index draw, got %v", draws)
	}
	if rec.Ops()[0] != "BindShader" {
		t.Errorf("Expected shader bind first, got %s", rec.Ops()[0])
	}
}

func TestSubmitPipelineWithoutIndices(t *testing.T) {
	r, rec := newTestRenderer(t)
	layout := gpu.NewPipelineLayout(gpu.Attribute{Name: "a_Position", Format: gpu.Float3})
	p := gpu.NewGraphicsPipeline(rec, layout, gpu.NewVertexBuffer(rec, make([]byte, 12*3), gpu.StaticDraw), nil)
	if err := p.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Reset()

	r.SubmitPipeline(p)
	if rec.Count("DrawElements") != 0 {
		t.Error("Expected no indexed draw")
	}
	for _, c := range rec.Calls {
		if c.Op == "DrawArrays" && c.Args[2] != int32(3) {
			t.Errorf("Expected 3 vertices, got %v", c.Args[2])
		}
	}
	if rec.Count("DrawArrays") != 1 {
		t.Errorf("Expected one DrawArrays, got %d", rec.Count("DrawArrays"))
	}
}

func TestLineMode(t *testing.T) {
	r, rec := newTestRenderer(t)
	r.SetLineMode(true)
	if !rec.PolygonLines {
		t.Error("Expected line mode on")
	}
	r.SetLineMode(false)
	if rec.PolygonLines {
		t.Error("Expected line mode off")
	}
}
