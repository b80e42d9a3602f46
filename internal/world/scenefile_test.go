package world

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"mirgo/internal/engine"
	"mirgo/internal/physics"
)

const sampleScene = `name: Sandbox
environment:
  light:
    active: true
    direction: [0, -1, 0]
    radiance: [1, 0.9, 0.8]
    intensity: 2
  exposure: 1.5
  radiance_map: env/sky.hdr
entities:
  - name: Ground
    uuid: 7d3c8f4e-2b1a-4c5d-9e6f-0a1b2c3d4e5f
    transform:
      translation: [0, -2, 0]
      scale: [10, 0.5, 1]
    mesh: models/quad.obj
    rigidbody:
      type: static
    box_collider:
      size: [0.5, 0.5]
      friction: 0.8
  - name: Ball
    transform:
      translation: [0, 4, 0]
    rigidbody:
      type: Dynamic
    circle_collider:
      radius: 0.25
      density: 2
  - name: Main Camera
    transform:
      translation: [0, 0, 12]
    camera:
      fov: 60
      primary: true
`

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandbox.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScene(t *testing.T) {
	w, _ := newTestWorld(t)
	if err := w.LoadScene(writeScene(t, sampleScene)); err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	if w.Scene.Name != "Sandbox" {
		t.Errorf("Expected scene Sandbox, got %s", w.Scene.Name)
	}
	if len(w.Scene.Entities()) != 3 {
		t.Fatalf("Expected 3 entities, got %d", len(w.Scene.Entities()))
	}

	ground, ok := w.Scene.EntityByUUID(uuid.MustParse("7d3c8f4e-2b1a-4c5d-9e6f-0a1b2c3d4e5f"))
	if !ok || ground.Name() != "Ground" {
		t.Fatal("Expected Ground by its stored UUID")
	}
	tr, _ := engine.GetComponent[engine.Transform](ground)
	if tr.Translation != (mgl32.Vec3{0, -2, 0}) || tr.Scale != (mgl32.Vec3{10, 0.5, 1}) {
		t.Errorf("Unexpected ground transform %+v", tr)
	}
	ref, ok := engine.TryGetComponent[engine.MeshRef](ground)
	if !ok || !ref.Loaded() {
		t.Error("Expected the ground mesh to load")
	}
	box, ok := engine.TryGetComponent[engine.BoxCollider2D](ground)
	if !ok || box.Friction != 0.8 {
		t.Errorf("Expected box collider with friction 0.8, got %+v", box)
	}

	ball, _ := w.Scene.FindByName("Ball")
	btr, _ := engine.GetComponent[engine.Transform](ball)
	if btr.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Expected missing scale to default to 1, got %v", btr.Scale)
	}
	rb, _ := engine.GetComponent[engine.Rigidbody2D](ball)
	if rb.Type != physics.BodyDynamic {
		t.Errorf("Expected dynamic body, got %s", rb.Type)
	}
	circle, _ := engine.GetComponent[engine.CircleCollider2D](ball)
	if circle.Radius != 0.25 || circle.Density != 2 {
		t.Errorf("Unexpected circle collider %+v", circle)
	}

	camEntity, _ := w.Scene.FindByName("Main Camera")
	cam, _ := engine.GetComponent[engine.Camera](camEntity)
	if cam.FOV != 60 || !cam.Primary || cam.Near != 0.1 {
		t.Errorf("Unexpected camera %+v", cam)
	}

	env := w.Scene.Environment
	if env.DirectionalLight.Intensity != 2 || env.Exposure != 1.5 || !env.Tonemap {
		t.Errorf("Unexpected environment %+v", env)
	}
	if !env.RadianceMap.IsLoaded() || env.IrradianceMap != nil {
		t.Error("Expected only the radiance map to load")
	}
}

func TestLoadSceneClearsSelection(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Select(w.SpawnMesh("Old", "quad.obj"))

	if err := w.LoadScene(writeScene(t, sampleScene)); err != nil {
		t.Fatal(err)
	}
	if _, ok := w.Selected(); ok {
		t.Error("Expected selection cleared after load")
	}
}

func TestLoadSceneWhilePlaying(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Scene.Play()
	if err := w.LoadScene(writeScene(t, sampleScene)); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Expected ErrNotEditing, got %v", err)
	}
}

func TestLoadSceneErrors(t *testing.T) {
	w, _ := newTestWorld(t)
	before := w.Scene

	err := w.LoadScene(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read scene") {
		t.Errorf("Expected read error, got %v", err)
	}

	err = w.LoadScene(writeScene(t, "entities: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "parse scene") {
		t.Errorf("Expected parse error, got %v", err)
	}

	err = w.LoadScene(writeScene(t, "entities:\n  - name: Bad\n    uuid: not-a-uuid\n"))
	if err == nil {
		t.Error("Expected an error for a malformed uuid")
	}

	if w.Scene != before {
		t.Error("A failed load should keep the current scene")
	}
}

func TestSceneRoundTrip(t *testing.T) {
	w, _ := newTestWorld(t)
	if err := w.LoadScene(writeScene(t, sampleScene)); err != nil {
		t.Fatal(err)
	}
	ball, _ := w.Scene.FindByName("Ball")
	ballID, _ := engine.GetComponent[engine.Identity](ball)
	btr, _ := engine.GetComponent[engine.Transform](ball)
	btr.SetRotation(mgl32.Vec3{0, 0, 0.5})

	out := filepath.Join(t.TempDir(), "saved.yaml")
	if err := w.SaveScene(out); err != nil {
		t.Fatalf("SaveScene failed: %v", err)
	}

	other, _ := newTestWorld(t)
	if err := other.LoadScene(out); err != nil {
		t.Fatalf("LoadScene of saved file failed: %v", err)
	}

	if len(other.Scene.Entities()) != 3 {
		t.Fatalf("Expected 3 entities, got %d", len(other.Scene.Entities()))
	}
	reloaded, ok := other.Scene.EntityByUUID(ballID.UUID)
	if !ok {
		t.Fatal("Expected UUIDs to survive a round trip")
	}
	rtr, _ := engine.GetComponent[engine.Transform](reloaded)
	if rtr.Rotation[2] != 0.5 {
		t.Errorf("Expected rotation 0.5, got %v", rtr.Rotation)
	}
	rb, _ := engine.GetComponent[engine.Rigidbody2D](reloaded)
	if rb.Type != physics.BodyDynamic {
		t.Errorf("Expected dynamic body, got %s", rb.Type)
	}

	ground, _ := other.Scene.FindByName("Ground")
	ref, _ := engine.GetComponent[engine.MeshRef](ground)
	if ref.Mesh.Path() != "models/quad.obj" {
		t.Errorf("Expected mesh path preserved, got %s", ref.Mesh.Path())
	}
	if other.Scene.Environment.RadianceMap.Path != "env/sky.hdr" {
		t.Error("Expected the radiance map path preserved")
	}
}
