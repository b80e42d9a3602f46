package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[window]\ntitle = \"sandbox\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Window.Title != "sandbox" {
		t.Errorf("Expected title sandbox, got %s", cfg.Window.Title)
	}
	if cfg.Window.Width != 1600 || cfg.Renderer.MSAASamples != 4 {
		t.Errorf("Expected defaults to survive, got %+v", cfg.Window)
	}
	if cfg.Physics.GravityY != -9.81 {
		t.Errorf("Expected gravity -9.81, got %f", cfg.Physics.GravityY)
	}
	if cfg.Renderer.OutlineScale != 1.03 || !cfg.Renderer.FrustumCulling {
		t.Errorf("Unexpected renderer defaults %+v", cfg.Renderer)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[renderer]
msaa_samples = 8
clear_color = [0.2, 0.3, 0.4, 1.0]
frustum_culling = false

[physics]
gravity_y = -1.62

[editor]
camera = "fps"
scene_file = "scenes/moon.yaml"

[logging]
level = "debug"
format = "json"

[profiling]
mode = "cpu"
path = "prof"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Renderer.MSAASamples != 8 || cfg.Renderer.FrustumCulling {
		t.Errorf("Unexpected renderer %+v", cfg.Renderer)
	}
	if cfg.Renderer.ClearColor != [4]float32{0.2, 0.3, 0.4, 1} {
		t.Errorf("Unexpected clear color %v", cfg.Renderer.ClearColor)
	}
	if cfg.Physics.GravityY != -1.62 || cfg.Physics.GravityX != 0 {
		t.Errorf("Unexpected gravity %f,%f", cfg.Physics.GravityX, cfg.Physics.GravityY)
	}
	if cfg.Editor.Camera != "fps" || cfg.Editor.SceneFile != "scenes/moon.yaml" {
		t.Errorf("Unexpected editor %+v", cfg.Editor)
	}
	if cfg.Logging.Format != "json" || cfg.Profiling.Mode != "cpu" {
		t.Error("Expected logging and profiling overrides")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestLoadBadSyntax(t *testing.T) {
	_, err := Load(writeConfig(t, "[window\nwidth = 1"))
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"[window]\nwidth = 0\n",
		"[renderer]\nmsaa_samples = 3\n",
		"[editor]\ncamera = \"free\"\n",
		"[editor]\nnear = 10.0\nfar = 1.0\n",
		"[profiling]\nmode = \"trace\"\n",
	}
	for _, c := range cases {
		if _, err := Load(writeConfig(t, c)); err == nil {
			t.Errorf("Expected error for %q", c)
		}
	}
}

func TestBundledConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.toml"))
	if err != nil {
		t.Fatalf("Bundled config should load: %v", err)
	}
	if cfg.Renderer.ShaderDir != "assets/shaders" {
		t.Errorf("Expected assets/shaders, got %s", cfg.Renderer.ShaderDir)
	}
}
