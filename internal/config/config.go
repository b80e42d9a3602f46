package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window    WindowConfig    `toml:"window"`
	Renderer  RendererConfig  `toml:"renderer"`
	Physics   PhysicsConfig   `toml:"physics"`
	Editor    EditorConfig    `toml:"editor"`
	Logging   LoggingConfig   `toml:"logging"`
	Profiling ProfilingConfig `toml:"profiling"`
}

type WindowConfig struct {
	Width     int32  `toml:"width"`
	Height    int32  `toml:"height"`
	Title     string `toml:"title"`
	TargetFPS int32  `toml:"target_fps"`
	HighDPI   bool   `toml:"high_dpi"`
}

type RendererConfig struct {
	MSAASamples    int32      `toml:"msaa_samples"`
	Exposure       float32    `toml:"exposure"`
	Tonemap        bool       `toml:"tonemap"`
	ClearColor     [4]float32 `toml:"clear_color"`
	FrustumCulling bool       `toml:"frustum_culling"`
	OutlineScale   float32    `toml:"outline_scale"`
	ShaderDir      string     `toml:"shader_dir"`
	ShowGrid       bool       `toml:"show_grid"`
	ShowSkybox     bool       `toml:"show_skybox"`
}

type PhysicsConfig struct {
	GravityX      float32 `toml:"gravity_x"`
	GravityY      float32 `toml:"gravity_y"`
	FixedTimestep float32 `toml:"fixed_timestep"` // seconds; 0 steps with the frame time
	CollisionSlop float64 `toml:"collision_slop"`
}

type EditorConfig struct {
	Camera    string  `toml:"camera"` // "orbit" or "fps"
	SceneFile string  `toml:"scene_file"`
	FOV       float32 `toml:"fov"` // degrees
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfilingConfig struct {
	Mode string `toml:"mode"` // "", "cpu" or "mem"
	Path string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config { return defaults() }

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     1600,
			Height:    900,
			Title:     "mirgo",
			TargetFPS: 144,
		},
		Renderer: RendererConfig{
			MSAASamples:    4,
			Exposure:       1.0,
			Tonemap:        true,
			ClearColor:     [4]float32{0.1, 0.1, 0.1, 1},
			FrustumCulling: true,
			OutlineScale:   1.03,
			ShaderDir:      "assets/shaders",
			ShowGrid:       true,
			ShowSkybox:     true,
		},
		Physics: PhysicsConfig{
			GravityX:      0,
			GravityY:      -9.81,
			FixedTimestep: 1.0 / 60.0,
			CollisionSlop: 0.005,
		},
		Editor: EditorConfig{
			Camera: "orbit",
			FOV:    45,
			Near:   0.1,
			Far:    1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.MSAASamples {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("renderer.msaa_samples %d must be 1, 2, 4, 8 or 16", c.Renderer.MSAASamples)
	}
	switch c.Editor.Camera {
	case "orbit", "fps":
	default:
		return fmt.Errorf("editor.camera %q must be orbit or fps", c.Editor.Camera)
	}
	switch c.Profiling.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profiling.mode %q must be empty, cpu or mem", c.Profiling.Mode)
	}
	if c.Editor.Near <= 0 || c.Editor.Far <= c.Editor.Near {
		return fmt.Errorf("editor clip range %g..%g is invalid", c.Editor.Near, c.Editor.Far)
	}
	return nil
}
