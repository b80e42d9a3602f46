package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mirgo/internal/config"
	"mirgo/internal/game"
)

func init() {
	// GL calls must stay on the thread that created the context
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.toml", "path to the editor config")
	scenePath := flag.String("scene", "", "scene file to open, overrides editor.scene_file")
	profileMode := flag.String("profile", "", "cpu or mem, overrides profiling.mode")
	flag.Parse()

	if flagSet("config") {
		*configPath, _ = filepath.Abs(*configPath)
	}
	if *scenePath != "" {
		*scenePath, _ = filepath.Abs(*scenePath)
	}

	// deployed builds read assets next to the binary; go run builds in a temp dir
	if execPath, err := os.Executable(); err == nil {
		if execDir := filepath.Dir(execPath); !strings.Contains(execDir, "go-build") {
			_ = os.Chdir(execDir)
		}
	}

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) && !flagSet("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}
	if *scenePath != "" {
		cfg.Editor.SceneFile = *scenePath
	}
	if *profileMode != "" {
		cfg.Profiling.Mode = *profileMode
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if stop := startProfile(cfg.Profiling); stop != nil {
		defer stop()
		log.Info("profiling", zap.String("mode", cfg.Profiling.Mode), zap.String("path", cfg.Profiling.Path))
	}

	if err := game.New(cfg, log).Run(); err != nil {
		log.Error("editor stopped", zap.Error(err))
		return err
	}
	return nil
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func startProfile(cfg config.ProfilingConfig) func() {
	path := cfg.Path
	if path == "" {
		path = "."
	}
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfileAllocs
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(path), profile.NoShutdownHook).Stop
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
