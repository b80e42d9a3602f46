// Package assets caches meshes and textures by path so every entity that
// names the same file shares one GPU copy.
package assets

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mirgo/internal/gpu"
	"mirgo/internal/mesh"
)

var ErrNoCubemaps = errors.New("importer cannot load cube maps")

// CubemapLoader is implemented by importers that can build environment cube
// maps from a single cross or strip image.
type CubemapLoader interface {
	LoadCubemap(path string) (*gpu.TextureCube, error)
}

type Manager struct {
	importer mesh.Importer
	dev      gpu.Device
	logger   *zap.Logger

	meshes   map[string]*mesh.Mesh
	textures map[string]*gpu.Texture
	cubemaps map[string]*gpu.TextureCube
}

func NewManager(importer mesh.Importer, dev gpu.Device, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		importer: importer,
		dev:      dev,
		logger:   logger,
		meshes:   make(map[string]*mesh.Mesh),
		textures: make(map[string]*gpu.Texture),
		cubemaps: make(map[string]*gpu.TextureCube),
	}
}

// Mesh returns the shared mesh for path, loading it on first use. A failed
// load is cached too; the returned mesh reports IsLoaded false.
func (m *Manager) Mesh(path string) *mesh.Mesh {
	if cached, exists := m.meshes[path]; exists {
		return cached
	}
	loaded := mesh.Load(path, m.importer, m.dev, m.logger.Named("mesh"))
	m.meshes[path] = loaded
	return loaded
}

// Texture returns the shared texture for path.
func (m *Manager) Texture(path string) (*gpu.Texture, error) {
	if cached, exists := m.textures[path]; exists {
		return cached, nil
	}
	if m.importer == nil {
		return nil, mesh.ErrNoImporter
	}
	tex, err := m.importer.LoadTexture(path)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	m.textures[path] = tex
	return tex, nil
}

// Cubemap returns the shared cube map for path.
func (m *Manager) Cubemap(path string) (*gpu.TextureCube, error) {
	if cached, exists := m.cubemaps[path]; exists {
		return cached, nil
	}
	loader, ok := m.importer.(CubemapLoader)
	if !ok {
		return nil, fmt.Errorf("cube map %s: %w", path, ErrNoCubemaps)
	}
	cube, err := loader.LoadCubemap(path)
	if err != nil {
		return nil, fmt.Errorf("cube map %s: %w", path, err)
	}
	m.cubemaps[path] = cube
	return cube, nil
}

// Meshes returns the cached paths.
func (m *Manager) Meshes() []string {
	paths := make([]string, 0, len(m.meshes))
	for p := range m.meshes {
		paths = append(paths, p)
	}
	return paths
}

// Unload releases every cached mesh. Textures and cube maps belong to the
// importer.
func (m *Manager) Unload() {
	for path, cached := range m.meshes {
		cached.Release()
		m.logger.Debug("mesh unloaded", zap.String("path", path))
	}
	m.meshes = make(map[string]*mesh.Mesh)
	m.textures = make(map[string]*gpu.Texture)
	m.cubemaps = make(map[string]*gpu.TextureCube)
}
