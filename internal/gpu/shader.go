package gpu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrShaderSource is returned for a shader file without valid #type sections.
var ErrShaderSource = errors.New("malformed shader source")

// Shader is a linked program with uniforms set by name. Setters act on the
// currently bound program.
type Shader interface {
	Name() string
	Bind()
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetFloat3(name string, v mgl32.Vec3)
	SetFloat4(name string, v mgl32.Vec4)
	SetMat4(name string, m mgl32.Mat4)
	Release()
}

// ShaderSource holds the stage sources split out of one shader file.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

const typeToken = "#type"

// ParseShaderSource splits a combined file into its stages. Each stage
// starts with a line "#type vertex" or "#type fragment" ("pixel" is accepted
// as an alias).
func ParseShaderSource(src string) (ShaderSource, error) {
	var out ShaderSource
	var stage *string
	var b strings.Builder

	flush := func() {
		if stage != nil {
			*stage = b.String()
		}
		b.Reset()
	}

	for i, line := range strings.SplitAfter(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, typeToken) {
			if stage != nil {
				b.WriteString(line)
			}
			continue
		}
		flush()
		switch kind := strings.TrimSpace(strings.TrimPrefix(trimmed, typeToken)); kind {
		case "vertex":
			stage = &out.Vertex
		case "fragment", "pixel":
			stage = &out.Fragment
		default:
			return ShaderSource{}, fmt.Errorf("line %d: unknown stage %q: %w", i+1, kind, ErrShaderSource)
		}
	}
	flush()

	if out.Vertex == "" || out.Fragment == "" {
		return ShaderSource{}, fmt.Errorf("need vertex and fragment stages: %w", ErrShaderSource)
	}
	return out, nil
}

// LoadShaderFile reads, splits and compiles a combined shader file. The
// shader is named after the file without its extension.
func LoadShaderFile(dev Device, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader %s: %w", path, err)
	}
	src, err := ParseShaderSource(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse shader %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sh, err := dev.CompileShader(name, src)
	if err != nil {
		return nil, fmt.Errorf("compile shader %s: %w", path, err)
	}
	return sh, nil
}
