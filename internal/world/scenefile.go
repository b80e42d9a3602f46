package world

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mirgo/internal/engine"
	"mirgo/internal/physics"
)

// --- YAML types ---

type SceneFile struct {
	Name        string          `yaml:"name"`
	Environment *EnvironmentDef `yaml:"environment,omitempty"`
	Entities    []EntityDef     `yaml:"entities"`
}

type EnvironmentDef struct {
	Light         *lightDef `yaml:"light,omitempty"`
	Exposure      float32   `yaml:"exposure"`
	Tonemap       *bool     `yaml:"tonemap,omitempty"`
	TextureLod    float32   `yaml:"texture_lod"`
	RadianceMap   string    `yaml:"radiance_map,omitempty"`
	IrradianceMap string    `yaml:"irradiance_map,omitempty"`
	BRDFLUT       string    `yaml:"brdf_lut,omitempty"`
}

type lightDef struct {
	Active    bool       `yaml:"active"`
	Direction [3]float32 `yaml:"direction,flow"`
	Radiance  [3]float32 `yaml:"radiance,flow"`
	Intensity float32    `yaml:"intensity"`
}

type EntityDef struct {
	Name      string       `yaml:"name"`
	UUID      string       `yaml:"uuid,omitempty"`
	Transform transformDef `yaml:"transform"`

	Mesh           string             `yaml:"mesh,omitempty"`
	Camera         *cameraDef         `yaml:"camera,omitempty"`
	Rigidbody      *rigidbodyDef      `yaml:"rigidbody,omitempty"`
	BoxCollider    *boxColliderDef    `yaml:"box_collider,omitempty"`
	CircleCollider *circleColliderDef `yaml:"circle_collider,omitempty"`
}

type transformDef struct {
	Translation [3]float32 `yaml:"translation,flow"`
	Rotation    [3]float32 `yaml:"rotation,flow"` // radians
	Scale       [3]float32 `yaml:"scale,flow"`
}

type cameraDef struct {
	FOV     float32 `yaml:"fov"`
	Near    float32 `yaml:"near"`
	Far     float32 `yaml:"far"`
	Primary bool    `yaml:"primary"`
}

type rigidbodyDef struct {
	Type string `yaml:"type"`
}

type fixtureDef struct {
	Density              float32 `yaml:"density"`
	Friction             float32 `yaml:"friction"`
	Restitution          float32 `yaml:"restitution"`
	RestitutionThreshold float32 `yaml:"restitution_threshold"`
}

type boxColliderDef struct {
	Offset     [2]float32 `yaml:"offset,flow"`
	Size       [2]float32 `yaml:"size,flow"`
	fixtureDef `yaml:",inline"`
}

type circleColliderDef struct {
	Offset     [2]float32 `yaml:"offset,flow"`
	Radius     float32    `yaml:"radius"`
	fixtureDef `yaml:",inline"`
}

// --- Body type mapping ---

func parseBodyType(s string) physics.BodyType {
	switch strings.ToLower(s) {
	case "dynamic":
		return physics.BodyDynamic
	case "kinematic":
		return physics.BodyKinematic
	}
	return physics.BodyStatic
}

func vec3(a [3]float32) mgl32.Vec3 { return mgl32.Vec3{a[0], a[1], a[2]} }
func vec2(a [2]float32) mgl32.Vec2 { return mgl32.Vec2{a[0], a[1]} }

// --- Loading ---

// LoadScene replaces the current scene with the one stored at path. Only
// allowed while editing; the selection is cleared.
func (w *World) LoadScene(path string) error {
	if w.Scene.State() != engine.SceneEditing {
		return ErrNotEditing
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}

	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}

	name := sf.Name
	if name == "" {
		name = "Untitled"
	}
	scene := w.newScene(name)

	if sf.Environment != nil {
		w.loadEnvironment(&scene.Environment, sf.Environment)
	}

	for i := range sf.Entities {
		if err := w.loadEntity(scene, &sf.Entities[i]); err != nil {
			return fmt.Errorf("entity %d (%s): %w", i, sf.Entities[i].Name, err)
		}
	}

	w.Scene = scene
	w.selected = uuid.Nil
	w.logger.Info("scene loaded",
		zap.String("path", path),
		zap.String("name", name),
		zap.Int("entities", len(sf.Entities)),
	)
	return nil
}

func (w *World) loadEnvironment(env *engine.Environment, def *EnvironmentDef) {
	if def.Light != nil {
		env.DirectionalLight = engine.DirectionalLight{
			Active:    def.Light.Active,
			Direction: vec3(def.Light.Direction),
			Radiance:  vec3(def.Light.Radiance),
			Intensity: def.Light.Intensity,
		}
	}
	if def.Exposure > 0 {
		env.Exposure = def.Exposure
	}
	if def.Tonemap != nil {
		env.Tonemap = *def.Tonemap
	}
	env.TextureLod = def.TextureLod

	// Missing environment maps only turn off the skybox and IBL.
	if def.RadianceMap != "" {
		if cube, err := w.Assets.Cubemap(def.RadianceMap); err == nil {
			env.RadianceMap = cube
		} else {
			w.logger.Warn("radiance map not loaded", zap.Error(err))
		}
	}
	if def.IrradianceMap != "" {
		if cube, err := w.Assets.Cubemap(def.IrradianceMap); err == nil {
			env.IrradianceMap = cube
		} else {
			w.logger.Warn("irradiance map not loaded", zap.Error(err))
		}
	}
	if def.BRDFLUT != "" {
		if tex, err := w.Assets.Texture(def.BRDFLUT); err == nil {
			env.BRDFLUT = tex
		} else {
			w.logger.Warn("BRDF LUT not loaded", zap.Error(err))
		}
	}
}

func (w *World) loadEntity(scene *engine.Scene, def *EntityDef) error {
	var e engine.Entity
	if def.UUID != "" {
		id, err := uuid.Parse(def.UUID)
		if err != nil {
			return fmt.Errorf("parse uuid: %w", err)
		}
		e = scene.CreateEntityWithUUID(id, def.Name)
	} else {
		e = scene.CreateEntity(def.Name)
	}

	tr, _ := engine.GetComponent[engine.Transform](e)
	tr.Translation = vec3(def.Transform.Translation)
	tr.SetRotation(vec3(def.Transform.Rotation))
	// Default scale to 1 if zero
	if def.Transform.Scale == [3]float32{} {
		tr.Scale = mgl32.Vec3{1, 1, 1}
	} else {
		tr.Scale = vec3(def.Transform.Scale)
	}

	if def.Mesh != "" {
		m := w.Assets.Mesh(def.Mesh)
		if !m.IsLoaded() {
			w.logger.Warn("scene references unloaded mesh",
				zap.String("entity", def.Name),
				zap.String("path", def.Mesh),
			)
		}
		if _, err := engine.AddComponent(e, engine.MeshRef{Mesh: m}); err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
	}

	if def.Camera != nil {
		cam := engine.NewCamera()
		if def.Camera.FOV > 0 {
			cam.FOV = def.Camera.FOV
		}
		if def.Camera.Near > 0 {
			cam.Near = def.Camera.Near
		}
		if def.Camera.Far > 0 {
			cam.Far = def.Camera.Far
		}
		cam.Primary = def.Camera.Primary
		cam.SetBounds(float32(w.opts.Width), float32(w.opts.Height))
		if _, err := engine.AddComponent(e, cam); err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
	}

	if def.Rigidbody != nil {
		if _, err := engine.AddComponent(e, engine.Rigidbody2D{Type: parseBodyType(def.Rigidbody.Type)}); err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
	}

	if def.BoxCollider != nil {
		box := engine.NewBoxCollider2D()
		box.Offset = vec2(def.BoxCollider.Offset)
		if def.BoxCollider.Size != [2]float32{} {
			box.Size = vec2(def.BoxCollider.Size)
		}
		box.Density = def.BoxCollider.Density
		box.Friction = def.BoxCollider.Friction
		box.Restitution = def.BoxCollider.Restitution
		box.RestitutionThreshold = def.BoxCollider.RestitutionThreshold
		if _, err := engine.AddComponent(e, box); err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
	}

	if def.CircleCollider != nil {
		circle := engine.NewCircleCollider2D()
		circle.Offset = vec2(def.CircleCollider.Offset)
		if def.CircleCollider.Radius > 0 {
			circle.Radius = def.CircleCollider.Radius
		}
		circle.Density = def.CircleCollider.Density
		circle.Friction = def.CircleCollider.Friction
		circle.Restitution = def.CircleCollider.Restitution
		circle.RestitutionThreshold = def.CircleCollider.RestitutionThreshold
		if _, err := engine.AddComponent(e, circle); err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
	}
	return nil
}

// --- Saving ---

// SaveScene writes the current scene to path. While a play session runs the
// live state is written, not the snapshot taken at Play.
func (w *World) SaveScene(path string) error {
	sf := SceneFile{
		Name:        w.Scene.Name,
		Environment: w.environmentDef(),
	}

	for _, e := range w.Scene.Entities() {
		sf.Entities = append(sf.Entities, entityDef(e))
	}

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}

	w.logger.Info("scene saved", zap.String("path", path), zap.Int("entities", len(sf.Entities)))
	return nil
}

func (w *World) environmentDef() *EnvironmentDef {
	env := w.Scene.Environment
	l := env.DirectionalLight
	def := &EnvironmentDef{
		Light: &lightDef{
			Active:    l.Active,
			Direction: l.Direction,
			Radiance:  l.Radiance,
			Intensity: l.Intensity,
		},
		Exposure:   env.Exposure,
		Tonemap:    &env.Tonemap,
		TextureLod: env.TextureLod,
	}
	if env.RadianceMap != nil {
		def.RadianceMap = env.RadianceMap.Path
	}
	if env.IrradianceMap != nil {
		def.IrradianceMap = env.IrradianceMap.Path
	}
	if env.BRDFLUT != nil {
		def.BRDFLUT = env.BRDFLUT.Path
	}
	return def
}

func entityDef(e engine.Entity) EntityDef {
	def := EntityDef{Name: e.Name()}
	if ident, ok := engine.TryGetComponent[engine.Identity](e); ok {
		def.UUID = ident.UUID.String()
	}
	if tr, ok := engine.TryGetComponent[engine.Transform](e); ok {
		def.Transform = transformDef{
			Translation: tr.Translation,
			Rotation:    tr.Rotation,
			Scale:       tr.Scale,
		}
	}
	if ref, ok := engine.TryGetComponent[engine.MeshRef](e); ok && ref.Mesh != nil {
		def.Mesh = ref.Mesh.Path()
	}
	if cam, ok := engine.TryGetComponent[engine.Camera](e); ok {
		def.Camera = &cameraDef{FOV: cam.FOV, Near: cam.Near, Far: cam.Far, Primary: cam.Primary}
	}
	if rb, ok := engine.TryGetComponent[engine.Rigidbody2D](e); ok {
		def.Rigidbody = &rigidbodyDef{Type: strings.ToLower(rb.Type.String())}
	}
	if box, ok := engine.TryGetComponent[engine.BoxCollider2D](e); ok {
		def.BoxCollider = &boxColliderDef{
			Offset: box.Offset,
			Size:   box.Size,
			fixtureDef: fixtureDef{
				Density:              box.Density,
				Friction:             box.Friction,
				Restitution:          box.Restitution,
				RestitutionThreshold: box.RestitutionThreshold,
			},
		}
	}
	if circle, ok := engine.TryGetComponent[engine.CircleCollider2D](e); ok {
		def.CircleCollider = &circleColliderDef{
			Offset: circle.Offset,
			Radius: circle.Radius,
			fixtureDef: fixtureDef{
				Density:              circle.Density,
				Friction:             circle.Friction,
				Restitution:          circle.Restitution,
				RestitutionThreshold: circle.RestitutionThreshold,
			},
		}
	}
	return def
}
