// Package materialize turns the fetched payloads of an item into a placeable
// item: a decoded mesh, a material and a prefab description, all written to
// the item's store folder.
package materialize

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/kensetsu/internal/assets"
	"github.com/Faultbox/kensetsu/internal/config"
	"github.com/Faultbox/kensetsu/pkg/encoding"
	"github.com/Faultbox/kensetsu/pkg/geom"
	"github.com/Faultbox/kensetsu/pkg/meshtex"
	"github.com/Faultbox/kensetsu/pkg/pixel"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

// LabelBase is attached to every built prefab.
const LabelBase = "Voyage-Kensetsu"

// ErrIndexRange is returned for meshes with an index that addresses no vertex.
var ErrIndexRange = errors.New("mesh index out of range")

// Stage names the step of a build that failed.
type Stage string

const (
	StageModel   Stage = "model"
	StageDecode  Stage = "decode"
	StageTexture Stage = "texture"
	StageWrite   Stage = "write"
)

// Error reports a failed item build.
type Error struct {
	ItemID int
	Stage  Stage
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("building item %d: %s: %v", e.ItemID, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Material is the material file written next to the mesh.
type Material struct {
	Name    string      `yaml:"name"`
	Shader  string      `yaml:"shader"`
	Texture string      `yaml:"texture"`
	Info    TextureInfo `yaml:"texture_info"`
}

// Prefab is the reusable item description that scene instances point at.
type Prefab struct {
	Name        string     `yaml:"name"`
	ItemID      int        `yaml:"item_id"`
	Type        string     `yaml:"type,omitempty"`
	DisplayName string     `yaml:"display_name,omitempty"`
	Labels      []string   `yaml:"labels"`
	Mesh        string     `yaml:"mesh"`
	Material    string     `yaml:"material"`
	Rotation    [4]float32 `yaml:"rotation"` // quaternion x, y, z, w
	Vertices    int        `yaml:"vertices"`
	Triangles   int        `yaml:"triangles"`
	BoundsMin   [3]float32 `yaml:"bounds_min"`
	BoundsMax   [3]float32 `yaml:"bounds_max"`
}

// Placeable is a built item ready to be instantiated.
type Placeable struct {
	ItemID     int
	Prefab     Prefab
	PrefabPath string
	Mesh       *meshtex.Mesh
}

// Name returns the prefab name.
func (p *Placeable) Name() string {
	return p.Prefab.Name
}

// PrefabName returns the name of the prefab built for itemID.
func PrefabName(itemID int) string {
	return "Item-" + strconv.Itoa(itemID)
}

// Builder materializes items whose payloads are in a store.
type Builder struct {
	store *assets.Store
	cfg   config.BuildConfig
	log   *zap.Logger
}

// NewBuilder creates a builder.
func NewBuilder(store *assets.Store, cfg config.BuildConfig, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{store: store, cfg: cfg, log: log}
}

// ResolveShader returns the known shader matching name, compared without
// regard to case, or the default shader. The bool is false on fallback.
func (b *Builder) ResolveShader(name string) (string, bool) {
	for _, s := range b.cfg.Shaders {
		if s == name {
			return s, true
		}
	}
	for _, s := range b.cfg.Shaders {
		if encoding.SameLabel(s, name) {
			return s, true
		}
	}
	return b.cfg.DefaultShader, false
}

// Build decodes the item's model payload, validates its texture and writes
// the mesh, material and prefab files. Nothing is written unless the
// payloads are valid.
func (b *Builder) Build(item recipe.Item) (*Placeable, error) {
	id := item.ItemID
	fail := func(stage Stage, err error) (*Placeable, error) {
		return nil, &Error{ItemID: id, Stage: stage, Err: err}
	}

	payload, err := b.store.Load(b.store.ModelPath(id))
	if err != nil {
		return fail(StageModel, err)
	}
	records, format, err := pixel.Decode(payload)
	if err != nil {
		return fail(StageDecode, err)
	}
	mesh, err := meshtex.Decode(records)
	if err != nil {
		return fail(StageDecode, err)
	}
	if err := checkIndices(mesh); err != nil {
		return fail(StageDecode, err)
	}

	texData, err := b.store.Load(b.store.TexturePath(id))
	if err != nil {
		return fail(StageTexture, err)
	}
	_, texInfo, err := DecodeTexture(texData)
	if err != nil {
		return fail(StageTexture, err)
	}

	shader, known := b.ResolveShader(item.ShaderName)
	if !known {
		b.log.Warn("shader not found, using default",
			zap.Int("item", id),
			zap.String("shader", item.ShaderName),
			zap.String("default", shader))
	}

	name := PrefabName(id)
	rot := geom.QuatFromEuler(b.cfg.BaseRotation[0], b.cfg.BaseRotation[1], b.cfg.BaseRotation[2])
	bounds := mesh.Bounds()

	prefab := Prefab{
		Name:        name,
		ItemID:      id,
		Type:        item.Type,
		DisplayName: item.DisplayName,
		Labels:      encoding.Labels(LabelBase, item.DisplayName),
		Mesh:        assets.MeshFile,
		Material:    assets.MaterialFile,
		Rotation:    rot.Array(),
		Vertices:    len(mesh.Vertices),
		Triangles:   mesh.TriangleCount(),
		BoundsMin:   bounds.Min.Array(),
		BoundsMax:   bounds.Max.Array(),
	}
	material := Material{
		Name:    name,
		Shader:  shader,
		Texture: assets.TextureFile,
		Info:    texInfo,
	}

	var obj bytes.Buffer
	if err := WriteOBJ(&obj, name, mesh); err != nil {
		return fail(StageWrite, err)
	}
	if err := b.store.WriteFile(b.store.MeshPath(id), obj.Bytes()); err != nil {
		return fail(StageWrite, err)
	}
	if err := b.writeYAML(b.store.MaterialPath(id), material); err != nil {
		return fail(StageWrite, err)
	}
	if err := b.writeYAML(b.store.PrefabPath(id), prefab); err != nil {
		return fail(StageWrite, err)
	}

	b.log.Info("built item",
		zap.Int("item", id),
		zap.String("prefab", name),
		zap.String("payload", format),
		zap.Int("vertices", prefab.Vertices),
		zap.Int("triangles", prefab.Triangles),
		zap.String("shader", shader))

	return &Placeable{
		ItemID:     id,
		Prefab:     prefab,
		PrefabPath: b.store.PrefabPath(id),
		Mesh:       mesh,
	}, nil
}

func checkIndices(m *meshtex.Mesh) error {
	for i, idx := range m.Indices {
		if idx < 0 || int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d is %d, mesh has %d vertices", ErrIndexRange, i, idx, len(m.Vertices))
		}
	}
	return nil
}

func (b *Builder) writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return b.store.WriteFile(path, data)
}
