// Package scene places instances of built items and records them in a
// manifest file.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/kensetsu/internal/materialize"
	"github.com/Faultbox/kensetsu/pkg/geom"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

// ErrNilPlaceable is returned when instantiating without a built item.
var ErrNilPlaceable = errors.New("nil placeable")

// Placer instantiates built items in a scene.
type Placer interface {
	Instantiate(p *materialize.Placeable, t recipe.Transform) (Instance, error)
}

// Instance is one placed copy of an item.
type Instance struct {
	Name     string      `yaml:"name"`
	ItemID   int         `yaml:"item_id"`
	Prefab   string      `yaml:"prefab"`
	Position [3]float32  `yaml:"position"`
	Rotation [4]float32  `yaml:"rotation"` // quaternion x, y, z, w
	Scale    [3]float32  `yaml:"scale"`
	Matrix   [16]float32 `yaml:"matrix,flow"` // column-major TRS
}

// Manifest is a Placer that keeps instances in memory, in placement order.
type Manifest struct {
	mu        sync.Mutex
	instances []Instance
	perItem   map[int]int
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{perItem: make(map[int]int)}
}

// Instantiate places one copy of p with the given transform, taken verbatim.
// The first instance of an item is named after its prefab; later ones get
// a " (n)" suffix.
func (m *Manifest) Instantiate(p *materialize.Placeable, t recipe.Transform) (Instance, error) {
	if p == nil {
		return Instance{}, ErrNilPlaceable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := p.Name()
	if n := m.perItem[p.ItemID]; n > 0 {
		name += " (" + strconv.Itoa(n) + ")"
	}
	m.perItem[p.ItemID]++

	inst := Instance{
		Name:     name,
		ItemID:   p.ItemID,
		Prefab:   p.PrefabPath,
		Position: t.Position.Array(),
		Rotation: t.Rotation.Array(),
		Scale:    t.Scale.Array(),
		Matrix:   [16]float32(geom.TRS(t.Position, t.Rotation, t.Scale)),
	}
	m.instances = append(m.instances, inst)
	return inst, nil
}

// Instances returns a copy of the placed instances.
func (m *Manifest) Instances() []Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Instance(nil), m.instances...)
}

// Len returns the number of placed instances.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.instances)
}

type manifestFile struct {
	Instances []Instance `yaml:"instances"`
}

// Save writes the manifest as YAML, creating parent directories.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(manifestFile{Instances: m.Instances()})
	if err != nil {
		return fmt.Errorf("marshaling scene manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing scene manifest: %w", err)
	}
	return nil
}

// Load reads a manifest written by Save.
func Load(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f manifestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene manifest: %w", err)
	}
	return f.Instances, nil
}
