// Package recipe parses scene recipes: the items to fetch and build, and
// where to spawn instances of them.
package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/kensetsu/pkg/geom"
)

// Parse errors.
var (
	ErrMissingField = errors.New("missing required field")
	ErrVectorLength = errors.New("wrong vector length")
)

// ParseError reports malformed recipe text.
type ParseError struct {
	Field string // offending field, empty for syntax errors
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parsing recipe: %v", e.Err)
	}
	return fmt.Sprintf("parsing recipe: %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Recipe is a captured scene: item definitions and spawn placements.
// It is read-only once parsed.
type Recipe struct {
	Kind    string  `json:"type"`
	Version float64 `json:"version"`
	Items   []Item  `json:"items"`
	Spawns  []Spawn `json:"spawns"`
}

// Item identifies a buildable asset and where its payloads live.
type Item struct {
	ItemID      int    `json:"itemID"`
	Type        string `json:"type"`
	DisplayName string `json:"itemName"`
	ModelURL    string `json:"modelURL"`
	TextureURL  string `json:"textureURL"`
	ShaderName  string `json:"shaderName"`
}

// Spawn places one instance of an item.
type Spawn struct {
	ItemID   int       `json:"itemID"`
	Position []float32 `json:"position"`
	Rotation []float32 `json:"rotation"` // quaternion x, y, z, w
	Scale    []float32 `json:"scale"`
}

// Transform is a spawn's placement in typed form.
type Transform struct {
	Position geom.Vec3
	Rotation geom.Quat
	Scale    geom.Vec3
}

// Transform returns the spawn placement. Values are taken verbatim.
func (s Spawn) Transform() Transform {
	return Transform{
		Position: geom.Vec3FromSlice(s.Position),
		Rotation: geom.QuatFromSlice(s.Rotation),
		Scale:    geom.Vec3FromSlice(s.Scale),
	}
}

// Parse parses recipe JSON. Only structure is checked: items and spawns
// must be present (possibly empty) and spawn vectors must have the right
// length. Spawn item references are not resolved here.
func Parse(data []byte) (*Recipe, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ParseError{Err: err}
	}
	for _, key := range []string{"items", "spawns"} {
		v, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, &ParseError{Field: key, Err: ErrMissingField}
		}
	}

	r := &Recipe{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, &ParseError{Err: err}
	}

	for i, s := range r.Spawns {
		if err := checkLen(i, "position", s.Position, 3); err != nil {
			return nil, err
		}
		if err := checkLen(i, "rotation", s.Rotation, 4); err != nil {
			return nil, err
		}
		if err := checkLen(i, "scale", s.Scale, 3); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseFile reads and parses a recipe file.
func ParseFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	return Parse(data)
}

func checkLen(spawn int, field string, v []float32, want int) error {
	if len(v) != want {
		return &ParseError{
			Field: fmt.Sprintf("spawns[%d].%s", spawn, field),
			Err:   fmt.Errorf("%w: got %d values, want %d", ErrVectorLength, len(v), want),
		}
	}
	return nil
}

// Item returns the first item with the given id.
func (r *Recipe) Item(id int) (Item, bool) {
	for _, it := range r.Items {
		if it.ItemID == id {
			return it, true
		}
	}
	return Item{}, false
}

// SpawnCount returns how many spawns reference each item id.
func (r *Recipe) SpawnCount() map[int]int {
	counts := make(map[int]int, len(r.Items))
	for _, s := range r.Spawns {
		counts[s.ItemID]++
	}
	return counts
}
