package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kensetsu/pkg/geom"
)

const sample = `{
  "type": "VoyageKensetsu",
  "version": 1.5,
  "items": [
    {"itemID": 1, "type": "furniture", "itemName": "Pokemon Room (Red)",
     "modelURL": "https://cdn.example.com/room.exr", "textureURL": "https://cdn.example.com/room.png",
     "shaderName": "Unlit/Texture"},
    {"itemID": 2048, "type": "hat", "itemName": "Degu",
     "modelURL": "https://cdn.example.com/degu.exr", "textureURL": "https://cdn.example.com/degu.png",
     "shaderName": "Standard"}
  ],
  "spawns": [
    {"itemID": 1, "position": [1, 2, 3], "rotation": [0, 0, 0, 1], "scale": [1, 1, 1]},
    {"itemID": 7, "position": [0, 0, 0], "rotation": [0, 0.7071, 0, 0.7071], "scale": [2, 2, 2]},
    {"itemID": 1, "position": [-1, 0, 4], "rotation": [0, 0, 0, 1], "scale": [0.5, 0.5, 0.5]}
  ]
}`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "VoyageKensetsu", r.Kind)
	assert.Equal(t, 1.5, r.Version)
	require.Len(t, r.Items, 2)
	require.Len(t, r.Spawns, 3)

	assert.Equal(t, Item{
		ItemID:      2048,
		Type:        "hat",
		DisplayName: "Degu",
		ModelURL:    "https://cdn.example.com/degu.exr",
		TextureURL:  "https://cdn.example.com/degu.png",
		ShaderName:  "Standard",
	}, r.Items[1])

	// Unknown references survive parsing.
	assert.Equal(t, 7, r.Spawns[1].ItemID)
}

func TestParseEmptyLists(t *testing.T) {
	r, err := Parse([]byte(`{"type": "x", "version": 3, "items": [], "spawns": []}`))
	require.NoError(t, err)
	assert.Empty(t, r.Items)
	assert.Empty(t, r.Spawns)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		field   string
		wantErr error
	}{
		{"syntax", `{"items": [`, "", nil},
		{"not an object", `[1, 2]`, "", nil},
		{"missing items", `{"spawns": []}`, "items", ErrMissingField},
		{"null spawns", `{"items": [], "spawns": null}`, "spawns", ErrMissingField},
		{"wrong type", `{"items": [{"itemID": "one"}], "spawns": []}`, "", nil},
		{"short position", `{"items": [], "spawns": [{"itemID": 1, "position": [1, 2], "rotation": [0,0,0,1], "scale": [1,1,1]}]}`, "spawns[0].position", ErrVectorLength},
		{"euler rotation", `{"items": [], "spawns": [{"itemID": 1, "position": [1,2,3], "rotation": [0,0,0], "scale": [1,1,1]}]}`, "spawns[0].rotation", ErrVectorLength},
		{"missing scale", `{"items": [], "spawns": [{"itemID": 1, "position": [1,2,3], "rotation": [0,0,0,1]}]}`, "spawns[0].scale", ErrVectorLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Equal(t, tt.field, perr.Field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSpawnTransform(t *testing.T) {
	r, err := Parse([]byte(sample))
	require.NoError(t, err)

	tr := r.Spawns[1].Transform()
	assert.Equal(t, geom.Vec3{}, tr.Position)
	assert.Equal(t, geom.Quat{X: 0, Y: 0.7071, Z: 0, W: 0.7071}, tr.Rotation)
	assert.Equal(t, geom.Vec3{X: 2, Y: 2, Z: 2}, tr.Scale)
}

func TestItemLookup(t *testing.T) {
	r, err := Parse([]byte(sample))
	require.NoError(t, err)

	it, ok := r.Item(1)
	assert.True(t, ok)
	assert.Equal(t, "Pokemon Room (Red)", it.DisplayName)

	_, ok = r.Item(7)
	assert.False(t, ok)

	assert.Equal(t, map[int]int{1: 2, 7: 1}, r.SpawnCount())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	r, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, r.Items, 2)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
