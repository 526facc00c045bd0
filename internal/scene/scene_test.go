package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kensetsu/internal/materialize"
	"github.com/Faultbox/kensetsu/pkg/geom"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

func placeable(id int) *materialize.Placeable {
	return &materialize.Placeable{
		ItemID:     id,
		Prefab:     materialize.Prefab{Name: materialize.PrefabName(id)},
		PrefabPath: filepath.Join("items", "x", "item.yaml"),
	}
}

func TestInstantiate(t *testing.T) {
	m := NewManifest()
	tr := recipe.Transform{
		Position: geom.Vec3{X: 1, Y: 2, Z: 3},
		Rotation: geom.Quat{X: 0, Y: 0.7071068, Z: 0, W: 0.7071068},
		Scale:    geom.Vec3{X: 2, Y: 2, Z: 2},
	}

	inst, err := m.Instantiate(placeable(5), tr)
	require.NoError(t, err)

	assert.Equal(t, "Item-5", inst.Name)
	assert.Equal(t, 5, inst.ItemID)
	assert.Equal(t, [3]float32{1, 2, 3}, inst.Position)
	assert.Equal(t, [4]float32{0, 0.7071068, 0, 0.7071068}, inst.Rotation)
	assert.Equal(t, [3]float32{2, 2, 2}, inst.Scale)

	// Translation lives in the last column.
	assert.Equal(t, float32(1), inst.Matrix[12])
	assert.Equal(t, float32(2), inst.Matrix[13])
	assert.Equal(t, float32(3), inst.Matrix[14])
	assert.Equal(t, float32(1), inst.Matrix[15])
}

func TestInstanceNaming(t *testing.T) {
	m := NewManifest()
	tr := recipe.Transform{Rotation: geom.QuatIdentity(), Scale: geom.Vec3{X: 1, Y: 1, Z: 1}}

	var names []string
	for _, id := range []int{1, 1, 2, 1} {
		inst, err := m.Instantiate(placeable(id), tr)
		require.NoError(t, err)
		names = append(names, inst.Name)
	}

	assert.Equal(t, []string{"Item-1", "Item-1 (1)", "Item-2", "Item-1 (2)"}, names)
	assert.Equal(t, 4, m.Len())
}

func TestInstantiateNil(t *testing.T) {
	m := NewManifest()
	_, err := m.Instantiate(nil, recipe.Transform{})
	assert.ErrorIs(t, err, ErrNilPlaceable)
	assert.Zero(t, m.Len())
}

func TestSaveLoad(t *testing.T) {
	m := NewManifest()
	tr := recipe.Transform{
		Position: geom.Vec3{X: -1.5, Y: 0, Z: 4},
		Rotation: geom.QuatIdentity(),
		Scale:    geom.Vec3{X: 1, Y: 1, Z: 1},
	}
	_, err := m.Instantiate(placeable(9), tr)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "scene.yaml")
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Instances(), got)
	assert.Equal(t, [16]float32(geom.TRS(tr.Position, tr.Rotation, tr.Scale)), got[0].Matrix)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
