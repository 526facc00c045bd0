package meshtex

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kensetsu/pkg/geom"
	"github.com/Faultbox/kensetsu/pkg/pixel"
)

// makeStream builds a header with the given counts followed by body records,
// padded with zero records up to length total (if larger).
func makeStream(version float32, counts [4]float32, body []pixel.Record, total int) []pixel.Record {
	stream := make([]pixel.Record, HeaderRecords, HeaderRecords+len(body))
	stream[0] = pixel.Record{R: MagicVOY, G: MagicAGE}
	stream[1].R = version
	stream[CountsRecord] = pixel.Record{R: counts[0], G: counts[1], B: counts[2], A: counts[3]}
	stream = append(stream, body...)
	for len(stream) < total {
		stream = append(stream, pixel.Record{})
	}
	return stream
}

func randomMesh(rng *rand.Rand, v, n, u, i int) *Mesh {
	m := &Mesh{
		Vertices: make([]geom.Vec3, v),
		Normals:  make([]geom.Vec3, n),
		UVs:      make([]geom.Vec2, u),
		Indices:  make([]int32, i),
	}
	for k := range m.Vertices {
		m.Vertices[k] = geom.Vec3{X: rng.Float32()*200 - 100, Y: rng.Float32(), Z: -rng.Float32()}
	}
	for k := range m.Normals {
		m.Normals[k] = geom.Vec3{X: rng.Float32(), Y: rng.Float32(), Z: rng.Float32()}
	}
	for k := range m.UVs {
		m.UVs[k] = geom.Vec2{X: rng.Float32(), Y: rng.Float32()}
	}
	for k := range m.Indices {
		m.Indices[k] = int32(rng.Intn(1 << 16))
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	indexCounts := []int{0, 1, 2, 3, 4, 5, 7, 8}

	for iter := 0; iter < 200; iter++ {
		v, n, u := rng.Intn(12), rng.Intn(12), rng.Intn(12)
		i := indexCounts[iter%len(indexCounts)]
		if iter >= len(indexCounts)*10 {
			i = rng.Intn(40)
		}
		want := randomMesh(rng, v, n, u, i)

		got, err := Decode(Encode(want))
		require.NoError(t, err, "V=%d N=%d U=%d I=%d", v, n, u, i)
		assert.Equal(t, want, got, "V=%d N=%d U=%d I=%d", v, n, u, i)
	}
}

func TestRoundTripEmpty(t *testing.T) {
	stream := Encode(&Mesh{})
	assert.Greater(t, len(stream), MinimumDataSize)

	got, err := Decode(stream)
	require.NoError(t, err)
	assert.Empty(t, got.Vertices)
	assert.Empty(t, got.Normals)
	assert.Empty(t, got.UVs)
	assert.Empty(t, got.Indices)
	assert.NotNil(t, got.Indices)
}

func TestDecode_MagicValidation(t *testing.T) {
	valid := Encode(&Mesh{Vertices: []geom.Vec3{{X: 1, Y: 2, Z: 3}}})

	tests := []struct {
		name  string
		magic pixel.Record
	}{
		{"zero", pixel.Record{}},
		{"swapped", pixel.Record{R: MagicAGE, G: MagicVOY}},
		{"bad R", pixel.Record{R: MagicVOY + 1, G: MagicAGE}},
		{"bad G", pixel.Record{R: MagicVOY, G: math.Float32frombits(math.Float32bits(MagicAGE) ^ 1)}},
		{"bit pattern instead of value", pixel.Record{R: math.Float32frombits(0x00564F59), G: math.Float32frombits(0x00454741)}},
		{"NaN", pixel.Record{R: float32(math.NaN()), G: MagicAGE}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := append([]pixel.Record(nil), valid...)
			stream[0] = tt.magic
			// Unsupported version must not mask the magic failure.
			stream[1].R = 99

			_, err := Decode(stream)
			assert.ErrorIs(t, err, ErrInvalidMagic)
		})
	}
}

func TestDecode_VersionSupport(t *testing.T) {
	tests := []struct {
		name    string
		version float32
		wantErr bool
	}{
		{"v0", 0, false},
		{"v1", 1, false},
		{"v2 current", CurrentVersion, false},
		{"v2.5", 2.5, true},
		{"v3", 3, true},
		{"v1000", 1000, true},
		{"NaN", float32(math.NaN()), true},
		{"+Inf", float32(math.Inf(1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := makeStream(tt.version, [4]float32{1, 0, 0, 0}, []pixel.Record{{R: 1}}, MinimumDataSize+1)
			m, err := Decode(stream)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedVersion)
				assert.Nil(t, m)
			} else {
				require.NoError(t, err)
				assert.Len(t, m.Vertices, 1)
			}
		})
	}
}

func TestDecode_MinimumSize(t *testing.T) {
	for n := 0; n <= MinimumDataSize; n++ {
		var stream []pixel.Record
		if n > 0 {
			stream = makeStream(CurrentVersion, [4]float32{1, 1, 1, 3}, nil, n)[:n]
		}
		_, err := Decode(stream)
		assert.ErrorIs(t, err, ErrInsufficientData, "length %d", n)
	}

	// The size gate wins over a bad magic.
	_, err := Decode(make([]pixel.Record, MinimumDataSize))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDecode_PartialIndexPacking(t *testing.T) {
	const unused = 999

	for _, count := range []int{4, 5, 6, 7, 8, 9, 10, 11} {
		k, r := count/4, count%4
		records := k
		if r > 0 {
			records++
		}

		body := make([]pixel.Record, 4) // four vertices keep the stream above the size gate
		want := make([]int32, 0, count)
		next := int32(0)
		for g := 0; g < records; g++ {
			ch := [4]float32{unused, unused, unused, unused}
			for c := 0; c < 4 && len(want) < count; c++ {
				ch[c] = float32(next)
				want = append(want, next)
				next++
			}
			body = append(body, pixel.Record{R: ch[0], G: ch[1], B: ch[2], A: ch[3]})
		}

		stream := makeStream(CurrentVersion, [4]float32{4, 0, 0, float32(count)}, body, 0)
		require.Len(t, stream, HeaderRecords+4+records)

		m, err := Decode(stream)
		require.NoError(t, err, "count %d", count)
		assert.Equal(t, want, m.Indices, "count %d", count)
		assert.NotContains(t, m.Indices, int32(unused))

		// One record fewer must be detected, not read out of range.
		_, err = Decode(stream[:len(stream)-1])
		assert.ErrorIs(t, err, ErrTruncatedStream, "count %d", count)
	}
}

func TestDecode_TruncatedSections(t *testing.T) {
	tests := []struct {
		name   string
		counts [4]float32
	}{
		{"vertices", [4]float32{5, 0, 0, 0}},
		{"normals", [4]float32{2, 3, 0, 0}},
		{"uvs", [4]float32{1, 1, 3, 0}},
		{"indices", [4]float32{4, 0, 0, 1}},
		{"huge count", [4]float32{1e30, 0, 0, 0}},
		{"huge index count", [4]float32{0, 0, 0, 1e30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 16 header records and 4 body records.
			stream := makeStream(CurrentVersion, tt.counts, nil, MinimumDataSize+1)
			require.Len(t, stream, 20)

			m, err := Decode(stream)
			assert.ErrorIs(t, err, ErrTruncatedStream)
			assert.Nil(t, m)
		})
	}
}

func TestIndexRecords(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 1},
		{5, 2},
		{8, 2},
		{9, 3},
		// Largest decoded count; n+3 would wrap with a 32-bit int.
		{maxCount, 1 << 29},
		{math.MaxInt32 - 3, 1<<29 - 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, indexRecords(tt.n), "n=%d", tt.n)
	}
}

func TestDecodeHeader_HugeIndexCount(t *testing.T) {
	stream := makeStream(CurrentVersion, [4]float32{0, 0, 0, 1e30}, nil, MinimumDataSize+1)

	h, err := DecodeHeader(stream)
	require.NoError(t, err)
	assert.Equal(t, maxCount, h.IndexCount)
	assert.Equal(t, 1<<29, h.IndexRecords())
}

func TestDecode_CountTruncation(t *testing.T) {
	body := []pixel.Record{
		{R: 1, G: 2, B: 3},
		{R: 4, G: 5, B: 6},
		{R: 0.25, G: 0.75},
		{R: 0, G: 1.9, B: -1.9},
	}
	// 2.9 vertices truncate to 2, negative normals to 0, 1.5 uvs to 1, 3.99 indices to 3.
	stream := makeStream(CurrentVersion, [4]float32{2.9, -4, 1.5, 3.99}, body, MinimumDataSize+1)

	m, err := Decode(stream)
	require.NoError(t, err)
	assert.Equal(t, []geom.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, m.Vertices)
	assert.Empty(t, m.Normals)
	assert.Equal(t, []geom.Vec2{{X: 0.25, Y: 0.75}}, m.UVs)
	assert.Equal(t, []int32{0, 1, -1}, m.Indices)
}

func TestDecodeHeader(t *testing.T) {
	stream := Encode(randomMesh(rand.New(rand.NewSource(7)), 3, 2, 1, 6))

	h, err := DecodeHeader(stream)
	require.NoError(t, err)
	assert.Equal(t, Header{Version: CurrentVersion, VertexCount: 3, NormalCount: 2, UVCount: 1, IndexCount: 6}, h)
	assert.Equal(t, 2, h.IndexRecords())
	assert.Equal(t, 8, h.GeometryRecords())
}

func TestMeshStats(t *testing.T) {
	m := &Mesh{
		Vertices: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}},
		Indices:  []int32{0, 1, 0, 1},
	}
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, geom.Vec3{X: 1, Y: 2, Z: 3}, m.Bounds().Size())
}
