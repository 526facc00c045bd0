package meshtex

import (
	"fmt"
	"math"

	"github.com/Faultbox/kensetsu/pkg/geom"
	"github.com/Faultbox/kensetsu/pkg/pixel"
)

// maxCount caps a decoded count so that sums of counts cannot overflow.
const maxCount = math.MaxInt32

// Decode decodes a mesh from a pixel stream. Decoding is all or nothing:
// on error no mesh is returned.
func Decode(stream []pixel.Record) (*Mesh, error) {
	h, err := DecodeHeader(stream)
	if err != nil {
		return nil, err
	}

	r := pixel.NewReader(stream)
	r.Skip(HeaderRecords)

	m := &Mesh{}
	if m.Vertices, err = readVec3s(r, h.VertexCount, "vertices"); err != nil {
		return nil, err
	}
	if m.Normals, err = readVec3s(r, h.NormalCount, "normals"); err != nil {
		return nil, err
	}
	if m.UVs, err = readVec2s(r, h.UVCount); err != nil {
		return nil, err
	}
	if m.Indices, err = readIndices(r, h.IndexCount); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeHeader validates the stream size, magic and version and returns
// the declared section counts. It does not check that the sections fit.
func DecodeHeader(stream []pixel.Record) (Header, error) {
	if len(stream) <= MinimumDataSize {
		return Header{}, fmt.Errorf("%w: %d records, need more than %d", ErrInsufficientData, len(stream), MinimumDataSize)
	}

	magic := stream[0]
	if math.Float32bits(magic.R) != math.Float32bits(MagicVOY) ||
		math.Float32bits(magic.G) != math.Float32bits(MagicAGE) {
		return Header{}, fmt.Errorf("%w: got (%v, %v)", ErrInvalidMagic, magic.R, magic.G)
	}

	version := stream[VersionOffset/pixel.ChannelsPerRecord].Channel(VersionOffset % pixel.ChannelsPerRecord)
	if !(version <= MaxSupportedVersion) {
		return Header{}, fmt.Errorf("%w: %v (max %d)", ErrUnsupportedVersion, version, MaxSupportedVersion)
	}

	counts := stream[CountsRecord]
	return Header{
		Version:     version,
		VertexCount: toCount(counts.R),
		NormalCount: toCount(counts.G),
		UVCount:     toCount(counts.B),
		IndexCount:  toCount(counts.A),
	}, nil
}

// toCount truncates f toward zero, mapping negatives and NaN to 0.
func toCount(f float32) int {
	if !(f > 0) {
		return 0
	}
	if f >= maxCount {
		return maxCount
	}
	return int(f)
}

func need(r *pixel.Reader, n int, section string) error {
	if n > r.Remaining() {
		return fmt.Errorf("%w: %s need %d records at record %d, %d remain",
			ErrTruncatedStream, section, n, r.Pos(), r.Remaining())
	}
	return nil
}

func readVec3s(r *pixel.Reader, n int, section string) ([]geom.Vec3, error) {
	if err := need(r, n, section); err != nil {
		return nil, err
	}
	out := make([]geom.Vec3, n)
	for i := range out {
		rec := r.Next()
		out[i] = geom.Vec3{X: rec.R, Y: rec.G, Z: rec.B}
	}
	return out, nil
}

func readVec2s(r *pixel.Reader, n int) ([]geom.Vec2, error) {
	if err := need(r, n, "uvs"); err != nil {
		return nil, err
	}
	out := make([]geom.Vec2, n)
	for i := range out {
		rec := r.Next()
		out[i] = geom.Vec2{X: rec.R, Y: rec.G}
	}
	return out, nil
}

func readIndices(r *pixel.Reader, n int) ([]int32, error) {
	if err := need(r, indexRecords(n), "indices"); err != nil {
		return nil, err
	}
	out := make([]int32, n)
	aligned := n / IndicesPerRecord * IndicesPerRecord

	i := 0
	for ; i < aligned; i += IndicesPerRecord {
		rec := r.Next()
		out[i+0] = int32(rec.R)
		out[i+1] = int32(rec.G)
		out[i+2] = int32(rec.B)
		out[i+3] = int32(rec.A)
	}

	if rem := n - aligned; rem > 0 {
		rec := r.Next()
		for c := 0; c < rem; c++ {
			out[i+c] = int32(rec.Channel(c))
		}
	}
	return out, nil
}
