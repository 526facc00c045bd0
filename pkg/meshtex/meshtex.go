// Package meshtex decodes triangle meshes that have been packed, one value
// per channel, into the pixels of a four-channel float image.
//
// Stream layout, in records of four floats:
//
//	record 0       R,G = magic "VOY", "AGE" as float values
//	record 1       R   = format version
//	record 2       R,G,B,A = vertex, normal, uv and index counts
//	records 3..15  reserved
//	vertices       one record each, R,G,B = x,y,z
//	normals        one record each, R,G,B = x,y,z
//	uvs            one record each, R,G = u,v
//	indices        four per record in R,G,B,A order; a final partial
//	               group fills R, then G, then B
package meshtex

import (
	"errors"

	"github.com/Faultbox/kensetsu/pkg/geom"
)

// Layout constants.
const (
	HeaderFloats     = 64
	HeaderRecords    = HeaderFloats / 4
	VersionOffset    = 4 // float offset of the version value
	CountsRecord     = 2
	IndicesPerRecord = 4

	// MinimumDataSize is the largest stream length, in records, that is
	// always rejected: a header plus the three mandatory sections.
	MinimumDataSize = HeaderRecords + 3
)

// Format versions.
const (
	CurrentVersion      = 2
	MaxSupportedVersion = 2
)

// Magic values are the integers 0x00564F59 ("VOY") and 0x00454741 ("AGE")
// converted to float32. Both are exactly representable.
const (
	MagicVOY float32 = 0x00564F59
	MagicAGE float32 = 0x00454741
)

// Decode errors.
var (
	ErrInsufficientData   = errors.New("insufficient data for an encoded mesh")
	ErrInvalidMagic       = errors.New("invalid mesh magic: not an encoded model")
	ErrUnsupportedVersion = errors.New("unsupported mesh format version")
	ErrTruncatedStream    = errors.New("truncated mesh stream")
)

// Mesh is a decoded triangle mesh.
type Mesh struct {
	Vertices []geom.Vec3
	Normals  []geom.Vec3
	UVs      []geom.Vec2
	Indices  []int32
}

// Header is the decoded fixed-size stream header.
type Header struct {
	Version     float32
	VertexCount int
	NormalCount int
	UVCount     int
	IndexCount  int
}

// IndexRecords returns the number of records holding the indices.
func (h Header) IndexRecords() int {
	return indexRecords(h.IndexCount)
}

// GeometryRecords returns the number of records following the header.
func (h Header) GeometryRecords() int {
	return h.VertexCount + h.NormalCount + h.UVCount + h.IndexRecords()
}

// TriangleCount returns the number of whole triangles described by the indices.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() geom.Bounds {
	return geom.BoundsOf(m.Vertices)
}

// indexRecords returns ceil(n/IndicesPerRecord) without overflowing for
// counts near the int maximum.
func indexRecords(n int) int {
	records := n / IndicesPerRecord
	if n%IndicesPerRecord != 0 {
		records++
	}
	return records
}
