package meshtex

import "github.com/Faultbox/kensetsu/pkg/pixel"

// Encode packs m into a pixel stream at CurrentVersion. The stream is
// zero-padded so that it is always longer than MinimumDataSize.
// Indices above 1<<24 do not survive the float32 channel exactly.
func Encode(m *Mesh) []pixel.Record {
	nIdx := len(m.Indices)
	size := HeaderRecords + len(m.Vertices) + len(m.Normals) + len(m.UVs) + indexRecords(nIdx)
	if size <= MinimumDataSize {
		size = MinimumDataSize + 1
	}

	stream := make([]pixel.Record, size)
	stream[0] = pixel.Record{R: MagicVOY, G: MagicAGE}
	stream[VersionOffset/pixel.ChannelsPerRecord].R = CurrentVersion
	stream[CountsRecord] = pixel.Record{
		R: float32(len(m.Vertices)),
		G: float32(len(m.Normals)),
		B: float32(len(m.UVs)),
		A: float32(nIdx),
	}

	cursor := HeaderRecords
	for _, v := range m.Vertices {
		stream[cursor] = pixel.Record{R: v.X, G: v.Y, B: v.Z}
		cursor++
	}
	for _, n := range m.Normals {
		stream[cursor] = pixel.Record{R: n.X, G: n.Y, B: n.Z}
		cursor++
	}
	for _, uv := range m.UVs {
		stream[cursor] = pixel.Record{R: uv.X, G: uv.Y}
		cursor++
	}

	var group [IndicesPerRecord]float32
	for i, idx := range m.Indices {
		group[i%IndicesPerRecord] = float32(idx)
		if i%IndicesPerRecord == IndicesPerRecord-1 || i == nIdx-1 {
			stream[cursor] = pixel.Record{R: group[0], G: group[1], B: group[2], A: group[3]}
			group = [IndicesPerRecord]float32{}
			cursor++
		}
	}
	return stream
}
