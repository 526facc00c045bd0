package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// RecordSize is the size in bytes of one record in a raw payload.
const RecordSize = ChannelsPerRecord * 4

// ErrRawLength is returned when a raw payload is not a whole number of records.
var ErrRawLength = errors.New("raw payload length is not a multiple of 16 bytes")

// DecodeRaw decodes a headerless little-endian float32 RGBA payload.
func DecodeRaw(data []byte) ([]Record, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrRawLength, len(data))
	}

	records := make([]Record, len(data)/RecordSize)
	for i := range records {
		off := i * RecordSize
		records[i] = Record{
			R: math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			G: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
			B: math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
			A: math.Float32frombits(binary.LittleEndian.Uint32(data[off+12:])),
		}
	}
	return records, nil
}

// EncodeRaw encodes records as a headerless little-endian float32 RGBA payload.
func EncodeRaw(records []Record) []byte {
	buf := make([]byte, len(records)*RecordSize)
	for i, rec := range records {
		off := i * RecordSize
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(rec.R))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(rec.G))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(rec.B))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(rec.A))
	}
	return buf
}

// WriteRaw writes records to w in the raw payload layout.
func WriteRaw(w io.Writer, records []Record) error {
	_, err := w.Write(EncodeRaw(records))
	return err
}
