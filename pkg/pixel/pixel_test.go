package pixel

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSequential(t *testing.T) {
	records := []Record{{R: 1}, {R: 2}, {R: 3}}
	r := NewReader(records)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, Record{R: 1}, r.Peek())
	assert.Equal(t, 0, r.Pos())

	assert.Equal(t, Record{R: 1}, r.Next())
	assert.Equal(t, Record{R: 2}, r.Next())
	assert.Equal(t, 2, r.Pos())
	assert.Equal(t, 1, r.Remaining())

	r.Skip(1)
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderPastEndPanics(t *testing.T) {
	r := NewReader([]Record{{}})
	r.Next()

	assert.Panics(t, func() { r.Next() })
	assert.Panics(t, func() { r.Peek() })
	assert.Panics(t, func() { r.Skip(1) })
}

func TestRecordChannel(t *testing.T) {
	rec := Record{R: 1, G: 2, B: 3, A: 4}
	for i, want := range []float32{1, 2, 3, 4} {
		assert.Equal(t, want, rec.Channel(i))
	}
	assert.Panics(t, func() { rec.Channel(4) })
}

func TestRawBitExact(t *testing.T) {
	nan := math.Float32frombits(0x7fc00123)
	records := []Record{
		{R: 1.5, G: -2, B: float32(math.Inf(1)), A: nan},
		{R: float32(0x00564F59), G: 0, B: -0, A: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRaw(&buf, records))
	assert.Equal(t, len(records)*RecordSize, buf.Len())

	got, err := DecodeRaw(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		for c := 0; c < ChannelsPerRecord; c++ {
			assert.Equal(t, math.Float32bits(records[i].Channel(c)), math.Float32bits(got[i].Channel(c)),
				"record %d channel %d", i, c)
		}
	}
}

func TestDecodeRawBadLength(t *testing.T) {
	_, err := DecodeRaw(make([]byte, 17))
	assert.ErrorIs(t, err, ErrRawLength)
}

func TestSniffAndDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		format  string
		wantErr error
	}{
		{"raw", EncodeRaw([]Record{{R: 1}}), FormatRaw, nil},
		{"empty raw", nil, FormatRaw, nil},
		{"exr without decoder", []byte{0x76, 0x2f, 0x31, 0x01, 2, 0, 0, 0}, FormatEXR, ErrNoDecoder},
		{"raw bad length", []byte{1, 2, 3}, FormatRaw, ErrRawLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.format, Sniff(tt.data))
			_, format, err := Decode(tt.data)
			assert.Equal(t, tt.format, format)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterDecoder(t *testing.T) {
	RegisterDecoder(FormatEXR, func(data []byte) ([]Record, error) {
		return []Record{{R: 42}}, nil
	})
	defer func() {
		decodersMu.Lock()
		delete(decoders, FormatEXR)
		decodersMu.Unlock()
	}()

	records, format, err := Decode([]byte{0x76, 0x2f, 0x31, 0x01})
	require.NoError(t, err)
	assert.Equal(t, FormatEXR, format)
	assert.Equal(t, []Record{{R: 42}}, records)
}
