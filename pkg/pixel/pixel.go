// Package pixel exposes four-channel float pixel data as a forward-only
// stream of records, and converts raw payloads into such streams.
package pixel

import "fmt"

// ChannelsPerRecord is the number of float channels in one record.
const ChannelsPerRecord = 4

// Record is one RGBA float pixel.
type Record struct {
	R, G, B, A float32
}

// Channel returns channel i (0=R, 1=G, 2=B, 3=A).
func (r Record) Channel(i int) float32 {
	switch i {
	case 0:
		return r.R
	case 1:
		return r.G
	case 2:
		return r.B
	case 3:
		return r.A
	}
	panic(fmt.Sprintf("pixel: channel %d out of range", i))
}

// Reader reads records sequentially from an in-memory stream.
// Reading past the end panics; callers check Remaining first.
type Reader struct {
	records []Record
	pos     int
}

// NewReader returns a Reader positioned at the first record.
func NewReader(records []Record) *Reader {
	return &Reader{records: records}
}

// Next returns the record at the cursor and advances.
func (r *Reader) Next() Record {
	rec := r.Peek()
	r.pos++
	return rec
}

// Peek returns the record at the cursor without advancing.
func (r *Reader) Peek() Record {
	if r.pos >= len(r.records) {
		panic(fmt.Sprintf("pixel: read at record %d past end of stream (%d records)", r.pos, len(r.records)))
	}
	return r.records[r.pos]
}

// Skip advances the cursor by n records.
func (r *Reader) Skip(n int) {
	if n < 0 || n > r.Remaining() {
		panic(fmt.Sprintf("pixel: skip %d from record %d exceeds stream (%d records)", n, r.pos, len(r.records)))
	}
	r.pos += n
}

// Pos returns the cursor position in records.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total number of records in the stream.
func (r *Reader) Len() int {
	return len(r.records)
}

// Remaining returns the number of unread records.
func (r *Reader) Remaining() int {
	return len(r.records) - r.pos
}
