package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// Payload format names.
const (
	FormatRaw = "raw"
	FormatEXR = "exr"
)

// ErrNoDecoder is returned when a payload is recognised but no decoder is
// registered for its format.
var ErrNoDecoder = errors.New("no pixel decoder registered")

// DecodeFunc turns an encoded image payload into pixel records, row by row.
type DecodeFunc func(data []byte) ([]Record, error)

var signatures = []struct {
	name  string
	magic []byte
}{
	{FormatEXR, []byte{0x76, 0x2f, 0x31, 0x01}},
}

var (
	decodersMu sync.RWMutex
	decoders   = map[string]DecodeFunc{
		FormatRaw: DecodeRaw,
	}
)

// RegisterDecoder registers fn for the named payload format, replacing any
// previous decoder for that name.
func RegisterDecoder(name string, fn DecodeFunc) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[name] = fn
}

// Sniff returns the payload format name recognised from its signature.
// Payloads without a known signature are treated as raw.
func Sniff(data []byte) string {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.name
		}
	}
	return FormatRaw
}

// Decode sniffs the payload format and decodes it with the registered decoder.
// It returns the records and the format name.
func Decode(data []byte) ([]Record, string, error) {
	name := Sniff(data)

	decodersMu.RLock()
	fn, ok := decoders[name]
	decodersMu.RUnlock()
	if !ok {
		return nil, name, fmt.Errorf("%w: %s", ErrNoDecoder, name)
	}

	records, err := fn(data)
	if err != nil {
		return nil, name, fmt.Errorf("decoding %s payload: %w", name, err)
	}
	return records, name, nil
}
