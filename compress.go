// Optional compression for stored documents.
//
// The File provider can store the catalog as a single zstd frame instead of
// plain JSON. Reads detect the format by the zstd magic number, so a catalog
// can be switched between compressed and plain without a migration step:
// the next write simply stores it in the configured form.
package shelf

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder, both documented as safe for concurrent use.
// Construction is expensive, so they are allocated once.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// zstdMagic is the frame header every zstd stream starts with. A JSON
// document can never start with these bytes.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// compressed reports whether data is a zstd frame.
func compressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// decompress returns data unchanged unless it is a zstd frame.
func decompress(data []byte) ([]byte, error) {
	if !compressed(data) {
		return data, nil
	}
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrDecompress, err)
	}
	return out, nil
}
