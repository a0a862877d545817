// codec.go - compact on-disk encoding for hash->sketch-ID posting lists

package index

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Threshold is the cardinality at or below which a posting list is
// stored as raw little-endian uint32s instead of a roaring bitmap.
// Below this size a roaring bitmap's own framing overhead exceeds the
// cost of the raw array, so the codec trades a fixed header for tiny
// posting lists -- the overwhelmingly common case for a hash that
// appears in only one or two signatures.
const Threshold = 7

// EncodePostings serializes a set of SketchIds, choosing the raw or
// roaring representation by cardinality.
func EncodePostings(ids []uint32) ([]byte, error) {
	if len(ids) <= Threshold {
		buf := make([]byte, len(ids)*4)
		for i, id := range ids {
			binary.LittleEndian.PutUint32(buf[i*4:], id)
		}
		return buf, nil
	}

	rb := roaring.New()
	rb.AddMany(ids)
	return rb.ToBytes()
}

// DecodePostings is the inverse of EncodePostings. Discrimination on
// read is by byte length: len <= Threshold*4 is always raw, since
// EncodePostings only emits roaring for more than Threshold ids, and
// such a serialization is always longer than Threshold*4 bytes.
func DecodePostings(b []byte) ([]uint32, error) {
	if len(b) <= Threshold*4 {
		if len(b)%4 != 0 {
			return nil, fmt.Errorf("index: malformed raw posting list (%d bytes)", len(b))
		}
		n := len(b) / 4
		ids := make([]uint32, n)
		for i := 0; i < n; i++ {
			ids[i] = binary.LittleEndian.Uint32(b[i*4:])
		}
		return ids, nil
	}

	rb := roaring.New()
	if _, err := rb.FromBuffer(b); err != nil {
		return nil, fmt.Errorf("index: corrupt roaring posting list: %w", err)
	}
	return rb.ToArray(), nil
}
