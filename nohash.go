// nohash.go - identity hasher for maps keyed by already-hashed values

package jam

import "hash"

// noRehashSet is the map[uint64]*Stats retained-hash set used by
// SketchHelper -- named to make its "no rehash" intent explicit at the
// call site even though it is plain map syntax under the hood.
type noRehashSet = map[uint64]*Stats

// NoRehashHasher is a pass-through hash.Hash64: it exists so that code
// working with a generic hash.Hash64-keyed container does not re-hash a
// value that is already a well-distributed 64-bit hash.
//
// Go's built-in map type does not accept a pluggable hasher, so the
// map[uint64]*Stats used throughout
// this package (see SketchHelper.hashes) already gets the intended
// behavior for free -- a uint64 map key is never passed through a
// user-level hash function at all. NoRehashHasher exists for callers
// that need an explicit hash.Hash64, e.g. adapting a third-party
// container that insists on one.
type NoRehashHasher struct {
	v uint64
}

var _ hash.Hash64 = (*NoRehashHasher)(nil)

// Write accepts exactly 8 bytes (a little-endian uint64) and reinterprets
// them as the hash value. Any other width is a usage error.
func (h *NoRehashHasher) Write(b []byte) (int, error) {
	if len(b) != 8 {
		panic("NoRehashHasher: write width must be 8 bytes")
	}
	h.v = uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	return 8, nil
}

// WriteUint64 is the common-case fast path: set the hash directly.
func (h *NoRehashHasher) WriteUint64(v uint64) { h.v = v }

func (h *NoRehashHasher) Sum64() uint64 { return h.v }

func (h *NoRehashHasher) Sum(b []byte) []byte {
	var tmp [8]byte
	v := h.Sum64()
	for i := 0; i < 8; i++ {
		tmp[i] = byte(v)
		v >>= 8
	}
	return append(b, tmp[:]...)
}

func (h *NoRehashHasher) Reset()         { h.v = 0 }
func (h *NoRehashHasher) Size() int      { return 8 }
func (h *NoRehashHasher) BlockSize() int { return 8 }
