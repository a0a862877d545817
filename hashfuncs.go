// hashfuncs.go - hash function dispatch for k-mer hashing

package jam

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Algorithm names the hash family requested by a caller. Default picks
// AHash for k <= 31 and xxh3 for k > 31.
type Algorithm int

const (
	AlgoDefault Algorithm = iota
	AlgoAHash
	AlgoXXHash
	AlgoMurmur3
)

func (a Algorithm) String() string {
	switch a {
	case AlgoAHash:
		return "AHash"
	case AlgoXXHash:
		return "Xxhash"
	case AlgoMurmur3:
		return "Murmur3"
	default:
		return "Default"
	}
}

// ParseAlgorithm maps the CLI's --algorithm spelling to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "default":
		return AlgoDefault, nil
	case "ahash":
		return AlgoAHash, nil
	case "xxhash":
		return AlgoXXHash, nil
	case "murmur3":
		return AlgoMurmur3, nil
	default:
		return AlgoDefault, fmt.Errorf("%w: unknown algorithm %q", ErrUnsupportedHash, s)
	}
}

// SmallHashFunc hashes a 2-bit-packed k-mer (k <= 31) held in a uint64.
type SmallHashFunc func(kmer uint64) uint64

// LargeHashFunc hashes a canonical k-mer's raw bytes (k > 31).
type LargeHashFunc func(kmer []byte) uint64

const (
	ahashK1 = 0xE12119C4114F22A7
	ahashM  = 6364136223846793005
	ahashK2 = 0x60E5
)

// AHash is the custom small-hash: a single 128-bit multiply-xor-rotate
// over a uint64 k-mer. It is only valid for k <= 31 -- the packed 2-bit
// representation of a larger k-mer would not fit in 64 bits.
func AHash(kmer uint64) uint64 {
	hi, lo := bits.Mul64(kmer^ahashK1, ahashM)
	v := lo ^ hi
	return bits.RotateLeft64(v, ahashK2&63)
}

// XXH3Bytes hashes a canonical k-mer's raw bytes with xxh3-64. Valid for
// k > 31 only.
func XXH3Bytes(kmer []byte) uint64 {
	return xxh3.Hash(kmer)
}

// murmur3Seed is the seed sourmash itself always uses for murmur3-x64-128.
const murmur3Seed = 42

// Murmur3Bytes hashes a canonical k-mer's raw bytes with murmur3-x64-128,
// keeping only the low 64 bits. Valid for k > 31 only.
func Murmur3Bytes(kmer []byte) uint64 {
	lo, _ := murmur3.Sum128WithSeed(kmer, murmur3Seed)
	return lo
}

// Murmur3Uint64 hashes the big-endian encoding of a uint64 with
// murmur3-x64-128, keeping the low 64 bits.
func Murmur3Uint64(v uint64) uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	lo, _ := murmur3.Sum128WithSeed(b[:], murmur3Seed)
	return lo
}

// SmallHasher resolves the uint64-keyed hash function to use for k <= 31.
func SmallHasher(algo Algorithm, k int) (SmallHashFunc, error) {
	if k > 31 {
		return nil, fmt.Errorf("%w: k=%d requires a byte-oriented hash", ErrUnsupportedHash, k)
	}
	switch algo {
	case AlgoDefault, AlgoAHash:
		return AHash, nil
	case AlgoMurmur3:
		return Murmur3Uint64, nil
	case AlgoXXHash:
		// xxh3 is byte-oriented only; there is no uint64-input variant
		return nil, fmt.Errorf("%w: xxhash needs k>31", ErrUnsupportedHash)
	default:
		return nil, fmt.Errorf("%w: algorithm %v", ErrUnsupportedHash, algo)
	}
}

// LargeHasher resolves the byte-slice-keyed hash function to use for
// k > 31.
func LargeHasher(algo Algorithm, k int) (LargeHashFunc, error) {
	if k <= 31 {
		return nil, fmt.Errorf("%w: k=%d must use the packed small-hash path", ErrUnsupportedHash, k)
	}
	switch algo {
	case AlgoDefault, AlgoXXHash:
		return XXH3Bytes, nil
	case AlgoMurmur3:
		return Murmur3Bytes, nil
	case AlgoAHash:
		return nil, fmt.Errorf("%w: AHash only supports k<=31", ErrUnsupportedHash)
	default:
		return nil, fmt.Errorf("%w: algorithm %v", ErrUnsupportedHash, algo)
	}
}
