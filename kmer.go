// kmer.go - canonical k-mer extraction and 2-bit packing

package jam

// base2bit maps an uppercase nucleotide byte to its 2-bit code, or -1 if
// the byte is not one of A, C, G, T.
var base2bit [256]int8

// Under this encoding the 2-bit code of a base's complement (A<->T,
// C<->G) is 3-x, which SmallKmerIter uses directly.
func init() {
	for i := range base2bit {
		base2bit[i] = -1
	}
	base2bit['A'] = 0
	base2bit['C'] = 1
	base2bit['G'] = 2
	base2bit['T'] = 3
}

var complementByte [256]byte

func init() {
	for i := range complementByte {
		complementByte[i] = 'N'
	}
	complementByte['A'] = 'T'
	complementByte['T'] = 'A'
	complementByte['C'] = 'G'
	complementByte['G'] = 'C'
}

// NormalizeSequence upper-cases seq in place and returns it. Bytes
// outside A/C/G/T/N are mapped to N: jam's policy on ambiguous bases is
// to strip (map to N, which then breaks k-mer windows rather than
// aborting the whole record).
func NormalizeSequence(seq []byte) []byte {
	for i, c := range seq {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		switch c {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			c = 'N'
		}
		seq[i] = c
	}
	return seq
}

// ReverseComplement returns the reverse complement of an already
// normalized (uppercase ACGTN) sequence.
func ReverseComplement(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i, c := range seq {
		out[n-1-i] = complementByte[c]
	}
	return out
}

// GCCount counts G and C bases in an already-normalized sequence.
func GCCount(seq []byte) int {
	n := 0
	for _, c := range seq {
		if c == 'G' || c == 'C' {
			n++
		}
	}
	return n
}

// SmallKmerIter yields the canonical 2-bit-packed representation of each
// valid (no N) length-k window of seq, k <= 31. Packed values fit in a
// uint64 since 2*31 = 62 bits.
type SmallKmerIter struct {
	seq []byte
	k   int
	pos int

	mask uint64
}

// NewSmallKmerIter creates an iterator over seq (already normalized)
// with k-mer size k (1 <= k <= 31).
func NewSmallKmerIter(seq []byte, k int) *SmallKmerIter {
	return &SmallKmerIter{
		seq:  seq,
		k:    k,
		mask: (uint64(1) << uint(2*k)) - 1,
	}
}

// Next returns the next canonical packed k-mer and true, or (0, false)
// when the sequence is exhausted. Windows containing any non-ACGT base
// are skipped.
func (it *SmallKmerIter) Next() (uint64, bool) {
	for it.pos+it.k <= len(it.seq) {
		window := it.seq[it.pos : it.pos+it.k]
		it.pos++

		var fwd, rc uint64
		ok := true
		for i := 0; i < it.k; i++ {
			code := base2bit[window[i]]
			if code < 0 {
				ok = false
				break
			}
			fwd = (fwd << 2) | uint64(code)
		}
		if !ok {
			continue
		}
		// build the reverse-complement packed value by walking the
		// window backwards and complementing (3-code).
		for i := it.k - 1; i >= 0; i-- {
			code := base2bit[window[i]]
			rc = (rc << 2) | uint64(3-code)
		}

		if rc < fwd {
			fwd = rc
		}
		return fwd & it.mask, true
	}
	return 0, false
}

// LargeKmerIter yields the canonical raw-byte representation of each
// valid length-k window of seq, k > 31.
type LargeKmerIter struct {
	seq []byte
	rc  []byte
	k   int
	pos int
}

// NewLargeKmerIter creates an iterator over seq (already normalized)
// with k-mer size k (k > 31). rc must be ReverseComplement(seq).
func NewLargeKmerIter(seq, rc []byte, k int) *LargeKmerIter {
	return &LargeKmerIter{seq: seq, rc: rc, k: k}
}

// Next returns the next canonical k-mer window (a sub-slice owned by the
// iterator -- callers that retain it across calls must copy) and true,
// or (nil, false) when exhausted. Windows containing any non-ACGT base
// are skipped.
func (it *LargeKmerIter) Next() ([]byte, bool) {
	n := len(it.seq)
	for it.pos+it.k <= n {
		fwd := it.seq[it.pos : it.pos+it.k]
		// the reverse-complement window at forward offset `pos` sits at
		// mirrored offset (n-k-pos) in the precomputed rc sequence.
		rcOff := n - it.k - it.pos
		rcWindow := it.rc[rcOff : rcOff+it.k]
		it.pos++

		if containsN(fwd) {
			continue
		}

		if bytesLess(rcWindow, fwd) {
			return rcWindow, true
		}
		return fwd, true
	}
	return nil, false
}

func containsN(b []byte) bool {
	for _, c := range b {
		if c == 'N' {
			return true
		}
	}
	return false
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
