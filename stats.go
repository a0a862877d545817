// stats.go - optional per-k-mer side channel (size/GC class)

package jam

// Stats is a compact, two-field record attached to every hash emitted by
// a record: the record's length class and GC-content class. It is a
// record-granularity annotation copied onto each retained hash.
type Stats struct {
	SizeClass uint8
	GCClass   uint8
}

// NewStats derives a Stats value from a full record sequence. seqLen is
// the sequence length in bases; gcCount is the number of G/C bases in it.
func NewStats(seqLen, gcCount int) Stats {
	sc := seqLen / 2000
	if sc > 255 {
		sc = 255
	}

	var gc uint8
	if seqLen > 0 {
		// round-towards-zero (100*gc)/size, clamped to [0,100].
		v := (100 * gcCount) / seqLen
		if v > 100 {
			v = 100
		}
		if v < 0 {
			v = 0
		}
		gc = uint8(v)
	}

	return Stats{SizeClass: uint8(sc), GCClass: gc}
}

// GCBounds is the (lo, hi) tolerance window used by Compare.
type GCBounds struct {
	Lo, Hi uint8
}

// Compare implements an asymmetric subset predicate: true iff self is
// at least as "big" as other, and (when bounds is non-nil) other's GC
// class falls within [self.GCClass-lo, self.GCClass+hi]. This is not
// symmetric -- Compare is a filter pushdown test ("would self admit
// other"), not an equivalence.
func (s Stats) Compare(other Stats, bounds *GCBounds) bool {
	if s.SizeClass < other.SizeClass {
		return false
	}
	if bounds == nil {
		return true
	}

	lo := int(s.GCClass) - int(bounds.Lo)
	hi := int(s.GCClass) + int(bounds.Hi)
	og := int(other.GCClass)
	return og >= lo && og <= hi
}
