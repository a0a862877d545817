// sketch.go - in-memory Sketch and Signature aggregates

package jam

import "sort"

// Sketch is the bounded set of retained hashes for one file (or, in
// singleton mode, one record).
type Sketch struct {
	Name     string
	Hashes   map[uint64]*Stats
	NumKmers int
	KmerSize uint8
}

// SortedHashes returns the retained hashes in ascending order, required
// for sourmash parity and for the on-disk index's duplicate-sorted
// posting semantics.
func (s *Sketch) SortedHashes() []uint64 {
	out := make([]uint64, 0, len(s.Hashes))
	for h := range s.Hashes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SourmashMinHash is the projection of a Sketch into sourmash's
// KmerMinHash shape: ascending mins plus the header fields needed to
// round-trip.
type SourmashMinHash struct {
	KSize   uint8
	Num     uint32
	MaxHash uint64
	Mins    []uint64
}

// IntoSourmash produces the sourmash-compatible projection of s.
func (s *Sketch) IntoSourmash(maxHash uint64) SourmashMinHash {
	return SourmashMinHash{
		KSize:   s.KmerSize,
		Num:     uint32(len(s.Hashes)),
		MaxHash: maxHash,
		Mins:    s.SortedHashes(),
	}
}

// ShortSketchInfo is the index-resident per-sketch header.
type ShortSketchInfo struct {
	FileName  string
	NumHashes uint64
	KmerSize  uint8
	HasFscale bool
	Fscale    uint64
}

// Signature is one file's sketching output: its sketches plus the
// parameters they were built with.
type Signature struct {
	FileName  string
	Sketches  []*Sketch
	Algorithm Algorithm
	KmerSize  uint8
	MaxHash   uint64
}

// Collapse merges all of a signature's sketches into one: union of
// hashes, sum of NumKmers, named after the file.
// Duplicate hashes across sketches keep whichever Stats pointer is
// encountered last, mirroring SketchHelper's own dedup behavior.
func (sig *Signature) Collapse() *Sketch {
	merged := &Sketch{
		Name:     sig.FileName,
		Hashes:   make(map[uint64]*Stats),
		KmerSize: sig.KmerSize,
	}
	for _, sk := range sig.Sketches {
		for h, st := range sk.Hashes {
			merged.Hashes[h] = st
		}
		merged.NumKmers += sk.NumKmers
	}
	return merged
}
