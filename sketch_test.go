// sketch_test.go - test suite for Sketch/Signature in-memory aggregates

package jam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSketchSortedHashes(t *testing.T) {
	sk := &Sketch{Hashes: map[uint64]*Stats{5: nil, 1: nil, 3: nil}}
	require.Equal(t, []uint64{1, 3, 5}, sk.SortedHashes())
}

func TestSketchIntoSourmash(t *testing.T) {
	sk := &Sketch{
		KmerSize: 21,
		Hashes:   map[uint64]*Stats{9: nil, 4: nil},
	}
	mh := sk.IntoSourmash(1000)
	require.Equal(t, uint8(21), mh.KSize)
	require.Equal(t, uint32(2), mh.Num)
	require.Equal(t, uint64(1000), mh.MaxHash)
	require.Equal(t, []uint64{4, 9}, mh.Mins)
}

func TestSignatureCollapse(t *testing.T) {
	sig := &Signature{
		FileName: "f.fa",
		KmerSize: 21,
		Sketches: []*Sketch{
			{Hashes: map[uint64]*Stats{1: nil, 2: nil}, NumKmers: 2},
			{Hashes: map[uint64]*Stats{2: nil, 3: nil}, NumKmers: 2},
		},
	}
	merged := sig.Collapse()
	require.Equal(t, "f.fa", merged.Name)
	require.Equal(t, 4, merged.NumKmers)
	require.ElementsMatch(t, []uint64{1, 2, 3}, merged.SortedHashes())
}
