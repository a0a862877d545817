// pairwise_test.go - test suite for in-memory pairwise containment

package jam

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func mkSketch(name string, numKmers int, hashes ...uint64) *Sketch {
	m := make(map[uint64]*Stats, len(hashes))
	for _, h := range hashes {
		m[h] = nil
	}
	return &Sketch{Name: name, Hashes: m, NumKmers: numKmers}
}

// A cross-signature compare at differing k must fail with
// ErrKSizeMismatch rather than silently emitting a meaningless
// containment number.
func TestComparePairRejectsKSizeMismatch(t *testing.T) {
	query := mkSketch("q", 3, 1, 2, 3)
	query.KmerSize = 21
	target := mkSketch("t", 3, 1, 2, 4)
	target.KmerSize = 31

	_, err := comparePair(query, target)
	require.ErrorIs(t, err, ErrKSizeMismatch)

	cmp := &Comparator{Cutoff: 0}
	_, err = cmp.Compare(query, []*Sketch{target})
	require.ErrorIs(t, err, ErrKSizeMismatch)
}

// A={1,2,3}, B={1,2,4}, both num_kmers=3, equal density ->
// num_common=2, num_kmers=3, containment ~= 66.666%.
func TestComparePairScenario(t *testing.T) {
	a := mkSketch("A", 3, 1, 2, 3)
	b := mkSketch("B", 3, 1, 2, 4)

	r, err := comparePair(a, b)
	require.NoError(t, err)
	require.Equal(t, uint64(2), r.NumCommon)
	require.Equal(t, uint64(3), r.NumKmers)
	require.InDelta(t, 66.666, r.Containment, 0.01)
}

func TestComparatorFiltersByCutoff(t *testing.T) {
	query := mkSketch("q", 3, 1, 2, 3)
	targets := []*Sketch{
		mkSketch("hit", 3, 1, 2, 4),
		mkSketch("miss", 3, 100, 200, 300),
	}

	cmp := &Comparator{Cutoff: 50.0}
	got, err := cmp.Compare(query, targets)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "hit", got[0].ToName)
}

func TestCompareResultStringSwapsOnReverse(t *testing.T) {
	r := CompareResult{FromName: "q", ToName: "t", NumCommon: 2, NumKmers: 3, Containment: 66.67, Reverse: true}
	require.Equal(t, "t\tq\t2\t3\t66.67", r.String())
}

func TestComparePairSubsetFullContainment(t *testing.T) {
	// a query fully contained in a larger target counts num_kmers from
	// the smaller side, so containment comes out at ~100%.
	query := mkSketch("Q", 2, 1, 2)
	target := mkSketch("T", 4, 1, 2, 3, 4)

	r, err := comparePair(query, target)
	require.NoError(t, err)
	require.True(t, r.Reverse)
	require.Equal(t, uint64(2), r.NumCommon)
	require.Equal(t, uint64(2), r.NumKmers)
	require.InDelta(t, 100.0, r.Containment, 0.001)
}

func TestComparePairDensityCorrection(t *testing.T) {
	// query was retained at a finer effective density than target
	// (NumKmers/len(Hashes) = 2 vs 1); the fraction correction scales
	// the raw smaller-side containment by 2.
	query := mkSketch("Q", 4, 1, 2)
	target := mkSketch("T", 4, 1, 2, 3, 4)

	r, err := comparePair(query, target)
	require.NoError(t, err)
	require.True(t, r.Reverse)
	require.Equal(t, uint64(2), r.NumCommon)
	require.Equal(t, uint64(2), r.NumKmers)

	largerFrac := 4.0 / 4.0  // target.NumKmers / len(target.Hashes)
	smallerFrac := 4.0 / 2.0 // query.NumKmers / len(query.Hashes)
	fraction := math.Max(largerFrac, smallerFrac) / math.Min(largerFrac, smallerFrac)
	want := (2.0 / 2.0) * fraction * 100
	require.InDelta(t, want, r.Containment, 0.001)
}
