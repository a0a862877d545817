// compare_test.go - test suite for parallel containment queries

package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencoff/jam"
)

func buildTestIndex(t *testing.T) *Reader {
	t.Helper()
	dir := t.TempDir()

	w, err := NewWriter(dir, 21, false, 0)
	require.NoError(t, err)
	require.NoError(t, w.Write(mkSig("super.fa", 21, 1, 2, 3, 4, 5)))
	require.NoError(t, w.Write(mkSig("other.fa", 21, 100, 200, 300)))
	require.NoError(t, w.Close())

	rd, err := Open(dir)
	require.NoError(t, err)
	return rd
}

func mkQuery(name string, hashes ...uint64) *jam.Sketch {
	m := make(map[uint64]*jam.Stats, len(hashes))
	for _, h := range hashes {
		m[h] = nil
	}
	return &jam.Sketch{Name: name, Hashes: m, NumKmers: len(hashes), KmerSize: 21}
}

// TestComparatorContainmentOfSubset checks that a query which is a
// strict subset of an indexed sketch is reported at 100% containment.
func TestComparatorContainmentOfSubset(t *testing.T) {
	rd := buildTestIndex(t)
	defer rd.Close()

	query := mkQuery("q", 1, 2, 3)
	cmp := NewComparator(rd, 0.0)

	results, err := cmp.Compare(2, []*jam.Sketch{query})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "super.fa", results[0].ToName)
	require.Equal(t, uint64(3), results[0].NumCommon)
	require.InDelta(t, 100.0, results[0].Containment, 0.001)
}

func TestComparatorCutoffExcludesLowContainment(t *testing.T) {
	rd := buildTestIndex(t)
	defer rd.Close()

	query := mkQuery("q", 1, 999)
	cmp := NewComparator(rd, 60.0)

	results, err := cmp.Compare(1, []*jam.Sketch{query})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestComparatorNoMatchReturnsEmpty(t *testing.T) {
	rd := buildTestIndex(t)
	defer rd.Close()

	query := mkQuery("q", 123456789)
	cmp := NewComparator(rd, 0.0)

	results, err := cmp.Compare(1, []*jam.Sketch{query})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestComparatorMultipleQueriesConcurrent(t *testing.T) {
	rd := buildTestIndex(t)
	defer rd.Close()

	queries := []*jam.Sketch{
		mkQuery("q1", 1, 2, 3),
		mkQuery("q2", 100, 200, 300),
	}
	cmp := NewComparator(rd, 0.0)

	results, err := cmp.Compare(4, queries)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

// Querying an index built at k=21 with a k=31 query sketch must fail
// with ErrKSizeMismatch instead of returning a meaningless result.
func TestComparatorRejectsKSizeMismatch(t *testing.T) {
	rd := buildTestIndex(t)
	defer rd.Close()

	query := mkQuery("q", 1, 2, 3)
	query.KmerSize = 31
	cmp := NewComparator(rd, 0.0)

	_, err := cmp.Compare(1, []*jam.Sketch{query})
	require.ErrorIs(t, err, jam.ErrKSizeMismatch)
}
