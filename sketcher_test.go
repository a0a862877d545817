// sketcher_test.go - test suite for the per-file Sketcher driver

package jam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSketcherNonSingletonOneSketchPerFile(t *testing.T) {
	sk, err := NewSketcher(SketcherOpts{FileName: "f.fa", KmerSize: 4})
	require.NoError(t, err)

	require.NoError(t, sk.Process(Record{ID: []byte("r1"), Seq: []byte("ACGTACGT")}))
	require.NoError(t, sk.Process(Record{ID: []byte("r2"), Seq: []byte("TTTTGGGG")}))

	sig := sk.Finish()
	require.Len(t, sig.Sketches, 1)
	require.Equal(t, "f.fa", sig.Sketches[0].Name)
	require.Greater(t, sig.Sketches[0].NumKmers, 0)
}

func TestSketcherSingletonOneSketchPerRecord(t *testing.T) {
	sk, err := NewSketcher(SketcherOpts{FileName: "f.fa", KmerSize: 4, Singleton: true})
	require.NoError(t, err)

	require.NoError(t, sk.Process(Record{ID: []byte("r1"), Seq: []byte("ACGTACGT")}))
	require.NoError(t, sk.Process(Record{ID: []byte("r2"), Seq: []byte("TTTTGGGG")}))

	sig := sk.Finish()
	require.Len(t, sig.Sketches, 2)
	require.Equal(t, "r1", sig.Sketches[0].Name)
	require.Equal(t, "r2", sig.Sketches[1].Name)
}

func TestSketcherCanonicalityAcrossStrands(t *testing.T) {
	mk := func(seq string) *Signature {
		sk, err := NewSketcher(SketcherOpts{FileName: "f", KmerSize: 4})
		require.NoError(t, err)
		require.NoError(t, sk.Process(Record{ID: []byte("r"), Seq: []byte(seq)}))
		return sk.Finish()
	}

	fwd := mk("ACGTACGTACGT")
	rc := mk(string(ReverseComplement(NormalizeSequence([]byte("ACGTACGTACGT")))))

	require.Equal(t, fwd.Sketches[0].SortedHashes(), rc.Sketches[0].SortedHashes())
}

func TestSketcherRejectsZeroKmerSize(t *testing.T) {
	_, err := NewSketcher(SketcherOpts{FileName: "f", KmerSize: 0})
	require.ErrorIs(t, err, ErrBadInput)
}

func TestSketcherEmptyRecordIsNoop(t *testing.T) {
	sk, err := NewSketcher(SketcherOpts{FileName: "f", KmerSize: 21})
	require.NoError(t, err)
	require.NoError(t, sk.Process(Record{ID: []byte("r"), Seq: nil}))

	sig := sk.Finish()
	require.Len(t, sig.Sketches, 1)
	require.Equal(t, 0, sig.Sketches[0].NumKmers)
}
