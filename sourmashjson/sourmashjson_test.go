// sourmashjson_test.go - test suite for sourmash-compatible JSON I/O

package sourmashjson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencoff/jam"
)

func mkTestSig(name string, ksize uint8, maxHash uint64, algo jam.Algorithm, hashes ...uint64) *jam.Signature {
	m := make(map[uint64]*jam.Stats, len(hashes))
	for _, h := range hashes {
		m[h] = nil
	}
	return &jam.Signature{
		FileName:  name,
		Algorithm: algo,
		KmerSize:  ksize,
		MaxHash:   maxHash,
		Sketches: []*jam.Sketch{{
			Name:     name,
			Hashes:   m,
			NumKmers: len(hashes),
			KmerSize: ksize,
		}},
	}
}

// Writing then reading a signature must yield the same
// (k, max_hash, sorted mins).
func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sig.json")

	sig := mkTestSig("genome.fa", 21, 184467440737095, jam.AlgoXXHash, 5, 1, 3, 2, 4)

	w := NewWriter()
	require.NoError(t, w.Write(sig))
	require.NoError(t, w.WriteFile(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)

	sk := got[0].Collapse()
	require.Equal(t, uint8(21), sk.KmerSize)
	require.Equal(t, got[0].MaxHash, sig.MaxHash)
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, sk.SortedHashes())
}

func TestAlgorithmTagRoundTrip(t *testing.T) {
	cases := []jam.Algorithm{jam.AlgoAHash, jam.AlgoXXHash, jam.AlgoMurmur3}
	for _, algo := range cases {
		tag := hashFunctionTag(algo, 21)
		require.Equal(t, algo, parseHashFunctionTag(tag))
	}
}

// TestDefaultAlgorithmTagResolvesByKmerSize covers the bug where
// AlgoDefault fell through to the murmur64 tag regardless of k-mer
// size: jam's own dispatch picks AHash for k<=31 and xxh3 for k>31,
// and the sourmash tag must reflect that.
func TestDefaultAlgorithmTagResolvesByKmerSize(t *testing.T) {
	require.Equal(t, "ahash", hashFunctionTag(jam.AlgoDefault, 21))
	require.Equal(t, "xxh3", hashFunctionTag(jam.AlgoDefault, 33))
}

func TestSignatureDefaultAlgorithmTag(t *testing.T) {
	sig := mkTestSig("genome.fa", 21, 0, jam.AlgoDefault, 1, 2, 3)
	doc := Signature(sig)
	require.Equal(t, "ahash", doc.HashFunction)

	sig = mkTestSig("genome.fa", 33, 0, jam.AlgoDefault, 1, 2, 3)
	doc = Signature(sig)
	require.Equal(t, "xxh3", doc.HashFunction)
}

func TestLoadAcceptsBareSignatureObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sig.json")

	content := `{"hash_function":"murmur64","filename":"x.fa","signatures":[{"ksize":21,"num":3,"max_hash":0,"mins":[1,2,3]}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "x.fa", got[0].FileName)
}
