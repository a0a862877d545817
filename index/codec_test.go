// codec_test.go - test suite for posting-list encode/decode round trip

package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPostingsRoundTrip checks decode(encode(S)) == S for posting sets
// of various sizes straddling the raw/roaring threshold.
func TestPostingsRoundTrip(t *testing.T) {
	cases := [][]uint32{
		{},
		{5},
		{1, 2, 3, 4, 5, 6, 7},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{10, 9999, 1 << 20, 1<<20 + 1, 3, 7},
	}

	for _, ids := range cases {
		enc, err := EncodePostings(ids)
		require.NoError(t, err)

		dec, err := DecodePostings(enc)
		require.NoError(t, err)
		require.ElementsMatch(t, ids, dec)
	}
}

func TestRawEncodingBelowThreshold(t *testing.T) {
	ids := []uint32{1, 2, 3}
	enc, err := EncodePostings(ids)
	require.NoError(t, err)
	require.Len(t, enc, len(ids)*4)
}

func TestRoaringEncodingAboveThreshold(t *testing.T) {
	ids := make([]uint32, Threshold+1)
	for i := range ids {
		ids[i] = uint32(i)
	}
	enc, err := EncodePostings(ids)
	require.NoError(t, err)

	dec, err := DecodePostings(enc)
	require.NoError(t, err)
	require.ElementsMatch(t, ids, dec)
}

func TestDecodeRejectsMalformedRaw(t *testing.T) {
	_, err := DecodePostings([]byte{1, 2, 3})
	require.Error(t, err)
}
