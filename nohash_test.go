// nohash_test.go - test suite for the identity hasher

package jam

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoRehashHasherWriteUint64(t *testing.T) {
	var h NoRehashHasher
	h.WriteUint64(0xDEADBEEF)
	require.Equal(t, uint64(0xDEADBEEF), h.Sum64())
}

func TestNoRehashHasherWriteBytes(t *testing.T) {
	var h NoRehashHasher
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], 0x0102030405060708)
	n, err := h.Write(b[:])
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, uint64(0x0102030405060708), h.Sum64())
}

func TestNoRehashHasherRejectsOtherWidths(t *testing.T) {
	var h NoRehashHasher
	require.Panics(t, func() { h.Write([]byte{1, 2, 3}) })
}

func TestNoRehashHasherSize(t *testing.T) {
	var h NoRehashHasher
	require.Equal(t, 8, h.Size())
	require.Equal(t, 8, h.BlockSize())
}
