// stats_test.go - test suite for the per-k-mer Stats side channel

package jam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStatsSizeClass(t *testing.T) {
	require.Equal(t, uint8(0), NewStats(1999, 0).SizeClass)
	require.Equal(t, uint8(1), NewStats(2000, 0).SizeClass)
	require.Equal(t, uint8(255), NewStats(2000*300, 0).SizeClass)
}

func TestNewStatsGCClass(t *testing.T) {
	// GCClass = clamp(100*gc/size, 0, 100).
	require.Equal(t, uint8(50), NewStats(100, 50).GCClass)
	require.Equal(t, uint8(0), NewStats(0, 0).GCClass)
	require.Equal(t, uint8(100), NewStats(10, 10).GCClass)
}

func TestStatsCompareSizeClass(t *testing.T) {
	big := Stats{SizeClass: 5, GCClass: 50}
	small := Stats{SizeClass: 2, GCClass: 50}

	require.True(t, big.Compare(small, nil))
	require.False(t, small.Compare(big, nil))
}

func TestStatsCompareGCBounds(t *testing.T) {
	self := Stats{SizeClass: 5, GCClass: 50}
	within := Stats{SizeClass: 1, GCClass: 55}
	outside := Stats{SizeClass: 1, GCClass: 70}

	bounds := &GCBounds{Lo: 5, Hi: 10}
	require.True(t, self.Compare(within, bounds))
	require.False(t, self.Compare(outside, bounds))
}
