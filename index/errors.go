// errors.go - public errors exposed by index

package index

import "errors"

// ErrIndexInconsistent is returned when an index file fails one of its
// structural invariants at open: bad magic, a file too small to hold a
// header and trailer, bad header offsets, a trailer or per-record
// checksum mismatch, or signatures whose k-mer size or fscale differs
// from the header's.
var ErrIndexInconsistent = errors.New("index: inconsistent or corrupt index")
