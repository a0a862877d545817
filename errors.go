// errors.go - public errors exposed by jam

package jam

import "errors"

var (
	// ErrUnsupportedHash is returned when a hash algorithm cannot serve
	// the requested k-mer size (e.g. a byte-oriented hash requested for
	// k <= 31, or vice versa).
	ErrUnsupportedHash = errors.New("jam: hash algorithm unsupported for this k-mer size")

	// ErrMixedHashWidth is returned when a single sketcher is fed both
	// small (packed uint64) and large (byte-slice) k-mers.
	ErrMixedHashWidth = errors.New("jam: cannot mix small and large k-mer hashing in one sketcher")

	// ErrBadInput is returned by NewSketcher for a zero k-mer size.
	// Malformed records, empty input and unrecognized file extensions
	// are reported by jam/fastaio with errors that do not wrap
	// ErrBadInput.
	ErrBadInput = errors.New("jam: bad input")

	// ErrKSizeMismatch is returned when comparing or collapsing
	// signatures that disagree on k-mer size.
	ErrKSizeMismatch = errors.New("jam: k-mer size mismatch")

	// ErrWriterClosed is returned when a sketch is sent to a pipeline
	// whose writer goroutine has already exited.
	ErrWriterClosed = errors.New("jam: writer channel closed")
)
