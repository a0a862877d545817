// sketcher.go - per-file driver: k-mer extraction + canonicalization

package jam

// Record is a single FASTA/FASTQ entry: an identifier and a sequence.
// jam never parses the file format itself -- see jam/fastaio -- it only
// consumes this shape.
type Record struct {
	ID  []byte
	Seq []byte
}

// SketcherOpts configures a Sketcher.
type SketcherOpts struct {
	FileName  string
	KmerSize  uint8
	Algorithm Algorithm

	HasMaxHash bool
	MaxHash    uint64
	Budget     uint64
	Nmax       *uint64
	Nmin       *uint64

	// Singleton, when true, emits one sketch per input record (named
	// after the record id) instead of accumulating a single
	// file-level sketch.
	Singleton bool

	// WithStats attaches a Stats value (size/GC class) to every hash
	// emitted by a record.
	WithStats bool
}

// Sketcher drives a SketchHelper across the records of one input file.
// A Sketcher commits to either the small (packed uint64, k<=31) or large
// (canonical byte-slice, k>31) hashing path at construction time based on
// KmerSize; mixing the two within one Sketcher is structurally
// impossible.
type Sketcher struct {
	opts   SketcherOpts
	helper *SketchHelper

	useSmall bool
	small    SmallHashFunc
	large    LargeHashFunc

	completed []*Sketch
}

// NewSketcher builds a Sketcher for opts, resolving the hash function
// dispatch by k-mer size and algorithm.
func NewSketcher(opts SketcherOpts) (*Sketcher, error) {
	if opts.KmerSize == 0 {
		return nil, ErrBadInput
	}

	s := &Sketcher{
		opts: opts,
		helper: NewSketchHelper(SketchHelperOpts{
			HasMaxHash: opts.HasMaxHash,
			MaxHash:    opts.MaxHash,
			Budget:     opts.Budget,
			Nmax:       opts.Nmax,
			Nmin:       opts.Nmin,
		}),
	}

	if opts.KmerSize <= 31 {
		fn, err := SmallHasher(opts.Algorithm, int(opts.KmerSize))
		if err != nil {
			return nil, err
		}
		s.useSmall = true
		s.small = fn
	} else {
		fn, err := LargeHasher(opts.Algorithm, int(opts.KmerSize))
		if err != nil {
			return nil, err
		}
		s.large = fn
	}

	return s, nil
}

// Process extracts, canonicalizes and pushes every valid k-mer of rec
// into the helper, then (in singleton mode) emits a completed sketch
// named after the record id.
func (s *Sketcher) Process(rec Record) error {
	if len(rec.Seq) == 0 {
		return nil
	}

	seq := NormalizeSequence(append([]byte(nil), rec.Seq...))

	var stats *Stats
	if s.opts.WithStats {
		st := NewStats(len(seq), GCCount(seq))
		stats = &st
	}
	s.helper.InitializeRecord(stats)

	if s.useSmall {
		it := NewSmallKmerIter(seq, int(s.opts.KmerSize))
		for {
			km, ok := it.Next()
			if !ok {
				break
			}
			s.helper.Push(s.small(km))
		}
	} else {
		rc := ReverseComplement(seq)
		it := NewLargeKmerIter(seq, rc, int(s.opts.KmerSize))
		for {
			km, ok := it.Next()
			if !ok {
				break
			}
			s.helper.Push(s.large(km))
		}
	}

	if s.opts.Singleton {
		sk := s.helper.IntoSketch(string(rec.ID), s.opts.KmerSize)
		s.completed = append(s.completed, sk)
	} else {
		s.helper.NextRecord()
	}
	return nil
}

// Finish produces the file's Signature: every completed (singleton)
// sketch plus a final residual sketch. In non-singleton mode the
// residual is always emitted (it is the whole file's sketch); in
// singleton mode it is only emitted if non-empty.
func (s *Sketcher) Finish() *Signature {
	sig := &Signature{
		FileName:  s.opts.FileName,
		Algorithm: s.opts.Algorithm,
		KmerSize:  s.opts.KmerSize,
		MaxHash:   s.opts.MaxHash,
		Sketches:  append([]*Sketch(nil), s.completed...),
	}

	residual := s.helper.IntoSketch(s.opts.FileName, s.opts.KmerSize)
	if !s.opts.Singleton || residual.NumKmers > 0 {
		sig.Sketches = append(sig.Sketches, residual)
	}
	return sig
}
