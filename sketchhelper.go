// sketchhelper.go - two-tier bounded top-K hash selector

package jam

import "container/heap"

// maxHashHeap is a max-heap of uint64 (element 0 is the largest) used
// both as the global retained-hash heap and as the scratch/local per
// record heaps.
type maxHashHeap []uint64

func (h maxHashHeap) Len() int            { return len(h) }
func (h maxHashHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h maxHashHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHashHeap) Push(x interface{}) { *h = append(*h, x.(uint64)) }
func (h *maxHashHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// SketchHelper maintains the smallest `budget` hashes below `maxHash`
// seen across an unbounded record stream, with an optional per-record
// cap (nmax) and an optional per-record floor (nmin) that bypasses
// maxHash.
//
// The nmax cap is enforced by staging each record's admitted hashes in a
// scratch heap (bounded to nmax) and merging that scratch heap into the
// global heap only at NextRecord, so the cap can never corrupt a
// previous record's already-merged entries.
type SketchHelper struct {
	hasMaxHash bool
	maxHash    uint64
	nmax       *uint64
	budget     uint64

	globalHeap maxHashHeap
	hashes     noRehashSet

	nmin       *uint64
	localHeap  maxHashHeap
	localSet   map[uint64]struct{}

	scratchHeap maxHashHeap
	scratchSet  map[uint64]struct{}

	kmerSeqCounter uint64
	globalCounter  uint64
	currentStat    *Stats
}

// SketchHelperOpts configures a new SketchHelper.
type SketchHelperOpts struct {
	// MaxHash is the exclusive cutoff; a hash is admitted only if
	// hash < MaxHash. HasMaxHash=false means no cutoff at all.
	HasMaxHash bool
	MaxHash    uint64

	// Budget is the global top-K cap (the "kmer_budget"). Zero means
	// unbounded: retain every hash admitted by MaxHash/Nmax/Nmin.
	Budget uint64

	// Nmax, if non-nil, caps the number of hashes a single record may
	// contribute to the retained set.
	Nmax *uint64

	// Nmin, if non-nil, forces the Nmin smallest hashes of each record
	// into the retained set regardless of MaxHash.
	Nmin *uint64
}

// NewSketchHelper builds a SketchHelper from opts.
func NewSketchHelper(opts SketchHelperOpts) *SketchHelper {
	sh := &SketchHelper{
		hasMaxHash: opts.HasMaxHash,
		maxHash:    opts.MaxHash,
		budget:     opts.Budget,
		nmax:       opts.Nmax,
		nmin:       opts.Nmin,
		hashes:     make(noRehashSet),
	}
	heap.Init(&sh.globalHeap)
	if sh.nmax != nil {
		sh.scratchSet = make(map[uint64]struct{})
	}
	if sh.nmin != nil {
		sh.localSet = make(map[uint64]struct{})
	}
	return sh
}

// InitializeRecord attaches stats to every hash admitted until the next
// call to NextRecord.
func (sh *SketchHelper) InitializeRecord(stats *Stats) {
	sh.currentStat = stats
}

// Push admits hash into the current record's candidate set, subject to
// MaxHash, Nmax and Nmin as configured.
func (sh *SketchHelper) Push(hash uint64) {
	sh.kmerSeqCounter++

	if !sh.hasMaxHash || hash < sh.maxHash {
		if sh.nmax != nil {
			sh.pushBounded(&sh.scratchHeap, sh.scratchSet, *sh.nmax, hash)
		} else {
			sh.admitGlobal(hash)
		}
	}

	if sh.nmin != nil {
		sh.pushBounded(&sh.localHeap, sh.localSet, *sh.nmin, hash)
	}
}

// pushBounded maintains a max-heap bounded to `cap` smallest distinct
// hashes seen so far, backed by set for O(1) dedup.
func (sh *SketchHelper) pushBounded(h *maxHashHeap, set map[uint64]struct{}, cap uint64, hash uint64) {
	if _, ok := set[hash]; ok {
		return
	}
	if uint64(h.Len()) < cap {
		set[hash] = struct{}{}
		heap.Push(h, hash)
		return
	}
	if cap == 0 {
		return
	}
	top := (*h)[0]
	if hash < top {
		delete(set, top)
		heap.Pop(h)
		set[hash] = struct{}{}
		heap.Push(h, hash)
	}
}

// admitGlobal inserts hash into the global top-budget set, evicting the
// current largest retained hash if the set is already full. A zero
// budget means "unbounded" -- the common case (fscale-only, or no bound
// at all) must retain every admitted hash rather than retaining none.
func (sh *SketchHelper) admitGlobal(hash uint64) {
	if _, ok := sh.hashes[hash]; ok {
		// duplicate: most recent record's stats win, set membership
		// is unaffected (testable property: insertion order irrelevant)
		sh.hashes[hash] = sh.currentStat
		return
	}
	if sh.budget == 0 || uint64(len(sh.hashes)) < sh.budget {
		sh.hashes[hash] = sh.currentStat
		heap.Push(&sh.globalHeap, hash)
		return
	}
	top := sh.globalHeap[0]
	if hash < top {
		delete(sh.hashes, top)
		heap.Pop(&sh.globalHeap)
		sh.hashes[hash] = sh.currentStat
		heap.Push(&sh.globalHeap, hash)
	}
}

// NextRecord drains the per-record scratch/local heaps into the global
// set, rolls the per-record counter into the global counter, and resets
// record-scoped state.
func (sh *SketchHelper) NextRecord() {
	for _, hash := range sh.scratchHeap {
		sh.hashForMerge(hash)
	}
	for _, hash := range sh.localHeap {
		sh.hashForMerge(hash)
	}

	sh.globalCounter += sh.kmerSeqCounter
	sh.kmerSeqCounter = 0

	sh.scratchHeap = sh.scratchHeap[:0]
	for k := range sh.scratchSet {
		delete(sh.scratchSet, k)
	}
	sh.localHeap = sh.localHeap[:0]
	for k := range sh.localSet {
		delete(sh.localSet, k)
	}
}

func (sh *SketchHelper) hashForMerge(hash uint64) {
	sh.admitGlobal(hash)
}

// Len returns the number of distinct hashes currently retained.
func (sh *SketchHelper) Len() int { return len(sh.hashes) }

// IntoSketch rolls any pending per-record state, snapshots the retained
// hashes into a new Sketch, and resets the helper so it can be reused
// for the next record (singleton mode) or file.
func (sh *SketchHelper) IntoSketch(name string, kmerSize uint8) *Sketch {
	sh.NextRecord()

	hashes := make(map[uint64]*Stats, len(sh.hashes))
	for h, st := range sh.hashes {
		hashes[h] = st
	}

	sk := &Sketch{
		Name:     name,
		Hashes:   hashes,
		NumKmers: len(hashes),
		KmerSize: kmerSize,
	}

	sh.reset()
	return sk
}

// reset clears accumulated state but keeps the configured budget/maxHash/
// nmax/nmin so the helper can be reused.
func (sh *SketchHelper) reset() {
	sh.hashes = make(noRehashSet)
	sh.globalHeap = sh.globalHeap[:0]
	sh.kmerSeqCounter = 0
	sh.globalCounter = 0
	sh.currentStat = nil
}
