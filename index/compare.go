// compare.go - parallel containment queries against a built index

package index

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opencoff/jam"
)

// Comparator runs containment queries against a Reader. Unlike
// jam.Comparator (in-memory pairwise mode), it never computes the
// density-correction fraction: every sketch in the index shares the
// same fscale by construction, so that correction is always 1.
type Comparator struct {
	rd     *Reader
	cutoff float64

	// mu guards nothing mutable after Open -- sigs and the mmap region
	// are read-only for the Comparator's lifetime. It exists to model
	// a reader-writer lock around the sigs cache, as a safeguard
	// against a future online-update path rather than a
	// currently-needed lock.
	mu sync.RWMutex

	log *zap.SugaredLogger
}

// NewComparator builds a Comparator over rd, keeping only results whose
// containment percentage exceeds cutoff.
func NewComparator(rd *Reader, cutoff float64) *Comparator {
	return &Comparator{rd: rd, cutoff: cutoff}
}

// SetLogger attaches a logger that receives query-pool diagnostics. A
// nil logger (the default) is silent.
func (c *Comparator) SetLogger(l *zap.SugaredLogger) { c.log = l }

func (c *Comparator) logger() *zap.SugaredLogger {
	if c.log == nil {
		return zap.NewNop().Sugar()
	}
	return c.log
}

// Compare fans queries out across a pool of at most threads concurrent
// workers, each running one query sketch's intersection independently.
func (c *Comparator) Compare(threads int, queries []*jam.Sketch) ([]jam.CompareResult, error) {
	if threads <= 0 {
		threads = 1
	}

	c.logger().Infow("comparator: dispatching queries", "queries", len(queries), "workers", threads)

	per := make([][]jam.CompareResult, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(threads)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			r, err := c.compareOne(q)
			if err != nil {
				return err
			}
			per[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []jam.CompareResult
	for _, r := range per {
		out = append(out, r...)
	}
	c.logger().Infow("comparator: finished", "queries", len(queries), "results", len(out))
	return out, nil
}

// compareOne accumulates per-SketchId hit counts over the query's
// hashes, then forms and filters results. It fails with
// jam.ErrKSizeMismatch if q was not sketched at the index's own k-mer
// size -- the containment formula assumes every posting it touches
// shares that k, and the open-time invariant only ever checked the
// database's own internal consistency, not queries arriving from
// outside.
func (c *Comparator) compareOne(q *jam.Sketch) ([]jam.CompareResult, error) {
	if q.KmerSize != c.rd.KmerSize() {
		return nil, fmt.Errorf("jam: query %s (k=%d) against index (k=%d): %w",
			q.Name, q.KmerSize, c.rd.KmerSize(), jam.ErrKSizeMismatch)
	}

	counts := make(map[uint32]uint64)
	for h := range q.Hashes {
		ids, ok := c.rd.postingsFor(h)
		if !ok {
			continue
		}
		for _, id := range ids {
			counts[id]++
		}
	}

	qlen := uint64(len(q.Hashes))

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []jam.CompareResult
	for id, common := range counts {
		info, ok := c.rd.SigInfo(id)
		if !ok {
			continue
		}

		numKmers := info.NumHashes
		if qlen < numKmers {
			numKmers = qlen
		}
		if numKmers == 0 {
			continue
		}

		containment := (float64(common) / float64(numKmers)) * 100
		if containment <= c.cutoff {
			continue
		}

		out = append(out, jam.CompareResult{
			FromName:    q.Name,
			ToName:      info.FileName,
			NumCommon:   common,
			NumKmers:    numKmers,
			Containment: containment,
		})
	}
	return out, nil
}
