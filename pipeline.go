// pipeline.go - bounded MPSC build pipeline: N sketchers, one writer

package jam

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecordSource lazily yields the records of one input file. Concrete
// implementations live in jam/fastaio; jam only depends on this shape.
type RecordSource interface {
	// Next returns the next record, or ok=false at end of stream.
	Next() (rec Record, ok bool, err error)
	Close() error
}

// SignatureWriter consumes completed signatures, in arrival order, one
// at a time. Implementations: index.Writer (lmdb-style build) or a
// sourmash-JSON accumulator.
type SignatureWriter interface {
	Write(sig *Signature) error
}

// PipelineOpts configures Build.
type PipelineOpts struct {
	Threads   int
	KmerSize  uint8
	Algorithm Algorithm

	HasMaxHash bool
	MaxHash    uint64
	Budget     uint64
	Nmax       *uint64
	Nmin       *uint64
	Singleton  bool
	WithStats  bool

	// Logger receives worker-lifecycle diagnostics (start/finish per
	// file, the short-circuit on the first error). A nil Logger is
	// replaced with zap.NewNop().
	Logger *zap.SugaredLogger
}

// Build runs the bounded MPSC sketch-construction pipeline: one
// goroutine per input file (capped at
// opts.Threads concurrent sketchers) feeds completed Signatures over a
// small bounded channel to a single writer goroutine. A failure in any
// sketcher short-circuits the remaining work; the writer's own error, if
// any, is returned once it has drained the channel.
func Build(ctx context.Context, files map[string]RecordSource, w SignatureWriter, opts PipelineOpts) error {
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log.Infow("build: starting", "files", len(files), "threads", opts.Threads, "kmer_size", opts.KmerSize)

	// channel capacity ~10 keeps memory flat under back-pressure.
	ch := make(chan *Signature, 10)

	// the writer runs independently of the sketcher errgroup: it must
	// keep draining ch even after a sketcher fails, so that the range
	// loop below can close ch without blocking.
	writerDone := make(chan error, 1)
	go func() {
		var writeErr error
		for sig := range ch {
			if writeErr != nil {
				continue
			}
			if err := w.Write(sig); err != nil {
				writeErr = fmt.Errorf("jam: write %s: %w", sig.FileName, err)
			}
		}
		writerDone <- writeErr
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)

	for name, src := range files {
		name, src := name, src
		g.Go(func() error {
			defer src.Close()
			log.Debugw("sketcher: starting", "file", name)

			sk, err := NewSketcher(SketcherOpts{
				FileName:   name,
				KmerSize:   opts.KmerSize,
				Algorithm:  opts.Algorithm,
				HasMaxHash: opts.HasMaxHash,
				MaxHash:    opts.MaxHash,
				Budget:     opts.Budget,
				Nmax:       opts.Nmax,
				Nmin:       opts.Nmin,
				Singleton:  opts.Singleton,
				WithStats:  opts.WithStats,
			})
			if err != nil {
				return fmt.Errorf("jam: %s: %w", name, err)
			}

			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				rec, ok, err := src.Next()
				if err != nil {
					return fmt.Errorf("jam: %s: %w", name, err)
				}
				if !ok {
					break
				}
				if err := sk.Process(rec); err != nil {
					return fmt.Errorf("jam: %s: record %s: %w", name, rec.ID, err)
				}
			}

			sig := sk.Finish()
			log.Debugw("sketcher: finished", "file", name, "sketches", len(sig.Sketches))
			select {
			case ch <- sig:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}

	sketchErr := g.Wait()
	close(ch)
	writeErr := <-writerDone

	if sketchErr != nil {
		log.Errorw("build: aborted", "err", sketchErr)
		return sketchErr
	}
	if writeErr != nil {
		log.Errorw("build: writer failed", "err", writeErr)
		return writeErr
	}
	log.Infow("build: finished")
	return nil
}
