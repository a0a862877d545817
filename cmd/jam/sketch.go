// sketch.go -- 'sketch' command implementation

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	flag "github.com/opencoff/pflag"

	"github.com/opencoff/jam"
	"github.com/opencoff/jam/fastaio"
	"github.com/opencoff/jam/index"
	"github.com/opencoff/jam/sourmashjson"
)

type sketchCommand struct{}

func init() {
	registerCommand("sketch", &sketchCommand{})
}

func (c *sketchCommand) run(args []string, opt *Option) (err error) {
	var out string
	var ksize uint
	var fscale, nmax, nmin uint64
	var hasFscale, hasNmax, hasNmin bool
	var algo, format string
	var singleton bool

	fs := flag.NewFlagSet("sketch", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&out, "output", "o", "out", "Write output to `PATH`")
	fs.UintVarP(&ksize, "ksize", "k", 21, "Use `N` as the k-mer size")
	fs.Uint64Var(&fscale, "fscale", 0, "Admit roughly 1/`F` of the hash space")
	fs.Uint64Var(&nmax, "nmax", 0, "Cap each record's contribution to `N` hashes")
	fs.Uint64Var(&nmin, "nmin", 0, "Always retain each record's `N` smallest hashes, regardless of --fscale")
	fs.StringVar(&algo, "algorithm", "default", "Hash algorithm: default, ahash, xxhash, murmur3")
	fs.StringVar(&format, "format", "lmdb", "Output format: lmdb or sourmash")
	fs.BoolVar(&singleton, "singleton", false, "Emit one sketch per input record")
	fs.Usage = func() {
		fmt.Printf(`Usage: sketch [options] INPUT...

where INPUT is one or more FASTA/FASTQ files (optionally gzip-compressed)
or .list files naming them, one per line.

options:
`)
		fs.PrintDefaults()
		os.Exit(exitOK)
	}

	if err = fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("sketch: %w: %w", errUsage, err)
	}
	hasFscale = fs.Changed("fscale")
	hasNmax = fs.Changed("nmax")
	hasNmin = fs.Changed("nmin")

	inputs := fs.Args()
	if len(inputs) == 0 {
		return fmt.Errorf("sketch: %w: no inputs given", errUsage)
	}

	algorithm, err := jam.ParseAlgorithm(algo)
	if err != nil {
		return fmt.Errorf("sketch: %w", err)
	}
	if format != "lmdb" && format != "sourmash" {
		return fmt.Errorf("sketch: %w: unknown format %q", errUsage, format)
	}

	files, err := fastaio.ExpandInputs(inputs)
	if err != nil {
		return fmt.Errorf("sketch: %w", err)
	}

	var maxHash uint64
	if hasFscale {
		if fscale == 0 {
			return fmt.Errorf("sketch: %w: --fscale must be > 0", errUsage)
		}
		maxHash = math.MaxUint64 / fscale
	}

	sources := make(map[string]jam.RecordSource, len(files))
	for _, f := range files {
		rd, err := fastaio.Open(f)
		if err != nil {
			return fmt.Errorf("sketch: %w", err)
		}
		sources[f] = rd
	}

	var writer jam.SignatureWriter
	var idxWriter *index.Writer
	var smWriter *sourmashjson.Writer

	switch format {
	case "lmdb":
		if !opt.force {
			if _, err := os.Stat(filepath.Join(out, "compact.mdb")); err == nil {
				return fmt.Errorf("sketch: %s/compact.mdb exists (use -f to overwrite)", out)
			}
		}
		idxWriter, err = index.NewWriter(out, uint8(ksize), hasFscale, fscale)
		if err != nil {
			return fmt.Errorf("sketch: %w", err)
		}
		idxWriter.SetLogger(opt.Logger())
		writer = idxWriter
	case "sourmash":
		if !opt.force {
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("sketch: %s exists (use -f to overwrite)", out)
			}
		}
		smWriter = sourmashjson.NewWriter()
		writer = smWriter
	}

	pr := newProgress("sketch", len(sources), opt.silent)

	pipelineErr := jam.Build(context.Background(), sources, countingWriter{writer, pr}, jam.PipelineOpts{
		Threads:    opt.threads,
		KmerSize:   uint8(ksize),
		Algorithm:  algorithm,
		HasMaxHash: hasFscale,
		MaxHash:    maxHash,
		Singleton:  singleton,
		Nmax:       optUint64(hasNmax, nmax),
		Nmin:       optUint64(hasNmin, nmin),
		Logger:     opt.Logger(),
	})
	pr.done()

	if pipelineErr != nil {
		if idxWriter != nil {
			idxWriter.Abort()
		}
		return fmt.Errorf("sketch: %w", pipelineErr)
	}

	if idxWriter != nil {
		if err := idxWriter.Close(); err != nil {
			return fmt.Errorf("sketch: %w", err)
		}
		opt.Printf("wrote %d signatures to %s/compact.mdb\n", idxWriter.Len(), out)
	}
	if smWriter != nil {
		if err := smWriter.WriteFile(out); err != nil {
			return fmt.Errorf("sketch: %w", err)
		}
		opt.Printf("wrote sourmash JSON to %s\n", out)
	}

	return nil
}

func optUint64(has bool, v uint64) *uint64 {
	if !has {
		return nil
	}
	return &v
}

// countingWriter increments the progress bar once per completed
// Signature, since the pipeline's unit of work is one input file.
type countingWriter struct {
	w  jam.SignatureWriter
	pr *progress
}

func (c countingWriter) Write(sig *jam.Signature) error {
	c.pr.increment()
	return c.w.Write(sig)
}
