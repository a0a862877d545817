// merge.go -- 'merge' command implementation: concatenate several
// sourmash-JSON signature files into one merged signature.

package main

import (
	"fmt"
	"os"

	flag "github.com/opencoff/pflag"

	"github.com/opencoff/jam"
	"github.com/opencoff/jam/sourmashjson"
)

type mergeCommand struct{}

func init() {
	registerCommand("merge", &mergeCommand{})
}

func (c *mergeCommand) run(args []string, opt *Option) (err error) {
	var name string

	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&name, "name", "n", "merged", "Use `NAME` as the merged signature's file name")
	fs.Usage = func() {
		fmt.Printf(`Usage: merge [options] OUT INPUT...

where OUT is the merged sourmash-JSON output path and INPUT is one or
more sourmash-JSON signature files to merge.

options:
`)
		fs.PrintDefaults()
		os.Exit(exitOK)
	}

	if err = fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("merge: %w: %w", errUsage, err)
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("merge: %w: need OUT and at least one INPUT", errUsage)
	}
	out, inputs := rest[0], rest[1:]

	if !opt.force {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("merge: %s exists (use -f to overwrite)", out)
		}
	}

	merged := &jam.Sketch{Name: name, Hashes: make(map[uint64]*jam.Stats)}
	var algo jam.Algorithm
	var ksize uint8
	var maxHash uint64

	for i, p := range inputs {
		sigs, err := sourmashjson.Load(p)
		if err != nil {
			return fmt.Errorf("merge: %w", err)
		}
		for _, sig := range sigs {
			if i == 0 {
				algo, ksize, maxHash = sig.Algorithm, sig.KmerSize, sig.MaxHash
			} else if sig.KmerSize != ksize {
				return fmt.Errorf("merge: %s: %w (have %d, want %d)", p, jam.ErrKSizeMismatch, sig.KmerSize, ksize)
			}
			sk := sig.Collapse()
			for h, st := range sk.Hashes {
				merged.Hashes[h] = st
			}
		}
	}
	merged.NumKmers = len(merged.Hashes)
	merged.KmerSize = ksize

	w := sourmashjson.NewWriter()
	if err := w.Write(&jam.Signature{
		FileName:  name,
		Sketches:  []*jam.Sketch{merged},
		Algorithm: algo,
		KmerSize:  ksize,
		MaxHash:   maxHash,
	}); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if err := w.WriteFile(out); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	opt.Printf("wrote merged signature (%d hashes) to %s\n", merged.NumKmers, out)
	return nil
}
