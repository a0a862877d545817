// query.go -- shared helpers for turning CLI-supplied inputs into
// jam.Sketches: either a FASTA/FASTQ file (sketched fresh) or a
// sourmash-JSON file (loaded and collapsed).

package main

import (
	"fmt"
	"strings"

	"github.com/opencoff/jam"
	"github.com/opencoff/jam/fastaio"
	"github.com/opencoff/jam/sourmashjson"
)

// isSourmashPath reports whether path looks like a sourmash-JSON
// signature file rather than a raw sequence file.
func isSourmashPath(path string) bool {
	switch {
	case strings.HasSuffix(path, ".sig"), strings.HasSuffix(path, ".json"):
		return true
	default:
		return false
	}
}

// loadSourmashSketches loads path (a sourmash-JSON signature file,
// possibly holding several documents) and collapses each signature into
// one Sketch.
func loadSourmashSketches(path string) ([]*jam.Sketch, error) {
	sigs, err := sourmashjson.Load(path)
	if err != nil {
		return nil, err
	}
	out := make([]*jam.Sketch, 0, len(sigs))
	for _, sig := range sigs {
		out = append(out, sig.Collapse())
	}
	return out, nil
}

// sketchOneFile runs the single-file sketching path used by dist
// for a raw FASTA/FASTQ input, collapsing the result into one Sketch.
func sketchOneFile(path string, ksize uint8, algo jam.Algorithm, hasMaxHash bool, maxHash uint64) (*jam.Sketch, error) {
	rd, err := fastaio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rd.Close()

	sk, err := jam.NewSketcher(jam.SketcherOpts{
		FileName:   path,
		KmerSize:   ksize,
		Algorithm:  algo,
		HasMaxHash: hasMaxHash,
		MaxHash:    maxHash,
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	for {
		rec, ok, err := rd.Next()
		if err != nil {
			return nil, fmt.Errorf("query: %s: %w", path, err)
		}
		if !ok {
			break
		}
		if err := sk.Process(rec); err != nil {
			return nil, fmt.Errorf("query: %s: record %s: %w", path, rec.ID, err)
		}
	}

	sig := sk.Finish()
	return sig.Collapse(), nil
}

// loadQuery turns one CLI input path into a slice of query Sketches,
// dispatching on whether it looks like a sourmash-JSON file or a raw
// sequence file.
func loadQuery(path string, ksize uint8, algo jam.Algorithm, hasMaxHash bool, maxHash uint64) ([]*jam.Sketch, error) {
	if isSourmashPath(path) {
		return loadSourmashSketches(path)
	}
	sk, err := sketchOneFile(path, ksize, algo, hasMaxHash, maxHash)
	if err != nil {
		return nil, err
	}
	return []*jam.Sketch{sk}, nil
}
