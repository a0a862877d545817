// sourmashjson.go - sourmash-compatible JSON signature I/O

// Package sourmashjson implements sourmash-compatible JSON signature
// I/O: a pure (file_name, k, max_hash, sorted mins) encoding, plus the
// accumulator jam needs to act as a SignatureWriter when --format
// sourmash is requested, and the loader cmd/jam's dist command uses for
// in-memory pairwise mode.
package sourmashjson

import (
	"fmt"
	"io"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/opencoff/jam"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// minHash is the wire shape of one sourmash KmerMinHash entry.
type minHash struct {
	KSize   uint8    `json:"ksize"`
	Num     uint32   `json:"num"`
	MaxHash uint64   `json:"max_hash"`
	Mins    []uint64 `json:"mins"`
	// Molecule is always written as "DNA" for jam-produced signatures;
	// Load ignores it.
	Molecule string `json:"molecule,omitempty"`
}

// document is the wire shape of one sourmash signature object.
type document struct {
	HashFunction string    `json:"hash_function"`
	Filename     string    `json:"filename"`
	Email        string    `json:"email"`
	License      string    `json:"license"`
	Signatures   []minHash `json:"signatures"`
}

// hashFunctionTag maps jam's Algorithm to sourmash's textual tag, given
// the k-mer size the signature was built with. Every non-default
// algorithm round-trips exactly; AlgoDefault has no tag of its own (it's
// a jam-side dispatch choice, not a hash sourmash knows about), so it is
// resolved here to whichever concrete algorithm jam's own dispatch
// picks for kmerSize (AHash for k<=31, xxh3 for k>31) before tagging.
func hashFunctionTag(a jam.Algorithm, kmerSize uint8) string {
	if a == jam.AlgoDefault {
		if kmerSize <= 31 {
			a = jam.AlgoAHash
		} else {
			a = jam.AlgoXXHash
		}
	}
	switch a {
	case jam.AlgoMurmur3:
		return "murmur64"
	case jam.AlgoXXHash:
		return "xxh3"
	case jam.AlgoAHash:
		return "ahash"
	default:
		return "murmur64"
	}
}

func parseHashFunctionTag(s string) jam.Algorithm {
	switch s {
	case "xxh3":
		return jam.AlgoXXHash
	case "ahash":
		return jam.AlgoAHash
	default:
		return jam.AlgoMurmur3
	}
}

// Signature projects a jam.Signature into one sourmash document: every
// one of sig's sketches becomes one minHash entry.
func Signature(sig *jam.Signature) document {
	doc := document{
		HashFunction: hashFunctionTag(sig.Algorithm, sig.KmerSize),
		Filename:     sig.FileName,
		Email:        "",
		License:      "CC0",
	}
	for _, sk := range sig.Sketches {
		mh := sk.IntoSourmash(sig.MaxHash)
		doc.Signatures = append(doc.Signatures, minHash{
			KSize:    mh.KSize,
			Num:      mh.Num,
			MaxHash:  mh.MaxHash,
			Mins:     mh.Mins,
			Molecule: "DNA",
		})
	}
	return doc
}

// Writer accumulates Signatures and writes them as one JSON array on
// Flush or WriteFile, implementing jam.SignatureWriter for the --format sourmash
// output path. Signatures arrive one at a time from
// the single writer goroutine of jam.Build, so no locking is required;
// mu exists only to make Writer safe for a caller that shares it across
// more than one pipeline.
type Writer struct {
	mu   sync.Mutex
	docs []document
}

// NewWriter returns an empty accumulator.
func NewWriter() *Writer { return &Writer{} }

// Write implements jam.SignatureWriter.
func (w *Writer) Write(sig *jam.Signature) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs = append(w.docs, Signature(sig))
	return nil
}

// Flush writes the accumulated documents as one JSON array to out.
func (w *Writer) Flush(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(w.docs)
}

// WriteFile is a convenience wrapper that flushes directly to path.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return w.Flush(f)
}

// Load reads a sourmash-JSON file (a signature, or an array of them, per
// sourmash's own historical wire format variance) and returns one
// jam.Signature per minhash entry of each document, each holding
// exactly one sketch named after the document's filename.
func Load(path string) ([]*jam.Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("sourmashjson: %s: %w", path, err)
	}

	var docs []document
	if err := json.Unmarshal(raw, &docs); err != nil {
		var one document
		if err2 := json.Unmarshal(raw, &one); err2 != nil {
			return nil, fmt.Errorf("sourmashjson: %s: %w", path, err)
		}
		docs = []document{one}
	}

	out := make([]*jam.Signature, 0, len(docs))
	for _, doc := range docs {
		for _, mh := range doc.Signatures {
			sk := &jam.Sketch{
				Name:     doc.Filename,
				Hashes:   make(map[uint64]*jam.Stats, len(mh.Mins)),
				NumKmers: len(mh.Mins),
				KmerSize: mh.KSize,
			}
			for _, h := range mh.Mins {
				sk.Hashes[h] = nil
			}
			out = append(out, &jam.Signature{
				FileName:  doc.Filename,
				Sketches:  []*jam.Sketch{sk},
				Algorithm: parseHashFunctionTag(doc.HashFunction),
				KmerSize:  mh.KSize,
				MaxHash:   mh.MaxHash,
			})
		}
	}
	return out, nil
}
