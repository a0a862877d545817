// doc.go - top level documentation

// Package jam implements a genomic MinHash sketching engine: it reduces
// DNA/RNA sequence files to a bounded set of hashed, canonicalized k-mers
// ("sketches"), and estimates containment of a query sketch against a
// database of such sketches.
//
// The primary types are Sketcher (drives SketchHelper across a record
// stream to build a Signature) and Signature/Sketch (the in-memory
// result). Persistence of many sketches as a queryable inverted index
// lives in the jam/index subpackage; sourmash-JSON I/O lives in
// jam/sourmashjson; FASTA/FASTQ record streaming lives in jam/fastaio.
package jam
