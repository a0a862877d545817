// fastaio.go - lazy FASTA/FASTQ record reader, optionally gzip-compressed

// Package fastaio implements a lazy reader over FASTA or FASTQ files,
// optionally gzip-compressed, yielding jam.Record values. jam itself
// never parses either file format; it only consumes the (id, seq)
// shape.
package fastaio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/opencoff/jam"
)

// bufferInitSize is the starting bufio.Scanner buffer; sequence lines in
// real genomic FASTA files can run far past bufio's 64KiB default.
const bufferInitSize = 1 << 20

// maxLineSize bounds a single scanned line (one FASTA sequence line, or
// one FASTQ read's seq/qual line).
const maxLineSize = 512 << 20

// Reader lazily yields jam.Record values from one input file. It
// implements jam.RecordSource.
type Reader struct {
	rc     io.ReadCloser
	scan   *bufio.Scanner
	fastq  bool
	pendID []byte // fasta only: id line already consumed by the previous record
	done   bool
}

// Open opens path for streaming, auto-detecting FASTA vs FASTQ from its
// extension (after stripping a trailing .gz) and transparently
// decompressing gzip input. Accepted extensions are .fasta, .fa, .fastq,
// .fq, each optionally followed by .gz.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var rc io.ReadCloser = f
	name := path
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("fastaio: %s: %w", path, err)
		}
		rc = struct {
			io.Reader
			io.Closer
		}{gz, closerFunc(func() error {
			gz.Close()
			return f.Close()
		})}
		name = strings.TrimSuffix(name, ".gz")
	}

	fastq, err := isFastq(name)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("fastaio: %w", err)
	}

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, bufferInitSize), maxLineSize)

	return &Reader{rc: rc, scan: sc, fastq: fastq}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func isFastq(name string) (bool, error) {
	switch {
	case strings.HasSuffix(name, ".fasta"), strings.HasSuffix(name, ".fa"):
		return false, nil
	case strings.HasSuffix(name, ".fastq"), strings.HasSuffix(name, ".fq"):
		return true, nil
	default:
		return false, fmt.Errorf("%s: unrecognized extension", name)
	}
}

// Next returns the next record, or ok=false once the file is exhausted.
func (r *Reader) Next() (jam.Record, bool, error) {
	if r.done {
		return jam.Record{}, false, nil
	}
	if r.fastq {
		return r.nextFastq()
	}
	return r.nextFasta()
}

// nextFasta accumulates sequence lines until the next '>' header or EOF.
func (r *Reader) nextFasta() (jam.Record, bool, error) {
	var id []byte
	if r.pendID != nil {
		id = r.pendID
		r.pendID = nil
	} else {
		for r.scan.Scan() {
			line := r.scan.Bytes()
			if len(line) > 0 && line[0] == '>' {
				id = parseFastaID(line)
				break
			}
		}
		if id == nil {
			if err := r.scan.Err(); err != nil {
				return jam.Record{}, false, err
			}
			r.done = true
			return jam.Record{}, false, nil
		}
	}

	var seq bytes.Buffer
	for r.scan.Scan() {
		line := r.scan.Bytes()
		if len(line) > 0 && line[0] == '>' {
			r.pendID = parseFastaID(line)
			break
		}
		seq.Write(bytes.TrimSpace(line))
	}
	if err := r.scan.Err(); err != nil {
		return jam.Record{}, false, err
	}

	return jam.Record{ID: id, Seq: seq.Bytes()}, true, nil
}

func parseFastaID(header []byte) []byte {
	header = header[1:]
	if i := bytes.IndexByte(header, ' '); i >= 0 {
		header = header[:i]
	}
	return append([]byte(nil), header...)
}

// nextFastq reads one 4-line FASTQ record, grounded on the same
// "@id / seq / +unk / qual" contract as a conventional FASTQ scanner:
// the id line must start with '@' and the third line must start with
// '+'.
func (r *Reader) nextFastq() (jam.Record, bool, error) {
	if !r.scan.Scan() {
		if err := r.scan.Err(); err != nil {
			return jam.Record{}, false, err
		}
		r.done = true
		return jam.Record{}, false, nil
	}
	idLine := r.scan.Bytes()
	if len(idLine) == 0 || idLine[0] != '@' {
		return jam.Record{}, false, fmt.Errorf("fastaio: malformed FASTQ id line")
	}
	id := append([]byte(nil), idLine[1:]...)

	if !r.scan.Scan() {
		return jam.Record{}, false, fmt.Errorf("fastaio: truncated FASTQ record")
	}
	seq := append([]byte(nil), r.scan.Bytes()...)

	if !r.scan.Scan() {
		return jam.Record{}, false, fmt.Errorf("fastaio: truncated FASTQ record")
	}
	unk := r.scan.Bytes()
	if len(unk) == 0 || unk[0] != '+' {
		return jam.Record{}, false, fmt.Errorf("fastaio: malformed FASTQ '+' line")
	}

	if !r.scan.Scan() {
		return jam.Record{}, false, fmt.Errorf("fastaio: truncated FASTQ record")
	}
	// quality line is read (and length-validated against seq) but jam
	// never consumes base quality, so it is discarded here.
	if qual := r.scan.Bytes(); len(qual) != len(seq) {
		return jam.Record{}, false, fmt.Errorf("fastaio: seq/qual length mismatch for %q", id)
	}

	return jam.Record{ID: id, Seq: seq}, true, nil
}

// Close releases the underlying file (and gzip reader, if any).
func (r *Reader) Close() error { return r.rc.Close() }
