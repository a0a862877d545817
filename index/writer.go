// writer.go - staged, sorted, append-only build of the two-table index

package index

import (
	"bytes"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dchest/siphash"
	"go.uber.org/zap"

	"github.com/opencoff/jam"
)

// On-disk layout of one compacted index file:
//
//   - 80-byte file header, all multi-byte fields big-endian:
//       magic[4], flags uint32, salt[16], kmerSize byte, 7 bytes pad,
//       fscale uint64, nsigs uint64, nhashes uint64, sigsOff uint64,
//       hashIdxOff uint64 (page-aligned)
//   - sigs table: nsigs length-prefixed, siphash-checksummed
//     ShortSketchInfo records, written in SketchId order (dense,
//     monotonic, so no separate offset index is needed -- the reader
//     slurps them sequentially).
//   - hash index table: nhashes fixed 20-byte records (hash, postings
//     offset, postings length), sorted ascending by hash.
//   - postings blob: concatenated CboRoaringCodec-encoded posting lists,
//     referenced by the hash index table.
//   - 32-byte trailer: SHA512-256 over the header and everything after
//     it up to the start of the trailer.
const (
	magic             = "JAMX"
	headerSize        = 80
	hashIdxRecordSize = 20

	flagHasFscale = 1 << 0
)

// Writer builds a compacted index file from an arriving stream of
// Signatures. There is exactly one writer for the lifetime of a build:
// it buffers per-hash posting lists in memory as signatures arrive, and
// performs the sorted second pass (posting-list encode + hash index
// write) only once the input is exhausted.
type Writer struct {
	dir string
	tmp string
	fd  *os.File

	salt []byte

	kmerSize  uint8
	hasFscale bool
	fscale    uint64

	nsigs uint64
	off   uint64

	// postings buffers (hash -> SketchIds); sorted only at Close.
	postings map[uint64][]uint32

	log *zap.SugaredLogger
}

// SetLogger attaches a logger that receives per-signature commit and
// compaction milestones. A nil logger (the default) is silent.
func (w *Writer) SetLogger(l *zap.SugaredLogger) { w.log = l }

func (w *Writer) logger() *zap.SugaredLogger {
	if w.log == nil {
		return zap.NewNop().Sugar()
	}
	return w.log
}

// NewWriter prepares a build in directory dir. kmerSize/hasFscale/fscale
// are fixed for the lifetime of the index (every Signature written must
// match kmerSize, enforced by Write). Reader still checks every
// signature's k-mer size and fscale against the header at open.
func NewWriter(dir string, kmerSize uint8, hasFscale bool, fscale uint64) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// one random draw covers both the siphash salt and the temp-file
	// suffix that keeps concurrent builds in one directory apart.
	var rnd [20]byte
	if _, err := io.ReadFull(rand.Reader, rnd[:]); err != nil {
		return nil, fmt.Errorf("index: can't read random salt: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf("build.tmp.%x", rnd[16:]))
	fd, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		dir:       dir,
		tmp:       tmp,
		fd:        fd,
		salt:      append([]byte(nil), rnd[:16]...),
		kmerSize:  kmerSize,
		hasFscale: hasFscale,
		fscale:    fscale,
		postings:  make(map[uint64][]uint32),
		off:       headerSize,
	}

	var z [headerSize]byte
	if _, err := fd.Write(z[:]); err != nil {
		fd.Close()
		os.Remove(tmp)
		return nil, err
	}
	return w, nil
}

// Len returns the number of signatures (SketchIds) written so far.
func (w *Writer) Len() int { return int(w.nsigs) }

// Write implements jam.SignatureWriter: it assigns each of sig's
// sketches the next dense SketchId, appends its ShortSketchInfo to the
// sigs table, and buffers (hash, SketchId) pairs for the deferred
// sorted pass.
func (w *Writer) Write(sig *jam.Signature) error {
	if sig.KmerSize != w.kmerSize {
		return jam.ErrKSizeMismatch
	}

	for _, sk := range sig.Sketches {
		id := uint32(w.nsigs)
		w.nsigs++

		info := jam.ShortSketchInfo{
			FileName:  sk.Name,
			NumHashes: uint64(sk.NumKmers),
			KmerSize:  sk.KmerSize,
			HasFscale: w.hasFscale,
			Fscale:    w.fscale,
		}
		if err := w.writeSigRecord(info); err != nil {
			return err
		}

		for h := range sk.Hashes {
			w.postings[h] = append(w.postings[h], id)
		}
	}
	w.logger().Debugw("writer: committed signature", "file", sig.FileName, "sketches", len(sig.Sketches), "nsigs", w.nsigs)
	return nil
}

func (w *Writer) writeSigRecord(info jam.ShortSketchInfo) error {
	buf := marshalShortSketchInfo(info)

	var o, c [8]byte
	binary.BigEndian.PutUint64(o[:], w.off)

	h := siphash.New(w.salt)
	h.Write(o[:])
	h.Write(buf)
	binary.BigEndian.PutUint64(c[:], h.Sum64())

	if err := w.writeAll(c[:], buf); err != nil {
		return err
	}
	w.off += uint64(len(c) + len(buf))
	return nil
}

// writeAll appends each buffer to the build file, treating a short
// write as an error.
func (w *Writer) writeAll(bufs ...[]byte) error {
	for _, b := range bufs {
		n, err := w.fd.Write(b)
		if err != nil {
			return err
		}
		if n != len(b) {
			return fmt.Errorf("index: short write: exp %d, wrote %d", len(b), n)
		}
	}
	return nil
}

func marshalShortSketchInfo(info jam.ShortSketchInfo) []byte {
	name := []byte(info.FileName)
	buf := make([]byte, 2+len(name)+8+1+1+8)

	i := 0
	binary.BigEndian.PutUint16(buf[i:], uint16(len(name)))
	i += 2
	i += copy(buf[i:], name)
	binary.BigEndian.PutUint64(buf[i:], info.NumHashes)
	i += 8
	buf[i] = info.KmerSize
	i++
	if info.HasFscale {
		buf[i] = 1
	}
	i++
	binary.BigEndian.PutUint64(buf[i:], info.Fscale)
	return buf
}

// Close runs the deferred sorted pass: sort the buffered hash keys
// ascending, encode and append each posting list, write the hash index
// table, compute the trailer checksum, and atomically publish the
// result as compact.mdb.
func (w *Writer) Close() (err error) {
	defer func() {
		if err != nil {
			w.fd.Close()
			os.Remove(w.tmp)
		}
	}()

	w.logger().Infow("writer: starting sorted pass", "nsigs", w.nsigs, "nhashes", len(w.postings))

	keys := make([]uint64, 0, len(w.postings))
	for h := range w.postings {
		keys = append(keys, h)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	pgsz := uint64(os.Getpagesize())
	hashIdxOff := alignUp(w.off, pgsz)
	if hashIdxOff > w.off {
		if err = w.padTo(hashIdxOff); err != nil {
			return err
		}
	}

	nhashes := uint64(len(keys))
	idx := make([]byte, nhashes*hashIdxRecordSize)
	var postingsBuf bytes.Buffer
	cur := hashIdxOff + nhashes*hashIdxRecordSize

	for i, h := range keys {
		ids := w.postings[h]
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

		enc, err := EncodePostings(ids)
		if err != nil {
			return err
		}

		rec := idx[i*hashIdxRecordSize : (i+1)*hashIdxRecordSize]
		binary.BigEndian.PutUint64(rec[0:8], h)
		binary.BigEndian.PutUint64(rec[8:16], cur)
		binary.BigEndian.PutUint32(rec[16:20], uint32(len(enc)))

		postingsBuf.Write(enc)
		cur += uint64(len(enc))
	}

	if err = w.writeAll(idx, postingsBuf.Bytes()); err != nil {
		return err
	}

	hdr := w.buildHeader(nhashes, hashIdxOff)

	h := sha512.New512_256()
	h.Write(hdr)
	if _, err = w.fd.Seek(headerSize, io.SeekStart); err != nil {
		return err
	}
	if _, err = io.Copy(h, w.fd); err != nil {
		return err
	}
	trailer := h.Sum(nil)

	if _, err = w.fd.Write(trailer); err != nil {
		return err
	}
	if _, err = w.fd.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err = w.fd.Write(hdr); err != nil {
		return err
	}

	if err = w.fd.Sync(); err != nil {
		return err
	}
	if err = w.fd.Close(); err != nil {
		return err
	}

	final := filepath.Join(w.dir, "compact.mdb")
	if err := os.Rename(w.tmp, final); err != nil {
		return err
	}
	w.logger().Infow("writer: compaction complete", "path", final, "nsigs", w.nsigs, "nhashes", nhashes)
	return nil
}

// Abort discards the in-progress build: a partially written index file
// is allowed to remain unusable, but Abort removes it outright since we
// always have the tmp file in hand.
func (w *Writer) Abort() error {
	w.fd.Close()
	return os.Remove(w.tmp)
}

func (w *Writer) buildHeader(nhashes, hashIdxOff uint64) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic)

	var flags uint32
	if w.hasFscale {
		flags |= flagHasFscale
	}
	binary.BigEndian.PutUint32(buf[4:8], flags)
	copy(buf[8:24], w.salt)
	buf[24] = w.kmerSize
	binary.BigEndian.PutUint64(buf[32:40], w.fscale)
	binary.BigEndian.PutUint64(buf[40:48], w.nsigs)
	binary.BigEndian.PutUint64(buf[48:56], nhashes)
	binary.BigEndian.PutUint64(buf[56:64], headerSize)
	binary.BigEndian.PutUint64(buf[64:72], hashIdxOff)
	return buf
}

func (w *Writer) padTo(off uint64) error {
	if off <= w.off {
		return nil
	}
	z := make([]byte, off-w.off)
	if _, err := w.fd.Write(z); err != nil {
		return err
	}
	w.off = off
	return nil
}

func alignUp(off, align uint64) uint64 {
	m := align - 1
	return (off + m) &^ m
}
