// reader.go - read-only mmap open and random-access lookup

package index

import (
	"bufio"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dchest/siphash"
	arc "github.com/hashicorp/golang-lru/arc/v2"
	"github.com/opencoff/go-mmap"

	"github.com/opencoff/jam"
)

// Reader is the read-only, queryable view of a compacted index file. It
// is opened read-only with no advisory locking -- correct only because
// the build is known to be finished and no writer runs concurrently.
type Reader struct {
	fd *os.File
	mm *mmap.Mapping

	kmerSize  uint8
	hasFscale bool
	fscale    uint64

	nsigs   uint64
	nhashes uint64

	// sigs is slurped fully into memory at open, indexed by SketchId.
	sigs []jam.ShortSketchInfo

	salt       []byte
	hashIdxOff uint64

	// region is the mmap'd span from hashIdxOff to just before the
	// trailer: the hash index table followed by the postings blob.
	region []byte

	cache *arc.ARCCache[uint64, []uint32]
}

// Open opens path (or, if path is a directory, path/compact.mdb) for
// querying.
func Open(path string) (*Reader, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, "compact.mdb")
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rd := &Reader{fd: fd}
	if err := rd.open(path); err != nil {
		fd.Close()
		return nil, err
	}
	return rd, nil
}

func (rd *Reader) open(path string) error {
	st, err := rd.fd.Stat()
	if err != nil {
		return err
	}
	if st.Size() < headerSize+32 {
		return fmt.Errorf("%s: too small to be a valid index: %w", path, ErrIndexInconsistent)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(rd.fd, hdr[:]); err != nil {
		return fmt.Errorf("index: %s: can't read header: %w", path, err)
	}

	if err := rd.decodeHeader(hdr[:], st.Size()); err != nil {
		return fmt.Errorf("index: %s: %w", path, err)
	}
	if err := rd.verifyChecksum(hdr[:], st.Size()); err != nil {
		return fmt.Errorf("index: %s: %w", path, err)
	}
	if err := rd.loadSigs(); err != nil {
		return fmt.Errorf("index: %s: %w", path, err)
	}

	rd.cache, err = arc.NewARC[uint64, []uint32](4096)
	if err != nil {
		return err
	}

	mmsz := st.Size() - int64(rd.hashIdxOff) - 32
	m := mmap.New(rd.fd)
	mapping, err := m.Map(mmsz, int64(rd.hashIdxOff), mmap.PROT_READ, mmap.F_READAHEAD)
	if err != nil {
		return fmt.Errorf("index: %s: can't mmap %d bytes at off %d: %w", path, mmsz, rd.hashIdxOff, err)
	}
	rd.mm = mapping
	rd.region = mapping.Bytes()
	return nil
}

func (rd *Reader) decodeHeader(b []byte, sz int64) error {
	if string(b[0:4]) != magic {
		return fmt.Errorf("bad file magic %q: %w", b[0:4], ErrIndexInconsistent)
	}

	flags := binary.BigEndian.Uint32(b[4:8])
	rd.hasFscale = flags&flagHasFscale != 0
	rd.salt = append([]byte(nil), b[8:24]...)
	rd.kmerSize = b[24]
	rd.fscale = binary.BigEndian.Uint64(b[32:40])
	rd.nsigs = binary.BigEndian.Uint64(b[40:48])
	rd.nhashes = binary.BigEndian.Uint64(b[48:56])
	sigsOff := binary.BigEndian.Uint64(b[56:64])
	rd.hashIdxOff = binary.BigEndian.Uint64(b[64:72])

	if sigsOff != headerSize {
		return fmt.Errorf("corrupt header: bad sigs offset %d: %w", sigsOff, ErrIndexInconsistent)
	}
	if rd.hashIdxOff < headerSize || rd.hashIdxOff >= uint64(sz) {
		return fmt.Errorf("corrupt header: bad hash index offset %d: %w", rd.hashIdxOff, ErrIndexInconsistent)
	}
	return nil
}

func (rd *Reader) verifyChecksum(hdr []byte, sz int64) error {
	h := sha512.New512_256()
	h.Write(hdr)

	if _, err := rd.fd.Seek(headerSize, io.SeekStart); err != nil {
		return err
	}
	remsz := sz - headerSize - 32
	if n, err := io.CopyN(h, rd.fd, remsz); err != nil || n != remsz {
		return fmt.Errorf("metadata i/o error: %w", err)
	}

	var exp [32]byte
	if _, err := rd.fd.Seek(sz-32, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(rd.fd, exp[:]); err != nil {
		return err
	}

	sum := h.Sum(nil)
	if subtle.ConstantTimeCompare(sum, exp[:]) != 1 {
		return fmt.Errorf("checksum mismatch: %w", ErrIndexInconsistent)
	}
	return nil
}

// loadSigs slurps the sigs table sequentially into memory, validating
// each record's siphash checksum as it goes.
func (rd *Reader) loadSigs() error {
	if _, err := rd.fd.Seek(headerSize, io.SeekStart); err != nil {
		return err
	}

	br := bufio.NewReader(rd.fd)
	rd.sigs = make([]jam.ShortSketchInfo, 0, rd.nsigs)

	off := uint64(headerSize)
	for i := uint64(0); i < rd.nsigs; i++ {
		info, n, err := readSigRecord(br, rd.salt, off)
		if err != nil {
			return fmt.Errorf("sig %d: %w", i, err)
		}
		// every sketch in one index shares the header's k and fscale
		if info.KmerSize != rd.kmerSize || info.HasFscale != rd.hasFscale {
			return fmt.Errorf("sig %d: mixed kmer-size/fscale: %w", i, ErrIndexInconsistent)
		}
		rd.sigs = append(rd.sigs, info)
		off += n
	}
	return nil
}

func readSigRecord(r io.Reader, salt []byte, off uint64) (jam.ShortSketchInfo, uint64, error) {
	var c [8]byte
	if _, err := io.ReadFull(r, c[:]); err != nil {
		return jam.ShortSketchInfo{}, 0, err
	}
	csum := binary.BigEndian.Uint64(c[:])

	var nlenb [2]byte
	if _, err := io.ReadFull(r, nlenb[:]); err != nil {
		return jam.ShortSketchInfo{}, 0, err
	}
	nlen := binary.BigEndian.Uint16(nlenb[:])

	rest := make([]byte, int(nlen)+8+1+1+8)
	if _, err := io.ReadFull(r, rest); err != nil {
		return jam.ShortSketchInfo{}, 0, err
	}

	buf := append(nlenb[:], rest...)

	var o [8]byte
	binary.BigEndian.PutUint64(o[:], off)
	h := siphash.New(salt)
	h.Write(o[:])
	h.Write(buf)
	if h.Sum64() != csum {
		return jam.ShortSketchInfo{}, 0, fmt.Errorf("corrupted record at offset %d: %w", off, ErrIndexInconsistent)
	}

	info, err := unmarshalShortSketchInfo(buf)
	if err != nil {
		return jam.ShortSketchInfo{}, 0, err
	}
	return info, uint64(len(c) + len(buf)), nil
}

func unmarshalShortSketchInfo(buf []byte) (jam.ShortSketchInfo, error) {
	if len(buf) < 2 {
		return jam.ShortSketchInfo{}, fmt.Errorf("truncated sig record")
	}
	nlen := binary.BigEndian.Uint16(buf)
	buf = buf[2:]
	if len(buf) < int(nlen)+8+1+1+8 {
		return jam.ShortSketchInfo{}, fmt.Errorf("truncated sig record")
	}

	name := string(buf[:nlen])
	buf = buf[nlen:]
	numHashes := binary.BigEndian.Uint64(buf)
	buf = buf[8:]
	kmerSize := buf[0]
	buf = buf[1:]
	hasFscale := buf[0] == 1
	buf = buf[1:]
	fscale := binary.BigEndian.Uint64(buf)

	return jam.ShortSketchInfo{
		FileName:  name,
		NumHashes: numHashes,
		KmerSize:  kmerSize,
		HasFscale: hasFscale,
		Fscale:    fscale,
	}, nil
}

// KmerSize, HasFscale and Fscale report the parameters shared by every
// sketch in the index.
func (rd *Reader) KmerSize() uint8   { return rd.kmerSize }
func (rd *Reader) HasFscale() bool   { return rd.hasFscale }
func (rd *Reader) Fscale() uint64    { return rd.fscale }
func (rd *Reader) NumSigs() uint64   { return rd.nsigs }
func (rd *Reader) NumHashes() uint64 { return rd.nhashes }

// SigInfo returns the ShortSketchInfo for id.
func (rd *Reader) SigInfo(id uint32) (jam.ShortSketchInfo, bool) {
	if int(id) >= len(rd.sigs) {
		return jam.ShortSketchInfo{}, false
	}
	return rd.sigs[id], true
}

// AllSigs returns every signature header in SketchId order.
func (rd *Reader) AllSigs() []jam.ShortSketchInfo { return rd.sigs }

// postingsFor returns the sorted SketchIds for hash, or ok=false if the
// hash key is absent, by binary search over the mmap'd hash index table.
func (rd *Reader) postingsFor(hash uint64) ([]uint32, bool) {
	if ids, ok := rd.cache.Get(hash); ok {
		return ids, true
	}

	n := int(rd.nhashes)
	idx := sort.Search(n, func(i int) bool {
		rec := rd.region[i*hashIdxRecordSize:]
		return binary.BigEndian.Uint64(rec[0:8]) >= hash
	})
	if idx >= n {
		return nil, false
	}

	rec := rd.region[idx*hashIdxRecordSize:]
	h := binary.BigEndian.Uint64(rec[0:8])
	if h != hash {
		return nil, false
	}

	postOff := binary.BigEndian.Uint64(rec[8:16])
	postLen := binary.BigEndian.Uint32(rec[16:20])
	relOff := postOff - rd.hashIdxOff

	enc := rd.region[relOff : relOff+uint64(postLen)]
	ids, err := DecodePostings(enc)
	if err != nil {
		return nil, false
	}

	rd.cache.Add(hash, ids)
	return ids, true
}

// Close unmaps the index and releases the underlying file descriptor.
func (rd *Reader) Close() error {
	if rd.mm != nil {
		rd.mm.Unmap()
	}
	if rd.cache != nil {
		rd.cache.Purge()
	}
	return rd.fd.Close()
}
