// pipeline_test.go - test suite for the bounded MPSC build pipeline

package jam

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceSource is an in-memory RecordSource over a fixed slice of records,
// used to drive jam.Build without depending on jam/fastaio.
type sliceSource struct {
	recs []Record
	pos  int
	err  error
}

func (s *sliceSource) Next() (Record, bool, error) {
	if s.err != nil && s.pos >= len(s.recs) {
		return Record{}, false, s.err
	}
	if s.pos >= len(s.recs) {
		return Record{}, false, nil
	}
	r := s.recs[s.pos]
	s.pos++
	return r, true, nil
}

func (s *sliceSource) Close() error { return nil }

// collectingWriter records every Signature it receives, guarded by a
// mutex since jam.Build's writer goroutine is the only caller but tests
// may inspect it concurrently with a race detector enabled.
type collectingWriter struct {
	mu   sync.Mutex
	sigs []*Signature
	fail error
}

func (w *collectingWriter) Write(sig *Signature) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.sigs = append(w.sigs, sig)
	return nil
}

func TestBuildOneSignaturePerFile(t *testing.T) {
	files := map[string]RecordSource{
		"a.fa": &sliceSource{recs: []Record{{ID: []byte("r1"), Seq: []byte("ACGTACGTACGT")}}},
		"b.fa": &sliceSource{recs: []Record{{ID: []byte("r2"), Seq: []byte("TTTTGGGGCCCC")}}},
	}
	w := &collectingWriter{}

	err := Build(context.Background(), files, w, PipelineOpts{Threads: 2, KmerSize: 4})
	require.NoError(t, err)

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.sigs, 2)
}

func TestBuildPropagatesSketcherError(t *testing.T) {
	wantErr := errors.New("boom")
	files := map[string]RecordSource{
		"bad.fa": &sliceSource{recs: nil, err: wantErr},
	}
	w := &collectingWriter{}

	err := Build(context.Background(), files, w, PipelineOpts{Threads: 1, KmerSize: 21})
	require.Error(t, err)
	require.ErrorIs(t, err, wantErr)
}

func TestBuildSurfacesWriterError(t *testing.T) {
	wantErr := errors.New("disk full")
	files := map[string]RecordSource{
		"a.fa": &sliceSource{recs: []Record{{ID: []byte("r1"), Seq: []byte("ACGTACGTACGT")}}},
	}
	w := &collectingWriter{fail: wantErr}

	err := Build(context.Background(), files, w, PipelineOpts{Threads: 1, KmerSize: 4})
	require.Error(t, err)
	require.ErrorIs(t, err, wantErr)
}

func TestBuildDefaultsThreadsToOne(t *testing.T) {
	files := map[string]RecordSource{
		"a.fa": &sliceSource{recs: []Record{{ID: []byte("r1"), Seq: []byte("ACGT")}}},
	}
	w := &collectingWriter{}
	err := Build(context.Background(), files, w, PipelineOpts{Threads: 0, KmerSize: 4})
	require.NoError(t, err)
	require.Len(t, w.sigs, 1)
}
