// list_test.go - test suite for .list expansion and input validation

package fastaio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandInputsLiteralPaths(t *testing.T) {
	out, err := ExpandInputs([]string{"a.fasta", "b.fasta.gz"})
	require.NoError(t, err)
	require.Equal(t, []string{"a.fasta", "b.fasta.gz"}, out)
}

func TestExpandInputsListFile(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "genomes.list")
	require.NoError(t, os.WriteFile(listPath, []byte("# comment\na.fasta\n\nb.fasta\n"), 0644))

	out, err := ExpandInputs([]string{listPath})
	require.NoError(t, err)
	require.Equal(t, []string{"a.fasta", "b.fasta"}, out)
}

func TestExpandInputsRejectsMixedListAndDirect(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "genomes.list")
	require.NoError(t, os.WriteFile(listPath, []byte("a.fasta\n"), 0644))

	_, err := ExpandInputs([]string{listPath, "b.fasta"})
	require.Error(t, err)
}

func TestExpandInputsAllowsMixedFastaFastq(t *testing.T) {
	out, err := ExpandInputs([]string{"a.fasta", "b.fastq"})
	require.NoError(t, err)
	require.Equal(t, []string{"a.fasta", "b.fastq"}, out)
}

func TestExpandInputsRejectsUnrecognizedExtension(t *testing.T) {
	_, err := ExpandInputs([]string{"a.txt"})
	require.Error(t, err)
}

func TestExpandInputsRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "empty.list")
	require.NoError(t, os.WriteFile(listPath, []byte("# nothing here\n"), 0644))

	_, err := ExpandInputs([]string{listPath})
	require.Error(t, err)
}
