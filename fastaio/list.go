// list.go - .list file expansion and input validation

package fastaio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// recognized input extensions; a trailing .gz is stripped before this
// check.
var recognizedExt = map[string]bool{
	".fasta": true,
	".fa":    true,
	".fastq": true,
	".fq":    true,
}

// ExpandInputs resolves the command-line input list into a concrete set
// of sequence files: any path ending in .list is itself a text file of
// one input path per line (blank lines and lines starting with '#'
// ignored) and is expanded in place; all other paths are taken
// literally. Every resulting path must have a recognized extension;
// mixing .list files with direct inputs is an error. Mixing FASTA and
// FASTQ inputs is not, and isn't rejected here.
func ExpandInputs(paths []string) ([]string, error) {
	var sawList, sawDirect bool
	for _, p := range paths {
		if strings.HasSuffix(p, ".list") {
			sawList = true
		} else {
			sawDirect = true
		}
	}
	if sawList && sawDirect {
		return nil, fmt.Errorf("fastaio: cannot mix .list files with direct inputs")
	}

	var out []string
	for _, p := range paths {
		if strings.HasSuffix(p, ".list") {
			expanded, err := readListFile(p)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("fastaio: no input files")
	}

	for _, p := range out {
		name := strings.TrimSuffix(p, ".gz")
		ext := filepath.Ext(name)
		if !recognizedExt[ext] {
			return nil, fmt.Errorf("fastaio: %s: unrecognized extension", p)
		}
	}

	return out, nil
}

func readListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fastaio: %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fastaio: %s: %w", path, err)
	}
	return lines, nil
}
