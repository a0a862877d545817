// dist.go -- 'dist' command implementation: containment query

package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	flag "github.com/opencoff/pflag"
	"go.uber.org/zap"

	"github.com/opencoff/jam"
	"github.com/opencoff/jam/index"
)

type distCommand struct{}

func init() {
	registerCommand("dist", &distCommand{})
}

func (c *distCommand) run(args []string, opt *Option) (err error) {
	var input, out string
	var dbs []string
	var cutoff float64

	fs := flag.NewFlagSet("dist", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&input, "input", "i", "", "Query `PATH` (FASTA/FASTQ or sourmash JSON)")
	fs.StringArrayVarP(&dbs, "db", "d", nil, "Database `PATH` (repeatable): an .mdb index, or a sourmash JSON file")
	fs.StringVarP(&out, "output", "o", "", "Write results to `PATH` (default stdout)")
	fs.Float64VarP(&cutoff, "cutoff", "c", 0.0, "Keep only results with containment%% over `C`")
	fs.Usage = func() {
		fmt.Printf(`Usage: dist -i INPUT -d DB [-d DB...] [options]

options:
`)
		fs.PrintDefaults()
		os.Exit(exitOK)
	}

	if err = fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("dist: %w: %w", errUsage, err)
	}
	if input == "" {
		return fmt.Errorf("dist: %w: -i/--input is required", errUsage)
	}
	if len(dbs) == 0 {
		return fmt.Errorf("dist: %w: at least one -d/--db is required", errUsage)
	}

	var results []jam.CompareResult
	if indexPath, ok := singleIndexPath(dbs); ok {
		results, err = c.runIndexed(input, indexPath, opt.threads, cutoff, opt.Logger())
	} else {
		results, err = c.runPairwise(input, dbs, cutoff)
	}
	if err != nil {
		return fmt.Errorf("dist: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Containment > results[j].Containment
	})

	w := os.Stdout
	if out != "" {
		f, ferr := os.Create(out)
		if ferr != nil {
			return fmt.Errorf("dist: %w", ferr)
		}
		defer f.Close()
		w = f
	}
	for _, r := range results {
		fmt.Fprintln(w, r.String())
	}
	return nil
}

// singleIndexPath reports whether dbs names exactly one on-disk index
// (a directory holding compact.mdb, or a path ending in .mdb), in which
// case dist runs in index mode rather than in-memory pairwise mode.
func singleIndexPath(dbs []string) (string, bool) {
	if len(dbs) != 1 {
		return "", false
	}
	p := dbs[0]
	if strings.HasSuffix(p, ".mdb") {
		return p, true
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		if _, err := os.Stat(filepath.Join(p, "compact.mdb")); err == nil {
			return p, true
		}
	}
	return "", false
}

func (c *distCommand) runIndexed(input, dbPath string, threads int, cutoff float64, log *zap.SugaredLogger) ([]jam.CompareResult, error) {
	rd, err := index.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	var maxHash uint64
	if rd.HasFscale() && rd.Fscale() > 0 {
		maxHash = math.MaxUint64 / rd.Fscale()
	}

	queries, err := loadQuery(input, rd.KmerSize(), jam.AlgoDefault, rd.HasFscale(), maxHash)
	if err != nil {
		return nil, err
	}

	cmp := index.NewComparator(rd, cutoff)
	cmp.SetLogger(log)
	return cmp.Compare(threads, queries)
}

func (c *distCommand) runPairwise(input string, dbs []string, cutoff float64) ([]jam.CompareResult, error) {
	queries, err := loadQuery(input, 21, jam.AlgoDefault, false, 0)
	if err != nil {
		return nil, err
	}

	var targets []*jam.Sketch
	for _, p := range dbs {
		sks, err := loadSourmashSketches(p)
		if err != nil {
			return nil, err
		}
		targets = append(targets, sks...)
	}

	cmp := &jam.Comparator{Cutoff: cutoff}
	var out []jam.CompareResult
	for _, q := range queries {
		r, err := cmp.Compare(q, targets)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}
