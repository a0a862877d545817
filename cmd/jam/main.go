// main.go -- genomic MinHash sketching and containment queries

// jam is a command line tool to build genomic MinHash sketches from
// FASTA/FASTQ files, persist them as a queryable inverted index or as
// sourmash-compatible JSON, and estimate pairwise or indexed containment
// between sketches.
package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/opencoff/pflag"

	"github.com/opencoff/jam"
	"github.com/opencoff/jam/index"
)

func main() {
	var opt Option

	usage := fmt.Sprintf(
		`%s - genomic MinHash sketching and containment

Usage: %s [global-options] CMD CMD-ARGS...

CMD is an operation to be performed and CMD-ARGS are operation specific
arguments. The list of supported operations are:

  sketch [options] INPUT...      -- Build sketches from FASTA/FASTQ inputs
  dist   [options]                -- Estimate containment against a database
  stats  [options]                -- Summarize an on-disk index
  merge  [options] OUT INPUT...   -- Merge sourmash-JSON signature files

Options:
`, os.Args[0], os.Args[0])

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(os.Stdout)
	fs.BoolVarP(&opt.verbose, "verbose", "V", false, "Show verbose output")
	fs.BoolVarP(&opt.silent, "silent", "s", false, "Suppress progress output")
	fs.BoolVarP(&opt.force, "force", "f", false, "Overwrite existing output")
	fs.IntVarP(&opt.threads, "threads", "t", 1, "Use `N` concurrent sketcher/query workers")
	fs.Usage = func() {
		fmt.Printf(usage)
		fs.PrintDefaults()
		os.Exit(exitOK)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		die(exitUsage, "%s", err)
	}

	args := fs.Args()
	if len(args) < 1 {
		fmt.Printf(usage)
		fs.PrintDefaults()
		os.Exit(exitOK)
	}

	if err := runCommand(args, &opt); err != nil {
		die(exitCode(err), "%s", err)
	}
}

// exitCode maps an error to the documented exit-code taxonomy.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.Is(err, index.ErrIndexInconsistent):
		return exitIndexInconsistent
	case errors.Is(err, jam.ErrBadInput),
		errors.Is(err, jam.ErrKSizeMismatch),
		errors.Is(err, jam.ErrUnsupportedHash),
		errors.Is(err, jam.ErrMixedHashWidth):
		return exitUsage
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return exitIO
	default:
		return exitInternal
	}
}

// die with error
func die(code int, f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(code)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}

	os.Stderr.WriteString(s)
	os.Stderr.Sync()
}
