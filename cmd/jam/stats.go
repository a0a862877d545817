// stats.go -- 'stats' command implementation: summarize an on-disk index

package main

import (
	"fmt"
	"os"

	flag "github.com/opencoff/pflag"

	"github.com/opencoff/jam/index"
)

type statsCommand struct{}

func init() {
	registerCommand("stats", &statsCommand{})
}

func (c *statsCommand) run(args []string, opt *Option) (err error) {
	var input string
	var summary bool

	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&input, "input", "i", "", "Index `PATH` to summarize")
	fs.BoolVarP(&summary, "summary", "s", false, "Show only the total signature/hash counts")
	fs.Usage = func() {
		fmt.Printf(`Usage: stats -i INDEX [options]

options:
`)
		fs.PrintDefaults()
		os.Exit(exitOK)
	}

	if err = fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("stats: %w: %w", errUsage, err)
	}
	if input == "" {
		return fmt.Errorf("stats: %w: -i/--input is required", errUsage)
	}

	rd, err := index.Open(input)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer rd.Close()

	if summary {
		fmt.Printf("signatures\t%d\n", rd.NumSigs())
		fmt.Printf("hashes\t%d\n", rd.NumHashes())
		return nil
	}

	for _, info := range rd.AllSigs() {
		fscale := "-"
		if info.HasFscale {
			fscale = fmt.Sprintf("%d", info.Fscale)
		}
		fmt.Printf("%s\t%s\t%d\t%d\n", info.FileName, fscale, info.KmerSize, info.NumHashes)
	}
	return nil
}
