// progress.go -- optional terminal progress bar for long-running commands

package main

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progress wraps one mpb bar tracking a count of completed input files.
// It is a no-op when -s/--silent is set.
type progress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgress(name string, total int, silent bool) *progress {
	if silent || total <= 0 {
		return &progress{}
	}

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(decor.Name(name)),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d"), decor.Percentage()),
	)
	return &progress{p: p, bar: bar}
}

func (pr *progress) increment() {
	if pr.bar != nil {
		pr.bar.Increment()
	}
}

func (pr *progress) done() {
	if pr.p != nil {
		pr.p.Wait()
	}
}
