package main

import (
	"fmt"
	"io"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"
)

// progressTracker shows one progress bar per started task.
type progressTracker struct {
	out      io.Writer
	progress *uiprogress.Progress
	bar      *uiprogress.Bar
}

func newProgressTracker(out io.Writer) *progressTracker {
	return &progressTracker{out: out}
}

func (t *progressTracker) Start(name string, total int) {
	t.progress = uiprogress.New()
	t.progress.SetOut(t.out)
	t.progress.Start()

	t.bar = t.progress.AddBar(max(total, 1))
	t.bar.AppendCompleted()
	t.bar.PrependElapsed()
	t.bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("%-12s", name)
	})
}

func (t *progressTracker) Incr() {
	t.bar.Incr()
}

func (t *progressTracker) Stop() {
	t.progress.Stop()
}

type nopTracker struct{}

func (nopTracker) Start(string, int) {}
func (nopTracker) Incr()             {}
func (nopTracker) Stop()             {}

// tracker is the progress reporting of the command, silent with --quiet.
type tracker interface {
	Start(name string, total int)
	Incr()
	Stop()
}

func newTracker(c *cli.Context, ui UI) tracker {
	if c.Bool("quiet") {
		return nopTracker{}
	}
	return newProgressTracker(ui.Err)
}
