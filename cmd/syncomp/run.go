package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/render"
)

func runFlags() []cli.Flag {
	flags := append(curateFlags()[:2], annotateFlags()...)
	flags = append(flags, fitFlags()...)
	return append(flags, &cli.BoolFlag{Name: "from-conll", Usage: "start from existing CoNLL-U files, skip curate and annotate"})
}

// runCommand chains all stages. Every stage reads the output of the
// previous one from the store.
func runCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	rep, err := render.NewReporter(c.String("format"), ui.Out, !c.Bool("no-color"))
	if err != nil {
		return err
	}
	tr := newTracker(c, ui)

	if !c.Bool("from-conll") {
		if err := curate(e); err != nil {
			return fmt.Errorf("curate: %w", err)
		}
		if err := annotateLines(c.Context, e, tr); err != nil {
			return fmt.Errorf("annotate: %w", err)
		}
	}

	if err := aggregate(c.Context, e); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if _, err := inspect(e); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	res, err := fit(e, tr)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	return report(rep, res, c.Bool("histogram"))
}
