package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/render"
)

func fitsFlags() []cli.Flag {
	return []cli.Flag{
		formatFlag(),
		&cli.BoolFlag{Name: "no-color", Usage: "plain output"},
		&cli.BoolFlag{Name: "histogram", Usage: "draw the null distribution"},
	}
}

func fitsCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	if c.NArg() > 0 {
		rep, err := render.NewReporter(c.String("format"), ui.Out, !c.Bool("no-color"))
		if err != nil {
			return err
		}
		res, err := e.store.Fit(c.Args().First())
		if err != nil {
			return err
		}
		return report(rep, res, c.Bool("histogram"))
	}

	fits, err := e.store.Fits()
	if err != nil {
		return err
	}
	for _, f := range fits {
		fmt.Fprintf(ui.Out, "%s %s %-18s %s/%s estimate %9.4f p %.4f\n",
			f.RunId, f.CreatedAt.Format("2006-01-02 15:04"), f.Formula.String(), f.Treatment, f.Reference, f.Estimate, f.PValue)
	}
	return nil
}
