package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/render"
	"github.com/revelaction/syncomp/stat"
)

func inspectFlags() []cli.Flag {
	return []cli.Flag{
		formatFlag(),
		&cli.BoolFlag{Name: "no-color", Usage: "plain output"},
		&cli.BoolFlag{Name: "dist", Usage: "also print sentences per token length"},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"}
}

func inspectCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	rep, err := render.NewReporter(c.String("format"), ui.Out, !c.Bool("no-color"))
	if err != nil {
		return err
	}

	st, err := inspect(e)
	if err != nil {
		return err
	}
	if err := rep.Summary(st); err != nil {
		return err
	}

	if r, ok := rep.(*render.Renderer); ok && c.Bool("dist") {
		r.Distribution(st)
	}
	return nil
}

func inspect(e *env) (stat.Stats, error) {
	records, err := e.store.Records()
	if err != nil {
		return stat.Stats{}, err
	}

	hdl := stat.NewHandler()
	hdl.Aggregate(records)
	st := hdl.Get()
	e.log.Info("%d records, %d missing", st.NumSentences, st.Missing)
	return st, nil
}
