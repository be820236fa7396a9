package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/render"
)

func dictFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "markdown or csv"},
	}
}

func dictCommand(c *cli.Context, ui UI) error {
	return render.Dictionary(ui.Out, c.String("format"), render.RecordColumns)
}
