package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/query"
	"github.com/revelaction/syncomp/render"
)

func queryCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	r := render.NewRenderer(ui.Out)
	r.HasColor = true

	// now present the REPL
	return query.NewHandler(e.store, r).Run()
}
