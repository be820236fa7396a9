package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := run(os.Args, ui); err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "syncomp: %v\n", err)
}

func run(args []string, ui UI) error {
	return newApp(ui).Run(args)
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "syncomp",
		Usage:     "syntactic complexity of native and translated parliamentary speech",
		Version:   BuildTag,
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		// errors are printed once, by main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration `FILE`"},
			&cli.StringFlag{Name: "store", Aliases: []string{"s"}, Usage: "store `PATH`: a directory or a .db file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info or error"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "no progress bars"},
		},
		Commands: []*cli.Command{
			{
				Name:   "curate",
				Usage:  "load and sample the corpus subsets into the store",
				Flags:  curateFlags(),
				Action: stage("curate", ui, curateCommand),
			},
			{
				Name:   "annotate",
				Usage:  "parse the curated lines into CoNLL-U files",
				Flags:  annotateFlags(),
				Action: stage("annotate", ui, annotateCommand),
			},
			{
				Name:   "aggregate",
				Usage:  "compute the sentence complexity records from the CoNLL-U files",
				Flags:  annotateFlags(),
				Action: stage("aggregate", ui, aggregateCommand),
			},
			{
				Name:   "inspect",
				Usage:  "summary statistics of the records",
				Flags:  inspectFlags(),
				Action: stage("inspect", ui, inspectCommand),
			},
			{
				Name:   "fit",
				Usage:  "fit the model, run the permutation test and the bootstrap",
				Flags:  fitFlags(),
				Action: stage("fit", ui, fitCommand),
			},
			{
				Name:      "fits",
				Usage:     "list the stored fits, or show one",
				ArgsUsage: "[run-id]",
				Flags:     fitsFlags(),
				Action:    stage("fits", ui, fitsCommand),
			},
			{
				Name:   "run",
				Usage:  "run all stages, from the corpus to the fit",
				Flags:  runFlags(),
				Action: stage("run", ui, runCommand),
			},
			{
				Name:   "query",
				Usage:  "interactive queries over the records",
				Action: stage("query", ui, queryCommand),
			},
			{
				Name:   "serve",
				Usage:  "serve records and fits over HTTP",
				Flags:  serveFlags(),
				Action: stage("serve", ui, serveCommand),
			},
			{
				Name:   "dict",
				Usage:  "print the data dictionary of the records table",
				Flags:  dictFlags(),
				Action: stage("dict", ui, dictCommand),
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					return versionCommand(ui)
				},
			},
		},
	}
}

// stage prefixes the errors of a command with its name.
func stage(name string, ui UI, fn func(*cli.Context, UI) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := fn(c, ui); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}
