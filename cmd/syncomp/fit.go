package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/config"
	"github.com/revelaction/syncomp/infer"
	"github.com/revelaction/syncomp/render"
)

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "balance", Usage: "downsample the larger level"},
		&cli.StringFlag{Name: "formula", Usage: "ratio or raw_with_covariate"},
		&cli.IntFlag{Name: "permutations", Usage: "permutation iterations"},
		&cli.IntFlag{Name: "bootstraps", Usage: "bootstrap iterations"},
		&cli.Float64Flag{Name: "confidence", Usage: "confidence level of the bootstrap interval"},
		&cli.Uint64Flag{Name: "seed", Usage: "random seed, fresh when not given"},
		&cli.StringFlag{Name: "reference", Usage: "reference document type"},
		&cli.StringFlag{Name: "treatment", Usage: "treatment document type"},
		&cli.IntFlag{Name: "workers", Usage: "parallel resampling workers"},
	}
}

func fitFlags() []cli.Flag {
	return append(modelFlags(),
		formatFlag(),
		&cli.BoolFlag{Name: "no-color", Usage: "plain output"},
		&cli.BoolFlag{Name: "histogram", Usage: "draw the null distribution"},
	)
}

func applyModelFlags(c *cli.Context, cfg *config.Config) {
	m := &cfg.Model
	if c.IsSet("balance") {
		m.BalanceClasses = c.Bool("balance")
	}
	if c.IsSet("formula") {
		m.ComplexityFormula = c.String("formula")
	}
	if c.IsSet("permutations") {
		m.PermutationIterations = c.Int("permutations")
	}
	if c.IsSet("bootstraps") {
		m.BootstrapIterations = c.Int("bootstraps")
	}
	if c.IsSet("confidence") {
		m.ConfidenceLevel = c.Float64("confidence")
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		m.RandomSeed = &seed
	}
	if c.IsSet("reference") {
		m.ReferenceLevel = c.String("reference")
	}
	if c.IsSet("treatment") {
		m.TreatmentLevel = c.String("treatment")
	}
	if c.IsSet("workers") {
		m.Workers = c.Int("workers")
	}
}

func fitCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	rep, err := render.NewReporter(c.String("format"), ui.Out, !c.Bool("no-color"))
	if err != nil {
		return err
	}

	res, err := fit(e, newTracker(c, ui))
	if err != nil {
		return err
	}

	return report(rep, res, c.Bool("histogram"))
}

// fit runs the inference on the stored records and stores the result.
func fit(e *env, tr tracker) (*infer.Result, error) {
	records, err := e.store.Records()
	if err != nil {
		return nil, err
	}

	opts, err := e.cfg.ModelOptions()
	if err != nil {
		return nil, err
	}
	opts.Tracker = tr

	res, err := infer.Fit(records, opts)
	if err != nil {
		var insErr *infer.InsufficientDataError
		if errors.As(err, &insErr) {
			e.log.Error("%s has %d records, at least %d needed", insErr.Level, insErr.Count, infer.MinPerLevel)
		}
		return nil, err
	}

	if err := e.store.WriteFit(res); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	e.log.Info("run %s: estimate %.4f, p-value %.4f", res.RunId, res.Estimate, res.PValue)
	return res, nil
}

func report(rep render.Reporter, res *infer.Result, histogram bool) error {
	if err := rep.Fit(res); err != nil {
		return err
	}

	r, ok := rep.(*render.Renderer)
	if !ok || !histogram {
		return nil
	}
	fmt.Fprintln(r.W)
	return r.Histogram(res)
}
