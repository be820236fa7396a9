package main

import (
	"math/rand/v2"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/config"
	"github.com/revelaction/syncomp/corpus"
	sent "github.com/revelaction/syncomp/sentence"
)

func curateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "corpus", Usage: "corpus `DIR` with the .dat and .tok files"},
		&cli.IntFlag{Name: "sample", Usage: "lines per subset, 0 keeps all"},
		&cli.Uint64Flag{Name: "seed", Usage: "random seed of the sampling"},
	}
}

func applyCorpusFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("corpus") {
		cfg.Corpus.Dir = c.String("corpus")
	}
	if c.IsSet("sample") {
		cfg.Corpus.SampleSize = c.Int("sample")
	}
}

func curateCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	return curate(e)
}

func curate(e *env) error {
	var seed uint64
	if e.cfg.Model.RandomSeed != nil {
		seed = *e.cfg.Model.RandomSeed
	} else {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, 0))

	for _, docType := range sent.DocTypes() {
		stem := e.cfg.Stems()[docType]
		lines, err := corpus.Load(e.cfg.Corpus.Dir, stem, docType)
		if err != nil {
			return err
		}

		sampled := corpus.Sample(lines, e.cfg.Corpus.SampleSize, rng)
		if err := e.store.WriteLines(docType, sampled); err != nil {
			return err
		}
		e.log.Info("%s: %d lines, kept %d (seed %d)", docType, len(lines), len(sampled), seed)
	}
	return nil
}
