package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/annotate"
	"github.com/revelaction/syncomp/complexity"
	sent "github.com/revelaction/syncomp/sentence"
)

func aggregateCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	return aggregate(c.Context, e)
}

// aggregate reads the CoNLL-U file of each subset and replaces the records
// table. Subsets without a file are skipped.
func aggregate(ctx context.Context, e *env) error {
	var subsets []complexity.Subset
	for _, docType := range sent.DocTypes() {
		path := conllPath(e.cfg, docType)
		rows, err := annotate.NewConllFile(path).Annotate(ctx, nil)
		if errors.Is(err, os.ErrNotExist) {
			e.log.Info("%s: no annotations at %s, skipped", docType, path)
			continue
		}
		if err != nil {
			return err
		}
		e.log.Debug("%s: %d token rows", docType, len(rows))
		subsets = append(subsets, complexity.Subset{Type: docType, Rows: rows})
	}

	if len(subsets) == 0 {
		return fmt.Errorf("no annotations found in %s", e.cfg.Annotate.ConllDir)
	}

	records, err := complexity.AggregateAll(subsets)
	if err != nil {
		return err
	}

	if err := e.store.WriteRecords(records); err != nil {
		return err
	}
	e.log.Info("%d records from %d subsets", len(records), len(subsets))
	return nil
}
