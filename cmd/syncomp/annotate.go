package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/annotate"
	"github.com/revelaction/syncomp/config"
	"github.com/revelaction/syncomp/corpus"
	sent "github.com/revelaction/syncomp/sentence"
)

func annotateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "parser", Usage: "parser `COMMAND` reading documents on stdin and writing CoNLL-U"},
		&cli.StringFlag{Name: "conll-dir", Usage: "`DIR` of the CoNLL-U files"},
	}
}

func applyAnnotateFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("parser") {
		cfg.Annotate.Command = strings.Fields(c.String("parser"))
	}
	if c.IsSet("conll-dir") {
		cfg.Annotate.ConllDir = c.String("conll-dir")
	}
}

func annotateCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	return annotateLines(c.Context, e, newTracker(c, ui))
}

// annotateLines parses the stored lines of every subset and writes one
// CoNLL-U file per subset.
func annotateLines(ctx context.Context, e *env, tr tracker) error {
	parser, err := annotate.NewCommand(e.cfg.Annotate.Command, e.cfg.Annotate.Timeout)
	if err != nil {
		return err
	}

	var annotator annotate.Annotator = parser
	var cache *annotate.Cache
	if e.cfg.Cache.RedisAddr != "" {
		client := newRedisClient(e.cfg.Cache)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", e.cfg.Cache.RedisAddr, err)
		}
		cache = annotate.NewCache(client, parser, e.cfg.Cache.TTL)
		annotator = cache
	}

	if err := os.MkdirAll(e.cfg.Annotate.ConllDir, 0755); err != nil {
		return err
	}

	for _, docType := range sent.DocTypes() {
		lines, err := e.store.Lines(docType)
		if err != nil {
			return err
		}

		batched := &annotate.Batched{
			Inner:   annotator,
			Size:    e.cfg.Annotate.BatchSize,
			Name:    string(docType),
			Tracker: tr,
		}
		rows, err := batched.Annotate(ctx, corpus.Documents(lines))
		if err != nil {
			return fmt.Errorf("%s: %w", docType, err)
		}

		if err := writeConllFile(conllPath(e.cfg, docType), rows); err != nil {
			return err
		}
		e.log.Info("%s: %d documents, %d tokens", docType, len(lines), len(rows))
	}

	if cache != nil {
		hits, misses := cache.Stats()
		e.log.Info("annotation cache: %d hits, %d misses", hits, misses)
	}
	return nil
}

// writeConllFile replaces path only once all rows are written.
func writeConllFile(path string, rows []sent.Row) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := annotate.WriteConll(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
