// Package annotate turns corpus documents into dependency-annotated token
// rows, through an external parser, pre-parsed CoNLL-U files or a Redis
// cache in front of either.
package annotate

import (
	"context"

	"github.com/revelaction/syncomp/corpus"
	sent "github.com/revelaction/syncomp/sentence"
)

// Annotator parses documents into one Row per token. Row.DocId is the
// Document.Id the token belongs to.
type Annotator interface {
	Annotate(ctx context.Context, docs []corpus.Document) ([]sent.Row, error)
}

// Tracker receives batch progress.
type Tracker interface {
	Start(name string, total int)
	Incr()
	Stop()
}

// Batched annotates documents in batches of Size, reporting one step per
// batch.
type Batched struct {
	Inner   Annotator
	Size    int
	Name    string
	Tracker Tracker
}

func (b *Batched) Annotate(ctx context.Context, docs []corpus.Document) ([]sent.Row, error) {
	size := b.Size
	if size < 1 {
		size = len(docs)
	}

	numBatches := 0
	if size > 0 {
		numBatches = (len(docs) + size - 1) / size
	}
	if b.Tracker != nil {
		b.Tracker.Start(b.Name, numBatches)
		defer b.Tracker.Stop()
	}

	var rows []sent.Row
	for start := 0; start < len(docs); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+size, len(docs))
		batch, err := b.Inner.Annotate(ctx, docs[start:end])
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch...)

		if b.Tracker != nil {
			b.Tracker.Incr()
		}
	}

	return rows, nil
}
