package storage

import (
	"errors"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
)

// ErrNotFound is returned when a record or fit does not exist.
var ErrNotFound = errors.New("not found")

// LineReader defines read operations for the curated corpus lines
type LineReader interface {
	// Lines returns the lines of one corpus subset, in corpus order
	Lines(docType sent.DocType) ([]sent.Line, error)
}

// LineWriter defines write operations for the curated corpus lines
type LineWriter interface {
	// WriteLines replaces the lines of one corpus subset
	WriteLines(docType sent.DocType, lines []sent.Line) error
}

// RecordReader defines read operations for the sentence complexity table
type RecordReader interface {
	// Records returns all records ordered by doc id
	Records() ([]sent.Record, error)

	// Record returns the record with the given doc id
	Record(docId int) (sent.Record, error)
}

// RecordWriter defines write operations for the sentence complexity table
type RecordWriter interface {
	// WriteRecords replaces the whole table. Either all records are
	// persisted or none.
	WriteRecords(records []sent.Record) error
}

// FitReader defines read operations for model fit results
type FitReader interface {
	// Fits returns all results, newest first
	Fits() ([]*infer.Result, error)

	// Fit returns the result of a run
	Fit(runId string) (*infer.Result, error)
}

// FitWriter defines write operations for model fit results
type FitWriter interface {
	WriteFit(res *infer.Result) error
}

// Store combines all tables of a pipeline run.
type Store interface {
	LineReader
	LineWriter
	RecordReader
	RecordWriter
	FitReader
	FitWriter

	Close() error
}
