package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/stat"
)

// JSONRenderer writes pipeline outputs as JSON to a writer.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

func (r *JSONRenderer) Fit(res *infer.Result) error {
	return r.encode(res)
}

func (r *JSONRenderer) Summary(st stat.Stats) error {
	return r.encode(st)
}

// Records serializes the records as a JSON array, empty for no records.
func (r *JSONRenderer) Records(records []sent.Record) error {
	if records == nil {
		records = []sent.Record{}
	}
	return r.encode(records)
}

func (r *JSONRenderer) encode(v any) error {
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// compile-time interface check
var _ Reporter = (*JSONRenderer)(nil)
