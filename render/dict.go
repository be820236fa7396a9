package render

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Column describes one column of the records table.
type Column struct {
	Name        string
	Type        string
	Description string
}

// RecordColumns is the data dictionary of the records table.
var RecordColumns = []Column{
	{"doc_id", "integer", "Unique sentence identifier in the combined table, 1..N"},
	{"type", "string", "Corpus subset of the sentence: native, non-native or translation"},
	{"t_units", "integer", "Main clauses (root, cop) plus subordinate clauses (ccomp, xcomp, acl:relcl)"},
	{"word_len", "integer", "Number of annotated tokens of the sentence"},
	{"text", "string", "Sentence text"},
}

func DictionaryFormats() []string {
	return []string{"markdown", "csv"}
}

// Dictionary writes the columns as a markdown table or as CSV.
func Dictionary(w io.Writer, format string, columns []Column) error {
	switch format {
	case "", "markdown":
		fmt.Fprintln(w, "| column | type | description |")
		fmt.Fprintln(w, "|---|---|---|")
		for _, c := range columns {
			fmt.Fprintf(w, "| %s | %s | %s |\n", c.Name, c.Type, c.Description)
		}
		return nil
	case "csv":
		cw := csv.NewWriter(w)
		cw.Write([]string{"column", "type", "description"})
		for _, c := range columns {
			cw.Write([]string{c.Name, c.Type, c.Description})
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("unknown dictionary format %q", format)
}
