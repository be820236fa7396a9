package render

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func TestDictionaryMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Dictionary(&buf, "markdown", RecordColumns); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(RecordColumns)+2 {
		t.Fatalf("expected %d lines, got %d", len(RecordColumns)+2, len(lines))
	}
	if !strings.HasPrefix(lines[2], "| doc_id | integer |") {
		t.Errorf("unexpected first column line %q", lines[2])
	}
}

func TestDictionaryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Dictionary(&buf, "csv", RecordColumns); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"doc_id", "type", "t_units", "word_len", "text"}
	if len(rows) != len(want)+1 {
		t.Fatalf("expected %d rows, got %d", len(want)+1, len(rows))
	}
	for i, name := range want {
		if rows[i+1][0] != name {
			t.Errorf("row %d: column %q, want %q", i+1, rows[i+1][0], name)
		}
	}
}

func TestDictionaryUnknownFormat(t *testing.T) {
	if err := Dictionary(&bytes.Buffer{}, "xml", RecordColumns); err == nil {
		t.Error("expected error")
	}
}
