package query

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/revelaction/syncomp/render"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/storage"
)

type memRecords []sent.Record

func (m memRecords) Records() ([]sent.Record, error) { return m, nil }

func (m memRecords) Record(docId int) (sent.Record, error) {
	for _, r := range m {
		if r.DocId == docId {
			return r, nil
		}
	}
	return sent.Record{}, fmt.Errorf("record %d: %w", docId, storage.ErrNotFound)
}

var fixture = memRecords{
	{DocId: 1, Type: sent.Native, TUnits: 1, WordLen: 10, Text: "native one"},
	{DocId: 2, Type: sent.Native, TUnits: 3, WordLen: 6, Text: "native two"},
	{DocId: 3, Type: sent.Translation, TUnits: 2, WordLen: 4, Text: "translation one"},
	{DocId: 4, Type: sent.Translation, TUnits: 0, WordLen: 3, Text: "translation two"},
}

func newTestHandler() (*Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewHandler(fixture, render.NewRenderer(&buf)), &buf
}

func TestExecDoc(t *testing.T) {
	h, buf := newTestHandler()

	if err := h.Exec("doc 3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "translation one") {
		t.Errorf("unexpected output %q", buf.String())
	}

	if err := h.Exec("doc 99"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := h.Exec("doc x"); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestExecType(t *testing.T) {
	h, buf := newTestHandler()

	if err := h.Exec("type translation 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := strings.TrimSpace(buf.String())
	if strings.Count(out, "\n") != 0 || !strings.Contains(out, "translation one") {
		t.Errorf("expected a single translation line, got %q", out)
	}

	if err := h.Exec("type german"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestExecTop(t *testing.T) {
	h, buf := newTestHandler()

	if err := h.Exec("top 2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	// 3/6 and 2/4 tie at 0.5, broken by doc id
	if !strings.Contains(lines[0], "native two") || !strings.Contains(lines[1], "translation one") {
		t.Errorf("unexpected order %q", lines)
	}
}

func TestExecSummary(t *testing.T) {
	h, buf := newTestHandler()

	if err := h.Exec("summary"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Sentences: 4") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestExecQuitAndUnknown(t *testing.T) {
	h, _ := newTestHandler()

	if err := h.Exec("quit"); !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if err := h.Exec("plot"); err == nil {
		t.Error("expected error for unknown command")
	}
	if err := h.Exec("   "); err != nil {
		t.Errorf("expected no error for empty line, got %v", err)
	}
}

func TestSuggest(t *testing.T) {
	got := suggest("t")
	if len(got) != 2 || got[0].Text != "type" || got[1].Text != "top" {
		t.Errorf("unexpected suggestions %+v", got)
	}

	got = suggest("type tr")
	if len(got) != 1 || got[0].Text != "translation" {
		t.Errorf("unexpected suggestions %+v", got)
	}

	if got := suggest(""); len(got) != 0 {
		t.Errorf("expected no suggestions, got %+v", got)
	}
}
