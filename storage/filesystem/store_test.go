package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/storage"
)

func TestRecords(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	recs := []sent.Record{
		{DocId: 2, Type: sent.Translation, TUnits: 3, WordLen: 12, Text: `He said "no", twice.`},
		{DocId: 1, Type: sent.Native, TUnits: 1, WordLen: 5, Text: "Thank you."},
	}
	if err := s.WriteRecords(recs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].DocId != 1 || got[1] != recs[0] {
		t.Errorf("unexpected records %+v", got)
	}

	r, err := s.Record(2)
	if err != nil || r.TUnits != 3 {
		t.Errorf("Record(2) = %+v, %v", r, err)
	}

	if _, err := s.Record(9); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordsHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecords(nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, RecordsFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "doc_id,type,t_units,word_len,text\n" {
		t.Errorf("unexpected header %q", data)
	}
}

func TestRecordsMissing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Records(); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLines(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	lines := []sent.Line{
		{SessionId: "ep-1", SpeakerId: "3", State: "Malta", SessionSeq: "1", Text: "Hello, colleagues.", Type: sent.NonNative},
	}
	if err := s.WriteLines(sent.NonNative, lines); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Lines(sent.NonNative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != lines[0] {
		t.Errorf("unexpected lines %+v", got)
	}
}

func TestFits(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	older := &infer.Result{RunId: "a", CreatedAt: time.Now().Add(-time.Hour), PValue: 0.5, Null: []float64{1, 2}}
	newer := &infer.Result{RunId: "b", CreatedAt: time.Now(), PValue: 0.01}
	for _, r := range []*infer.Result{older, newer} {
		if err := s.WriteFit(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	fits, err := s.Fits()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fits) != 2 || fits[0].RunId != "b" {
		t.Errorf("expected newest first, got %+v", fits)
	}

	res, err := s.Fit("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PValue != 0.5 || len(res.Null) != 2 {
		t.Errorf("unexpected fit %+v", res)
	}

	for _, id := range []string{"zzz", "../records", ""} {
		if _, err := s.Fit(id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestWrittenEmpty(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Lines(sent.Translation); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.WriteLines(sent.Translation, nil); err != nil {
		t.Fatal(err)
	}
	lines, err := s.Lines(sent.Translation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %+v", lines)
	}

	if err := s.WriteRecords(nil); err != nil {
		t.Fatal(err)
	}
	records, err := s.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
}
