package stat

import (
	"testing"

	sent "github.com/revelaction/syncomp/sentence"
)

func TestAggregate(t *testing.T) {
	recs := []sent.Record{
		{Type: sent.Native, TUnits: 1, WordLen: 4, Text: "a"},
		{Type: sent.Native, TUnits: 2, WordLen: 6, Text: "b"},
		{Type: sent.Translation, TUnits: 3, WordLen: 8, Text: "c"},
		{Type: sent.Translation, TUnits: 0, WordLen: 6, Text: ""},
	}

	hdl := NewHandler()
	hdl.Aggregate(recs)
	s := hdl.Get()

	if s.NumSentences != 4 || s.NumTokens != 24 || s.TokensPerSentenceMean != 6 {
		t.Errorf("unexpected totals: %+v", s)
	}
	if s.TokensPerSentenceDis[6] != 2 {
		t.Errorf("expected two sentences of length 6, got %d", s.TokensPerSentenceDis[6])
	}
	if s.TypeCounts[sent.Native] != 2 || s.TypeCounts[sent.Translation] != 2 {
		t.Errorf("unexpected type counts %v", s.TypeCounts)
	}
	if s.Missing != 1 {
		t.Errorf("expected 1 missing, got %d", s.Missing)
	}
	if s.TUnits.Min != 0 || s.TUnits.Max != 3 || s.TUnits.Mean != 1.5 {
		t.Errorf("unexpected t_units summary %+v", s.TUnits)
	}
	if s.WordLen.Median != 6 {
		t.Errorf("expected median word_len 6, got %g", s.WordLen.Median)
	}

	if got := s.Lengths(); len(got) != 3 || got[0] != 4 || got[2] != 8 {
		t.Errorf("unexpected lengths %v", got)
	}
}

func TestImbalance(t *testing.T) {
	s := Stats{TypeCounts: map[sent.DocType]int{sent.Native: 100, sent.Translation: 20}}
	if r := s.Imbalance(sent.Native, sent.Translation); r != 5 {
		t.Errorf("expected 5, got %g", r)
	}
	if r := s.Imbalance(sent.Native, sent.NonNative); r != 0 {
		t.Errorf("expected 0 for an absent level, got %g", r)
	}
}

func TestEmpty(t *testing.T) {
	s := NewHandler().Get()
	if s.NumSentences != 0 || s.TokensPerSentenceMean != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}
