package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/stat"
)

func testResult() *infer.Result {
	return &infer.Result{
		RunId:          "abc",
		Seed:           7,
		Formula:        infer.Ratio,
		Reference:      sent.Native,
		Treatment:      sent.Translation,
		Counts:         map[sent.DocType]int{sent.Native: 10, sent.Translation: 12},
		Fitted:         map[sent.DocType]int{sent.Native: 10, sent.Translation: 10},
		Balanced:       true,
		Intercept:      0.1,
		Estimate:       0.05,
		StdErr:         0.02,
		TValue:         2.5,
		ConfLevel:      0.95,
		CILower:        0.01,
		CIUpper:        0.09,
		BootIterations: 100,
		PValue:         0.03,
		PermIterations: 4,
		Null:           []float64{-0.02, 0, 0.01, 0.02},
	}
}

func TestRendererFit(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	if err := r.Fit(testResult()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"Formula: t_units/word_len ~ type",
		"native 10 -> 10, translation 12 -> 10 (balanced)",
		"typetranslation",
		"p-value = 0.0300",
		"Bootstrap 95% CI (100 iterations): [0.0100, 0.0900]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "\033[") {
		t.Errorf("unexpected color codes without HasColor")
	}
}

func TestRendererHistogram(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Bins = 4
	r.Width = 8
	if err := r.Histogram(testResult()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 bins, got %d lines:\n%s", len(lines), buf.String())
	}

	marked := 0
	for _, l := range lines[1:] {
		if strings.Contains(l, "<- observed") {
			marked++
		}
	}
	if marked != 1 {
		t.Errorf("expected one marked bin, got %d", marked)
	}
	// the observed 0.05 is the maximum, so it lands in the last bin
	if !strings.Contains(lines[4], "<- observed 0.0500") {
		t.Errorf("expected last bin marked, got %q", lines[4])
	}
}

func TestRendererHistogramEmpty(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})
	res := testResult()
	res.Null = nil
	if err := r.Histogram(res); err == nil {
		t.Fatal("expected error without null distribution")
	}
}

func TestRendererSummary(t *testing.T) {
	h := stat.NewHandler()
	h.Aggregate([]sent.Record{
		{DocId: 1, Type: sent.Native, TUnits: 1, WordLen: 4, Text: "a"},
		{DocId: 2, Type: sent.Translation, TUnits: 2, WordLen: 6, Text: "b"},
	})

	var buf bytes.Buffer
	if err := NewRenderer(&buf).Summary(h.Get()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Sentences: 2 (missing 0)", "native 1, non-native 0, translation 1", "t_units", "word_len"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestNewReporter(t *testing.T) {
	for _, f := range SupportedFormats() {
		if _, err := NewReporter(f, &bytes.Buffer{}, false); err != nil {
			t.Errorf("format %s: %v", f, err)
		}
	}
	if _, err := NewReporter("xml", &bytes.Buffer{}, false); err == nil {
		t.Error("expected error for unknown format")
	}
}
