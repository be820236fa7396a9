package corpus

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sent "github.com/revelaction/syncomp/sentence"
)

const metaFixture = `<LINE STATE="United Kingdom" MEPID="2099" LANGUAGE="EN" NAME="Smith" SEQ_SPEAKER="3" SESSION_ID="ep-05-10-12">
<LINE STATE="Ireland" SPEAKER_ID="77" SESSION_SEQ="9" SESSION_ID="ep-06-01-17">
`

const textFixture = `I believe that this is right .
We have heard the Commissioner , who said it .
`

func TestRead(t *testing.T) {
	lines, err := Read(strings.NewReader(metaFixture), strings.NewReader(textFixture), sent.Native)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	want := sent.Line{
		SessionId:  "ep-05-10-12",
		SpeakerId:  "2099",
		State:      "United Kingdom",
		SessionSeq: "3",
		Text:       "I believe that this is right .",
		Type:       sent.Native,
	}
	if lines[0] != want {
		t.Errorf("got %+v, want %+v", lines[0], want)
	}

	if lines[1].SpeakerId != "77" || lines[1].SessionSeq != "9" {
		t.Errorf("alternative attribute names not used: %+v", lines[1])
	}
}

func TestReadMismatch(t *testing.T) {
	_, err := Read(strings.NewReader(metaFixture), strings.NewReader("only one line\n"), sent.Native)
	if !errors.Is(err, ErrLineMismatch) {
		t.Fatalf("expected ErrLineMismatch, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "translations.dat"), []byte(metaFixture), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "translations.tok"), []byte(textFixture), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := Load(dir, "translations", sent.Translation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[1].Type != sent.Translation {
		t.Errorf("unexpected lines %+v", lines)
	}

	if _, err := Load(dir, "native", sent.Native); err == nil {
		t.Error("expected error for missing subset")
	}
}

func TestSample(t *testing.T) {
	var lines []sent.Line
	for i := 0; i < 50; i++ {
		lines = append(lines, sent.Line{SessionSeq: string(rune('a' + i%26)), Text: strings.Repeat("x", i+1)})
	}

	s := Sample(lines, 10, rand.New(rand.NewPCG(1, 2)))
	if len(s) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(s))
	}
	for i := 1; i < len(s); i++ {
		if len(s[i].Text) <= len(s[i-1].Text) {
			t.Fatalf("sample not in corpus order or repeated at %d", i)
		}
	}

	if got := Sample(lines, 0, nil); len(got) != 50 {
		t.Errorf("n=0 should keep all lines, got %d", len(got))
	}
}

func TestDocuments(t *testing.T) {
	docs := Documents([]sent.Line{{Text: "a"}, {Text: "b"}})
	if docs[0].Id != 1 || docs[1].Id != 2 || docs[1].Text != "b" {
		t.Errorf("unexpected documents %+v", docs)
	}
}
