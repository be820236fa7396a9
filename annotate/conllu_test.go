package annotate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revelaction/syncomp/corpus"
)

const conllFixture = `# newdoc id = 1
# sent_id = 1
# text = I think it rains.
1	I	I	PRON	PRP	_	2	nsubj	_	_
2	think	think	VERB	VBP	_	0	root	_	_
3	it	it	PRON	PRP	_	4	expl	_	_
4	rains	rain	VERB	VBZ	_	2	ccomp	_	_
5	.	.	PUNCT	.	_	2	punct	_	_

# sent_id = 2
1-2	Don't	_	_	_	_	_	_	_	_
1	Do	do	AUX	VBP	_	3	aux	_	_
2	n't	not	PART	RB	_	3	advmod	_	_
3	go	go	VERB	VB	_	0	root	_	_
3.1	now	_	_	_	_	_	_	_	_

# newdoc id = 2
# sent_id = s-a
# text = Yes.
1	Yes	yes	INTJ	UH	_	0	root	_	_
2	.	.	PUNCT	.	_	1	punct	_	_
`

func TestReadConll(t *testing.T) {
	rows, err := ReadConll(strings.NewReader(conllFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 10 {
		t.Fatalf("expected 10 token rows, got %d", len(rows))
	}

	first := rows[0]
	if first.DocId != 1 || first.SentenceId != 1 || first.Sentence != "I think it rains." {
		t.Errorf("unexpected first row %+v", first)
	}
	if rows[3].Dep != "ccomp" || rows[3].Lemma != "rain" || rows[3].Head != 2 {
		t.Errorf("unexpected token %+v", rows[3].Token)
	}

	// no text comment: forms are joined
	if rows[5].SentenceId != 2 || rows[5].Sentence != "Do n't go" {
		t.Errorf("unexpected second sentence row %+v", rows[5])
	}

	// non integer sent_id falls back to the position in the document
	last := rows[9]
	if last.DocId != 2 || last.SentenceId != 1 || last.Sentence != "Yes." {
		t.Errorf("unexpected last row %+v", last)
	}
}

func TestReadConllMalformed(t *testing.T) {
	tests := []string{
		"1\tonly\tthree\n",
		"# newdoc id = x\n",
		"a\tb\tc\td\te\tf\t0\troot\t_\t_\n",
		"1\tb\tc\td\te\tf\thead\troot\t_\t_\n",
	}
	for _, in := range tests {
		if _, err := ReadConll(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestWriteConllRoundTrip(t *testing.T) {
	rows, err := ReadConll(strings.NewReader(conllFixture))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteConll(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := ReadConll(&buf)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if len(again) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(again))
	}
	for i := range rows {
		if rows[i] != again[i] {
			t.Errorf("row %d: %+v != %+v", i, rows[i], again[i])
		}
	}
}

func TestConllFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "native.conllu")
	if err := os.WriteFile(path, []byte(conllFixture), 0644); err != nil {
		t.Fatal(err)
	}

	cf := NewConllFile(path)

	all, err := cf.Annotate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 10 {
		t.Errorf("expected all 10 rows, got %d", len(all))
	}

	some, err := cf.Annotate(context.Background(), []corpus.Document{{Id: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(some) != 2 || some[0].DocId != 2 {
		t.Errorf("expected the 2 rows of doc 2, got %+v", some)
	}
}
