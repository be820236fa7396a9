package annotate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/revelaction/syncomp/corpus"
	sent "github.com/revelaction/syncomp/sentence"
)

// ErrMalformed is returned for CoNLL-U input that cannot be parsed.
var ErrMalformed = errors.New("malformed CoNLL-U")

const (
	fieldSeparator = "\t"
	numFields      = 10
	emptyField     = "_"
)

// comment keys carrying the document and sentence identity
var (
	docIdKeys  = []string{"newdoc id", "doc_id"}
	sentIdKeys = []string{"sent_id"}
	textKeys   = []string{"text"}
)

type conllSentence struct {
	docId  int
	sentId int
	text   string
	tokens []sent.Token
}

// ReadConll parses CoNLL-U. Documents start at a "# newdoc id = N" (or
// "# doc_id = N") comment; sentence ids come from "# sent_id = M" when it is
// an integer and from the position in the document otherwise. Multiword
// token ranges and empty nodes are skipped.
func ReadConll(r io.Reader) ([]sent.Row, error) {
	var (
		rows    []sent.Row
		docId   int
		nthSent int
		cur     *conllSentence
		lineNum int
	)

	flush := func() {
		if cur == nil || len(cur.tokens) == 0 {
			cur = nil
			return
		}
		nthSent++
		if cur.sentId == 0 {
			cur.sentId = nthSent
		}
		if cur.text == "" {
			forms := make([]string, len(cur.tokens))
			for i, t := range cur.tokens {
				forms[i] = t.Text
			}
			cur.text = strings.Join(forms, " ")
		}
		for _, t := range cur.tokens {
			rows = append(rows, sent.Row{DocId: cur.docId, SentenceId: cur.sentId, Sentence: cur.text, Token: t})
		}
		cur = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, "#") {
			key, value, ok := comment(line)
			if !ok {
				continue
			}
			switch {
			case has(docIdKeys, key):
				flush()
				id, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: document id %q", ErrMalformed, lineNum, value)
				}
				docId = id
				nthSent = 0
			case has(sentIdKeys, key):
				if cur == nil {
					cur = &conllSentence{docId: docId}
				}
				if id, err := strconv.Atoi(value); err == nil {
					cur.sentId = id
				}
			case has(textKeys, key):
				if cur == nil {
					cur = &conllSentence{docId: docId}
				}
				cur.text = value
			}
			continue
		}

		fields := strings.Split(line, fieldSeparator)
		if len(fields) != numFields {
			return nil, fmt.Errorf("%w: line %d: %d fields, want %d", ErrMalformed, lineNum, len(fields), numFields)
		}

		// multiword ranges (1-2) and empty nodes (1.1)
		if strings.ContainsAny(fields[0], "-.") {
			continue
		}

		tok, err := parseToken(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
		}

		if cur == nil {
			cur = &conllSentence{docId: docId}
		}
		cur.tokens = append(cur.tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return rows, nil
}

func parseToken(fields []string) (sent.Token, error) {
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return sent.Token{}, fmt.Errorf("token id %q", fields[0])
	}

	head := 0
	if fields[6] != emptyField {
		if head, err = strconv.Atoi(fields[6]); err != nil {
			return sent.Token{}, fmt.Errorf("head %q", fields[6])
		}
	}

	return sent.Token{
		Id:    id,
		Text:  fields[1],
		Lemma: value(fields[2]),
		Pos:   value(fields[3]),
		Tag:   value(fields[4]),
		Head:  head,
		Dep:   value(fields[7]),
	}, nil
}

func comment(line string) (key, value string, ok bool) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	key, value, ok = strings.Cut(body, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func has(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func value(field string) string {
	if field == emptyField {
		return ""
	}
	return field
}

func orEmpty(s string) string {
	if s == "" {
		return emptyField
	}
	return s
}

// WriteConll writes rows in the dialect read by ReadConll. Rows of one
// sentence must be contiguous.
func WriteConll(w io.Writer, rows []sent.Row) error {
	bw := bufio.NewWriter(w)

	var (
		started bool
		lastDoc int
		lastKey sent.Key
	)
	for _, r := range rows {
		k := r.Key()
		if !started || k != lastKey {
			if started {
				fmt.Fprintln(bw)
			}
			if !started || r.DocId != lastDoc {
				fmt.Fprintf(bw, "# newdoc id = %d\n", r.DocId)
			}
			fmt.Fprintf(bw, "# sent_id = %d\n", r.SentenceId)
			fmt.Fprintf(bw, "# text = %s\n", r.Sentence)
			started, lastDoc, lastKey = true, r.DocId, k
		}

		t := r.Token
		fields := []string{
			strconv.Itoa(t.Id),
			orEmpty(t.Text),
			orEmpty(t.Lemma),
			orEmpty(t.Pos),
			orEmpty(t.Tag),
			emptyField,
			strconv.Itoa(t.Head),
			orEmpty(t.Dep),
			emptyField,
			emptyField,
		}
		fmt.Fprintln(bw, strings.Join(fields, fieldSeparator))
	}
	if started {
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// ConllFile serves annotations from a pre-parsed CoNLL-U file.
type ConllFile struct {
	Path string
}

func NewConllFile(path string) *ConllFile {
	return &ConllFile{Path: path}
}

// Annotate returns the rows of the requested documents. A nil docs returns
// every row of the file.
func (c *ConllFile) Annotate(ctx context.Context, docs []corpus.Document) ([]sent.Row, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadConll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	if docs == nil {
		return rows, nil
	}

	wanted := make(map[int]bool, len(docs))
	for _, d := range docs {
		wanted[d.Id] = true
	}

	out := rows[:0]
	for _, r := range rows {
		if wanted[r.DocId] {
			out = append(out, r)
		}
	}
	return out, nil
}
