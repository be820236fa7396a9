// Package corpus reads the parliamentary corpus: per subset, a .dat file with
// one <LINE .../> metadata element per transcript line and a .tok file with
// the tokenized text of the same lines.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	sent "github.com/revelaction/syncomp/sentence"
)

// ErrLineMismatch is returned when a subset's metadata and text files have
// different line counts.
var ErrLineMismatch = errors.New("metadata and text line counts differ")

const (
	MetaExt = ".dat"
	TextExt = ".tok"
)

var attrRegex = regexp.MustCompile(`([A-Za-z_]+)="([^"]*)"`)

// attribute names, first match wins
var (
	sessionIdAttrs  = []string{"SESSION_ID"}
	speakerIdAttrs  = []string{"SPEAKER_ID", "MEPID"}
	stateAttrs      = []string{"STATE"}
	sessionSeqAttrs = []string{"SESSION_SEQ", "SEQ_SPEAKER"}
)

// Load reads <dir>/<stem>.dat and <dir>/<stem>.tok.
func Load(dir, stem string, docType sent.DocType) ([]sent.Line, error) {
	meta, err := os.Open(filepath.Join(dir, stem+MetaExt))
	if err != nil {
		return nil, err
	}
	defer meta.Close()

	text, err := os.Open(filepath.Join(dir, stem+TextExt))
	if err != nil {
		return nil, err
	}
	defer text.Close()

	lines, err := Read(meta, text, docType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stem, err)
	}
	return lines, nil
}

// Read pairs metadata lines with text lines.
func Read(meta, text io.Reader, docType sent.DocType) ([]sent.Line, error) {
	metas, err := readLines(meta)
	if err != nil {
		return nil, err
	}
	texts, err := readLines(text)
	if err != nil {
		return nil, err
	}

	if len(metas) != len(texts) {
		return nil, fmt.Errorf("%w: %d metadata, %d text", ErrLineMismatch, len(metas), len(texts))
	}

	lines := make([]sent.Line, len(metas))
	for i, m := range metas {
		attrs := ParseAttrs(m)
		lines[i] = sent.Line{
			SessionId:  first(attrs, sessionIdAttrs),
			SpeakerId:  first(attrs, speakerIdAttrs),
			State:      first(attrs, stateAttrs),
			SessionSeq: first(attrs, sessionSeqAttrs),
			Text:       strings.TrimSpace(texts[i]),
			Type:       docType,
		}
	}
	return lines, nil
}

// ParseAttrs returns the NAME="value" attributes of a metadata line, with
// upper-cased names.
func ParseAttrs(line string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrRegex.FindAllStringSubmatch(line, -1) {
		attrs[strings.ToUpper(m[1])] = m[2]
	}
	return attrs
}

func first(attrs map[string]string, names []string) string {
	for _, n := range names {
		if v, ok := attrs[n]; ok {
			return v
		}
	}
	return ""
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Sample returns n lines drawn uniformly without replacement, in corpus
// order. n <= 0 or n >= len(lines) returns lines unchanged.
func Sample(lines []sent.Line, n int, rng *rand.Rand) []sent.Line {
	if n <= 0 || n >= len(lines) {
		return lines
	}

	idx := rng.Perm(len(lines))[:n]
	sort.Ints(idx)

	out := make([]sent.Line, n)
	for i, j := range idx {
		out[i] = lines[j]
	}
	return out
}

// Document is one unit of annotation input.
type Document struct {
	Id   int
	Text string
}

// Documents numbers lines from 1 within the subset. Ids of different
// subsets therefore collide.
func Documents(lines []sent.Line) []Document {
	docs := make([]Document, len(lines))
	for i, l := range lines {
		docs[i] = Document{Id: i + 1, Text: l.Text}
	}
	return docs
}
