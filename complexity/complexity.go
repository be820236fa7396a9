// Package complexity reduces dependency-annotated tokens to one syntactic
// complexity observation (t-units and length) per sentence.
package complexity

import (
	"sort"
	"strings"

	sent "github.com/revelaction/syncomp/sentence"
)

var (
	// relations heading a main clause
	mainClauseDeps = map[string]bool{"root": true, "cop": true}

	// relations heading a subordinate clause
	subordClauseDeps = map[string]bool{"ccomp": true, "xcomp": true, "acl:relcl": true}
)

// IsMainClause reports whether dep heads a main clause. Relation labels are
// compared case-insensitively: spaCy emits ROOT, UD parsers emit root.
func IsMainClause(dep string) bool {
	return mainClauseDeps[strings.ToLower(dep)]
}

// IsSubordClause reports whether dep heads a subordinate clause.
func IsSubordClause(dep string) bool {
	return subordClauseDeps[strings.ToLower(dep)]
}

// Clauses counts main and subordinate clauses over the dependency relations
// of one sentence.
func Clauses(deps []string) (main, subord int) {
	for _, d := range deps {
		switch {
		case IsMainClause(d):
			main++
		case IsSubordClause(d):
			subord++
		}
	}
	return main, subord
}

type partition struct {
	key   sent.Key
	deps  []string
	texts map[string]bool
}

// Aggregate groups rows by (doc id, sentence id) and emits one Record per
// sentence, tagged with docType. Rows need not be sorted; records are
// returned ordered by key.
func Aggregate(rows []sent.Row, docType sent.DocType) ([]sent.Record, error) {
	parts := map[sent.Key]*partition{}
	for _, r := range rows {
		k := r.Key()
		p, ok := parts[k]
		if !ok {
			p = &partition{key: k, texts: map[string]bool{}}
			parts[k] = p
		}
		p.deps = append(p.deps, r.Dep)
		p.texts[r.Sentence] = true
	}

	keys := make([]sent.Key, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DocId != keys[j].DocId {
			return keys[i].DocId < keys[j].DocId
		}
		return keys[i].SentenceId < keys[j].SentenceId
	})

	records := make([]sent.Record, 0, len(keys))
	for _, k := range keys {
		rec, err := parts[k].record(docType)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func (p *partition) record(docType sent.DocType) (sent.Record, error) {
	if len(p.deps) == 0 {
		return sent.Record{}, &EmptyPartitionError{DocId: p.key.DocId, SentenceId: p.key.SentenceId}
	}

	if len(p.texts) != 1 {
		texts := make([]string, 0, len(p.texts))
		for t := range p.texts {
			texts = append(texts, t)
		}
		sort.Strings(texts)
		return sent.Record{}, &AmbiguousSentenceTextError{DocId: p.key.DocId, SentenceId: p.key.SentenceId, Texts: texts}
	}

	var text string
	for t := range p.texts {
		text = t
	}

	main, subord := Clauses(p.deps)
	return sent.Record{
		DocId:       p.key.DocId,
		SentenceId:  p.key.SentenceId,
		SourceDocId: p.key.DocId,
		Type:        docType,
		TUnits:      main + subord,
		WordLen:     len(p.deps),
		Text:        text,
	}, nil
}

// Subset is the annotated rows of one corpus subset.
type Subset struct {
	Type sent.DocType
	Rows []sent.Row
}

// AggregateAll runs Aggregate on every subset and combines the results.
func AggregateAll(subsets []Subset) ([]sent.Record, error) {
	var all [][]sent.Record
	for _, s := range subsets {
		recs, err := Aggregate(s.Rows, s.Type)
		if err != nil {
			return nil, &SubsetError{Type: s.Type, Err: err}
		}
		all = append(all, recs)
	}
	return Combine(all...), nil
}

// Combine concatenates per-subset records and renumbers DocId as 1..n over
// the combined table. The subset doc id survives in SourceDocId.
func Combine(subsets ...[]sent.Record) []sent.Record {
	n := 0
	for _, s := range subsets {
		n += len(s)
	}

	combined := make([]sent.Record, 0, n)
	for _, s := range subsets {
		combined = append(combined, s...)
	}

	for i := range combined {
		combined[i].DocId = i + 1
	}
	return combined
}
