package complexity

import (
	"fmt"
	"strings"

	sent "github.com/revelaction/syncomp/sentence"
)

// AmbiguousSentenceTextError reports a sentence key whose rows disagree on
// the sentence text.
type AmbiguousSentenceTextError struct {
	DocId      int
	SentenceId int
	Texts      []string
}

func (e *AmbiguousSentenceTextError) Error() string {
	return fmt.Sprintf("doc %d sentence %d maps to %d distinct texts: %s",
		e.DocId, e.SentenceId, len(e.Texts), strings.Join(quote(e.Texts), ", "))
}

// EmptyPartitionError reports a sentence key without any token row.
type EmptyPartitionError struct {
	DocId      int
	SentenceId int
}

func (e *EmptyPartitionError) Error() string {
	return fmt.Sprintf("doc %d sentence %d has no tokens", e.DocId, e.SentenceId)
}

func quote(texts []string) []string {
	q := make([]string, len(texts))
	for i, t := range texts {
		q[i] = fmt.Sprintf("%q", t)
	}
	return q
}

// SubsetError names the corpus subset whose aggregation failed.
type SubsetError struct {
	Type sent.DocType
	Err  error
}

func (e *SubsetError) Error() string {
	return fmt.Sprintf("aggregate %s: %v", e.Type, e.Err)
}

func (e *SubsetError) Unwrap() error {
	return e.Err
}
