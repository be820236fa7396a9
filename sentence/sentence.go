package sentence

import (
	"fmt"
	"strings"
)

// DocType is the corpus subset a sentence originates from.
type DocType string

const (
	Native      DocType = "native"
	NonNative   DocType = "non-native"
	Translation DocType = "translation"
)

// DocTypes returns all known subsets in corpus order.
func DocTypes() []DocType {
	return []DocType{Native, NonNative, Translation}
}

// ParseDocType accepts the canonical names plus the corpus file stems
// ("nonnative", "translations").
func ParseDocType(s string) (DocType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native":
		return Native, nil
	case "non-native", "nonnative", "non_native":
		return NonNative, nil
	case "translation", "translations":
		return Translation, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Token represents a word of the sentence, with POS and metadata.
type Token struct {
	Id   int    `json:"id"`
	Head int    `json:"head"`
	Pos  string `json:"pos"`
	Dep  string `json:"dep"`

	// A string containing detailed POS data
	Tag string `json:"tag"`

	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`
}

// Row is one annotated token together with the keys of the sentence it
// belongs to. All rows of a sentence share the same Sentence text.
type Row struct {
	DocId      int    `json:"doc_id"`
	SentenceId int    `json:"sentence_id"`
	Sentence   string `json:"sentence"`

	Token
}

// Key identifies a sentence within one corpus subset.
type Key struct {
	DocId      int
	SentenceId int
}

func (r Row) Key() Key {
	return Key{DocId: r.DocId, SentenceId: r.SentenceId}
}

// Record is the syntactic complexity observation of one sentence.
type Record struct {
	DocId      int     `json:"doc_id"`
	SentenceId int     `json:"sentence_id"`
	Type       DocType `json:"type"`
	TUnits     int     `json:"t_units"`
	WordLen    int     `json:"word_len"`
	Text       string  `json:"text"`

	// SourceDocId is the doc id inside the originating subset, before the
	// combined table renumbers DocId.
	SourceDocId int `json:"source_doc_id"`
}

// Line is one transcript line of the parliamentary corpus.
type Line struct {
	SessionId  string  `json:"session_id"`
	SpeakerId  string  `json:"speaker_id"`
	State      string  `json:"state"`
	SessionSeq string  `json:"session_seq"`
	Text       string  `json:"text"`
	Type       DocType `json:"type"`
}
