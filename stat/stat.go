package stat

import (
	"sort"

	"github.com/montanaflynn/stats"

	sent "github.com/revelaction/syncomp/sentence"
)

type Handler struct {
	stats Stats

	tUnits  []float64
	wordLen []float64
}

type Stats struct {
	NumSentences          int         `json:"num_sentences"`
	NumTokens             int         `json:"num_tokens"`
	TokensPerSentenceMean int         `json:"tokens_per_sentence_mean"`
	TokensPerSentenceDis  map[int]int `json:"tokens_per_sentence_dis"`

	// records per document type
	TypeCounts map[sent.DocType]int `json:"type_counts"`

	// records with empty text or no tokens
	Missing int `json:"missing"`

	TUnits  Summary `json:"t_units"`
	WordLen Summary `json:"word_len"`
}

// Summary describes the distribution of one numeric column.
type Summary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

func (h *Handler) Get() Stats {
	h.stats.TUnits = summarize(h.tUnits)
	h.stats.WordLen = summarize(h.wordLen)
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{
		TokensPerSentenceDis: map[int]int{},
		TypeCounts:           map[sent.DocType]int{},
	}
	return &Handler{
		stats: stats,
	}
}

func (h *Handler) Aggregate(records []sent.Record) {
	for _, r := range records {
		h.stats.NumSentences++
		h.stats.TypeCounts[r.Type]++

		if r.Text == "" || r.WordLen < 1 {
			h.stats.Missing++
		}

		h.stats.NumTokens += r.WordLen
		h.stats.TokensPerSentenceDis[r.WordLen]++

		h.tUnits = append(h.tUnits, float64(r.TUnits))
		h.wordLen = append(h.wordLen, float64(r.WordLen))
	}

	if h.stats.NumSentences > 0 {
		h.stats.TokensPerSentenceMean = h.stats.NumTokens / h.stats.NumSentences
	}
}

// Imbalance returns the ratio of the larger to the smaller count of two
// document types, 0 when either is absent.
func (s Stats) Imbalance(a, b sent.DocType) float64 {
	ca, cb := s.TypeCounts[a], s.TypeCounts[b]
	if ca == 0 || cb == 0 {
		return 0
	}
	if ca < cb {
		ca, cb = cb, ca
	}
	return float64(ca) / float64(cb)
}

// Lengths returns the distinct sentence lengths in ascending order.
func (s Stats) Lengths() []int {
	lens := make([]int, 0, len(s.TokensPerSentenceDis))
	for l := range s.TokensPerSentenceDis {
		lens = append(lens, l)
	}
	sort.Ints(lens)
	return lens
}

func summarize(data stats.Float64Data) Summary {
	if len(data) == 0 {
		return Summary{}
	}

	var s Summary
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	if len(data) > 1 {
		s.StdDev, _ = data.StandardDeviationSample()
	}
	if len(data) >= 4 {
		q, _ := stats.Quartile(data)
		s.Q1, s.Q3 = q.Q1, q.Q3
	} else {
		s.Q1, s.Q3 = s.Min, s.Max
	}
	return s
}
