package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/stat"
)

const (
	DefaultBins  = 20
	DefaultWidth = 50

	// significance below which the p-value is highlighted
	alpha = 0.05
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

func SupportedFormats() []string {
	return []string{"text", "json"}
}

// Reporter writes the pipeline outputs in one format.
type Reporter interface {
	Fit(res *infer.Result) error
	Summary(st stat.Stats) error
	Records(records []sent.Record) error
}

// NewReporter returns the Reporter of a format in SupportedFormats.
func NewReporter(format string, w io.Writer, hasColor bool) (Reporter, error) {
	switch format {
	case "", "text":
		r := NewRenderer(w)
		r.HasColor = hasColor
		return r, nil
	case "json":
		return NewJSONRenderer(w), nil
	}
	return nil, fmt.Errorf("unknown format %q, supported: %s", format, strings.Join(SupportedFormats(), ", "))
}

// Renderer writes human readable reports.
type Renderer struct {
	W io.Writer

	HasColor bool

	// Histogram dimensions
	Bins  int
	Width int
}

var _ Reporter = (*Renderer)(nil)

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{W: w, Bins: DefaultBins, Width: DefaultWidth}
}

// Fit writes the coefficient table, the residual summary, the permutation
// p-value and the bootstrap interval of a fit.
func (r *Renderer) Fit(res *infer.Result) error {
	fmt.Fprintf(r.W, "Run %s%s%s (seed %d, %s)\n", r.color(Grey256), res.RunId, r.off(), res.Seed, res.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.W, "Formula: %s\n", res.Formula)

	balanced := ""
	if res.Balanced {
		balanced = " (balanced)"
	}
	fmt.Fprintf(r.W, "Observations: %s %d -> %d, %s %d -> %d%s\n\n",
		res.Reference, res.Counts[res.Reference], res.Fitted[res.Reference],
		res.Treatment, res.Counts[res.Treatment], res.Fitted[res.Treatment], balanced)

	rs := res.Residuals
	fmt.Fprintln(r.W, "Residuals:")
	fmt.Fprintf(r.W, "%10s %10s %10s %10s %10s\n", "Min", "1Q", "Median", "3Q", "Max")
	fmt.Fprintf(r.W, "%10.4f %10.4f %10.4f %10.4f %10.4f\n\n", rs.Min, rs.Q1, rs.Median, rs.Q3, rs.Max)

	treatName := "type" + string(res.Treatment)
	fmt.Fprintln(r.W, "Coefficients:")
	fmt.Fprintf(r.W, "%-24s %10s %10s %10s\n", "", "Estimate", "Std. Error", "t value")
	fmt.Fprintf(r.W, "%-24s %10.4f\n", "(Intercept)", res.Intercept)
	fmt.Fprintf(r.W, "%-24s %10.4f %10.4f %10.2f\n\n", treatName, res.Estimate, res.StdErr, res.TValue)

	fmt.Fprintf(r.W, "Residual standard error: %.4f on %d degrees of freedom\n", rs.StdErr, rs.DF)
	fmt.Fprintf(r.W, "R-squared: %.4f\n\n", rs.RSquared)

	pColor := ""
	if res.PValue < alpha {
		pColor = r.color(Green256)
	}
	fmt.Fprintf(r.W, "Permutation test (%d iterations): p-value = %s%.4f%s\n", res.PermIterations, pColor, res.PValue, r.off())
	fmt.Fprintf(r.W, "Bootstrap %g%% CI (%d iterations): [%.4f, %.4f]\n", res.ConfLevel*100, res.BootIterations, res.CILower, res.CIUpper)
	return nil
}

// Histogram draws the permutation null distribution with the bin of the
// observed estimate marked.
func (r *Renderer) Histogram(res *infer.Result) error {
	if len(res.Null) == 0 {
		return fmt.Errorf("run %s has no null distribution", res.RunId)
	}

	bins, width := r.Bins, r.Width
	if bins < 1 {
		bins = DefaultBins
	}
	if width < 1 {
		width = DefaultWidth
	}

	data := append(stats.Float64Data{res.Estimate}, res.Null...)
	lo, err := data.Min()
	if err != nil {
		return err
	}
	hi, err := data.Max()
	if err != nil {
		return err
	}
	if hi == lo {
		hi = lo + 1
	}
	step := (hi - lo) / float64(bins)

	bin := func(v float64) int {
		i := int((v - lo) / step)
		if i >= bins {
			i = bins - 1
		}
		return i
	}

	counts := make([]int, bins)
	maxCount := 0
	for _, v := range res.Null {
		i := bin(v)
		counts[i]++
		if counts[i] > maxCount {
			maxCount = counts[i]
		}
	}

	observed := bin(res.Estimate)
	fmt.Fprintf(r.W, "Null distribution of the %s estimate (%d permutations)\n", res.Treatment, len(res.Null))
	for i, c := range counts {
		bar := strings.Repeat("#", c*width/maxCount)
		mark := ""
		if i == observed {
			mark = fmt.Sprintf(" %s<- observed %.4f%s", r.color(Red), res.Estimate, r.off())
		}
		fmt.Fprintf(r.W, "%10.4f |%-*s %5d%s\n", lo+float64(i)*step, width, bar, c, mark)
	}
	return nil
}

// Summary writes the inspection statistics of the records table.
func (r *Renderer) Summary(st stat.Stats) error {
	fmt.Fprintf(r.W, "Sentences: %d (missing %d)\n", st.NumSentences, st.Missing)
	fmt.Fprintf(r.W, "Tokens: %d (mean %d per sentence)\n", st.NumTokens, st.TokensPerSentenceMean)

	var counts []string
	for _, t := range sent.DocTypes() {
		counts = append(counts, fmt.Sprintf("%s %d", t, st.TypeCounts[t]))
	}
	fmt.Fprintf(r.W, "Types: %s\n", strings.Join(counts, ", "))
	if imb := st.Imbalance(sent.Native, sent.Translation); imb > 0 {
		fmt.Fprintf(r.W, "Imbalance %s/%s: %.2f\n", sent.Native, sent.Translation, imb)
	}

	fmt.Fprintf(r.W, "\n%-10s %8s %8s %8s %8s %8s %8s %8s\n", "", "Min", "1Q", "Median", "Mean", "3Q", "Max", "SD")
	for _, row := range []struct {
		name string
		s    stat.Summary
	}{{"t_units", st.TUnits}, {"word_len", st.WordLen}} {
		fmt.Fprintf(r.W, "%-10s %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f\n", row.name, row.s.Min, row.s.Q1, row.s.Median, row.s.Mean, row.s.Q3, row.s.Max, row.s.StdDev)
	}
	return nil
}

// Distribution writes the number of sentences per token length.
func (r *Renderer) Distribution(st stat.Stats) {
	for _, l := range st.Lengths() {
		fmt.Fprintf(r.W, "%4d %6d\n", l, st.TokensPerSentenceDis[l])
	}
}

func (r *Renderer) Records(records []sent.Record) error {
	for _, rec := range records {
		r.Record(rec)
	}
	return nil
}

func (r *Renderer) Record(rec sent.Record) {
	prefix := fmt.Sprintf("[%5d %-11s t=%2d w=%3d] ", rec.DocId, rec.Type, rec.TUnits, rec.WordLen)
	fmt.Fprintf(r.W, "%s%s%s%s\n", r.color(Grey256), prefix, r.off(), strings.ReplaceAll(rec.Text, "\n", " "))
}

func (r *Renderer) color(c string) string {
	if !r.HasColor {
		return ""
	}
	return c
}

func (r *Renderer) off() string {
	return r.color(Off)
}
