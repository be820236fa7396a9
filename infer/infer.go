// Package infer fits a linear model of sentence complexity on document type
// and tests the type effect with a label permutation null distribution and a
// percentile bootstrap confidence interval.
package infer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	sent "github.com/revelaction/syncomp/sentence"
)

// MinPerLevel is the minimum number of observations of each compared level.
const MinPerLevel = 2

// tolerance absorbs rounding when comparing null statistics to the
// observed one.
const tolerance = 1e-12

// Options configures one model fit.
type Options struct {
	BalanceClasses        bool
	Formula               Formula
	PermutationIterations int
	BootstrapIterations   int
	ConfidenceLevel       float64

	// Seed makes the run reproducible. A nil Seed draws a fresh one, which
	// is reported in the Result.
	Seed *uint64

	Reference sent.DocType
	Treatment sent.DocType

	Workers int
	Tracker Tracker
}

// DefaultOptions compares native (reference) with translation.
func DefaultOptions() Options {
	return Options{
		Formula:               Ratio,
		PermutationIterations: 1000,
		BootstrapIterations:   1000,
		ConfidenceLevel:       0.95,
		Reference:             sent.Native,
		Treatment:             sent.Translation,
		Workers:               runtime.NumCPU(),
	}
}

func (o Options) validate() error {
	if _, err := ParseFormula(string(o.Formula)); err != nil {
		return err
	}
	if o.PermutationIterations < 1 {
		return fmt.Errorf("permutation iterations must be positive, got %d", o.PermutationIterations)
	}
	if o.BootstrapIterations < 1 {
		return fmt.Errorf("bootstrap iterations must be positive, got %d", o.BootstrapIterations)
	}
	if o.ConfidenceLevel <= 0 || o.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level must be in (0,1), got %g", o.ConfidenceLevel)
	}
	if tailPercent(o.ConfidenceLevel)/100*float64(o.BootstrapIterations) < 1 {
		return fmt.Errorf("%d bootstrap iterations are too few for a %g confidence interval", o.BootstrapIterations, o.ConfidenceLevel)
	}
	if o.Reference == o.Treatment {
		return fmt.Errorf("reference and treatment level are both %q", o.Reference)
	}
	return nil
}

// Result is the outcome of one model fit.
type Result struct {
	RunId     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Seed      uint64    `json:"seed"`
	Formula   Formula   `json:"formula"`
	Balanced  bool      `json:"balanced"`

	Reference sent.DocType `json:"reference"`
	Treatment sent.DocType `json:"treatment"`

	// observations per level before and after balancing
	Counts map[sent.DocType]int `json:"counts"`
	Fitted map[sent.DocType]int `json:"fitted"`

	// Estimate is the coefficient of the treatment level.
	Estimate  float64   `json:"estimate"`
	StdErr    float64   `json:"std_err"`
	TValue    float64   `json:"t_value"`
	Intercept float64   `json:"intercept"`
	Residuals Residuals `json:"residuals"`

	ConfLevel      float64 `json:"conf_level"`
	CILower        float64 `json:"ci_lower"`
	CIUpper        float64 `json:"ci_upper"`
	BootIterations int     `json:"boot_iterations"`

	// Null is the permutation distribution of the estimate, by iteration.
	Null           []float64 `json:"null"`
	PValue         float64   `json:"p_value"`
	PermIterations int       `json:"perm_iterations"`
}

// Fit restricts records to the two compared levels, optionally balances
// them, fits the model and runs the permutation test and the bootstrap.
func Fit(records []sent.Record, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Tracker == nil {
		opts.Tracker = nopTracker{}
	}

	var seed uint64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		seed = rand.Uint64()
	}

	selected := Select(records, opts.Reference, opts.Treatment)
	res := &Result{
		RunId:          uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Seed:           seed,
		Formula:        opts.Formula,
		Balanced:       opts.BalanceClasses,
		Reference:      opts.Reference,
		Treatment:      opts.Treatment,
		Counts:         levelCounts(selected, opts),
		ConfLevel:      opts.ConfidenceLevel,
		BootIterations: opts.BootstrapIterations,
		PermIterations: opts.PermutationIterations,
	}

	if err := enoughPerLevel(res.Counts, opts); err != nil {
		return nil, err
	}
	if opts.BalanceClasses {
		selected = Balance(selected, opts.Reference, opts.Treatment, newRand(seed, streamBalance, 0))
	}
	res.Fitted = levelCounts(selected, opts)

	if err := enoughPerLevel(res.Fitted, opts); err != nil {
		return nil, err
	}

	s := newSample(selected, opts)

	fit, err := ols(opts.Formula.design(s.treat, s.wordLen), s.y)
	if err != nil {
		return nil, fmt.Errorf("observed fit: %w", err)
	}
	res.Intercept = fit.coef[0]
	res.Estimate = fit.coef[1]
	res.StdErr = fit.stdErr[1]
	if res.StdErr > 0 {
		res.TValue = res.Estimate / res.StdErr
	}
	if res.Residuals, err = fit.residuals(); err != nil {
		return nil, fmt.Errorf("residuals: %w", err)
	}

	res.Null, err = resample("permutation", opts.PermutationIterations, opts.Workers, opts.Tracker, func(i int) (float64, error) {
		rng := newRand(seed, streamPermutation, i)
		return redraw(opts.Formula, func() *sample { return s.permuted(rng) })
	})
	if err != nil {
		return nil, fmt.Errorf("permutation: %w", err)
	}
	res.PValue = PValue(res.Estimate, res.Null)

	boot, err := resample("bootstrap", opts.BootstrapIterations, opts.Workers, opts.Tracker, func(i int) (float64, error) {
		rng := newRand(seed, streamBootstrap, i)
		return redraw(opts.Formula, func() *sample { return s.bootstrap(rng) })
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if res.CILower, res.CIUpper, err = PercentileInterval(boot, opts.ConfidenceLevel); err != nil {
		return nil, fmt.Errorf("bootstrap interval: %w", err)
	}

	return res, nil
}

// enoughPerLevel checks the compared levels of counts against MinPerLevel.
func enoughPerLevel(counts map[sent.DocType]int, opts Options) error {
	for _, level := range []sent.DocType{opts.Reference, opts.Treatment} {
		if counts[level] < MinPerLevel {
			return &InsufficientDataError{Level: level, Count: counts[level]}
		}
	}
	return nil
}

// PValue is the two-sided proportion of null statistics at least as extreme
// as the observed one.
func PValue(observed float64, null []float64) float64 {
	if len(null) == 0 {
		return 1
	}
	extreme := 0
	obs := math.Abs(observed)
	for _, v := range null {
		if math.Abs(v) >= obs-tolerance {
			extreme++
		}
	}
	return float64(extreme) / float64(len(null))
}

// PercentileInterval returns the empirical percentile interval of level
// coverage.
func PercentileInterval(dist []float64, level float64) (lo, hi float64, err error) {
	tail := tailPercent(level)
	if lo, err = stats.Percentile(dist, tail); err != nil {
		return 0, 0, err
	}
	if hi, err = stats.Percentile(dist, 100-tail); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// tailPercent is the percentage left out on each side of a level interval,
// rounded so that 0.95 yields exactly 2.5.
func tailPercent(level float64) float64 {
	return math.Round((1-level)/2*100*1e9) / 1e9
}

func levelCounts(records []sent.Record, opts Options) map[sent.DocType]int {
	c := Counts(records)
	return map[sent.DocType]int{
		opts.Reference: c[opts.Reference],
		opts.Treatment: c[opts.Treatment],
	}
}

func newSample(records []sent.Record, opts Options) *sample {
	s := &sample{
		y:       make([]float64, len(records)),
		wordLen: make([]float64, len(records)),
		treat:   make([]bool, len(records)),
	}
	for i, r := range records {
		s.wordLen[i] = float64(r.WordLen)
		s.y[i] = opts.Formula.response(float64(r.TUnits), s.wordLen[i])
		s.treat[i] = r.Type == opts.Treatment
	}
	return s
}
