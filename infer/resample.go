package infer

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// Independent random streams derived from the run seed.
const (
	streamBalance uint64 = iota + 1
	streamPermutation
	streamBootstrap
)

// newRand returns the generator of iteration i of a stream. Each iteration
// owns its generator, so results do not depend on scheduling.
func newRand(seed, stream uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream<<32^uint64(i)))
}

// Tracker receives resampling progress. Incr may be called concurrently.
type Tracker interface {
	Start(name string, total int)
	Incr()
	Stop()
}

type nopTracker struct{}

func (nopTracker) Start(string, int) {}
func (nopTracker) Incr()             {}
func (nopTracker) Stop()             {}

// resample runs fn for iterations 0..n-1 on at most workers goroutines and
// returns the statistics ordered by iteration.
func resample(name string, n, workers int, tr Tracker, fn func(i int) (float64, error)) ([]float64, error) {
	tr.Start(name, n)
	defer tr.Stop()

	out := make([]float64, n)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := fn(i)
			if err != nil {
				return err
			}
			out[i] = v
			tr.Incr()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// sample is the model input: one complexity response, word length and
// treatment indicator per sentence.
type sample struct {
	y       []float64
	wordLen []float64
	treat   []bool
}

func (s *sample) len() int {
	return len(s.y)
}

// coef fits formula f and returns the treatment coefficient.
func (s *sample) coef(f Formula) (float64, error) {
	fit, err := ols(f.design(s.treat, s.wordLen), s.y)
	if err != nil {
		return 0, err
	}
	return fit.coef[1], nil
}

// maxDraws caps the draws of one resampling iteration.
const maxDraws = 100

// redraw fits f on samples from draw until one has a full rank design. A
// small level can yield a replicate whose covariate is constant within each
// level. Draws share the iteration generator, so the accepted replicate is
// reproducible.
func redraw(f Formula, draw func() *sample) (float64, error) {
	var err error
	for range maxDraws {
		var v float64
		v, err = draw().coef(f)
		if !errors.Is(err, ErrSingularDesign) {
			return v, err
		}
	}
	return 0, fmt.Errorf("%d draws: %w", maxDraws, err)
}

// permuted returns the sample with the treatment labels shuffled across
// observations. Responses and covariates stay in place.
func (s *sample) permuted(rng *rand.Rand) *sample {
	treat := make([]bool, len(s.treat))
	copy(treat, s.treat)
	rng.Shuffle(len(treat), func(i, j int) {
		treat[i], treat[j] = treat[j], treat[i]
	})
	return &sample{y: s.y, wordLen: s.wordLen, treat: treat}
}

// bootstrap draws with replacement within each level, keeping the level
// sizes of s.
func (s *sample) bootstrap(rng *rand.Rand) *sample {
	var ref, trt []int
	for i, t := range s.treat {
		if t {
			trt = append(trt, i)
		} else {
			ref = append(ref, i)
		}
	}

	n := s.len()
	b := &sample{
		y:       make([]float64, 0, n),
		wordLen: make([]float64, 0, n),
		treat:   make([]bool, 0, n),
	}
	for _, group := range [][]int{ref, trt} {
		for range group {
			j := group[rng.IntN(len(group))]
			b.y = append(b.y, s.y[j])
			b.wordLen = append(b.wordLen, s.wordLen[j])
			b.treat = append(b.treat, s.treat[j])
		}
	}
	return b
}
