package infer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Formula fixes the response and the design columns of the model.
type Formula string

const (
	// Ratio models t_units/word_len on the document type.
	Ratio Formula = "ratio"

	// RawWithCovariate models t_units on the document type, with word_len
	// as a covariate.
	RawWithCovariate Formula = "raw_with_covariate"
)

func Formulas() []string {
	return []string{string(Ratio), string(RawWithCovariate)}
}

func ParseFormula(s string) (Formula, error) {
	switch Formula(s) {
	case Ratio, RawWithCovariate:
		return Formula(s), nil
	}
	return "", fmt.Errorf("unknown complexity formula %q", s)
}

// String returns the model in R formula notation.
func (f Formula) String() string {
	switch f {
	case Ratio:
		return "t_units/word_len ~ type"
	case RawWithCovariate:
		return "t_units ~ type + word_len"
	}
	return string(f)
}

func (f Formula) numCoef() int {
	if f == RawWithCovariate {
		return 3
	}
	return 2
}

// response returns the syntactic complexity of one sentence.
func (f Formula) response(tUnits, wordLen float64) float64 {
	if f == Ratio {
		return tUnits / wordLen
	}
	return tUnits
}

// design builds the n x p design matrix: intercept, treatment indicator and,
// for RawWithCovariate, word length.
func (f Formula) design(treat []bool, wordLen []float64) *mat.Dense {
	n, p := len(treat), f.numCoef()
	data := make([]float64, n*p)
	for i := range treat {
		row := data[i*p : (i+1)*p]
		row[0] = 1
		if treat[i] {
			row[1] = 1
		}
		if p == 3 {
			row[2] = wordLen[i]
		}
	}
	return mat.NewDense(n, p, data)
}
