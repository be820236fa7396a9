package infer

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// maxCond bounds the condition number of X'X accepted as full rank.
const maxCond = 1e12

// olsFit is an ordinary least squares fit by Cholesky factorization of the
// normal equations.
type olsFit struct {
	coef   []float64
	stdErr []float64
	resid  []float64
	rss    float64
	tss    float64
	df     int
}

func ols(x *mat.Dense, y []float64) (*olsFit, error) {
	n, p := x.Dims()
	if n <= p {
		return nil, ErrSingularDesign
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, ErrSingularDesign
	}
	if chol.Cond() > maxCond {
		return nil, ErrSingularDesign
	}

	yv := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, ErrSingularDesign
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var resid mat.VecDense
	resid.SubVec(yv, &fitted)

	fit := &olsFit{
		coef:   make([]float64, p),
		stdErr: make([]float64, p),
		resid:  make([]float64, n),
		df:     n - p,
	}
	for i := 0; i < n; i++ {
		fit.resid[i] = resid.AtVec(i)
	}
	fit.rss = mat.Dot(&resid, &resid)

	mean := mat.Sum(yv) / float64(n)
	for _, v := range y {
		fit.tss += (v - mean) * (v - mean)
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, ErrSingularDesign
	}
	sigma2 := fit.rss / float64(fit.df)
	for j := 0; j < p; j++ {
		fit.coef[j] = beta.AtVec(j)
		fit.stdErr[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}

	return fit, nil
}

// Residuals summarizes the residuals of the observed fit.
type Residuals struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`

	// StdErr is the residual standard error on DF degrees of freedom.
	StdErr   float64 `json:"std_err"`
	DF       int     `json:"df"`
	RSquared float64 `json:"r_squared"`
}

func (f *olsFit) residuals() (Residuals, error) {
	r := Residuals{
		DF:     f.df,
		StdErr: math.Sqrt(f.rss / float64(f.df)),
	}

	// a constant response leaves nothing to explain
	if f.tss > 0 {
		r.RSquared = 1 - f.rss/f.tss
	}

	var err error
	data := stats.Float64Data(f.resid)
	if r.Min, err = data.Min(); err != nil {
		return r, err
	}
	if r.Max, err = data.Max(); err != nil {
		return r, err
	}
	q, err := stats.Quartile(data)
	if err != nil {
		return r, err
	}
	r.Q1, r.Median, r.Q3 = q.Q1, q.Q2, q.Q3

	return r, nil
}
