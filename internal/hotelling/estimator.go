// Package hotelling estimates the two-sample Hotelling T² parameters that
// feed the confidence-region boundary search: mean-difference vector, pooled
// covariance, scaling factor K and the critical F-value.
package hotelling

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	gostat "gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"godisso/domain/core"
	"godisso/domain/mcr"
	"godisso/domain/profile"
	"godisso/internal/linalg"
)

// Estimator computes two-sample T² statistics at a fixed significance level.
type Estimator struct {
	alpha float64
}

// NewEstimator creates an estimator for the given significance level
func NewEstimator(alpha float64) *Estimator {
	return &Estimator{alpha: alpha}
}

// Result bundles everything the boundary solver and verifier consume.
type Result struct {
	Dimension        int         `json:"dimension"`
	MeanDiff         []float64   `json:"mean_diff"`
	PooledCovariance [][]float64 `json:"pooled_covariance"`
	// Scale is K = nR·nT/(nR+nT) · (nR+nT−p−1)/((nR+nT−2)·p).
	Scale     float64 `json:"scale"`
	TSquared  float64 `json:"t_squared"`
	MSD       float64 `json:"msd"`
	CriticalF float64 `json:"critical_f"`
	DF1       int     `json:"df1"`
	DF2       int     `json:"df2"`
	Alpha     float64 `json:"alpha"`
}

// Estimate derives the T² parameter bundle from two profile sets on the same
// time-point grid.
func (e *Estimator) Estimate(ref, test *profile.Set) (*Result, error) {
	if !(e.alpha > 0 && e.alpha < 1) {
		return nil, core.NewInvalidInputError("alpha", "must be in (0,1)")
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := test.Validate(); err != nil {
		return nil, err
	}
	if !profile.SameGrid(ref, test) {
		return nil, core.NewInvalidInputError("times", "reference and test sets must share the same time points")
	}

	p := len(ref.Times)
	nR, nT := ref.BatchCount(), test.BatchCount()
	df2 := nR + nT - p - 1
	if df2 < 1 {
		return nil, core.NewInvalidInputError("times",
			fmt.Sprintf("%d time points leave no residual degrees of freedom for %d+%d batches", p, nR, nT))
	}

	meanDiff := make([]float64, p)
	for i := 0; i < p; i++ {
		rm, err := stats.Mean(ref.Column(i))
		if err != nil {
			return nil, core.NewInvalidInputError("release", err.Error())
		}
		tm, err := stats.Mean(test.Column(i))
		if err != nil {
			return nil, core.NewInvalidInputError("release", err.Error())
		}
		meanDiff[i] = rm - tm
	}

	sr := covarianceOf(ref)
	st := covarianceOf(test)
	pooled := make([][]float64, p)
	wr := float64(nR - 1)
	wt := float64(nT - 1)
	for i := 0; i < p; i++ {
		pooled[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			pooled[i][j] = (wr*sr.At(i, j) + wt*st.At(i, j)) / (wr + wt)
		}
	}

	dense, err := linalg.DenseFrom(pooled)
	if err != nil {
		return nil, err
	}
	sinv, err := linalg.Invert(dense, "pooled covariance")
	if err != nil {
		return nil, err
	}
	q, err := linalg.QuadraticForm(meanDiff, sinv)
	if err != nil {
		return nil, err
	}

	nrnt := float64(nR) * float64(nT) / float64(nR+nT)
	scale := nrnt * float64(df2) / (float64(nR+nT-2) * float64(p))

	fdist := distuv.F{D1: float64(p), D2: float64(df2)}

	return &Result{
		Dimension:        p,
		MeanDiff:         meanDiff,
		PooledCovariance: pooled,
		Scale:            scale,
		TSquared:         nrnt * q,
		MSD:              scale * q,
		CriticalF:        fdist.Quantile(1 - e.alpha),
		DF1:              p,
		DF2:              df2,
		Alpha:            e.alpha,
	}, nil
}

// Params returns the verifier's statistical parameter bundle.
func (r *Result) Params() mcr.Params {
	return mcr.Params{
		Scale:         r.Scale,
		MeanDiff:      r.MeanDiff,
		Covariance:    r.PooledCovariance,
		CriticalValue: r.CriticalF,
	}
}

// Problem builds the boundary-search problem for these parameters. A nil
// initial guess defaults to the customary ones vector of length p+1.
func (r *Result) Problem(initialGuess []float64, maxIterations int, tolerance float64) mcr.Problem {
	if initialGuess == nil {
		initialGuess = make([]float64, r.Dimension+1)
		for i := range initialGuess {
			initialGuess[i] = 1
		}
	}
	return mcr.Problem{
		Dimension:     r.Dimension,
		Scale:         r.Scale,
		Target:        r.MeanDiff,
		Covariance:    r.PooledCovariance,
		CriticalValue: r.CriticalF,
		InitialGuess:  initialGuess,
		MaxIterations: maxIterations,
		Tolerance:     tolerance,
	}
}

func covarianceOf(set *profile.Set) *mat.SymDense {
	p := len(set.Times)
	n := set.BatchCount()
	data := make([]float64, 0, n*p)
	for _, pr := range set.Profiles {
		data = append(data, pr.Release...)
	}
	var cov mat.SymDense
	gostat.CovarianceMatrix(&cov, mat.NewDense(n, p, data), nil)
	return &cov
}
