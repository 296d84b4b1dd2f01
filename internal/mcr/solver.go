// Package mcr implements the numerical core of the multivariate
// confidence-region procedure: a constrained Newton-Raphson solver that
// locates a point on the Hotelling-type confidence-region boundary, and a
// verifier that confirms boundary membership of the returned point. The two
// are one subsystem: the solver's convergence criterion does not by itself
// guarantee the constraint holds, so every solution is expected to pass
// through the verifier before use.
package mcr

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"godisso/domain/core"
	"godisso/domain/mcr"
	"godisso/internal/linalg"
)

// BoundarySolver finds a point t and multiplier λ such that t extremizes
// tᵀ·V⁻¹·t subject to crit = scale·(t−target)ᵀ·V⁻¹·(t−target), by Newton-
// Raphson on the stacked first-order system of the Lagrangian.
type BoundarySolver struct{}

// NewBoundarySolver creates a new boundary solver
func NewBoundarySolver() *BoundarySolver {
	return &BoundarySolver{}
}

// iterate is one immutable Newton-Raphson state; step always returns a fresh
// one rather than mutating in place.
type iterate struct {
	t      *mat.VecDense
	lambda float64
}

// Solve validates the problem eagerly, then iterates until the aggregate
// score magnitude falls below the tolerance or the iteration budget runs out.
//
// Termination: a singular covariance or bordered Hessian is fatal and returns
// no solution. An exhausted budget is non-fatal: the best available iterate
// is returned with Converged=false alongside a NonConvergence error the
// caller may choose to accept.
func (s *BoundarySolver) Solve(p mcr.Problem) (*mcr.Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cov, err := linalg.DenseFrom(p.Covariance)
	if err != nil {
		return nil, err
	}
	vinv, err := linalg.Invert(cov, "covariance")
	if err != nil {
		return nil, err
	}
	target := mat.NewVecDense(p.Dimension, append([]float64(nil), p.Target...))

	cur := iterate{
		t:      mat.NewVecDense(p.Dimension, append([]float64(nil), p.InitialGuess[:p.Dimension]...)),
		lambda: p.InitialGuess[p.Dimension],
	}

	var (
		iters     int
		converged bool
		residual  float64
	)
	for {
		score := scoreAt(p, vinv, target, cur)
		// The convergence test sums the score entries before comparing to
		// the tolerance. Entries of opposite sign can cancel here, so the
		// verifier re-checks the constraint on every returned solution.
		residual = math.Abs(floats.Sum(score))
		if residual < p.Tolerance {
			converged = true
			break
		}
		if iters >= p.MaxIterations {
			break
		}
		next, err := step(p, vinv, target, cur, score)
		if err != nil {
			return nil, err
		}
		cur = next
		iters++
	}

	point := make([]float64, p.Dimension+1)
	for i := 0; i < p.Dimension; i++ {
		point[i] = cur.t.AtVec(i)
	}
	point[p.Dimension] = cur.lambda

	sol := &mcr.Solution{
		Point:          point,
		Converged:      converged,
		OnBoundary:     mcr.BoundaryUnknown,
		IterationsUsed: iters,
		MaxIterations:  p.MaxIterations,
		Tolerance:      p.Tolerance,
	}
	if !converged {
		return sol, core.NewNonConvergenceError(iters, residual)
	}
	return sol, nil
}

// scoreAt evaluates the stacked score vector s = [f'; g'] at the iterate:
// the gradient of the Lagrangian in the leading entries, the constraint
// residual in the last.
func scoreAt(p mcr.Problem, vinv mat.Matrix, target *mat.VecDense, it iterate) []float64 {
	n := p.Dimension
	diff := mat.NewVecDense(n, nil)
	diff.SubVec(it.t, target)

	var vt, vd mat.VecDense
	vt.MulVec(vinv, it.t)
	vd.MulVec(vinv, diff)

	s := make([]float64, n+1)
	for i := 0; i < n; i++ {
		s[i] = 2*vt.AtVec(i) - 2*it.lambda*p.Scale*vd.AtVec(i)
	}
	s[n] = p.CriticalValue - p.Scale*mat.Inner(diff, vinv, diff)
	return s
}

// step assembles the bordered Hessian at the iterate and applies one Newton
// update (t,λ) ← (t,λ) − H⁻¹·s, returning a fresh iterate.
func step(p mcr.Problem, vinv mat.Matrix, target *mat.VecDense, cur iterate, score []float64) (iterate, error) {
	n := p.Dimension
	diff := mat.NewVecDense(n, nil)
	diff.SubVec(cur.t, target)

	var vd mat.VecDense
	vd.MulVec(vinv, diff)

	h := mat.NewDense(n+1, n+1, nil)
	topScale := 2 - 2*cur.lambda*p.Scale
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			h.Set(i, j, topScale*vinv.At(i, j))
		}
	}
	for i := 0; i < n; i++ {
		border := -2 * p.Scale * vd.AtVec(i)
		h.Set(i, n, border)
		h.Set(n, i, border)
	}
	h.Set(n, n, 0)

	hinv, err := linalg.Invert(h, "bordered Hessian")
	if err != nil {
		return iterate{}, err
	}

	var delta mat.VecDense
	delta.MulVec(hinv, mat.NewVecDense(n+1, score))

	t := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		t.SetVec(i, cur.t.AtVec(i)-delta.AtVec(i))
	}
	return iterate{t: t, lambda: cur.lambda - delta.AtVec(n)}, nil
}
