package mcr

import (
	"math"
	"testing"

	"godisso/domain/core"
	"godisso/domain/mcr"
)

func solvedOneDim(t *testing.T) (*mcr.Solution, mcr.Params) {
	t.Helper()
	p := mcr.Problem{
		Dimension:     1,
		Scale:         2,
		Target:        []float64{5},
		Covariance:    [][]float64{{4}},
		CriticalValue: 2,
		InitialGuess:  []float64{1, 1},
		MaxIterations: 100,
		Tolerance:     1e-9,
	}
	sol, err := NewBoundarySolver().Solve(p)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	return sol, mcr.Params{
		Scale:         p.Scale,
		MeanDiff:      p.Target,
		Covariance:    p.Covariance,
		CriticalValue: p.CriticalValue,
	}
}

func TestVerify_SetsOnBoundary(t *testing.T) {
	sol, params := solvedOneDim(t)
	if err := NewBoundaryVerifier().Verify(sol, params); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if sol.OnBoundary != mcr.OnBoundary {
		t.Errorf("OnBoundary = %s, want on_boundary", sol.OnBoundary)
	}
}

func TestVerify_Idempotent(t *testing.T) {
	sol, params := solvedOneDim(t)
	v := NewBoundaryVerifier()
	if err := v.Verify(sol, params); err != nil {
		t.Fatalf("first Verify failed: %v", err)
	}
	first := sol.OnBoundary
	if err := v.Verify(sol, params); err != nil {
		t.Fatalf("second Verify failed: %v", err)
	}
	if sol.OnBoundary != first {
		t.Errorf("repeated verification changed OnBoundary: %s then %s", first, sol.OnBoundary)
	}
}

func TestVerify_OffBoundary(t *testing.T) {
	_, params := solvedOneDim(t)
	// the target itself has constraint LHS zero, nowhere near the critical value
	sol := &mcr.Solution{
		Point:          []float64{params.MeanDiff[0], 0},
		Converged:      true,
		OnBoundary:     mcr.BoundaryUnknown,
		IterationsUsed: 3,
		MaxIterations:  100,
		Tolerance:      1e-9,
	}
	if err := NewBoundaryVerifier().Verify(sol, params); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if sol.OnBoundary != mcr.OffBoundary {
		t.Errorf("OnBoundary = %s, want off_boundary", sol.OnBoundary)
	}
}

func TestVerify_MutatesOnlyOnBoundary(t *testing.T) {
	sol, params := solvedOneDim(t)
	point := append([]float64(nil), sol.Point...)
	converged, iters := sol.Converged, sol.IterationsUsed
	if err := NewBoundaryVerifier().Verify(sol, params); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	for i := range point {
		if sol.Point[i] != point[i] {
			t.Errorf("point[%d] changed from %f to %f", i, point[i], sol.Point[i])
		}
	}
	if sol.Converged != converged || sol.IterationsUsed != iters {
		t.Error("verifier must not touch convergence metadata")
	}
}

func TestVerify_MalformedHandoff(t *testing.T) {
	goodSol, goodParams := solvedOneDim(t)

	cases := []struct {
		name   string
		sol    *mcr.Solution
		params mcr.Params
	}{
		{"nil solution", nil, goodParams},
		{"empty point", &mcr.Solution{Tolerance: 1e-9}, goodParams},
		{"missing multiplier", &mcr.Solution{Point: []float64{1}, Tolerance: 1e-9}, goodParams},
		{"zero tolerance", &mcr.Solution{Point: []float64{1, 1}}, goodParams},
		{"mean diff mismatch", goodSol, mcr.Params{
			Scale: 2, MeanDiff: []float64{1, 2}, Covariance: goodParams.Covariance, CriticalValue: 2,
		}},
		{"covariance mismatch", goodSol, mcr.Params{
			Scale: 2, MeanDiff: goodParams.MeanDiff, Covariance: [][]float64{{1, 0}, {0, 1}}, CriticalValue: 2,
		}},
		{"negative scale", goodSol, mcr.Params{
			Scale: -1, MeanDiff: goodParams.MeanDiff, Covariance: goodParams.Covariance, CriticalValue: 2,
		}},
		{"negative critical value", goodSol, mcr.Params{
			Scale: 2, MeanDiff: goodParams.MeanDiff, Covariance: goodParams.Covariance, CriticalValue: -2,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewBoundaryVerifier().Verify(tc.sol, tc.params)
			if err == nil {
				t.Fatal("expected MalformedHandoff error")
			}
			if !core.IsMalformedHandoffError(err) {
				t.Errorf("expected MalformedHandoff error, got %v", err)
			}
		})
	}
}

func TestVerify_SingularCovariance(t *testing.T) {
	sol := &mcr.Solution{Point: []float64{1, 2, 0.5}, Tolerance: 1e-9}
	params := mcr.Params{
		Scale:         1,
		MeanDiff:      []float64{0, 0},
		Covariance:    [][]float64{{1, 1}, {1, 1}},
		CriticalValue: 1,
	}
	err := NewBoundaryVerifier().Verify(sol, params)
	if !core.IsSingularMatrixError(err) {
		t.Errorf("expected SingularMatrix error, got %v", err)
	}
	if sol.OnBoundary != mcr.BoundaryUnknown {
		t.Errorf("OnBoundary must remain unknown after a fatal verifier error, got %s", sol.OnBoundary)
	}
}

func TestRoundingDigits(t *testing.T) {
	cases := []struct {
		tol  float64
		want int
	}{
		{1e-9, 9},
		{1e-6, 6},
		{0.5, 0},
		{1, 0},
		{0, 0},
		{1e-20, 15},
	}
	for _, tc := range cases {
		if got := roundingDigits(tc.tol); got != tc.want {
			t.Errorf("roundingDigits(%g) = %d, want %d", tc.tol, got, tc.want)
		}
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(3.14159, 2); math.Abs(got-3.14) > 1e-12 {
		t.Errorf("roundTo(3.14159, 2) = %f, want 3.14", got)
	}
	if got := roundTo(2.5, 0); got != 3 {
		t.Errorf("roundTo(2.5, 0) = %f, want 3", got)
	}
}
