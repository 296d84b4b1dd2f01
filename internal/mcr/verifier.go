package mcr

import (
	"fmt"
	"math"

	"godisso/domain/core"
	"godisso/domain/mcr"
	"godisso/internal/linalg"
)

// BoundaryVerifier decides whether a solved point truly lies on the
// confidence-region boundary. It recomputes the constraint's left-hand side
// K·(t−d)ᵀ·S⁻¹·(t−d) at the solution's coordinates and compares it to the
// critical value after rounding both to the same precision.
type BoundaryVerifier struct{}

// NewBoundaryVerifier creates a new boundary verifier
func NewBoundaryVerifier() *BoundaryVerifier {
	return &BoundaryVerifier{}
}

// Verify sets the solution's OnBoundary flag definitively. It is idempotent,
// mutates nothing but OnBoundary, and never re-runs the solver. Shape
// problems in the handoff are fatal and reported before any numeric work.
func (v *BoundaryVerifier) Verify(sol *mcr.Solution, params mcr.Params) error {
	if err := checkHandoff(sol, params); err != nil {
		return err
	}
	n := sol.Dimension()

	cov, err := linalg.DenseFrom(params.Covariance)
	if err != nil {
		return err
	}
	sinv, err := linalg.Invert(cov, "pooled covariance")
	if err != nil {
		return err
	}

	coords := sol.Coordinates()
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = coords[i] - params.MeanDiff[i]
	}
	q, err := linalg.QuadraticForm(diff, sinv)
	if err != nil {
		return err
	}
	kdvd := params.Scale * q

	digits := roundingDigits(sol.Tolerance)
	if roundTo(kdvd, digits) == roundTo(params.CriticalValue, digits) {
		sol.OnBoundary = mcr.OnBoundary
	} else {
		sol.OnBoundary = mcr.OffBoundary
	}
	return nil
}

func checkHandoff(sol *mcr.Solution, params mcr.Params) error {
	if sol == nil {
		return core.NewMalformedHandoffError("solution", "must not be nil")
	}
	if len(sol.Point) < 2 {
		return core.NewMalformedHandoffError("point", "must hold at least one coordinate and the multiplier")
	}
	if !(sol.Tolerance > 0) {
		return core.NewMalformedHandoffError("tolerance", "must be positive")
	}
	n := sol.Dimension()
	if len(params.MeanDiff) != n {
		return core.NewMalformedHandoffError("mean_diff",
			fmt.Sprintf("length %d does not match solution dimension %d", len(params.MeanDiff), n))
	}
	if params.Scale < 0 || math.IsNaN(params.Scale) {
		return core.NewMalformedHandoffError("scale", "must be non-negative")
	}
	if params.CriticalValue < 0 || math.IsNaN(params.CriticalValue) {
		return core.NewMalformedHandoffError("critical_value", "must be non-negative")
	}
	if len(params.Covariance) != n {
		return core.NewMalformedHandoffError("covariance", "must have one row per solution coordinate")
	}
	for _, row := range params.Covariance {
		if len(row) != n {
			return core.NewMalformedHandoffError("covariance", "must be square")
		}
	}
	return nil
}

// roundingDigits derives the decimal-place count for the equality check from
// the solver's convergence tolerance (1e-9 rounds to 9 places). The same
// tolerance deliberately drives both the convergence test and the rounding
// precision; decoupling them would be a one-parameter change here.
func roundingDigits(tol float64) int {
	if !(tol > 0) || tol >= 1 {
		return 0
	}
	d := int(math.Round(-math.Log10(tol)))
	if d < 0 {
		return 0
	}
	if d > 15 {
		return 15
	}
	return d
}

func roundTo(x float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}
