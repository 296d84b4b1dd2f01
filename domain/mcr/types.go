package mcr

import (
	"encoding/json"
	"math"

	"godisso/domain/core"
)

// BoundaryStatus is the tri-state boundary-membership flag of a Solution.
// The zero value is Unknown, so any Solution holds the flag's invariant by
// construction; the verifier is the only code that moves it off Unknown.
type BoundaryStatus int

const (
	BoundaryUnknown BoundaryStatus = iota
	OnBoundary
	OffBoundary
)

func (b BoundaryStatus) String() string {
	switch b {
	case OnBoundary:
		return "on_boundary"
	case OffBoundary:
		return "off_boundary"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string form.
func (b BoundaryStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts the string forms produced by MarshalJSON; anything
// unrecognized maps back to Unknown rather than failing the whole record.
func (b *BoundaryStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "on_boundary":
		*b = OnBoundary
	case "off_boundary":
		*b = OffBoundary
	default:
		*b = BoundaryUnknown
	}
	return nil
}

// Problem describes one constrained boundary search. It is read-only for the
// duration of a solve: find the point t extremizing tᵀ·V⁻¹·t subject to
// CriticalValue = Scale·(t−Target)ᵀ·V⁻¹·(t−Target).
type Problem struct {
	// Dimension is the number of coordinates of the boundary point
	// (time points or model parameters).
	Dimension int `json:"dimension"`
	// Scale multiplies the quadratic form in the constraint.
	Scale float64 `json:"scale"`
	// Target is the mean-difference vector, length Dimension.
	Target []float64 `json:"target"`
	// Covariance is the pooled covariance matrix, Dimension x Dimension,
	// symmetric positive-definite in valid use.
	Covariance [][]float64 `json:"covariance"`
	// CriticalValue is the right-hand side the constraint must equal.
	CriticalValue float64 `json:"critical_value"`
	// InitialGuess has length Dimension+1; the last entry is the initial
	// Lagrange-multiplier estimate.
	InitialGuess []float64 `json:"initial_guess"`
	// MaxIterations bounds the Newton-Raphson iteration count.
	MaxIterations int `json:"max_iterations"`
	// Tolerance is the convergence threshold on the aggregate score.
	Tolerance float64 `json:"tolerance"`
}

// Validate checks every shape and range constraint eagerly, before any
// iteration, and names the offending field.
func (p *Problem) Validate() error {
	if p.Dimension < 1 {
		return core.NewInvalidInputError("dimension", "must be a positive integer")
	}
	if p.Scale < 0 || math.IsNaN(p.Scale) {
		return core.NewInvalidInputError("scale", "must be non-negative")
	}
	if p.CriticalValue < 0 || math.IsNaN(p.CriticalValue) {
		return core.NewInvalidInputError("critical_value", "must be non-negative")
	}
	if len(p.Target) != p.Dimension {
		return core.NewInvalidInputError("target", "length must equal dimension")
	}
	if len(p.Covariance) != p.Dimension {
		return core.NewInvalidInputError("covariance", "must have dimension rows")
	}
	for _, row := range p.Covariance {
		if len(row) != p.Dimension {
			return core.NewInvalidInputError("covariance", "must be square with dimension columns")
		}
	}
	if len(p.InitialGuess) != p.Dimension+1 {
		return core.NewInvalidInputError("initial_guess", "length must equal dimension+1 (last entry is the multiplier)")
	}
	if p.MaxIterations < 1 {
		return core.NewInvalidInputError("max_iterations", "must be a positive integer")
	}
	if !(p.Tolerance > 0) {
		return core.NewInvalidInputError("tolerance", "must be positive")
	}
	return nil
}

// Params is the statistical parameter bundle the Problem was built from,
// handed to the verifier together with the Solution.
type Params struct {
	// Scale is the sample-size-derived scaling factor K.
	Scale float64 `json:"scale"`
	// MeanDiff is the observed mean-difference vector.
	MeanDiff []float64 `json:"mean_diff"`
	// Covariance is the pooled covariance matrix.
	Covariance [][]float64 `json:"covariance"`
	// CriticalValue is the critical F-value the constraint must equal.
	CriticalValue float64 `json:"critical_value"`
}

// Solution is the typed result record of one boundary solve. OnBoundary is
// the only field mutated after construction, exactly once, by the verifier.
type Solution struct {
	// Point has length Dimension+1: the leading entries are the candidate
	// boundary coordinates, the last entry is the final Lagrange multiplier.
	Point []float64 `json:"point"`
	// Converged is true iff the stopping criterion was met before the
	// iteration budget ran out.
	Converged bool `json:"converged"`
	// OnBoundary is Unknown after solving; the verifier sets it definitively.
	OnBoundary BoundaryStatus `json:"on_boundary"`

	// Provenance
	IterationsUsed int     `json:"iterations_used"`
	MaxIterations  int     `json:"max_iterations"`
	Tolerance      float64 `json:"tolerance"`
}

// Dimension returns the number of boundary coordinates in the point.
func (s *Solution) Dimension() int {
	if len(s.Point) == 0 {
		return 0
	}
	return len(s.Point) - 1
}

// Coordinates returns the candidate boundary point without the multiplier.
func (s *Solution) Coordinates() []float64 {
	if len(s.Point) == 0 {
		return nil
	}
	return s.Point[:len(s.Point)-1]
}

// Multiplier returns the final Lagrange multiplier.
func (s *Solution) Multiplier() float64 {
	if len(s.Point) == 0 {
		return math.NaN()
	}
	return s.Point[len(s.Point)-1]
}
