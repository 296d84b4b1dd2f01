// Package similarity computes the f1 difference and f2 similarity factors
// over mean dissolution profiles. Applicability caveats are reported as
// advisory flags; the package renders no similarity verdict.
package similarity

import (
	"math"

	"github.com/montanaflynn/stats"

	"godisso/domain/core"
	"godisso/domain/profile"
)

// Flags raised when the customary f2 applicability conditions do not hold.
const (
	FlagFewTimePoints = "fewer_than_three_time_points"
	FlagHighCVEarly   = "cv_above_20pct_at_early_points"
	FlagHighCVLate    = "cv_above_10pct_at_later_points"
)

// Factors holds the computed difference and similarity factors.
type Factors struct {
	F1     float64  `json:"f1"`
	F2     float64  `json:"f2"`
	Points int      `json:"points"`
	Flags  []string `json:"flags,omitempty"`
}

// Compute evaluates f1 and f2 between two profile sets on the same grid:
//
//	f1 = 100·Σ|R̄ᵢ−T̄ᵢ| / ΣR̄ᵢ
//	f2 = 50·log10(100 / sqrt(1 + Σ(R̄ᵢ−T̄ᵢ)²/p))
func Compute(ref, test *profile.Set) (*Factors, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := test.Validate(); err != nil {
		return nil, err
	}
	if !profile.SameGrid(ref, test) {
		return nil, core.NewInvalidInputError("times", "reference and test sets must share the same time points")
	}

	rm, tm := ref.Mean(), test.Mean()
	p := len(rm)

	var sumAbs, sumRef, sumSq float64
	for i := range rm {
		d := rm[i] - tm[i]
		sumAbs += math.Abs(d)
		sumRef += rm[i]
		sumSq += d * d
	}
	if sumRef == 0 {
		return nil, core.NewInvalidInputError("release", "reference mean profile sums to zero")
	}

	f := &Factors{
		F1:     100 * sumAbs / sumRef,
		F2:     50 * math.Log10(100/math.Sqrt(1+sumSq/float64(p))),
		Points: p,
	}
	f.Flags = applicabilityFlags(ref, test)
	return f, nil
}

// applicabilityFlags checks the usual preconditions for quoting f2: at least
// three time points, CV below 20% at the first point and below 10% after.
func applicabilityFlags(sets ...*profile.Set) []string {
	var flags []string
	if len(sets[0].Times) < 3 {
		flags = append(flags, FlagFewTimePoints)
	}
	early, late := false, false
	for _, s := range sets {
		for i := range s.Times {
			cv := columnCV(s, i)
			if i == 0 && cv > 20 {
				early = true
			}
			if i > 0 && cv > 10 {
				late = true
			}
		}
	}
	if early {
		flags = append(flags, FlagHighCVEarly)
	}
	if late {
		flags = append(flags, FlagHighCVLate)
	}
	return flags
}

// columnCV is the percent coefficient of variation at time-point index i.
func columnCV(s *profile.Set, i int) float64 {
	col := s.Column(i)
	mean, err := stats.Mean(col)
	if err != nil || mean == 0 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(col)
	if err != nil {
		return 0
	}
	return 100 * sd / math.Abs(mean)
}
