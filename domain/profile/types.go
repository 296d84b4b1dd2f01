package profile

import (
	"fmt"
	"math"

	"godisso/domain/core"
)

// Profile is one batch's dissolution release curve: percent of drug released
// at each sampled time point.
type Profile struct {
	Batch   string    `json:"batch"`
	Release []float64 `json:"release"`
}

// Set is a group of profiles (e.g. all reference batches or all test batches)
// measured on a shared time-point grid.
type Set struct {
	Group    string    `json:"group"`
	Times    []float64 `json:"times"` // minutes
	Profiles []Profile `json:"profiles"`
}

// Validate checks the shape constraints a set must satisfy before any
// statistics are computed over it.
func (s *Set) Validate() error {
	if s.Group == "" {
		return core.NewInvalidInputError("group", "must not be empty")
	}
	if len(s.Times) == 0 {
		return core.NewInvalidInputError("times", "must contain at least one time point")
	}
	prev := math.Inf(-1)
	for i, t := range s.Times {
		if math.IsNaN(t) || t < 0 {
			return core.NewInvalidInputError("times", fmt.Sprintf("time point %d must be non-negative", i))
		}
		if t <= prev {
			return core.NewInvalidInputError("times", "time points must be strictly increasing")
		}
		prev = t
	}
	if len(s.Profiles) < 2 {
		return core.NewInvalidInputError("profiles", "at least two batches are required for a pooled covariance")
	}
	for _, p := range s.Profiles {
		if p.Batch == "" {
			return core.NewInvalidInputError("batch", "must not be empty")
		}
		if len(p.Release) != len(s.Times) {
			return core.NewInvalidInputError("release",
				fmt.Sprintf("batch %s has %d values for %d time points", p.Batch, len(p.Release), len(s.Times)))
		}
		for i, v := range p.Release {
			if math.IsNaN(v) {
				return core.NewInvalidInputError("release",
					fmt.Sprintf("batch %s has a missing value at time point %d", p.Batch, i))
			}
		}
	}
	return nil
}

// BatchCount returns the number of batches in the set.
func (s *Set) BatchCount() int {
	return len(s.Profiles)
}

// Column returns all batch measurements at time-point index i.
func (s *Set) Column(i int) []float64 {
	col := make([]float64, len(s.Profiles))
	for j, p := range s.Profiles {
		col[j] = p.Release[i]
	}
	return col
}

// Mean returns the column means: the mean release at each time point.
func (s *Set) Mean() []float64 {
	m := make([]float64, len(s.Times))
	for i := range s.Times {
		sum := 0.0
		for _, p := range s.Profiles {
			sum += p.Release[i]
		}
		m[i] = sum / float64(len(s.Profiles))
	}
	return m
}

// SameGrid reports whether two sets share the same time-point grid.
func SameGrid(a, b *Set) bool {
	if len(a.Times) != len(b.Times) {
		return false
	}
	for i := range a.Times {
		if a.Times[i] != b.Times[i] {
			return false
		}
	}
	return true
}

// MeanDiff returns the mean-difference vector between two sets on the same
// grid: reference column means minus test column means.
func MeanDiff(ref, test *Set) ([]float64, error) {
	if !SameGrid(ref, test) {
		return nil, core.NewInvalidInputError("times", "reference and test sets must share the same time points")
	}
	rm, tm := ref.Mean(), test.Mean()
	d := make([]float64, len(rm))
	for i := range rm {
		d[i] = rm[i] - tm[i]
	}
	return d, nil
}

// slice returns a copy of the set restricted to the first n time points.
func (s *Set) slice(n int) *Set {
	out := &Set{Group: s.Group, Times: append([]float64(nil), s.Times[:n]...)}
	for _, p := range s.Profiles {
		out.Profiles = append(out.Profiles, Profile{
			Batch:   p.Batch,
			Release: append([]float64(nil), p.Release[:n]...),
		})
	}
	return out
}

// Trim85 applies the customary capping rule: once both mean profiles exceed
// 85% release, only the first such time point is kept. Later points carry no
// discriminating information and inflate similarity artificially.
func Trim85(ref, test *Set) (*Set, *Set, error) {
	if !SameGrid(ref, test) {
		return nil, nil, core.NewInvalidInputError("times", "reference and test sets must share the same time points")
	}
	rm, tm := ref.Mean(), test.Mean()
	n := len(ref.Times)
	for i := range rm {
		if rm[i] > 85 && tm[i] > 85 {
			n = i + 1
			break
		}
	}
	return ref.slice(n), test.slice(n), nil
}
