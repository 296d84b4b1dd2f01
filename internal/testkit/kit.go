// Package testkit provides deterministic synthetic fixtures for tests:
// Weibull-shaped dissolution profiles with batch noise and well-conditioned
// covariance matrices.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"godisso/domain/profile"
)

// Kit generates reproducible fixtures from a fixed seed.
type Kit struct {
	rng *rand.Rand
}

// New creates a test kit seeded for reproducibility
func New(seed int64) *Kit {
	return &Kit{rng: rand.New(rand.NewSource(seed))}
}

// ProfileSet generates a group of dissolution profiles following a Weibull
// release curve 100·(1−exp(−(t/mdt)^beta)) with independent measurement noise
// per cell.
func (k *Kit) ProfileSet(group string, batches int, times []float64, mdt, beta, noiseSD float64) *profile.Set {
	set := &profile.Set{
		Group: group,
		Times: append([]float64(nil), times...),
	}
	for b := 0; b < batches; b++ {
		release := make([]float64, len(times))
		for i, t := range times {
			v := 100*(1-math.Exp(-math.Pow(t/mdt, beta))) + k.rng.NormFloat64()*noiseSD
			release[i] = v
		}
		set.Profiles = append(set.Profiles, profile.Profile{
			Batch:   fmt.Sprintf("%s-%02d", group, b+1),
			Release: release,
		})
	}
	return set
}

// StandardTimes returns the customary 8-point sampling grid in minutes.
func StandardTimes() []float64 {
	return []float64{5, 10, 15, 20, 30, 45, 60, 90}
}

// SPDMatrix returns a well-conditioned symmetric positive-definite matrix,
// usable as a synthetic pooled covariance.
func (k *Kit) SPDMatrix(n int) [][]float64 {
	b := make([][]float64, n)
	for i := range b {
		b[i] = make([]float64, n)
		for j := range b[i] {
			b[i][j] = k.rng.NormFloat64()
		}
	}
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			sum := 0.0
			for l := 0; l < n; l++ {
				sum += b[i][l] * b[j][l]
			}
			m[i][j] = sum / float64(n)
		}
		// diagonal boost keeps the conditioning modest
		m[i][i] += 1
	}
	return m
}

// CompoundSymmetric returns the matrix a·I + c·J, positive-definite whenever
// a > 0 and a + n·c > 0.
func CompoundSymmetric(n int, a, c float64) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = c
		}
		m[i][i] += a
	}
	return m
}

// Ones returns a vector of ones, the customary solver starting guess.
func Ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Constant returns a vector with every entry equal to v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
