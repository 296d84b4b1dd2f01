package assessment

import (
	"time"

	"godisso/domain/core"
	"godisso/domain/mcr"
)

// Record is the persisted outcome of one reference-vs-test assessment. It
// reports the numbers the statistician needs; it deliberately carries no
// similar/not-similar verdict.
type Record struct {
	ID             core.ID   `json:"id"`
	ReferenceGroup string    `json:"reference_group"`
	TestGroup      string    `json:"test_group"`
	TimePoints     []float64 `json:"time_points"`

	// Two-sample Hotelling T² parameters
	MeanDiff  []float64 `json:"mean_diff"`
	Scale     float64   `json:"scale"` // K
	TSquared  float64   `json:"t_squared"`
	MSD       float64   `json:"msd"`
	CriticalF float64   `json:"critical_f"`
	Alpha     float64   `json:"alpha"`

	// Similarity factors over the mean profiles
	F1          float64  `json:"f1"`
	F2          float64  `json:"f2"`
	FactorFlags []string `json:"factor_flags,omitempty"`

	// Boundary solve outcome
	Solution mcr.Solution `json:"solution"`

	CreatedAt time.Time `json:"created_at"`
}
