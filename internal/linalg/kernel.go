// Package linalg is the shared numerical kernel under the boundary solver and
// verifier: square-matrix inversion with a conditioning check, and quadratic
// forms. All functions are pure.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"godisso/domain/core"
)

// ConditionLimit is the practical conditioning threshold: a matrix whose
// 1-norm condition number exceeds it is treated as numerically singular even
// when an inverse could formally be computed.
const ConditionLimit = 1e12

// DenseFrom converts a row-major [][]float64 into a gonum dense matrix,
// checking squareness of nothing but rectangularity; callers validate shape.
func DenseFrom(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, core.NewInvalidInputError("matrix", "must not be empty")
	}
	c := len(rows[0])
	if c == 0 {
		return nil, core.NewInvalidInputError("matrix", "must not have empty rows")
	}
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, core.NewInvalidInputError("matrix", fmt.Sprintf("row %d has %d columns, want %d", i, len(row), c))
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

// Invert returns the inverse of a square matrix, or a SingularMatrix error
// when the matrix is exactly singular or conditioned beyond ConditionLimit.
// The context names the matrix for the error message.
func Invert(a mat.Matrix, context string) (*mat.Dense, error) {
	r, c := a.Dims()
	if r == 0 || r != c {
		return nil, core.NewInvalidInputError("matrix", fmt.Sprintf("%s must be square and non-empty, got %dx%d", context, r, c))
	}
	cond := mat.Cond(a, 1)
	if math.IsInf(cond, 1) || math.IsNaN(cond) || cond > ConditionLimit {
		return nil, core.NewSingularMatrixError(context, fmt.Sprintf("condition number %.4g exceeds %.4g", cond, float64(ConditionLimit)))
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, core.NewSingularMatrixError(context, err.Error())
		}
		// gonum flags conditioning it considers marginal; our own threshold
		// above already passed, so the inverse is accepted.
	}
	return &inv, nil
}

// QuadraticForm computes vᵀ·A·v where A is typically an inverse covariance.
func QuadraticForm(v []float64, a mat.Matrix) (float64, error) {
	r, c := a.Dims()
	if r != c {
		return 0, core.NewInvalidInputError("matrix", fmt.Sprintf("must be square, got %dx%d", r, c))
	}
	if len(v) != r {
		return 0, core.NewInvalidInputError("vector", fmt.Sprintf("length %d does not match %dx%d matrix", len(v), r, c))
	}
	x := mat.NewVecDense(len(v), append([]float64(nil), v...))
	return mat.Inner(x, a, x), nil
}
