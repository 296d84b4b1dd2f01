package linalg

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"godisso/domain/core"
)

func TestInvert_KnownMatrix(t *testing.T) {
	// [[4,7],[2,6]] has inverse [[0.6,-0.7],[-0.2,0.4]]
	a := mat.NewDense(2, 2, []float64{4, 7, 2, 6})
	inv, err := Invert(a, "test matrix")
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}
	want := [][]float64{{0.6, -0.7}, {-0.2, 0.4}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(inv.At(i, j)-want[i][j]) > 1e-12 {
				t.Errorf("inv[%d][%d] = %f, want %f", i, j, inv.At(i, j), want[i][j])
			}
		}
	}
}

func TestInvert_Identity(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	inv, err := Invert(a, "identity")
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(inv.At(i, j)-want) > 1e-12 {
				t.Errorf("inv[%d][%d] = %f, want %f", i, j, inv.At(i, j), want)
			}
		}
	}
}

func TestInvert_Singular(t *testing.T) {
	// Rank-1 matrix
	a := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	_, err := Invert(a, "rank-deficient")
	if err == nil {
		t.Fatal("expected error for singular matrix")
	}
	if !core.IsSingularMatrixError(err) {
		t.Errorf("expected SingularMatrix error, got %v", err)
	}
}

func TestInvert_IllConditioned(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 1, 1, 1 + 1e-14})
	_, err := Invert(a, "near-singular")
	if err == nil {
		t.Fatal("expected error for matrix conditioned beyond the practical limit")
	}
	if !core.IsSingularMatrixError(err) {
		t.Errorf("expected SingularMatrix error, got %v", err)
	}
}

func TestInvert_NonSquare(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	_, err := Invert(a, "rectangular")
	if !core.IsInvalidInputError(err) {
		t.Errorf("expected InvalidInput error, got %v", err)
	}
}

func TestQuadraticForm(t *testing.T) {
	// v = [1,2], A = [[2,0],[0,3]] -> 1*2*1 + 2*3*2 = 14
	a := mat.NewDense(2, 2, []float64{2, 0, 0, 3})
	got, err := QuadraticForm([]float64{1, 2}, a)
	if err != nil {
		t.Fatalf("QuadraticForm failed: %v", err)
	}
	if math.Abs(got-14) > 1e-12 {
		t.Errorf("QuadraticForm = %f, want 14", got)
	}
}

func TestQuadraticForm_MismatchedLength(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	_, err := QuadraticForm([]float64{1, 2, 3}, a)
	if !core.IsInvalidInputError(err) {
		t.Errorf("expected InvalidInput error, got %v", err)
	}
}

func TestQuadraticForm_InverseRoundTrip(t *testing.T) {
	// For A = diag(4,9), v̄ᵀA⁻¹v with v=[2,3] is 4/4 + 9/9 = 2
	a := mat.NewDense(2, 2, []float64{4, 0, 0, 9})
	inv, err := Invert(a, "diagonal")
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}
	got, err := QuadraticForm([]float64{2, 3}, inv)
	if err != nil {
		t.Fatalf("QuadraticForm failed: %v", err)
	}
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("quadratic form = %f, want 2", got)
	}
}

func TestDenseFrom_RaggedRows(t *testing.T) {
	_, err := DenseFrom([][]float64{{1, 2}, {3}})
	if !core.IsInvalidInputError(err) {
		t.Errorf("expected InvalidInput error, got %v", err)
	}
}
