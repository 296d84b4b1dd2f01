package similarity

import (
	"math"
	"testing"

	"godisso/domain/core"
	"godisso/domain/profile"
)

func uniformSet(group string, times []float64, release []float64) *profile.Set {
	return &profile.Set{
		Group: group,
		Times: times,
		Profiles: []profile.Profile{
			{Batch: group + "1", Release: append([]float64(nil), release...)},
			{Batch: group + "2", Release: append([]float64(nil), release...)},
		},
	}
}

func TestCompute_IdenticalProfiles(t *testing.T) {
	times := []float64{10, 20, 30}
	ref := uniformSet("R", times, []float64{30, 60, 85})
	test := uniformSet("T", times, []float64{30, 60, 85})

	f, err := Compute(ref, test)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(f.F1) > 1e-12 {
		t.Errorf("f1 = %f, want 0", f.F1)
	}
	// sum of squared differences is zero, so f2 = 50·log10(100) = 100
	if math.Abs(f.F2-100) > 1e-12 {
		t.Errorf("f2 = %f, want 100", f.F2)
	}
	if len(f.Flags) != 0 {
		t.Errorf("unexpected flags: %v", f.Flags)
	}
}

func TestCompute_KnownShift(t *testing.T) {
	times := []float64{10, 20, 30}
	ref := uniformSet("R", times, []float64{40, 60, 85})
	test := uniformSet("T", times, []float64{30, 50, 75})

	f, err := Compute(ref, test)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	wantF1 := 100.0 * 30 / 185
	if math.Abs(f.F1-wantF1) > 1e-9 {
		t.Errorf("f1 = %f, want %f", f.F1, wantF1)
	}
	wantF2 := 50 * math.Log10(100/math.Sqrt(1+100))
	if math.Abs(f.F2-wantF2) > 1e-9 {
		t.Errorf("f2 = %f, want %f", f.F2, wantF2)
	}
	if f.Points != 3 {
		t.Errorf("points = %d, want 3", f.Points)
	}
}

func TestCompute_FewTimePointsFlag(t *testing.T) {
	times := []float64{10, 20}
	ref := uniformSet("R", times, []float64{40, 60})
	test := uniformSet("T", times, []float64{42, 63})

	f, err := Compute(ref, test)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	found := false
	for _, fl := range f.Flags {
		if fl == FlagFewTimePoints {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s flag, got %v", FlagFewTimePoints, f.Flags)
	}
}

func TestCompute_HighCVFlag(t *testing.T) {
	times := []float64{10, 20, 30}
	ref := &profile.Set{
		Group: "R",
		Times: times,
		Profiles: []profile.Profile{
			{Batch: "R1", Release: []float64{20, 50, 80}},
			{Batch: "R2", Release: []float64{40, 80, 99}},
		},
	}
	test := uniformSet("T", times, []float64{30, 60, 85})

	f, err := Compute(ref, test)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(f.Flags) == 0 {
		t.Error("expected CV flags for widely scattered reference batches")
	}
}

func TestCompute_MismatchedGrids(t *testing.T) {
	ref := uniformSet("R", []float64{10, 20, 30}, []float64{30, 60, 85})
	test := uniformSet("T", []float64{10, 20, 45}, []float64{30, 60, 85})

	_, err := Compute(ref, test)
	if !core.IsInvalidInputError(err) {
		t.Errorf("expected InvalidInput for mismatched grids, got %v", err)
	}
}
