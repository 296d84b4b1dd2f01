package report

import (
	"strings"
	"testing"
	"time"

	"godisso/domain/assessment"
	"godisso/domain/core"
	"godisso/domain/mcr"
)

func sampleRecord() *assessment.Record {
	return &assessment.Record{
		ID:             core.NewID(),
		ReferenceGroup: "REF",
		TestGroup:      "LOT-42",
		TimePoints:     []float64{10, 20, 30},
		MeanDiff:       []float64{4.1, 5.2, 3.3},
		Scale:          0.8,
		TSquared:       12.5,
		MSD:            2.083,
		CriticalF:      4.066,
		Alpha:          0.05,
		F1:             6.2,
		F2:             61.4,
		FactorFlags:    []string{"high_cv_early"},
		Solution: mcr.Solution{
			Point:          []float64{4.9, 6.2, 3.9, 1.7},
			Converged:      true,
			OnBoundary:     mcr.OnBoundary,
			IterationsUsed: 7,
			MaxIterations:  100,
			Tolerance:      1e-9,
		},
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleRecord())

	for _, want := range []string{
		"REF",
		"LOT-42",
		"f2 (similarity) | 61.400",
		"f1 (difference) | 6.200",
		"high_cv_early",
		"on_boundary",
		"Hotelling T² | 12.500000",
		"| 10 | 4.1000 | 4.9000 |",
		"7/100 iterations",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestMarkdown_NoFlags(t *testing.T) {
	rec := sampleRecord()
	rec.FactorFlags = nil
	if strings.Contains(Markdown(rec), "Advisory flags") {
		t.Error("flags section must be omitted when no flags are set")
	}
}

func TestHTML(t *testing.T) {
	html := string(HTML(sampleRecord()))
	if !strings.Contains(html, "<h1") {
		t.Error("expected rendered heading")
	}
	if !strings.Contains(html, "LOT-42") {
		t.Error("expected group name in HTML output")
	}
}
