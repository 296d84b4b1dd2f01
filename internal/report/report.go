// Package report renders assessment records as markdown and HTML text
// reports. Plotting is deliberately absent.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"

	"godisso/domain/assessment"
)

// Markdown renders a record as a human-readable markdown report.
func Markdown(rec *assessment.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Dissolution similarity assessment\n\n")
	fmt.Fprintf(&b, "- ID: `%s`\n", rec.ID)
	fmt.Fprintf(&b, "- Reference group: **%s**\n", rec.ReferenceGroup)
	fmt.Fprintf(&b, "- Test group: **%s**\n", rec.TestGroup)
	fmt.Fprintf(&b, "- Created: %s\n\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "## Similarity factors\n\n")
	fmt.Fprintf(&b, "| Factor | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| f1 (difference) | %.3f |\n", rec.F1)
	fmt.Fprintf(&b, "| f2 (similarity) | %.3f |\n\n", rec.F2)
	if len(rec.FactorFlags) > 0 {
		fmt.Fprintf(&b, "Advisory flags: %s\n\n", strings.Join(rec.FactorFlags, ", "))
	}

	fmt.Fprintf(&b, "## Multivariate confidence region\n\n")
	fmt.Fprintf(&b, "| Quantity | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Time points | %d |\n", len(rec.TimePoints))
	fmt.Fprintf(&b, "| Scaling factor K | %.6f |\n", rec.Scale)
	fmt.Fprintf(&b, "| Hotelling T² | %.6f |\n", rec.TSquared)
	fmt.Fprintf(&b, "| MSD | %.6f |\n", rec.MSD)
	fmt.Fprintf(&b, "| Critical F (α=%.3g) | %.6f |\n\n", rec.Alpha, rec.CriticalF)

	fmt.Fprintf(&b, "## Boundary solve\n\n")
	fmt.Fprintf(&b, "- Converged: %t (%d/%d iterations, tolerance %.1e)\n",
		rec.Solution.Converged, rec.Solution.IterationsUsed, rec.Solution.MaxIterations, rec.Solution.Tolerance)
	fmt.Fprintf(&b, "- Boundary membership: %s\n", rec.Solution.OnBoundary)
	fmt.Fprintf(&b, "- Lagrange multiplier: %.6f\n\n", rec.Solution.Multiplier())

	fmt.Fprintf(&b, "| Time (min) | Mean diff | Boundary point |\n|---|---|---|\n")
	coords := rec.Solution.Coordinates()
	for i, tp := range rec.TimePoints {
		if i < len(rec.MeanDiff) && i < len(coords) {
			fmt.Fprintf(&b, "| %.0f | %.4f | %.4f |\n", tp, rec.MeanDiff[i], coords[i])
		}
	}
	return b.String()
}

// HTML renders the markdown report to HTML.
func HTML(rec *assessment.Record) []byte {
	return markdown.ToHTML([]byte(Markdown(rec)), nil, nil)
}
