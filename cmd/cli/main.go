package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"godisso/adapters/excel"
	"godisso/app"
	"godisso/domain/core"
	"godisso/domain/mcr"
	"godisso/domain/profile"
	"godisso/internal/config"
	boundary "godisso/internal/mcr"
	"godisso/internal/report"
	"godisso/internal/similarity"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "godisso-cli",
		Short: "Dissolution profile similarity assessment by the MCR procedure",
	}

	rootCmd.AddCommand(
		newAssessCmd(cfg),
		newFactorsCmd(cfg),
		newSolveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// workbookPath resolves the workbook from the positional argument, falling
// back to WORKBOOK_FILE.
func workbookPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Paths.WorkbookFile != "" {
		return cfg.Paths.WorkbookFile, nil
	}
	return "", fmt.Errorf("no workbook given and WORKBOOK_FILE is not set")
}

func loadGroups(path, refName, testName string) (*profile.Set, *profile.Set, error) {
	sets, err := excel.NewProfileReader(path).Read()
	if err != nil {
		return nil, nil, err
	}
	ref, ok := sets[refName]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s in %s", core.ErrGroupNotFound, refName, path)
	}
	test, ok := sets[testName]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s in %s", core.ErrGroupNotFound, testName, path)
	}
	return ref, test, nil
}

func newAssessCmd(cfg *config.Config) *cobra.Command {
	var (
		refName, testName string
		alpha, tolerance  float64
		maxIterations     int
		capRule           bool
		htmlOut           string
		asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "assess [workbook]",
		Short: "Run the full MCR assessment for two groups in a dissolution workbook",
		Long: `Run T² estimation, the boundary solve, boundary verification and the
f1/f2 similarity factors for a reference and a test group, then print a report.
The workbook defaults to WORKBOOK_FILE when the argument is omitted.

Example: godisso-cli assess dissolution.xlsx --ref REF --test TEST --alpha 0.10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := workbookPath(args, cfg)
			if err != nil {
				return err
			}
			ref, test, err := loadGroups(path, refName, testName)
			if err != nil {
				return err
			}

			svc := app.NewAssessmentService(nil, nil, app.Options{})
			rec, err := svc.Assess(cmd.Context(), ref, test, app.Options{
				Alpha:         alpha,
				Tolerance:     tolerance,
				MaxIterations: maxIterations,
				ApplyCapRule:  capRule,
			})
			if err != nil {
				if !core.IsNonConvergenceError(err) {
					return err
				}
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rec); err != nil {
					return err
				}
			} else {
				fmt.Println(report.Markdown(rec))
			}

			if htmlOut != "" {
				if err := os.WriteFile(htmlOut, report.HTML(rec), 0o644); err != nil {
					return fmt.Errorf("failed to write HTML report: %w", err)
				}
				fmt.Fprintf(os.Stderr, "HTML report written to %s\n", htmlOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&refName, "ref", "REF", "Reference group (sheet or group column value)")
	cmd.Flags().StringVar(&testName, "test", "TEST", "Test group (sheet or group column value)")
	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Assessment.Alpha, "Significance level for the critical F-value")
	cmd.Flags().Float64Var(&tolerance, "tolerance", cfg.Assessment.Tolerance, "Convergence tolerance of the boundary solver")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", cfg.Assessment.MaxIterations, "Iteration budget of the boundary solver")
	cmd.Flags().BoolVar(&capRule, "cap-85", false, "Trim time points after both mean profiles exceed 85% release")
	cmd.Flags().StringVar(&htmlOut, "html-out", "", "Write the report as HTML to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw record as JSON instead of a report")

	return cmd
}

func newFactorsCmd(cfg *config.Config) *cobra.Command {
	var refName, testName string

	cmd := &cobra.Command{
		Use:   "factors [workbook]",
		Short: "Compute only the f1/f2 similarity factors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := workbookPath(args, cfg)
			if err != nil {
				return err
			}
			ref, test, err := loadGroups(path, refName, testName)
			if err != nil {
				return err
			}
			f, err := similarity.Compute(ref, test)
			if err != nil {
				return err
			}
			fmt.Printf("f1 = %.3f\nf2 = %.3f (%d time points)\n", f.F1, f.F2, f.Points)
			for _, flag := range f.Flags {
				fmt.Printf("advisory: %s\n", flag)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&refName, "ref", "REF", "Reference group")
	cmd.Flags().StringVar(&testName, "test", "TEST", "Test group")

	return cmd
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [problem.json]",
		Short: "Run a raw boundary solve from a JSON problem description",
		Long: `Solve the constrained boundary-search problem described by a JSON file
with the fields dimension, scale, target, covariance, critical_value,
initial_guess, max_iterations and tolerance, then verify the returned point.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var p mcr.Problem
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("failed to parse problem file: %w", err)
			}

			sol, err := boundary.NewBoundarySolver().Solve(p)
			if err != nil {
				if !core.IsNonConvergenceError(err) {
					return err
				}
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

			if err := boundary.NewBoundaryVerifier().Verify(sol, mcr.Params{
				Scale:         p.Scale,
				MeanDiff:      p.Target,
				Covariance:    p.Covariance,
				CriticalValue: p.CriticalValue,
			}); err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sol)
		},
	}

	return cmd
}
