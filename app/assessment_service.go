package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"godisso/domain/assessment"
	"godisso/domain/core"
	"godisso/domain/profile"
	"godisso/internal"
	"godisso/internal/hotelling"
	"godisso/internal/mcr"
	"godisso/internal/similarity"
	"godisso/ports"
)

// Options tunes one assessment run. Zero values fall back to the service's
// configured defaults, and past those to the customary ones (alpha 0.05,
// tolerance 1e-9, 100 iterations, ones starting guess).
type Options struct {
	Alpha         float64
	Tolerance     float64
	MaxIterations int
	InitialGuess  []float64
	// ApplyCapRule trims time points after both mean profiles exceed 85%
	// release before any statistics are computed.
	ApplyCapRule bool
}

func (o Options) withDefaults() Options {
	if o.Alpha == 0 {
		o.Alpha = 0.05
	}
	if o.Tolerance == 0 {
		o.Tolerance = 1e-9
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 100
	}
	return o
}

// merged fills zero fields of o from base. ApplyCapRule and InitialGuess are
// per-call decisions and never inherited.
func (o Options) merged(base Options) Options {
	if o.Alpha == 0 {
		o.Alpha = base.Alpha
	}
	if o.Tolerance == 0 {
		o.Tolerance = base.Tolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = base.MaxIterations
	}
	return o.withDefaults()
}

// AssessmentService runs the full MCR pipeline for a reference/test pair:
// T² estimation, boundary solve, boundary verification and similarity
// factors, assembled into a persisted record. It reports numbers only; the
// similar/not-similar call stays with the consumer.
type AssessmentService struct {
	solver   *mcr.BoundarySolver
	verifier *mcr.BoundaryVerifier
	repo     ports.AssessmentRepository // nil disables persistence
	log      *internal.Logger
	defaults Options
}

// NewAssessmentService creates an assessment service; repo may be nil.
// defaults is the service-wide option baseline (typically loaded from
// configuration); zero fields of per-call Options fall back to it.
func NewAssessmentService(repo ports.AssessmentRepository, log *internal.Logger, defaults Options) *AssessmentService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &AssessmentService{
		solver:   mcr.NewBoundarySolver(),
		verifier: mcr.NewBoundaryVerifier(),
		repo:     repo,
		log:      log,
		defaults: defaults.withDefaults(),
	}
}

// Assess runs one reference-vs-test assessment. A non-converged solve is
// returned as a usable record together with the NonConvergence error so the
// caller can decide whether to accept it; every other error is fatal.
func (s *AssessmentService) Assess(ctx context.Context, ref, test *profile.Set, opts Options) (*assessment.Record, error) {
	opts = opts.merged(s.defaults)

	if opts.ApplyCapRule {
		var err error
		ref, test, err = profile.Trim85(ref, test)
		if err != nil {
			return nil, err
		}
	}

	est, err := hotelling.NewEstimator(opts.Alpha).Estimate(ref, test)
	if err != nil {
		return nil, err
	}
	factors, err := similarity.Compute(ref, test)
	if err != nil {
		return nil, err
	}

	sol, solveErr := s.solver.Solve(est.Problem(opts.InitialGuess, opts.MaxIterations, opts.Tolerance))
	if solveErr != nil {
		if !core.IsNonConvergenceError(solveErr) {
			return nil, solveErr
		}
		s.log.Warn("boundary solve for %s vs %s did not converge: %v", ref.Group, test.Group, solveErr)
	}
	if err := s.verifier.Verify(sol, est.Params()); err != nil {
		return nil, err
	}

	rec := &assessment.Record{
		ID:             core.NewID(),
		ReferenceGroup: ref.Group,
		TestGroup:      test.Group,
		TimePoints:     append([]float64(nil), ref.Times...),
		MeanDiff:       est.MeanDiff,
		Scale:          est.Scale,
		TSquared:       est.TSquared,
		MSD:            est.MSD,
		CriticalF:      est.CriticalF,
		Alpha:          est.Alpha,
		F1:             factors.F1,
		F2:             factors.F2,
		FactorFlags:    factors.Flags,
		Solution:       *sol,
		CreatedAt:      time.Now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, rec); err != nil {
			return nil, err
		}
	}
	s.log.Info("assessed %s vs %s: f2=%.2f msd=%.4f boundary=%s converged=%t",
		ref.Group, test.Group, rec.F2, rec.MSD, rec.Solution.OnBoundary, rec.Solution.Converged)

	// surface the non-fatal warning alongside the usable record
	return rec, solveErr
}

// Pair is one independent reference/test assessment in a batch.
type Pair struct {
	Reference *profile.Set
	Test      *profile.Set
	Options   Options
}

// AssessBatch runs independent assessments concurrently. Each solve owns its
// iterate, so no coordination beyond the errgroup is needed. Non-convergence
// of an individual pair does not abort the batch.
func (s *AssessmentService) AssessBatch(ctx context.Context, pairs []Pair) ([]*assessment.Record, error) {
	g, ctx := errgroup.WithContext(ctx)
	out := make([]*assessment.Record, len(pairs))
	for i, p := range pairs {
		g.Go(func() error {
			rec, err := s.Assess(ctx, p.Reference, p.Test, p.Options)
			if err != nil && !core.IsNonConvergenceError(err) {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
