package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"godisso/domain/assessment"
	"godisso/domain/core"
	apperrors "godisso/internal/errors"
	"godisso/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS assessments (
	id TEXT PRIMARY KEY,
	reference_group TEXT NOT NULL,
	test_group TEXT NOT NULL,
	time_points JSONB NOT NULL,
	mean_diff JSONB NOT NULL,
	scale DOUBLE PRECISION NOT NULL,
	t_squared DOUBLE PRECISION NOT NULL,
	msd DOUBLE PRECISION NOT NULL,
	critical_f DOUBLE PRECISION NOT NULL,
	alpha DOUBLE PRECISION NOT NULL,
	f1 DOUBLE PRECISION NOT NULL,
	f2 DOUBLE PRECISION NOT NULL,
	factor_flags JSONB,
	solution JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments (created_at DESC);`

// EnsureSchema creates the assessments table when it does not exist yet
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to ensure assessments schema")
	}
	return nil
}

// assessmentRepository implements the AssessmentRepository interface
type assessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *sqlx.DB) ports.AssessmentRepository {
	return &assessmentRepository{db: db}
}

// Create inserts a new assessment record into the database
func (r *assessmentRepository) Create(ctx context.Context, rec *assessment.Record) error {
	timePoints, err := json.Marshal(rec.TimePoints)
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal time points")
	}
	meanDiff, err := json.Marshal(rec.MeanDiff)
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal mean diff")
	}
	flags, err := json.Marshal(rec.FactorFlags)
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal factor flags")
	}
	solution, err := json.Marshal(rec.Solution)
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal solution")
	}

	query := `INSERT INTO assessments (
		id, reference_group, test_group, time_points, mean_diff,
		scale, t_squared, msd, critical_f, alpha, f1, f2,
		factor_flags, solution, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)`

	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ReferenceGroup, rec.TestGroup, timePoints, meanDiff,
		rec.Scale, rec.TSquared, rec.MSD, rec.CriticalF, rec.Alpha, rec.F1, rec.F2,
		flags, solution, rec.CreatedAt,
	); err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to create assessment")
	}
	return nil
}

// GetByID retrieves an assessment record by its ID
func (r *assessmentRepository) GetByID(ctx context.Context, id core.ID) (*assessment.Record, error) {
	query := `SELECT
		id, reference_group, test_group, time_points, mean_diff,
		scale, t_squared, msd, critical_f, alpha, f1, f2,
		COALESCE(factor_flags, 'null'::jsonb), solution, created_at
	FROM assessments WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRowxContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("assessment", id.String())
		}
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to get assessment")
	}
	return rec, nil
}

// ListRecent returns the most recent records, newest first
func (r *assessmentRepository) ListRecent(ctx context.Context, limit int) ([]*assessment.Record, error) {
	query := `SELECT
		id, reference_group, test_group, time_points, mean_diff,
		scale, t_squared, msd, critical_f, alpha, f1, f2,
		COALESCE(factor_flags, 'null'::jsonb), solution, created_at
	FROM assessments ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to list assessments")
	}
	defer rows.Close()

	var out []*assessment.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to scan assessment")
		}
		out = append(out, rec)
	}
	return out, apperrors.Wrap(rows.Err(), "failed to iterate assessments")
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scannable) (*assessment.Record, error) {
	var (
		rec        assessment.Record
		timePoints []byte
		meanDiff   []byte
		flags      []byte
		solution   []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.ReferenceGroup, &rec.TestGroup, &timePoints, &meanDiff,
		&rec.Scale, &rec.TSquared, &rec.MSD, &rec.CriticalF, &rec.Alpha, &rec.F1, &rec.F2,
		&flags, &solution, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(timePoints, &rec.TimePoints); err != nil {
		return nil, apperrors.Wrapf(err, "failed to unmarshal time points")
	}
	if err := json.Unmarshal(meanDiff, &rec.MeanDiff); err != nil {
		return nil, apperrors.Wrapf(err, "failed to unmarshal mean diff")
	}
	if err := json.Unmarshal(flags, &rec.FactorFlags); err != nil {
		return nil, apperrors.Wrapf(err, "failed to unmarshal factor flags")
	}
	if err := json.Unmarshal(solution, &rec.Solution); err != nil {
		return nil, apperrors.Wrapf(err, "failed to unmarshal solution")
	}
	return &rec, nil
}
