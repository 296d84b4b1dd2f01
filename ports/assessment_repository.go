package ports

import (
	"context"

	"godisso/domain/assessment"
	"godisso/domain/core"
)

// AssessmentRepository persists assessment records
type AssessmentRepository interface {
	// Create inserts a new assessment record
	Create(ctx context.Context, rec *assessment.Record) error

	// GetByID retrieves an assessment record by its ID
	GetByID(ctx context.Context, id core.ID) (*assessment.Record, error)

	// ListRecent returns the most recent records, newest first
	ListRecent(ctx context.Context, limit int) ([]*assessment.Record, error)
}
