// Package repository persists extraction runs. Two backends implement the
// same interface: Postgres via pgx for the server deployment and embedded
// SQLite for the local CLI.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-otieno/resume-extractor/constants"
)

// ExtractionJob is one extract(+validate) run over a single document.
type ExtractionJob struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	SourcePath       string
	FieldDescription string
	Status           constants.JobStatus
	DocumentText     string
	ExtractedJSON    []byte
	ValidationJSON   []byte
	OverallScore     *float64
	ErrorMessage     string
}

// JobRepository stores extraction jobs through their status lifecycle
// QUEUED -> RUNNING -> EXTRACTED -> VALIDATED | FAILED.
type JobRepository interface {
	Start(ctx context.Context, sourcePath, fieldDescription string) (*ExtractionJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	FinishExtractSuccess(ctx context.Context, id uuid.UUID, documentText string, extractedJSON []byte) error
	FinishValidateSuccess(ctx context.Context, id uuid.UUID, validationJSON []byte, overallScore float64) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExtractionJob, error)
	List(ctx context.Context, limit int) ([]*ExtractionJob, error)
}
