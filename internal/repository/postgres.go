package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daniel-otieno/resume-extractor/constants"
	"github.com/daniel-otieno/resume-extractor/internal/common"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Open creates a pgx pool for the Postgres backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "resume-extractor"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	source_path TEXT NOT NULL,
	field_description TEXT NOT NULL,
	status TEXT NOT NULL,
	document_text TEXT NOT NULL DEFAULT '',
	extracted_json JSONB,
	validation_json JSONB,
	overall_score DOUBLE PRECISION,
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS extraction_jobs_created_at_idx ON extraction_jobs (created_at DESC);
`

type postgresJobRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresJobRepository ensures the schema and returns the repository.
func NewPostgresJobRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (JobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("%w: ensure schema: %v", common.ErrDatabase, err)
	}
	return &postgresJobRepository{pool: pool, logger: logger}, nil
}

func (r *postgresJobRepository) Start(ctx context.Context, sourcePath, fieldDescription string) (*ExtractionJob, error) {
	job := &ExtractionJob{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
		SourcePath:       sourcePath,
		FieldDescription: fieldDescription,
		Status:           constants.JobStatusQueued,
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO extraction_jobs (id, created_at, updated_at, source_path, field_description, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.CreatedAt, job.UpdatedAt, job.SourcePath, job.FieldDescription, string(job.Status),
	)
	if err != nil {
		r.logger.Error("job.start.failed", "error", err)
		return nil, fmt.Errorf("%w: start job: %v", common.ErrDatabase, err)
	}
	return job, nil
}

func (r *postgresJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extraction_jobs SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(constants.JobStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("%w: mark running: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *postgresJobRepository) FinishExtractSuccess(ctx context.Context, id uuid.UUID, documentText string, extractedJSON []byte) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extraction_jobs
		 SET status = $2, document_text = $3, extracted_json = $4, updated_at = now()
		 WHERE id = $1`,
		id, string(constants.JobStatusExtracted), documentText, extractedJSON,
	)
	if err != nil {
		return fmt.Errorf("%w: finish extract: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *postgresJobRepository) FinishValidateSuccess(ctx context.Context, id uuid.UUID, validationJSON []byte, overallScore float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extraction_jobs
		 SET status = $2, validation_json = $3, overall_score = $4, updated_at = now()
		 WHERE id = $1`,
		id, string(constants.JobStatusValidated), validationJSON, overallScore,
	)
	if err != nil {
		return fmt.Errorf("%w: finish validate: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *postgresJobRepository) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extraction_jobs
		 SET status = $2, error_message = $3, updated_at = now()
		 WHERE id = $1`,
		id, string(constants.JobStatusFailed), message,
	)
	if err != nil {
		return fmt.Errorf("%w: finish failure: %v", common.ErrDatabase, err)
	}
	return nil
}

const pgSelectColumns = `id, created_at, updated_at, source_path, field_description, status,
	document_text, extracted_json, validation_json, overall_score, error_message`

func (r *postgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*ExtractionJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pgSelectColumns+` FROM extraction_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get job: %v", common.ErrDatabase, err)
	}
	return job, nil
}

func (r *postgresJobRepository) List(ctx context.Context, limit int) ([]*ExtractionJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgSelectColumns+` FROM extraction_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var jobs []*ExtractionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan job: %v", common.ErrDatabase, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", common.ErrDatabase, err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*ExtractionJob, error) {
	var job ExtractionJob
	var status string
	err := row.Scan(
		&job.ID, &job.CreatedAt, &job.UpdatedAt, &job.SourcePath, &job.FieldDescription,
		&status, &job.DocumentText, &job.ExtractedJSON, &job.ValidationJSON,
		&job.OverallScore, &job.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	job.Status = constants.JobStatus(status)
	return &job, nil
}
