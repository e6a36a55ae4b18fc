package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/daniel-otieno/resume-extractor/constants"
	"github.com/daniel-otieno/resume-extractor/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	source_path TEXT NOT NULL,
	field_description TEXT NOT NULL,
	status TEXT NOT NULL,
	document_text TEXT NOT NULL DEFAULT '',
	extracted_json BLOB,
	validation_json BLOB,
	overall_score REAL,
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS extraction_jobs_created_at_idx ON extraction_jobs (created_at DESC);
`

// sqliteTimeLayout pads fractional seconds to a fixed width. SQLite orders
// TEXT byte-wise, so variable-width fractions would break ORDER BY created_at.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatSQLiteTime(t time.Time) string { return t.UTC().Format(sqliteTimeLayout) }

type sqliteJobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the embedded store at path. ":memory:" works
// for tests.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (JobRepository, *sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open sqlite: %v", common.ErrDatabase, err)
	}
	// modernc sqlite is single-writer; keep the pool at one connection so
	// concurrent CLI invocations fail fast instead of interleaving.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: ensure schema: %v", common.ErrDatabase, err)
	}
	logger.Debug("sqlite store ready", "path", path)
	return &sqliteJobRepository{db: db, logger: logger}, db, nil
}

func (r *sqliteJobRepository) Start(ctx context.Context, sourcePath, fieldDescription string) (*ExtractionJob, error) {
	job := &ExtractionJob{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
		SourcePath:       sourcePath,
		FieldDescription: fieldDescription,
		Status:           constants.JobStatusQueued,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_jobs (id, created_at, updated_at, source_path, field_description, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID.String(), formatSQLiteTime(job.CreatedAt), formatSQLiteTime(job.UpdatedAt),
		job.SourcePath, job.FieldDescription, string(job.Status),
	)
	if err != nil {
		r.logger.Error("job.start.failed", "error", err)
		return nil, fmt.Errorf("%w: start job: %v", common.ErrDatabase, err)
	}
	return job, nil
}

func (r *sqliteJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx,
		`UPDATE extraction_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusRunning), now(), id.String())
}

func (r *sqliteJobRepository) FinishExtractSuccess(ctx context.Context, id uuid.UUID, documentText string, extractedJSON []byte) error {
	return r.update(ctx,
		`UPDATE extraction_jobs SET status = ?, document_text = ?, extracted_json = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusExtracted), documentText, extractedJSON, now(), id.String())
}

func (r *sqliteJobRepository) FinishValidateSuccess(ctx context.Context, id uuid.UUID, validationJSON []byte, overallScore float64) error {
	return r.update(ctx,
		`UPDATE extraction_jobs SET status = ?, validation_json = ?, overall_score = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusValidated), validationJSON, overallScore, now(), id.String())
}

func (r *sqliteJobRepository) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	return r.update(ctx,
		`UPDATE extraction_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, now(), id.String())
}

func (r *sqliteJobRepository) update(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: update job: %v", common.ErrDatabase, err)
	}
	return nil
}

const sqliteSelectColumns = `id, created_at, updated_at, source_path, field_description, status,
	document_text, extracted_json, validation_json, overall_score, error_message`

func (r *sqliteJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*ExtractionJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM extraction_jobs WHERE id = ?`, id.String())
	job, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get job: %v", common.ErrDatabase, err)
	}
	return job, nil
}

func (r *sqliteJobRepository) List(ctx context.Context, limit int) ([]*ExtractionJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM extraction_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var jobs []*ExtractionJob
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
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

func now() string { return formatSQLiteTime(time.Now()) }

func scanSQLiteJob(row rowScanner) (*ExtractionJob, error) {
	var (
		job          ExtractionJob
		idStr        string
		createdStr   string
		updatedStr   string
		status       string
		overallScore sql.NullFloat64
	)
	err := row.Scan(
		&idStr, &createdStr, &updatedStr, &job.SourcePath, &job.FieldDescription,
		&status, &job.DocumentText, &job.ExtractedJSON, &job.ValidationJSON,
		&overallScore, &job.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	if job.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
		return nil, err
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedStr); err != nil {
		return nil, err
	}
	job.Status = constants.JobStatus(status)
	if overallScore.Valid {
		job.OverallScore = &overallScore.Float64
	}
	return &job, nil
}
