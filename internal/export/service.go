// Package export renders stored extraction jobs into XLSX workbooks.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/repository"
	"github.com/daniel-otieno/resume-extractor/internal/validate"
)

const (
	jobsSheet   = "Jobs"
	fieldsSheet = "Fields"
)

// Service is a tiny façade over the job repository that produces XLSX bytes.
type Service struct {
	jobs   repository.JobRepository
	logger *slog.Logger
}

func NewService(jobs repository.JobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobsXLSX returns a workbook with one summary row per job and one
// detail row per extracted field. limit <= 0 exports the repository default
// window of most recent jobs.
func (s *Service) ExportJobsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	out, err := buildWorkbook(jobs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"jobs", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ExportJobXLSX exports a single job by id, same workbook layout.
func (s *Service) ExportJobXLSX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := buildWorkbook([]*repository.ExtractionJob{job})
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "job_id", id.String(), "jobs", 1)
	return out, nil
}

func buildWorkbook(jobs []*repository.ExtractionJob) ([]byte, error) {
	f := excelize.NewFile()
	for _, sheet := range []string{jobsSheet, fieldsSheet} {
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}
	}
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}
	activeIndex, _ := f.GetSheetIndex(jobsSheet)
	f.SetActiveSheet(activeIndex)

	writeHeaders(f, jobsSheet, []string{
		"Job ID", "Created", "Status", "Source Path", "Overall Score", "Error",
	})
	writeHeaders(f, fieldsSheet, []string{
		"Job ID", "Field", "Value", "Score", "Coverage", "Correctness", "Issues",
	})

	fieldRow := 2
	for i, job := range jobs {
		writeJobRow(f, i+2, job)
		fieldRow = writeFieldRows(f, fieldRow, job)
	}

	_ = f.SetColWidth(jobsSheet, "A", "A", 38)
	_ = f.SetColWidth(jobsSheet, "B", "B", 20)
	_ = f.SetColWidth(jobsSheet, "C", "C", 12)
	_ = f.SetColWidth(jobsSheet, "D", "D", 60)
	_ = f.SetColWidth(jobsSheet, "F", "F", 48)
	_ = f.SetColWidth(fieldsSheet, "A", "A", 38)
	_ = f.SetColWidth(fieldsSheet, "B", "B", 20)
	_ = f.SetColWidth(fieldsSheet, "C", "C", 60)
	_ = f.SetColWidth(fieldsSheet, "G", "G", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeJobRow(f *excelize.File, row int, job *repository.ExtractionJob) {
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(jobsSheet, cell, v)
	}
	write(1, job.ID.String())
	write(2, job.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	write(3, string(job.Status))
	write(4, job.SourcePath)
	if job.OverallScore != nil {
		write(5, *job.OverallScore)
	}
	write(6, truncate(job.ErrorMessage, 140))
}

// writeFieldRows emits one row per extracted field, joining in the per-field
// scores when the job carries a validation payload. Returns the next free row.
func writeFieldRows(f *excelize.File, row int, job *repository.ExtractionJob) int {
	if len(job.ExtractedJSON) == 0 {
		return row
	}
	data, err := extract.ParseExtractedData(job.ExtractedJSON)
	if err != nil {
		return row
	}

	evals := map[string]validate.FieldEvaluation{}
	if len(job.ValidationJSON) > 0 {
		var vr validate.ValidationResult
		if err := json.Unmarshal(job.ValidationJSON, &vr); err == nil && vr.FieldEvaluations != nil {
			evals = vr.FieldEvaluations
		}
	}

	for _, name := range data.SortedFieldNames() {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(fieldsSheet, cell, v)
		}
		write(1, job.ID.String())
		write(2, name)
		write(3, truncate(data[name].Text(), 200))
		if ev, ok := lookupEval(evals, name); ok {
			write(4, ev.Score)
			write(5, ev.Coverage)
			write(6, ev.Correctness)
			write(7, truncate(ev.Issues, 140))
		}
		row++
	}
	return row
}

// lookupEval is case-insensitive; models occasionally re-case field names.
func lookupEval(evals map[string]validate.FieldEvaluation, name string) (validate.FieldEvaluation, bool) {
	if ev, ok := evals[name]; ok {
		return ev, true
	}
	for k, ev := range evals {
		if strings.EqualFold(k, name) {
			return ev, true
		}
	}
	return validate.FieldEvaluation{}, false
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
