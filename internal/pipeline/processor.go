// Package pipeline coordinates the two stages: extract fields, then score
// the extraction. The stages stay independently callable; this just wires
// them together and records the run.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/repository"
	"github.com/daniel-otieno/resume-extractor/internal/validate"
)

// Result bundles the outputs of one run.
type Result struct {
	Job        *repository.ExtractionJob
	Extracted  extract.ExtractedData
	Validation *validate.ValidationResult // nil when validation was skipped
}

// Processor runs extract (+ optional validate) and persists the job.
type Processor struct {
	Logger    *slog.Logger
	Extractor *extract.Extractor
	Validator *validate.Validator
	Jobs      repository.JobRepository
}

func NewProcessor(logger *slog.Logger, ex *extract.Extractor, va *validate.Validator, jobs repository.JobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: ex, Validator: va, Jobs: jobs}
}

// ProcessDocument extracts fields from the document and, when withValidation
// is set, scores the extraction. The job row records each stage transition;
// a stage failure marks the job FAILED and propagates the stage's error
// unchanged so callers keep the DocumentLoad/LLMRequest/SchemaParse taxonomy.
func (p *Processor) ProcessDocument(ctx context.Context, sourcePath, fieldDescription string, withValidation bool) (*Result, error) {
	job, err := p.Jobs.Start(ctx, sourcePath, fieldDescription)
	if err != nil {
		return nil, err
	}
	if err := p.Jobs.MarkRunning(ctx, job.ID); err != nil {
		return nil, err
	}

	data, loaded, err := p.Extractor.ExtractFieldsWithSource(ctx, sourcePath, fieldDescription)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "job_id", job.ID, "err", err)
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return nil, err
	}

	extractedJSON, err := data.JSON()
	if err != nil {
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return nil, err
	}
	if err := p.Jobs.FinishExtractSuccess(ctx, job.ID, loaded.Text, extractedJSON); err != nil {
		return nil, err
	}
	p.Logger.Info("pipeline.extract.ok", "job_id", job.ID, "fields", len(data))

	result := &Result{Job: job, Extracted: data}
	if !withValidation {
		return p.reload(ctx, result)
	}

	vr, err := p.Validator.ValidateExtractedData(ctx, fieldDescription, data)
	if err != nil {
		p.Logger.Error("pipeline.validate.failed", "job_id", job.ID, "err", err)
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return nil, err
	}

	validationJSON, err := vr.JSON()
	if err != nil {
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return nil, err
	}
	if err := p.Jobs.FinishValidateSuccess(ctx, job.ID, validationJSON, vr.OverallScore); err != nil {
		return nil, err
	}
	p.Logger.Info("pipeline.validate.ok", "job_id", job.ID, "overall_score", vr.OverallScore)

	result.Validation = &vr
	return p.reload(ctx, result)
}

func (p *Processor) reload(ctx context.Context, result *Result) (*Result, error) {
	job, err := p.Jobs.GetByID(ctx, result.Job.ID)
	if err != nil {
		// run succeeded; return the stale job row rather than failing the call
		p.Logger.Warn("pipeline.reload.failed", "job_id", result.Job.ID, "err", err)
		return result, nil
	}
	result.Job = job
	return result, nil
}
