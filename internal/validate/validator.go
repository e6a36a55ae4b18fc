// Package validate implements stage 2 of the pipeline: scoring an extraction
// with the same model class that produced it.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/llm"
	"github.com/daniel-otieno/resume-extractor/internal/prompt"
)

// scoreTolerance bounds the allowed drift between the model's reported
// overall_score and the mean of its per-field scores before we log about it.
const scoreTolerance = 0.05

// Validator scores extractions via one LLM round trip.
type Validator struct {
	chat    llm.ChatClient
	prompts *prompt.Set
	logger  *slog.Logger
}

func NewValidator(chat llm.ChatClient, prompts *prompt.Set, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if prompts == nil {
		prompts = prompt.NewSet("")
	}
	return &Validator{chat: chat, prompts: prompts, logger: logger}
}

// ValidateExtractedData renders the validation prompt with fieldDescription
// and the serialized extraction, and parses the model's scores. The pairing
// of fieldDescription and extracted is assumed, not enforced: a mismatched
// pair yields meaningless but structurally valid output, not an error.
// overall_score is returned exactly as the model reported it; when it
// disagrees with the per-field mean this logs a warning and moves on.
func (v *Validator) ValidateExtractedData(ctx context.Context, fieldDescription string, extracted extract.ExtractedData) (ValidationResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(fieldDescription) == "" {
		return ValidationResult{}, fmt.Errorf("%w: field description must not be empty", common.ErrInvalidInput)
	}

	extractedJSON, err := extracted.JSON()
	if err != nil {
		return ValidationResult{}, common.WrapError(err, "serialize extracted data")
	}

	v.logger.Info("validate.start",
		"req_id", rid,
		"model", v.chat.ModelName(),
		"fields", len(extracted),
	)

	rendered, err := v.prompts.Render(prompt.Validation, map[string]string{
		"field_description": fieldDescription,
		"extracted_data":    string(extractedJSON),
	})
	if err != nil {
		return ValidationResult{}, common.WrapError(err, "render validation prompt")
	}

	raw, err := v.chat.GenerateJSON(ctx, rendered)
	if err != nil {
		v.logger.Error("validate.llm.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return ValidationResult{}, err
	}

	result, err := v.parseResponse(rid, raw)
	if err != nil {
		return ValidationResult{}, err
	}

	if mean := result.MeanFieldScore(); len(result.FieldEvaluations) > 0 &&
		math.Abs(mean-result.OverallScore) > scoreTolerance {
		v.logger.Warn("validate.score.inconsistent",
			"req_id", rid,
			"overall_score", result.OverallScore,
			"field_mean", mean,
		)
	}

	v.logger.Info("validate.ok",
		"req_id", rid,
		"overall_score", result.OverallScore,
		"fields", len(result.FieldEvaluations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (v *Validator) parseResponse(rid string, raw []byte) (ValidationResult, error) {
	if err := llm.ValidateJSONAgainstSchema(BuildValidationJSONSchema(), raw); err != nil {
		v.logger.Error("validate.schema.failed", "req_id", rid, "error", err, "content", string(raw))
		return ValidationResult{}, fmt.Errorf("%w: %v", common.ErrSchemaParse, err)
	}
	var result ValidationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		v.logger.Error("validate.parse.failed", "req_id", rid, "error", err)
		return ValidationResult{}, fmt.Errorf("%w: %v", common.ErrSchemaParse, err)
	}
	if result.FieldEvaluations == nil {
		result.FieldEvaluations = map[string]FieldEvaluation{}
	}
	return result, nil
}
