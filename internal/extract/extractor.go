// Package extract implements stage 1 of the pipeline: document + field
// description -> typed ExtractedData, via one LLM round trip.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/document"
	"github.com/daniel-otieno/resume-extractor/internal/llm"
	"github.com/daniel-otieno/resume-extractor/internal/prompt"
)

// Extractor runs field extraction. Pure with respect to its inputs: no
// state survives a call, so concurrent extractions need no coordination.
type Extractor struct {
	loader  document.Loader
	chat    llm.ChatClient
	prompts *prompt.Set
	logger  *slog.Logger
}

func NewExtractor(loader document.Loader, chat llm.ChatClient, prompts *prompt.Set, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if prompts == nil {
		prompts = prompt.NewSet("")
	}
	return &Extractor{loader: loader, chat: chat, prompts: prompts, logger: logger}
}

// ExtractFields loads the document at documentPath, renders the extraction
// prompt with fieldDescription and the document text, and parses the model's
// structured JSON answer. Failures carry exactly one of ErrDocumentLoad,
// ErrLLMRequest, ErrSchemaParse; nothing is retried here, retry policy is
// the caller's concern.
func (e *Extractor) ExtractFields(ctx context.Context, documentPath, fieldDescription string) (ExtractedData, error) {
	data, _, err := e.ExtractFieldsWithSource(ctx, documentPath, fieldDescription)
	return data, err
}

// ExtractFieldsWithSource is ExtractFields plus the loaded document, for
// callers that persist the source text alongside the extraction.
func (e *Extractor) ExtractFieldsWithSource(ctx context.Context, documentPath, fieldDescription string) (ExtractedData, document.LoadResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(fieldDescription) == "" {
		return nil, document.LoadResult{}, fmt.Errorf("%w: field description must not be empty", common.ErrInvalidInput)
	}

	e.logger.Info("extract.start",
		"req_id", rid,
		"document", documentPath,
		"model", e.chat.ModelName(),
		"fields", len(FieldNames(fieldDescription)),
	)

	// Stage 1a: document -> text. The loader decides OCR vs direct
	// extraction; failure here means no LLM call is issued at all.
	loaded, err := e.loader.Load(ctx, documentPath)
	if err != nil {
		e.logger.Error("extract.load.failed",
			"req_id", rid, "document", documentPath, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, document.LoadResult{}, err
	}
	e.logger.Info("extract.load.ok",
		"req_id", rid,
		"method", loaded.Method,
		"pages", loaded.Pages,
		"text_bytes", len(loaded.Text),
		"confidence", loaded.Confidence,
	)

	rendered, err := e.prompts.Render(prompt.Extraction, map[string]string{
		"field_description": fieldDescription,
		"content":           loaded.Text,
	})
	if err != nil {
		return nil, loaded, common.WrapError(err, "render extraction prompt")
	}

	raw, err := e.chat.GenerateJSON(ctx, rendered)
	if err != nil {
		e.logger.Error("extract.llm.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, loaded, err
	}

	data, err := e.parseResponse(rid, raw)
	if err != nil {
		return nil, loaded, err
	}

	// Contract: every described field appears as a key, empty when absent.
	// The prompt enforces this; the backfill holds the guarantee even
	// against a model that omits keys anyway.
	if added := EnsureFields(data, FieldNames(fieldDescription)); len(added) > 0 {
		e.logger.Warn("extract.fields.backfilled", "req_id", rid, "fields", added)
	}

	e.logger.Info("extract.ok",
		"req_id", rid,
		"fields", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data, loaded, nil
}

func (e *Extractor) parseResponse(rid string, raw []byte) (ExtractedData, error) {
	if err := llm.ValidateJSONAgainstSchema(BuildExtractionJSONSchema(), raw); err != nil {
		e.logger.Error("extract.schema.failed", "req_id", rid, "error", err, "content", string(raw))
		return nil, fmt.Errorf("%w: %v", common.ErrSchemaParse, err)
	}
	data, err := ParseExtractedData(raw)
	if err != nil {
		e.logger.Error("extract.parse.failed", "req_id", rid, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrSchemaParse, err)
	}
	return data, nil
}
