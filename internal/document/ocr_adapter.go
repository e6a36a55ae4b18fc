package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/document/ocr"
)

// OCRAdapter implements Loader on top of the exec-based ocr.Extractor.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor, _ *slog.Logger) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) Load(ctx context.Context, path string) (LoadResult, error) {
	r, err := a.e.Extract(ctx, path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%w: %v", common.ErrDocumentLoad, err)
	}
	return LoadResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, nil
}
