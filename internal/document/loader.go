// Package document defines the loader contract: file path in, plain text out.
// Whether the text comes from direct extraction or OCR is the loader's
// business; callers only consume the returned text.
package document

import (
	"context"
	"time"
)

// LoadResult is the outcome of loading one document.
type LoadResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TEXT
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Loader turns a document file into text.
type Loader interface {
	Load(ctx context.Context, path string) (LoadResult, error)
}
