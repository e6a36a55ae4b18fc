package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/daniel-otieno/resume-extractor/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string

	// MinTextChars decides when direct PDF text extraction is considered
	// too sparse and the scanned-document OCR path kicks in. Default 200.
	MinTextChars int
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TEXT
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 200
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// NewExtractorWithRunner is used by tests to stub external commands.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	e := NewExtractor(cfg, logger)
	e.runner = runner
	return e
}

// Extract picks a strategy based on file extension. The file must exist and
// be a regular file; the OCR-vs-direct decision stays inside this package.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()

	st, err := os.Stat(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("stat document: %w", err)
	}
	if st.IsDir() {
		return ExtractionResult{}, fmt.Errorf("document path is a directory: %s", path)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting document extraction", "path", path, "ext", ext)

	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.TEXT:
		res, err := e.extractPlainText(path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("unsupported document extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// extractPDF tries direct text extraction first and falls back to
// rasterize+OCR when the text layer is too sparse (scanned documents).
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	if err == nil {
		text = Normalize(text)
		if len(text) >= e.cfg.MinTextChars {
			return ExtractionResult{
				Text:       text,
				Pages:      pages,
				SourceType: constants.PDF,
				Method:     "pdf-text",
				Language:   e.cfg.TesseractLang,
				Warnings:   warns,
				Confidence: heuristicConfidence(text),
			}, nil
		}
		warns = append(warns, fmt.Sprintf("direct text too sparse (%d chars), falling back to OCR", len(text)))
	} else {
		warns = append(warns, fmt.Sprintf("pdftotext failed: %v", err))
	}

	e.logger.Info("pdf direct extraction insufficient, running OCR", "path", path)

	ocrText, ocrPages, ocrWarns, ocrErr := e.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	if ocrErr != nil {
		return ExtractionResult{SourceType: constants.PDF, Warnings: warns}, ocrErr
	}
	ocrText = Normalize(ocrText)
	return ExtractionResult{
		Text:       ocrText,
		Pages:      ocrPages,
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
		Confidence: heuristicConfidence(ocrText),
	}, nil
}

func (e *Extractor) extractPlainText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TEXT}, fmt.Errorf("read text file: %w", err)
	}
	text := Normalize(string(b))
	return ExtractionResult{
		Text:       text,
		Pages:      1,
		SourceType: constants.TEXT,
		Method:     "plain-text",
		Confidence: 1.0,
	}, nil
}
