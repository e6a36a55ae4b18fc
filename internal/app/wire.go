// Package app assembles pipeline components from configuration. Both
// binaries use it so the CLI and the daemon wire the same stack.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/document"
	"github.com/daniel-otieno/resume-extractor/internal/document/ocr"
	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/llm"
	"github.com/daniel-otieno/resume-extractor/internal/llm/gemini"
	"github.com/daniel-otieno/resume-extractor/internal/llm/openai"
	"github.com/daniel-otieno/resume-extractor/internal/pipeline"
	"github.com/daniel-otieno/resume-extractor/internal/prompt"
	"github.com/daniel-otieno/resume-extractor/internal/repository"
	"github.com/daniel-otieno/resume-extractor/internal/validate"
)

// NewLogger builds the process-wide JSON logger.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewChatClient picks the LLM backend from config.
func NewChatClient(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.ChatClient, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger), nil
	case "gemini":
		return gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.Model, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidInput, cfg.LLM.Provider)
	}
}

// NewLoader builds the exec-based document loader.
func NewLoader(cfg *common.Config, logger *slog.Logger) document.Loader {
	return document.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.Loader.Pdftotext,
		Pdftoppm:      cfg.Loader.Pdftoppm,
		Tesseract:     cfg.Loader.Tesseract,
		TesseractLang: cfg.Loader.TesseractLang,
		DPI:           cfg.Loader.DPI,
		MaxPages:      cfg.Loader.MaxPages,
		TessdataDir:   cfg.Loader.TessdataDir,
		MinTextChars:  cfg.Loader.MinTextChars,
	}, logger), logger)
}

// Store bundles a job repository with whatever it needs closed on shutdown.
type Store struct {
	Jobs    repository.JobRepository
	pool    *pgxpool.Pool
	sqlite  *sql.DB
	Backend string
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
}

// OpenStore opens Postgres when DB_URL is set, embedded SQLite otherwise.
func OpenStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Store, error) {
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%w: database ping: %v", common.ErrDatabase, err)
		}
		jobs, err := repository.NewPostgresJobRepository(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{Jobs: jobs, pool: pool, Backend: "postgres"}, nil
	}

	jobs, db, err := repository.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	return &Store{Jobs: jobs, sqlite: db, Backend: "sqlite"}, nil
}

// NewProcessor wires the full extract(+validate) pipeline.
func NewProcessor(ctx context.Context, cfg *common.Config, jobs repository.JobRepository, logger *slog.Logger) (*pipeline.Processor, *validate.Validator, error) {
	chat, err := NewChatClient(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	prompts := prompt.NewSet(cfg.Prompts.Dir)
	extractor := extract.NewExtractor(NewLoader(cfg, logger), chat, prompts, logger)
	validator := validate.NewValidator(chat, prompts, logger)
	return pipeline.NewProcessor(logger, extractor, validator, jobs), validator, nil
}
