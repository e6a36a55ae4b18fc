// extractd serves the extraction pipeline over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/daniel-otieno/resume-extractor/internal/app"
	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/export"
	"github.com/daniel-otieno/resume-extractor/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := app.NewLogger(os.Getenv("DEBUG") == "true")

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening job store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("job store ready", "backend", store.Backend)

	processor, validator, err := app.NewProcessor(ctx, cfg, store.Jobs, logger)
	if err != nil {
		logger.Error("building pipeline", "error", err)
		os.Exit(1)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	handler := server.NewHandler(
		processor,
		validator,
		export.NewService(store.Jobs, logger),
		store.Jobs,
		uploadDir,
		int(cfg.Server.MaxUploadMB),
		logger,
	)

	srv := server.New(cfg.Server.HTTPAddr, server.NewRouter(handler), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
