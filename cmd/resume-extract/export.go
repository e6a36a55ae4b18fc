package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daniel-otieno/resume-extractor/internal/app"
	"github.com/daniel-otieno/resume-extractor/internal/export"
)

var (
	flagExportOut   string
	flagExportLimit int
	flagExportJobID string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored jobs to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()
		logger := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := export.NewService(store.Jobs, logger)

		var xlsx []byte
		if flagExportJobID != "" {
			id, err := uuid.Parse(flagExportJobID)
			if err != nil {
				return fmt.Errorf("job id must be a UUID: %w", err)
			}
			xlsx, err = svc.ExportJobXLSX(ctx, id)
			if err != nil {
				return err
			}
		} else {
			xlsx, err = svc.ExportJobsXLSX(ctx, flagExportLimit)
			if err != nil {
				return err
			}
		}

		if err := os.WriteFile(flagExportOut, xlsx, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Printf("wrote %s\n", flagExportOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "extractions.xlsx", "output workbook path")
	exportCmd.Flags().IntVarP(&flagExportLimit, "limit", "n", 0, "max jobs to export (0 = repository default)")
	exportCmd.Flags().StringVar(&flagExportJobID, "job", "", "export a single job by id")
}
