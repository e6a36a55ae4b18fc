package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daniel-otieno/resume-extractor/internal/app"
)

var flagJobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect stored extraction jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent jobs, newest first",
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

		jobs, err := store.Jobs.List(ctx, flagJobsLimit)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			score := "-"
			if job.OverallScore != nil {
				score = fmt.Sprintf("%.2f", *job.OverallScore)
			}
			fmt.Printf("%s  %-10s  %-6s  %s\n",
				job.ID, job.Status, score, job.SourcePath)
		}
		return nil
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job with its extracted data and validation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()
		logger := newLogger()

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("job id must be a UUID: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		job, err := store.Jobs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out := map[string]any{
			"id":                job.ID.String(),
			"created_at":        job.CreatedAt,
			"status":            string(job.Status),
			"source_path":       job.SourcePath,
			"field_description": job.FieldDescription,
		}
		if len(job.ExtractedJSON) > 0 {
			out["extracted_data"] = jsonRaw(job.ExtractedJSON)
		}
		if len(job.ValidationJSON) > 0 {
			out["validation"] = jsonRaw(job.ValidationJSON)
		}
		if job.OverallScore != nil {
			out["overall_score"] = *job.OverallScore
		}
		if job.ErrorMessage != "" {
			out["error"] = job.ErrorMessage
		}
		return writeJSONOutput("", out)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd)

	jobsListCmd.Flags().IntVarP(&flagJobsLimit, "limit", "n", 0, "max jobs to list (0 = repository default)")
}
