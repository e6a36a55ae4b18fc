package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel-otieno/resume-extractor/internal/app"
)

var (
	flagExtractFields     string
	flagExtractFieldsFile string
	flagNoValidate        bool
	flagExtractOut        string
)

var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract fields from a resume and score the extraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()
		logger := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fieldDescription, err := readFieldDescription(flagExtractFields, flagExtractFieldsFile)
		if err != nil {
			return err
		}

		store, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		processor, _, err := app.NewProcessor(ctx, cfg, store.Jobs, logger)
		if err != nil {
			return err
		}

		result, err := processor.ProcessDocument(ctx, args[0], fieldDescription, !flagNoValidate)
		if err != nil {
			return err
		}

		out := map[string]any{
			"job_id":         result.Job.ID.String(),
			"status":         string(result.Job.Status),
			"extracted_data": result.Extracted,
		}
		if result.Validation != nil {
			out["validation"] = result.Validation
		}
		return writeJSONOutput(flagExtractOut, out)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&flagExtractFields, "fields", "", "inline field description, one field per line")
	extractCmd.Flags().StringVarP(&flagExtractFieldsFile, "fields-file", "f", "", "file with the field description")
	extractCmd.Flags().BoolVar(&flagNoValidate, "no-validate", false, "skip the scoring stage")
	extractCmd.Flags().StringVarP(&flagExtractOut, "out", "o", "", "write the result JSON to a file instead of stdout")
}

func writeJSONOutput(path string, v any) error {
	b, err := marshalIndent(v)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(b))
		return nil
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
