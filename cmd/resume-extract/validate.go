package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel-otieno/resume-extractor/internal/app"
	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/prompt"
	"github.com/daniel-otieno/resume-extractor/internal/validate"
)

var (
	flagValidateFields     string
	flagValidateFieldsFile string
	flagValidateOut        string
)

var validateCmd = &cobra.Command{
	Use:   "validate <extracted.json>",
	Short: "Score a previously extracted JSON payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()
		logger := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fieldDescription, err := readFieldDescription(flagValidateFields, flagValidateFieldsFile)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		data, err := extract.ParseExtractedData(raw)
		if err != nil {
			return err
		}

		chat, err := app.NewChatClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		validator := validate.NewValidator(chat, prompt.NewSet(cfg.Prompts.Dir), logger)

		result, err := validator.ValidateExtractedData(ctx, fieldDescription, data)
		if err != nil {
			return err
		}
		return writeJSONOutput(flagValidateOut, result)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&flagValidateFields, "fields", "", "inline field description, one field per line")
	validateCmd.Flags().StringVarP(&flagValidateFieldsFile, "fields-file", "f", "", "file with the field description")
	validateCmd.Flags().StringVarP(&flagValidateOut, "out", "o", "", "write the result JSON to a file instead of stdout")
}
