// resume-extract is the command line front end for the extraction pipeline.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/daniel-otieno/resume-extractor/constants"
	"github.com/daniel-otieno/resume-extractor/internal/app"
	"github.com/daniel-otieno/resume-extractor/internal/common"
)

const appName = "resume-extract"

var (
	flagDebug   bool
	flagEnvFile string

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Extract structured fields from resumes with an LLM and score the result",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flagEnvFile != "" {
				if err := godotenv.Load(flagEnvFile); err != nil {
					fmt.Fprintf(os.Stderr, "load env file %s: %v\n", flagEnvFile, err)
					os.Exit(1)
				}
			} else {
				_ = godotenv.Load()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "env file to load (default .env if present)")
}

func newLogger() *slog.Logger {
	return app.NewLogger(flagDebug)
}

// readFieldDescription resolves the field description from --fields,
// --fields-file, or the built-in resume preset, in that order.
func readFieldDescription(inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read fields file: %w", err)
		}
		return string(b), nil
	}
	return constants.DefaultFieldDescription, nil
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func jsonRaw(b []byte) json.RawMessage { return json.RawMessage(b) }

func loadConfig() (*common.Config, error) {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
