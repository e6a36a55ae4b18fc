package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "resume-extractor.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "pdftotext", cfg.Loader.Pdftotext)
	assert.Equal(t, 300, cfg.Loader.DPI)
	assert.Equal(t, 200, cfg.Loader.MinTextChars)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MODEL", "gemini-2.5-flash")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OCR_DPI", "150")
	t.Setenv("LLM_TIMEOUT", "10s")

	cfg := LoadConfig()

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "g-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 150, cfg.Loader.DPI)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg = LoadConfig()
	cfg.LLM.Provider = "anthropic"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg = LoadConfig()
	cfg.LLM.Provider = "gemini"
	assert.NoError(t, cfg.Validate())
}
