package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/llm"
)

const defaultModel = "gemini-2.5-flash"

// Client wraps the Google GenAI client as an llm.ChatClient with responses
// constrained to JSON via the response MIME type.
type Client struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{client: client, modelName: model, logger: logger}, nil
}

func (c *Client) ModelName() string { return c.modelName }

// GenerateJSON sends the prompt with application/json response constraint and
// returns the concatenated candidate text.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("%w: gemini client is not initialized", common.ErrLLMRequest)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt must not be empty", common.ErrInvalidInput)
	}

	start := time.Now()
	c.logger.Info("gemini.generate.start", "model", c.modelName, "prompt_len", len(prompt))

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), cfg)
	if err != nil {
		c.logger.Error("gemini.generate.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: gemini: %v", common.ErrLLMRequest, err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return nil, fmt.Errorf("%w: gemini api returned empty response", common.ErrLLMRequest)
	}

	c.logger.Info("gemini.generate.ok",
		"content_bytes", len(output),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(llm.StripJSONFences(output)), nil
}
