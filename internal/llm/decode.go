package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeChatCompletion pulls the first choice's message content out of an
// OpenAI-style chat/completions response body.
func DecodeChatCompletion(raw []byte) (string, error) {
	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}
