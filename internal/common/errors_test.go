package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_UnwrapsToSentinel(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "CONFIG_ERROR")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY is required")
}

func TestWrapError(t *testing.T) {
	err := WrapError(ErrDocumentLoad, "stat document")

	assert.ErrorIs(t, err, ErrDocumentLoad)
	assert.Contains(t, err.Error(), "stat document")

	assert.NoError(t, WrapError(nil, "ignored"))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrDocumentLoad, ErrLLMRequest, ErrSchemaParse,
		ErrNotFound, ErrInvalidInput, ErrDatabase,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b))
		}
	}
}
