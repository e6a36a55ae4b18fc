package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/extract"
)

type stubChat struct {
	response []byte
	err      error
	calls    int
	prompt   string
}

func (s *stubChat) GenerateJSON(_ context.Context, prompt string) ([]byte, error) {
	s.calls++
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubChat) ModelName() string { return "stub-model" }

const testFieldDescription = "Name – the candidate's full name\nEmail – primary email address\n"

func testExtraction() extract.ExtractedData {
	return extract.ExtractedData{
		"Name":  extract.ScalarValue("Jane Doe"),
		"Email": extract.ScalarValue(""),
	}
}

func TestValidateExtractedData_HappyPath(t *testing.T) {
	chat := &stubChat{response: []byte(`{
		"overall_score": 5.5,
		"field_evaluations": {
			"Name": {"score": 9, "coverage": "complete", "correctness": "accurate", "issues": ""},
			"Email": {"score": 2, "coverage": "missing", "correctness": "n/a", "issues": "field is empty"}
		},
		"summary": "Name extracted well; email is missing."
	}`)}

	v := NewValidator(chat, nil, nil)
	result, err := v.ValidateExtractedData(context.Background(), testFieldDescription, testExtraction())
	require.NoError(t, err)

	assert.InDelta(t, 5.5, result.OverallScore, 1e-9)
	require.Len(t, result.FieldEvaluations, 2)
	assert.InDelta(t, 9, result.FieldEvaluations["Name"].Score, 1e-9)
	assert.InDelta(t, 2, result.FieldEvaluations["Email"].Score, 1e-9)
	assert.Equal(t, "field is empty", result.FieldEvaluations["Email"].Issues)
	assert.InDelta(t, 5.5, result.MeanFieldScore(), 1e-9)

	// both inputs land in the rendered prompt
	assert.Contains(t, chat.prompt, "Jane Doe")
	assert.Contains(t, chat.prompt, "primary email address")
}

func TestValidateExtractedData_OverallScoreNeverCorrected(t *testing.T) {
	// model reports an overall score that disagrees with its own field mean
	chat := &stubChat{response: []byte(`{
		"overall_score": 9.0,
		"field_evaluations": {
			"Name": {"score": 9, "coverage": "", "correctness": "", "issues": ""},
			"Email": {"score": 2, "coverage": "", "correctness": "", "issues": ""}
		},
		"summary": "inconsistent"
	}`)}

	v := NewValidator(chat, nil, nil)
	result, err := v.ValidateExtractedData(context.Background(), testFieldDescription, testExtraction())
	require.NoError(t, err)

	assert.InDelta(t, 9.0, result.OverallScore, 1e-9)
	assert.InDelta(t, 5.5, result.MeanFieldScore(), 1e-9)
}

func TestValidateExtractedData_ScoreOutOfRangeRejected(t *testing.T) {
	chat := &stubChat{response: []byte(`{
		"overall_score": 11,
		"field_evaluations": {},
		"summary": "too good"
	}`)}

	v := NewValidator(chat, nil, nil)
	_, err := v.ValidateExtractedData(context.Background(), testFieldDescription, testExtraction())

	assert.ErrorIs(t, err, common.ErrSchemaParse)
}

func TestValidateExtractedData_FieldScoreOutOfRangeRejected(t *testing.T) {
	chat := &stubChat{response: []byte(`{
		"overall_score": 5,
		"field_evaluations": {
			"Name": {"score": -1, "coverage": "", "correctness": "", "issues": ""}
		},
		"summary": "bad"
	}`)}

	v := NewValidator(chat, nil, nil)
	_, err := v.ValidateExtractedData(context.Background(), testFieldDescription, testExtraction())

	assert.ErrorIs(t, err, common.ErrSchemaParse)
}

func TestValidateExtractedData_MissingRequiredKeysRejected(t *testing.T) {
	chat := &stubChat{response: []byte(`{"overall_score": 5}`)}

	v := NewValidator(chat, nil, nil)
	_, err := v.ValidateExtractedData(context.Background(), testFieldDescription, testExtraction())

	assert.ErrorIs(t, err, common.ErrSchemaParse)
}

func TestValidateExtractedData_EmptyDescriptionRejected(t *testing.T) {
	chat := &stubChat{}

	v := NewValidator(chat, nil, nil)
	_, err := v.ValidateExtractedData(context.Background(), "  ", testExtraction())

	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Zero(t, chat.calls)
}

func TestValidateExtractedData_LLMErrorPropagates(t *testing.T) {
	chat := &stubChat{err: common.WrapError(common.ErrLLMRequest, "status 503")}

	v := NewValidator(chat, nil, nil)
	_, err := v.ValidateExtractedData(context.Background(), testFieldDescription, testExtraction())

	assert.ErrorIs(t, err, common.ErrLLMRequest)
}

func TestMeanFieldScore_Empty(t *testing.T) {
	assert.Zero(t, ValidationResult{}.MeanFieldScore())
}
