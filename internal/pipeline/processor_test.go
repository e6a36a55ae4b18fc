package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel-otieno/resume-extractor/constants"
	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/document"
	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/repository"
	"github.com/daniel-otieno/resume-extractor/internal/validate"
)

type stubLoader struct {
	text string
	err  error
}

func (s *stubLoader) Load(_ context.Context, _ string) (document.LoadResult, error) {
	if s.err != nil {
		return document.LoadResult{}, s.err
	}
	return document.LoadResult{Text: s.text, Pages: 1}, nil
}

// scriptedChat returns queued responses in order, one per GenerateJSON call.
type scriptedChat struct {
	responses [][]byte
	errs      []error
	calls     int
}

func (s *scriptedChat) GenerateJSON(_ context.Context, _ string) ([]byte, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		return nil, fmt.Errorf("unexpected LLM call %d", i)
	}
	return s.responses[i], nil
}

func (s *scriptedChat) ModelName() string { return "scripted" }

const fieldDescription = "Name – full name\nEmail – email address\n"

var extractionResponse = []byte(`{"Name": "Jane Doe", "Email": "jane@example.com"}`)

var validationResponse = []byte(`{
	"overall_score": 8.5,
	"field_evaluations": {
		"Name": {"score": 9, "coverage": "complete", "correctness": "accurate", "issues": ""},
		"Email": {"score": 8, "coverage": "complete", "correctness": "accurate", "issues": ""}
	},
	"summary": "Solid extraction."
}`)

func newTestProcessor(t *testing.T, loader document.Loader, chat *scriptedChat) (*Processor, repository.JobRepository) {
	t.Helper()

	jobs, db, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	extractor := extract.NewExtractor(loader, chat, nil, nil)
	validator := validate.NewValidator(chat, nil, nil)
	return NewProcessor(nil, extractor, validator, jobs), jobs
}

func TestProcessDocument_FullRun(t *testing.T) {
	chat := &scriptedChat{responses: [][]byte{extractionResponse, validationResponse}}
	p, jobs := newTestProcessor(t, &stubLoader{text: "Jane Doe jane@example.com"}, chat)

	result, err := p.ProcessDocument(context.Background(), "resume.pdf", fieldDescription, true)
	require.NoError(t, err)

	assert.Equal(t, 2, chat.calls)
	assert.Equal(t, extract.ScalarValue("Jane Doe"), result.Extracted["Name"])
	require.NotNil(t, result.Validation)
	assert.InDelta(t, 8.5, result.Validation.OverallScore, 1e-9)

	stored, err := jobs.GetByID(context.Background(), result.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusValidated, stored.Status)
	assert.NotEmpty(t, stored.ExtractedJSON)
	assert.NotEmpty(t, stored.ValidationJSON)
	require.NotNil(t, stored.OverallScore)
	assert.InDelta(t, 8.5, *stored.OverallScore, 1e-9)
	assert.Equal(t, "resume.pdf", stored.SourcePath)
	assert.Equal(t, "Jane Doe jane@example.com", stored.DocumentText)
}

func TestProcessDocument_WithoutValidation(t *testing.T) {
	chat := &scriptedChat{responses: [][]byte{extractionResponse}}
	p, jobs := newTestProcessor(t, &stubLoader{text: "Jane Doe"}, chat)

	result, err := p.ProcessDocument(context.Background(), "resume.txt", fieldDescription, false)
	require.NoError(t, err)

	assert.Equal(t, 1, chat.calls)
	assert.Nil(t, result.Validation)

	stored, err := jobs.GetByID(context.Background(), result.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusExtracted, stored.Status)
	assert.Nil(t, stored.OverallScore)
}

func TestProcessDocument_ExtractFailureMarksJobFailed(t *testing.T) {
	loadErr := common.WrapError(common.ErrDocumentLoad, "stat document: no such file")
	chat := &scriptedChat{}
	p, jobs := newTestProcessor(t, &stubLoader{err: loadErr}, chat)

	_, err := p.ProcessDocument(context.Background(), "missing.pdf", fieldDescription, true)
	require.ErrorIs(t, err, common.ErrDocumentLoad)
	assert.Zero(t, chat.calls)

	stored, err := jobs.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, constants.JobStatusFailed, stored[0].Status)
	assert.NotEmpty(t, stored[0].ErrorMessage)
}

func TestProcessDocument_ValidateFailureMarksJobFailed(t *testing.T) {
	chat := &scriptedChat{
		responses: [][]byte{extractionResponse},
		errs:      []error{nil, common.WrapError(common.ErrLLMRequest, "status 503")},
	}
	p, jobs := newTestProcessor(t, &stubLoader{text: "Jane Doe"}, chat)

	_, err := p.ProcessDocument(context.Background(), "resume.pdf", fieldDescription, true)
	require.ErrorIs(t, err, common.ErrLLMRequest)

	stored, err := jobs.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, constants.JobStatusFailed, stored[0].Status)
}
