package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel-otieno/resume-extractor/constants"
)

// fakeRunner dispatches on the command name so one stub can play pdftotext,
// pdftoppm and tesseract in a single extraction.
type fakeRunner struct {
	t     *testing.T
	run   func(name string, args []string) (string, error)
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	out, err := f.run(name, args)
	if err != nil {
		return nil, []byte(err.Error()), err
	}
	return []byte(out), nil, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func richText() string {
	return "Jane Doe\njane.doe@example.com\n+1 555 123 4567\n" +
		strings.Repeat("Senior Go engineer with production experience. ", 10)
}

func TestExtract_PDFWithTextLayer(t *testing.T) {
	path := writeTempFile(t, "resume.pdf", "%PDF-1.4 fake")
	text := richText()

	runner := &fakeRunner{t: t, run: func(name string, args []string) (string, error) {
		require.Equal(t, "pdftotext", name)
		assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}, args)
		return text + "\f second page", nil
	}}

	e := NewExtractorWithRunner(Config{}, runner, nil)
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "jane.doe@example.com")
	assert.Greater(t, res.Confidence, float32(0.5))
	assert.Equal(t, []string{"pdftotext"}, runner.calls)
}

func TestExtract_ScannedPDFFallsBackToOCR(t *testing.T) {
	path := writeTempFile(t, "scan.pdf", "%PDF-1.4 fake")

	runner := &fakeRunner{t: t}
	runner.run = func(name string, args []string) (string, error) {
		switch name {
		case "pdftotext":
			return "  \n ", nil // no text layer
		case "pdftoppm":
			// last arg is the output prefix; emit two page images
			prefix := args[len(args)-1]
			for i := 1; i <= 2; i++ {
				page := fmt.Sprintf("%s-%d.png", prefix, i)
				require.NoError(t, os.WriteFile(page, []byte("png"), 0o644))
			}
			return "", nil
		case "tesseract":
			return "OCR page text for " + filepath.Base(args[0]), nil
		default:
			return "", fmt.Errorf("unexpected command %s", name)
		}
	}

	e := NewExtractorWithRunner(Config{DPI: 150}, runner, nil)
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "OCR page text")
	assert.Contains(t, runner.calls, "pdftoppm")
	assert.Contains(t, runner.calls, "tesseract")
	assert.NotEmpty(t, res.Warnings)
}

func TestExtract_PlainTextPassthrough(t *testing.T) {
	content := "Jane Doe\r\njane@example.com\r\n\r\n\r\nSkills:  Go,   SQL"
	path := writeTempFile(t, "resume.txt", content)

	runner := &fakeRunner{t: t, run: func(name string, _ []string) (string, error) {
		t.Fatalf("no external command expected for plain text, got %s", name)
		return "", nil
	}}

	e := NewExtractorWithRunner(Config{}, runner, nil)
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, constants.TEXT, res.SourceType)
	assert.Equal(t, "plain-text", res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, float32(1.0), res.Confidence)
	assert.NotContains(t, res.Text, "\r")
	assert.Empty(t, runner.calls)
}

func TestExtract_ImageRunsTesseract(t *testing.T) {
	path := writeTempFile(t, "resume.png", "png-bytes")

	runner := &fakeRunner{t: t, run: func(name string, args []string) (string, error) {
		require.Equal(t, "tesseract", name)
		assert.Equal(t, path, args[0])
		return richText(), nil
	}}

	e := NewExtractorWithRunner(Config{}, runner, nil)
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Contains(t, res.Text, "jane.doe@example.com")
}

func TestExtract_MissingFile(t *testing.T) {
	runner := &fakeRunner{t: t, run: func(name string, _ []string) (string, error) {
		t.Fatalf("no external command expected for a missing file, got %s", name)
		return "", nil
	}}

	e := NewExtractorWithRunner(Config{}, runner, nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))

	assert.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestExtract_DirectoryRejected(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &fakeRunner{t: t, run: func(string, []string) (string, error) {
		return "", nil
	}}, nil)
	_, err := e.Extract(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "resume.docx", "zip-bytes")

	e := NewExtractorWithRunner(Config{}, &fakeRunner{t: t, run: func(string, []string) (string, error) {
		return "", nil
	}}, nil)
	_, err := e.Extract(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestNormalize(t *testing.T) {
	in := "a\r\nb\t\tc   d\n\n\n\ne"
	out := Normalize(in)

	assert.NotContains(t, out, "\r")
	assert.NotContains(t, out, "\t")
	assert.NotContains(t, out, "   ")
	assert.NotContains(t, out, "\n\n\n")
}
