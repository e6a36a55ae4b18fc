// Package prompt owns the two prompt templates. They are the system's only
// behavioral configuration surface: editing the markdown changes extraction
// and validation behavior without code changes. Templates use named slots
// ({field_description}, {content}, {extracted_data}) substituted verbatim.
package prompt

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/extraction.md templates/validation.md
var templateFS embed.FS

// Template names.
const (
	Extraction = "extraction.md"
	Validation = "validation.md"
)

// Set resolves templates from an optional override directory, falling back to
// the embedded defaults.
type Set struct {
	dir string
}

// NewSet returns a Set. dir may be empty (embedded templates only).
func NewSet(dir string) *Set {
	return &Set{dir: dir}
}

// Load returns the raw template text by name.
func (s *Set) Load(name string) (string, error) {
	if s.dir != "" {
		path := filepath.Join(s.dir, name)
		if b, err := os.ReadFile(path); err == nil {
			return string(b), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read template %s: %w", path, err)
		}
	}
	b, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("embedded template %s: %w", name, err)
	}
	return string(b), nil
}

// Render loads a template and substitutes {slot} placeholders.
func (s *Set) Render(name string, vars map[string]string) (string, error) {
	tpl, err := s.Load(name)
	if err != nil {
		return "", err
	}
	for k, v := range vars {
		tpl = strings.ReplaceAll(tpl, "{"+k+"}", v)
	}
	return tpl, nil
}
