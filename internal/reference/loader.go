// Package reference loads the job description candidates are ranked against.
package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/resume-ranker/internal/extract"
)

// Source describes where the reference document comes from.
type Source struct {
	// Name is used in error messages.
	Name string
	// Text is the reference document given inline.
	Text string
	// File points to the reference document. When set it takes precedence
	// over Text.
	File string
}

// Label returns a short description of the source for logs.
func (s Source) Label() string {
	if file := strings.TrimSpace(s.File); file != "" {
		return file
	}
	return "inline text"
}

// Load returns the reference text. File content is read through ex and kept
// verbatim. An error is returned when neither File nor Text hold any text.
func Load(ctx context.Context, src Source, ex extract.Extractor) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "job description"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		if ex == nil {
			ex = extract.NewMulti()
		}
		text, err := ex.Extract(ctx, file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Text = text
	}

	if strings.TrimSpace(src.Text) == "" {
		if file != "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return src.Text, nil
}
