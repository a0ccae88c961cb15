// Package extract turns source documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor returns the plain text of a document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PDFExtractor reads PDF files page by page.
type PDFExtractor struct{}

// Extract joins the text of every page in page order with a single space.
// Pages without text contribute nothing.
func (PDFExtractor) Extract(_ context.Context, path string) (text string, err error) {
	// The pdf reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf %q: %v", path, r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %q: %w", path, err)
	}
	defer file.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting page %d of %q: %w", i, path, err)
		}

		content = norm.NFKC.String(content)
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, " "), nil
}

// TextExtractor reads UTF-8 text files verbatim.
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("reading %q: content is not valid UTF-8", path)
	}
	return string(data), nil
}

// MultiExtractor dispatches on the lower-cased file extension.
type MultiExtractor struct {
	byExt map[string]Extractor
}

// NewMulti returns an extractor handling .pdf, .txt and .md files.
func NewMulti() *MultiExtractor {
	return &MultiExtractor{byExt: map[string]Extractor{
		".pdf": PDFExtractor{},
		".txt": TextExtractor{},
		".md":  TextExtractor{},
	}}
}

func (m *MultiExtractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := m.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
	}
	return extractor.Extract(ctx, path)
}

// ListCandidates returns the PDF files directly inside dir, sorted by name.
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing resumes in %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
