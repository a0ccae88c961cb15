// Package report persists and renders ranking results.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-ranker/internal/evaluation"
	"github.com/spigell/resume-ranker/internal/pipeline"
	"github.com/spigell/resume-ranker/internal/ranking"
)

// DefaultCSVPath is the report file written when no path is configured.
const DefaultCSVPath = "ranked_resumes.csv"

var csvHeader = []string{"Rank", "Resume", "Score"}

// WriteCSV writes one row per entry with the score rounded to 3 decimals.
// The file is replaced atomically.
func WriteCSV(path string, entries []ranking.Entry) error {
	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		for _, e := range entries {
			row := []string{strconv.Itoa(e.Rank), e.Name, strconv.FormatFloat(e.Score, 'f', 3, 64)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// Summary is the YAML dump of a run.
type Summary struct {
	RunID      string             `yaml:"run_id"`
	Outcome    string             `yaml:"outcome"`
	Ranked     []ranking.Entry    `yaml:"ranked"`
	Ignored    []IgnoredEntry     `yaml:"ignored,omitempty"`
	Evaluation *evaluation.Report `yaml:"evaluation,omitempty"`
}

// IgnoredEntry is an ignored candidate with a printable cause.
type IgnoredEntry struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
	Cause  string `yaml:"cause,omitempty"`
}

// NewSummary converts a pipeline result.
func NewSummary(result *pipeline.Result) *Summary {
	s := &Summary{
		RunID:      result.RunID,
		Outcome:    result.Outcome.String(),
		Ranked:     result.Ranked,
		Evaluation: result.Evaluation,
	}
	for _, item := range result.Ignored {
		s.Ignored = append(s.Ignored, IgnoredEntry{Name: item.Name, Reason: item.Reason, Cause: item.Cause()})
	}
	return s
}

// WriteSummary writes the YAML summary of result to path.
func WriteSummary(path string, result *pipeline.Result) error {
	data, err := yaml.Marshal(NewSummary(result))
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// DumpToTmpFile writes the YAML summary into a new temporary file and returns its name.
func DumpToTmpFile(result *pipeline.Result) (string, error) {
	file, err := os.CreateTemp("", "ranking_*.yaml")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(NewSummary(result)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Lines renders the ranking as "{rank}.{name} - Score: {score}" lines.
func Lines(entries []ranking.Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d.%s - Score: %.4f", e.Rank, e.Name, e.Score))
	}
	return lines
}

// IgnoredLines renders ignored candidates with their cause.
func IgnoredLines(result *pipeline.Result) []string {
	lines := make([]string, 0, len(result.Ignored))
	for _, item := range result.Ignored {
		line := fmt.Sprintf("%s (%s)", item.Name, strings.ReplaceAll(item.Reason, "_", " "))
		if cause := item.Cause(); cause != "" {
			line += ": " + cause
		}
		lines = append(lines, line)
	}
	return lines
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %q: %w", path, err)
	}
	return nil
}
