package filtering

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/resume"
)

func candidates() *resume.Candidates {
	return &resume.Candidates{Items: []*resume.Candidate{
		resume.NewCandidate("long.pdf", "", "one two three four five"),
		resume.NewCandidate("short.pdf", "", "one two"),
		resume.NewCandidate("listed.pdf", "", "one two three four five six"),
	}}
}

func TestRunMinWordsAndExcludeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	excluded := resume.ToExcluded([]resume.Ignored{{Name: "listed.pdf", Reason: resume.ReasonExcluded}})
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	steps := []Filter{NewMinWords(), NewExcludeFile(path)}

	left, reports, err := Run(context.Background(), &Config{MinimumWords: 3}, Deps{Logger: zap.New(core)}, steps, candidates())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !reflect.DeepEqual(left.Names(), []string{"long.pdf"}) {
		t.Fatalf("unexpected candidates left: %v", left.Names())
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 step reports, got %d", len(reports))
	}
	if r := reports[0]; r.Name != "min_words" || r.Initial != 3 || r.Dropped != 1 || r.Left != 2 {
		t.Fatalf("unexpected min_words report: %+v", r)
	}
	if r := reports[1]; r.Name != "exclude_file" || r.Dropped != 1 || r.Left != 1 {
		t.Fatalf("unexpected exclude_file report: %+v", r)
	}

	ignored := Excluded(reports)
	if len(ignored) != 2 {
		t.Fatalf("expected 2 ignored candidates, got %v", ignored)
	}
	if ignored[0].Name != "short.pdf" || ignored[0].Reason != resume.ReasonTooFewWords || ignored[0].Err == nil {
		t.Fatalf("unexpected ignored entry: %+v", ignored[0])
	}
	if ignored[1].Name != "listed.pdf" || ignored[1].Reason != resume.ReasonExcluded {
		t.Fatalf("unexpected ignored entry: %+v", ignored[1])
	}

	if observed.FilterMessage("filter step").Len() != 2 {
		t.Fatalf("expected a log entry per step")
	}
}

func TestRunSkipsDisabledFilters(t *testing.T) {
	t.Parallel()

	steps := []Filter{NewExcludeFile(""), NewMinWords()}
	left, reports, err := Run(context.Background(), &Config{}, Deps{}, steps, candidates())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if left.Len() != 3 {
		t.Fatalf("expected every candidate to pass, got %v", left.Names())
	}
	if len(reports) != 1 || reports[0].Name != "min_words" {
		t.Fatalf("unexpected reports: %+v", reports)
	}

	statuses := Describe(steps)
	if statuses[0].Enabled || statuses[0].Reason == "" {
		t.Fatalf("expected disabled exclude_file with reason, got %+v", statuses[0])
	}
	if !statuses[1].Enabled || statuses[1].Details["minimum_words"] != "0" {
		t.Fatalf("unexpected min_words status: %+v", statuses[1])
	}
}

func TestRunValidationError(t *testing.T) {
	t.Parallel()

	_, _, err := Run(context.Background(), &Config{MinimumWords: -1}, Deps{}, []Filter{NewMinWords()}, candidates())
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, &Config{}, Deps{}, []Filter{NewMinWords()}, candidates())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDisableByName(t *testing.T) {
	t.Parallel()

	steps := []Filter{NewExcludeFile("exclude.json")}
	if !steps[0].IsEnabled() {
		t.Fatalf("expected exclude_file to be enabled")
	}
	DisableByName(steps, "exclude_file", "requested")
	if steps[0].IsEnabled() {
		t.Fatalf("expected exclude_file to be disabled")
	}
}
