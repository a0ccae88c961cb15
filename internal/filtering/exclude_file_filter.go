package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/resume"
)

// ExcludeFileFilterName names the exclude file filter.
const ExcludeFileFilterName = "exclude_file"

type excludeFileFilter struct {
	path     string
	disabled bool
	reason   string
}

// NewExcludeFile creates a filter that removes candidates listed in an exclude file.
// The filter is disabled when path is empty.
func NewExcludeFile(path string) Filter {
	f := &excludeFileFilter{path: strings.TrimSpace(path)}
	if f.path == "" {
		f.Disable("exclude file is not configured")
	}
	return f
}

func (f *excludeFileFilter) Name() string { return ExcludeFileFilterName }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

func (f *excludeFileFilter) Validate(*Config) error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *resume.Candidates) (*resume.Candidates, Step, error) {
	initial := c.Len()

	excluded, err := resume.GetExcludedFromFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded resumes from file: %w", err)
	}

	removed := c.Exclude(excluded.Names())
	ignored := make([]resume.Ignored, 0, len(removed))
	for _, name := range removed {
		ignored = append(ignored, resume.Ignored{Name: name, Reason: resume.ReasonExcluded})
	}

	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding resumes based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_resumes", removed),
			zap.Int("resumes_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len(), Excluded: ignored}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
