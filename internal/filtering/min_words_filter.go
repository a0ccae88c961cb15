package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/resume"
)

// DefaultMinimumWords is the word count a candidate needs to be ranked.
const DefaultMinimumWords = 50

type minWordsFilter struct {
	minimum int
}

// NewMinWords creates a filter that removes candidates with too little extracted text.
func NewMinWords() Filter {
	return &minWordsFilter{}
}

func (f *minWordsFilter) Name() string { return "min_words" }

func (f *minWordsFilter) Disable(string) {}

func (f *minWordsFilter) IsEnabled() bool { return true }

func (f *minWordsFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumWords
	}
	if f.minimum < 0 {
		return fmt.Errorf("minimum words must not be negative, got %d", f.minimum)
	}
	return nil
}

func (f *minWordsFilter) Apply(_ context.Context, deps Deps, c *resume.Candidates) (*resume.Candidates, Step, error) {
	initial := c.Len()

	words := make(map[string]int, initial)
	removed := c.ExcludeFunc(func(item *resume.Candidate) bool {
		words[item.Name] = item.Words
		return item.Words < f.minimum
	})

	ignored := make([]resume.Ignored, 0, len(removed))
	for _, name := range removed {
		ignored = append(ignored, resume.Ignored{
			Name:   name,
			Reason: resume.ReasonTooFewWords,
			Err:    fmt.Errorf("%d words extracted, minimum is %d", words[name], f.minimum),
		})
	}

	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding resumes with too little text",
			zap.Int("minimum_words", f.minimum),
			zap.Strings("excluded_resumes", removed),
			zap.Int("resumes_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len(), Excluded: ignored}, nil
}

func (f *minWordsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"minimum_words": strconv.Itoa(f.minimum)},
	}
}
