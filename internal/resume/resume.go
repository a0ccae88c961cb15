// Package resume holds the candidate documents flowing through a ranking run.
package resume

import (
	"github.com/spigell/resume-ranker/internal/textnorm"
)

// Reasons a candidate can be ignored for.
const (
	ReasonExtractionFailed = "extraction_failed"
	ReasonTooFewWords      = "too_few_words"
	ReasonExcluded         = "excluded"
)

// Candidate is a single resume identified by its source file name.
type Candidate struct {
	Name string
	Path string
	// Text is the raw extracted text.
	Text  string
	Words int

	Similarity float64
	Boost      float64
	Score      float64
	Matched    []string

	normalized *string
}

// NewCandidate creates a candidate from extracted text.
func NewCandidate(name, path, text string) *Candidate {
	return &Candidate{
		Name:  name,
		Path:  path,
		Text:  text,
		Words: textnorm.WordCount(text),
	}
}

// Normalized returns the canonical text used for keyword matching.
// The value is computed once and cached.
func (c *Candidate) Normalized() string {
	if c.normalized == nil {
		n := textnorm.Normalize(c.Text)
		c.normalized = &n
	}
	return *c.normalized
}

// Candidates is an ordered collection of candidates.
type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		names = append(names, item.Name)
	}
	return names
}

// Exclude removes candidates with the given names, keeping the order of the rest.
// It returns the names that were actually removed.
func (c *Candidates) Exclude(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[name] = struct{}{}
	}

	var excluded []string
	kept := c.Items[:0]
	for _, item := range c.Items {
		if _, ok := targets[item.Name]; ok {
			excluded = append(excluded, item.Name)
			continue
		}
		kept = append(kept, item)
	}

	// Drop references left behind in the tail of the backing array.
	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept

	return excluded
}

// ExcludeFunc removes candidates for which drop returns true.
func (c *Candidates) ExcludeFunc(drop func(*Candidate) bool) []string {
	var names []string
	for _, item := range c.Items {
		if drop(item) {
			names = append(names, item.Name)
		}
	}
	return c.Exclude(names)
}

// Ignored describes a candidate left out of the ranking.
type Ignored struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
	Err    error  `json:"-" yaml:"-"`
}

// Cause returns the underlying error message, if any.
func (i Ignored) Cause() string {
	if i.Err == nil {
		return ""
	}
	return i.Err.Error()
}
