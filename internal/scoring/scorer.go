package scoring

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/resume"
)

// ErrNoCandidates is returned when Score is called without candidates.
var ErrNoCandidates = errors.New("no candidates to score")

// Config controls the keyword boost.
type Config struct {
	Keywords   []string
	PerKeyword float64
}

// Scorer combines TF-IDF similarity and keyword boost.
type Scorer struct {
	vectorizer *Vectorizer
	booster    *Booster
	logger     *zap.Logger
}

// NewScorer validates cfg and prepares the keyword booster.
func NewScorer(cfg Config, logger *zap.Logger) (*Scorer, error) {
	if cfg.PerKeyword < 0 {
		return nil, fmt.Errorf("boost per keyword must not be negative, got %v", cfg.PerKeyword)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	booster := NewBooster(cfg.Keywords, cfg.PerKeyword)
	if rejected := booster.Rejected(); len(rejected) > 0 {
		logger.Warn("ignoring boost keywords with characters other than letters and spaces",
			zap.Strings("keywords", rejected),
		)
	}

	return &Scorer{
		vectorizer: NewVectorizer(),
		booster:    booster,
		logger:     logger,
	}, nil
}

// Keywords returns the de-duplicated boost keywords.
func (s *Scorer) Keywords() []string {
	return s.booster.Keywords()
}

// Score fills Similarity, Boost, Matched and Score on every candidate.
// The corpus is the reference followed by the candidates in the given order
// and is fitted from scratch on each call.
func (s *Scorer) Score(ctx context.Context, reference string, candidates []*resume.Candidate) error {
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	corpus := make([]string, 0, len(candidates)+1)
	corpus = append(corpus, reference)
	for _, c := range candidates {
		corpus = append(corpus, c.Text)
	}

	matrix, err := s.vectorizer.Fit(corpus)
	if err != nil {
		return fmt.Errorf("fitting tf-idf: %w", err)
	}

	similarities := matrix.Similarities()
	if len(matrix.Vocabulary) == 0 {
		s.logger.Warn("empty vocabulary, every similarity is zero",
			zap.Int("documents", len(corpus)),
		)
	}
	s.logger.Debug("tf-idf matrix fitted",
		zap.Int("documents", len(corpus)),
		zap.Int("vocabulary", len(matrix.Vocabulary)),
	)

	for i, c := range candidates {
		c.Similarity = similarities[i]
		c.Boost, c.Matched = s.booster.Match(c.Normalized())
		c.Score = c.Similarity + c.Boost

		s.logger.Debug("candidate scored",
			zap.String("candidate", c.Name),
			zap.Float64("similarity", c.Similarity),
			zap.Float64("boost", c.Boost),
			zap.Strings("matched_keywords", c.Matched),
		)
	}

	return nil
}
