// Package pipeline runs a complete ranking: extraction, filtering, scoring,
// ranking and evaluation.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ranker/internal/evaluation"
	"github.com/spigell/resume-ranker/internal/extract"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/reference"
	"github.com/spigell/resume-ranker/internal/resume"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/utils"
)

const previewLength = 80

// Config holds the tunable parameters of a run.
type Config struct {
	Scoring      scoring.Config
	MinimumWords int
	Thresholds   evaluation.Thresholds
	// ExcludeFile lists candidates to leave out. Empty disables the filter.
	ExcludeFile string
	// SkipExcludeFile keeps the exclude file filter disabled even when a
	// file is configured.
	SkipExcludeFile bool
	// Workers bounds parallel extraction. Values below 1 mean 1.
	Workers int
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		Scoring: scoring.Config{
			Keywords:   scoring.DefaultKeywords,
			PerKeyword: scoring.DefaultPerKeyword,
		},
		MinimumWords: filtering.DefaultMinimumWords,
		Thresholds: evaluation.Thresholds{
			Relevance:      evaluation.DefaultRelevanceThreshold,
			KeywordMatches: evaluation.DefaultKeywordMatchesThreshold,
		},
		Workers: 1,
	}
}

// Request is an immutable description of one run.
type Request struct {
	Reference reference.Source
	// Candidates are paths of candidate documents. The file name is the
	// candidate name.
	Candidates []string
}

// Document is an already extracted candidate.
type Document struct {
	Name string
	Path string
	Text string
}

// Result is the output of a completed run.
type Result struct {
	RunID   string
	Outcome Outcome
	Ranked  []ranking.Entry
	// Evaluation is nil for OutcomeNoCandidates.
	Evaluation *evaluation.Report
	Ignored    []resume.Ignored
	// Texts holds every successfully extracted text by candidate name.
	Texts map[string]string
	Steps []filtering.StepReport
}

// Pipeline runs ranking requests. Runs share no mutable state.
type Pipeline struct {
	cfg       Config
	extractor extract.Extractor
	scorer    *scoring.Scorer
	logger    *zap.Logger
	observer  Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithExtractor replaces the default extension based extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// New validates cfg and builds a pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.extractor == nil {
		p.extractor = extract.NewMulti()
	}
	if p.cfg.Workers < 1 {
		p.cfg.Workers = 1
	}
	if p.cfg.MinimumWords < 0 {
		return nil, fmt.Errorf("minimum words must not be negative, got %d", p.cfg.MinimumWords)
	}

	scorer, err := scoring.NewScorer(p.cfg.Scoring, p.logger)
	if err != nil {
		return nil, fmt.Errorf("building scorer: %w", err)
	}
	p.scorer = scorer

	p.logger.Info("boost keywords",
		zap.Strings("keywords", scorer.Keywords()),
		zap.Float64("per_keyword", p.cfg.Scoring.PerKeyword),
	)

	return p, nil
}

type run struct {
	*Pipeline
	id     string
	logger *zap.Logger

	mu   sync.Mutex
	done int
}

func (p *Pipeline) newRun() *run {
	id := uuid.NewString()
	return &run{
		Pipeline: p,
		id:       id,
		logger:   logger.WithCommonFields(p.logger, id, ""),
	}
}

func (r *run) emit(e Event) {
	e.RunID = r.id
	r.logger.Debug("phase", zap.String(logger.FieldPhase, e.Phase.String()))
	r.notify(e)
}

func (r *run) notify(e Event) {
	if r.observer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer(e)
}

func (r *run) extracted(name string, total int) {
	r.mu.Lock()
	r.done++
	done := r.done
	r.mu.Unlock()

	r.notify(Event{RunID: r.id, Phase: PhaseExtracting, Candidate: name, Done: done, Total: total})
}

// Run loads the reference document, extracts every candidate and ranks them.
// A reference that cannot be loaded returns *FatalInputError before any
// candidate is touched. Candidate extraction failures end up in Result.Ignored.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	r := p.newRun()
	r.emit(Event{Phase: PhaseExtracting, Total: len(req.Candidates)})

	ref, err := reference.Load(ctx, req.Reference, p.extractor)
	if err != nil {
		fatal := &FatalInputError{Source: req.Reference.Label(), Err: err}
		r.logger.Error("reference document is unavailable", zap.Error(err))
		r.emit(Event{Phase: PhaseFailed, Err: fatal})
		return nil, fatal
	}

	r.logger.Info("reference document loaded",
		zap.String("source", req.Reference.Label()),
		zap.String("preview", utils.TruncateForLog(ref, previewLength)),
	)

	docs, ignored, err := r.extractAll(ctx, req.Candidates)
	if err != nil {
		return nil, err
	}

	return r.rank(ctx, ref, docs, ignored)
}

// Rank ranks already extracted documents against the reference text.
func (p *Pipeline) Rank(ctx context.Context, referenceText string, docs []Document) (*Result, error) {
	r := p.newRun()

	ref, err := reference.Load(ctx, reference.Source{Text: referenceText}, nil)
	if err != nil {
		fatal := &FatalInputError{Source: "inline text", Err: err}
		r.emit(Event{Phase: PhaseFailed, Err: fatal})
		return nil, fatal
	}

	return r.rank(ctx, ref, docs, nil)
}

func (r *run) extractAll(ctx context.Context, paths []string) ([]Document, []resume.Ignored, error) {
	texts := make([]string, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i], errs[i] = r.extractor.Extract(gctx, path)
			r.extracted(filepath.Base(path), len(paths))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("extracting candidates: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("extracting candidates: %w", err)
	}

	docs := make([]Document, 0, len(paths))
	var ignored []resume.Ignored
	for i, path := range paths {
		name := filepath.Base(path)
		if errs[i] != nil {
			cause := &CandidateExtractionError{Name: name, Path: path, Err: errs[i]}
			r.logger.Warn("could not extract resume", zap.String("resume", name), zap.Error(errs[i]))
			ignored = append(ignored, resume.Ignored{Name: name, Reason: resume.ReasonExtractionFailed, Err: cause})
			continue
		}
		docs = append(docs, Document{Name: name, Path: path, Text: texts[i]})
	}

	r.logger.Info("resumes extracted",
		zap.Int("total", len(paths)),
		zap.Int("extracted", len(docs)),
		zap.Int("failed", len(ignored)),
	)

	return docs, ignored, nil
}

func (r *run) rank(ctx context.Context, ref string, docs []Document, ignored []resume.Ignored) (*Result, error) {
	result := &Result{
		RunID: r.id,
		Texts: make(map[string]string, len(docs)),
	}

	r.emit(Event{Phase: PhaseFiltering})

	candidates := &resume.Candidates{}
	for _, doc := range docs {
		result.Texts[doc.Name] = doc.Text
		candidates.Items = append(candidates.Items, resume.NewCandidate(doc.Name, doc.Path, doc.Text))
	}

	steps := []filtering.Filter{
		filtering.NewMinWords(),
		filtering.NewExcludeFile(r.cfg.ExcludeFile),
	}
	if r.cfg.SkipExcludeFile {
		filtering.DisableByName(steps, filtering.ExcludeFileFilterName, "skipped for this run")
	}
	for _, status := range filtering.Describe(steps) {
		r.logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	left, reports, err := filtering.Run(ctx, &filtering.Config{MinimumWords: r.cfg.MinimumWords}, filtering.Deps{Logger: r.logger}, steps, candidates)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}
	result.Steps = reports
	result.Ignored = append(ignored, filtering.Excluded(reports)...)

	if left.Len() == 0 {
		result.Outcome = OutcomeNoCandidates
		r.logger.Info("no resumes left to rank", zap.Int("ignored", len(result.Ignored)))
		r.emit(Event{Phase: PhaseDone, Outcome: result.Outcome})
		return result, nil
	}

	r.emit(Event{Phase: PhaseScoring})
	if err := r.scorer.Score(ctx, ref, left.Items); err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	r.emit(Event{Phase: PhaseRanking})
	items := make([]ranking.Item, 0, left.Len())
	for _, c := range left.Items {
		items = append(items, ranking.Item{
			Name:       c.Name,
			Similarity: c.Similarity,
			Boost:      c.Boost,
			Score:      c.Score,
			Matched:    c.Matched,
		})
	}
	result.Ranked = ranking.Rank(items)

	r.emit(Event{Phase: PhaseEvaluating})
	predicted, actual := evaluation.Labels(result.Ranked, r.cfg.Thresholds)
	report, err := evaluation.Evaluate(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("evaluating ranking: %w", err)
	}
	result.Evaluation = report

	result.Outcome = OutcomeRanked
	r.logger.Info("ranking completed",
		zap.Int("ranked", len(result.Ranked)),
		zap.Int("ignored", len(result.Ignored)),
		zap.String("top", result.Ranked[0].Name),
	)
	r.emit(Event{Phase: PhaseDone, Outcome: result.Outcome})

	return result, nil
}
