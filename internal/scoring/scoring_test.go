package scoring

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/resume"
)

func TestVectorizerFit(t *testing.T) {
	t.Parallel()

	m, err := NewVectorizer().Fit([]string{
		"Python developer needed",
		"I am a python django developer",
		"Accountant with payroll experience",
	})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	for _, stop := range []string{"am", "a", "with"} {
		for _, term := range m.Vocabulary {
			if term == stop {
				t.Fatalf("stop-word %q in vocabulary", stop)
			}
		}
	}
	if len(m.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.Rows))
	}
	for i, row := range m.Rows {
		sum := 0.0
		for _, w := range row {
			if w < 0 {
				t.Fatalf("negative weight in row %d", i)
			}
			sum += w * w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %d is not unit length: %v", i, sum)
		}
	}

	sims := m.Similarities()
	if len(sims) != 2 {
		t.Fatalf("expected 2 similarities, got %d", len(sims))
	}
	if sims[0] <= 0 {
		t.Fatalf("expected positive similarity for overlapping text, got %v", sims[0])
	}
	if sims[1] != 0 {
		t.Fatalf("expected zero similarity for disjoint text, got %v", sims[1])
	}
}

func TestVectorizerFitIsStateless(t *testing.T) {
	t.Parallel()

	v := NewVectorizer()
	first, err := v.Fit([]string{"golang kubernetes", "golang"})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := v.Fit([]string{"completely different words here", "words"}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	again, err := v.Fit([]string{"golang kubernetes", "golang"})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("expected identical matrices for identical corpora")
	}
}

func TestVectorizerEmptyCorpus(t *testing.T) {
	t.Parallel()

	if _, err := NewVectorizer().Fit(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}

	m, err := NewVectorizer().Fit([]string{"the and of", "a an"})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(m.Vocabulary) != 0 {
		t.Fatalf("expected empty vocabulary, got %v", m.Vocabulary)
	}
	if sims := m.Similarities(); len(sims) != 1 || sims[0] != 0 {
		t.Fatalf("expected a single zero similarity, got %v", sims)
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   []float64
		expect float64
	}{
		{name: "identical", a: []float64{1, 2}, b: []float64{1, 2}, expect: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, expect: 0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, expect: 0},
		{name: "length mismatch", a: []float64{1}, b: []float64{1, 1}, expect: 0},
		{name: "opposite is clamped", a: []float64{1, 0}, b: []float64{-1, 0}, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestBoosterMatch(t *testing.T) {
	t.Parallel()

	b := NewBooster([]string{"Python", "django", "python", " REST  API ", "", "flask"}, 0.05)
	if !reflect.DeepEqual(b.Keywords(), []string{"python", "django", "rest api", "flask"}) {
		t.Fatalf("unexpected keywords: %v", b.Keywords())
	}
	if len(b.Rejected()) != 0 {
		t.Fatalf("unexpected rejected keywords: %v", b.Rejected())
	}

	boost, matched := b.Match("i build rest api services with django and pythonic code")
	if !reflect.DeepEqual(matched, []string{"python", "django", "rest api"}) {
		t.Fatalf("unexpected matched keywords: %v", matched)
	}
	if math.Abs(boost-0.15) > 1e-9 {
		t.Fatalf("expected boost 0.15, got %v", boost)
	}

	boost, matched = b.Match("accountant")
	if boost != 0 || matched != nil {
		t.Fatalf("expected no boost, got %v %v", boost, matched)
	}
}

func TestBoosterRejectsKeywordsWithSymbols(t *testing.T) {
	t.Parallel()

	b := NewBooster([]string{"c++", "Node.js", "REST-API", "python"}, 0.05)
	if !reflect.DeepEqual(b.Keywords(), []string{"python"}) {
		t.Fatalf("unexpected keywords: %v", b.Keywords())
	}
	if !reflect.DeepEqual(b.Rejected(), []string{"c++", "Node.js", "REST-API"}) {
		t.Fatalf("unexpected rejected keywords: %v", b.Rejected())
	}

	boost, matched := b.Match("accountant with excel experience in node js")
	if boost != 0 || matched != nil {
		t.Fatalf("expected no boost, got %v %v", boost, matched)
	}
}

func TestScorerWarnsAboutRejectedKeywords(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	s, err := NewScorer(Config{Keywords: []string{"c++", "golang"}, PerKeyword: 0.05}, zap.New(core))
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	if !reflect.DeepEqual(s.Keywords(), []string{"golang"}) {
		t.Fatalf("unexpected keywords: %v", s.Keywords())
	}

	entries := observed.FilterMessageSnippet("ignoring boost keywords").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["keywords"]; !reflect.DeepEqual(got, []interface{}{"c++"}) {
		t.Fatalf("unexpected keywords field: %#v", got)
	}
}

func TestBoosterMonotonic(t *testing.T) {
	t.Parallel()

	b := NewBooster(DefaultKeywords, DefaultPerKeyword)
	texts := []string{
		"",
		"python",
		"python django",
		"python django flask",
		"python django flask tensorflow machine learning",
	}

	prev := -1.0
	for _, text := range texts {
		boost, _ := b.Match(text)
		if boost < prev {
			t.Fatalf("boost decreased for %q: %v < %v", text, boost, prev)
		}
		prev = boost
	}
}

func TestScorerScore(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	s, err := NewScorer(Config{Keywords: DefaultKeywords, PerKeyword: 0.05}, zap.New(core))
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}

	candidates := []*resume.Candidate{
		resume.NewCandidate("a.pdf", "", "I am a python django developer"),
		resume.NewCandidate("b.pdf", "", "Chef with pastry experience"),
	}
	if err := s.Score(context.Background(), "python developer needed", candidates); err != nil {
		t.Fatalf("score: %v", err)
	}

	a := candidates[0]
	if a.Similarity <= 0 || a.Similarity > 1 {
		t.Fatalf("unexpected similarity %v", a.Similarity)
	}
	if !reflect.DeepEqual(a.Matched, []string{"python", "django"}) {
		t.Fatalf("unexpected matched keywords: %v", a.Matched)
	}
	if a.Score <= a.Similarity {
		t.Fatalf("expected boosted score above similarity: %v <= %v", a.Score, a.Similarity)
	}
	if b := candidates[1]; b.Score != 0 || b.Similarity != 0 {
		t.Fatalf("expected zero score for unrelated candidate, got %+v", b)
	}

	if observed.FilterMessage("candidate scored").Len() != 2 {
		t.Fatalf("expected a debug entry per candidate")
	}
}

func TestScorerErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewScorer(Config{PerKeyword: -1}, nil); err == nil {
		t.Fatalf("expected error for negative boost")
	}

	s, err := NewScorer(Config{}, nil)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	if err := s.Score(context.Background(), "ref", nil); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Score(ctx, "ref", []*resume.Candidate{resume.NewCandidate("a", "", "text")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScorerWarnsOnEmptyVocabulary(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	s, err := NewScorer(Config{}, zap.New(core))
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}

	candidates := []*resume.Candidate{resume.NewCandidate("a", "", "the of and")}
	if err := s.Score(context.Background(), "is was", candidates); err != nil {
		t.Fatalf("score: %v", err)
	}
	if candidates[0].Similarity != 0 {
		t.Fatalf("expected zero similarity, got %v", candidates[0].Similarity)
	}
	if observed.Len() != 1 {
		t.Fatalf("expected a warning, got %d entries", observed.Len())
	}
}
