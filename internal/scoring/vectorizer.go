// Package scoring computes how relevant each candidate is to the reference
// document: TF-IDF cosine similarity plus a fixed keyword boost.
package scoring

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyCorpus is returned when Fit is called without documents.
var ErrEmptyCorpus = errors.New("empty corpus for TF-IDF fit")

// Vectorizer builds TF-IDF matrices. It holds no fitted state, so every call
// to Fit starts from a fresh vocabulary.
type Vectorizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// Matrix is a fitted TF-IDF weight matrix. Row i belongs to corpus document i.
type Matrix struct {
	Vocabulary []string
	Rows       [][]float64
}

// NewVectorizer creates a vectorizer using the English stop-word list.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`),
		stopwords:    defaultStopWords(),
	}
}

// Fit builds the vocabulary and the L2-normalised weight matrix for corpus.
// Weights are raw term counts times the smoothed idf ln((1+n)/(1+df)) + 1.
// A corpus made only of stop-words yields an empty vocabulary and zero rows.
func (v *Vectorizer) Fit(corpus []string) (*Matrix, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	counts := make([]map[string]int, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		tf := make(map[string]int)
		for _, tok := range v.tokenize(text) {
			tf[tok]++
		}
		for tok := range tf {
			df[tok]++
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([][]float64, len(corpus))
	for i, tf := range counts {
		row := make([]float64, len(terms))
		for term, count := range tf {
			idx := index[term]
			row[idx] = float64(count) * idf[idx]
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		rows[i] = row
	}

	return &Matrix{Vocabulary: terms, Rows: rows}, nil
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := v.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := v.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Similarities returns the cosine similarity between the first row and every
// other row, in row order.
func (m *Matrix) Similarities() []float64 {
	if len(m.Rows) < 2 {
		return nil
	}
	out := make([]float64, 0, len(m.Rows)-1)
	for _, row := range m.Rows[1:] {
		out = append(out, Cosine(m.Rows[0], row))
	}
	return out
}

// Cosine returns the cosine of the angle between a and b clamped to [0, 1].
// Zero vectors have similarity 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (na * nb)
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
