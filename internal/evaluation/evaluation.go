// Package evaluation derives pseudo-labels from a ranking and reports
// precision, recall and F1 per class.
//
// Both label sets come from the same scores being evaluated, so the report is
// a self-consistency check only. It does not measure accuracy against any
// ground truth.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-ranker/internal/ranking"
)

// Class names used in reports.
const (
	ClassRelevant    = "Relevant"
	ClassNotRelevant = "Not Relevant"
)

// Note is attached to every report.
const Note = "self-consistency diagnostic: both labels are derived from the ranking scores, this is not ground-truth accuracy"

// Default thresholds.
const (
	DefaultRelevanceThreshold      = 0.2
	DefaultKeywordMatchesThreshold = 2
)

// Thresholds control label derivation.
type Thresholds struct {
	// Relevance is the combined score a candidate must exceed to be predicted relevant.
	Relevance float64
	// KeywordMatches is the number of matched keywords a candidate must exceed
	// to be assumed relevant.
	KeywordMatches int
}

// Metrics are the scores of a single class or average.
type Metrics struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Support   int     `json:"support" yaml:"support"`
}

// ClassMetrics are metrics of a named class.
type ClassMetrics struct {
	Class   string `json:"class" yaml:"class"`
	Metrics `yaml:",inline"`
}

// Report is a classification report over the pseudo-labels.
type Report struct {
	Classes     []ClassMetrics `json:"classes" yaml:"classes"`
	Accuracy    float64        `json:"accuracy" yaml:"accuracy"`
	MacroAvg    Metrics        `json:"macro_avg" yaml:"macro_avg"`
	WeightedAvg Metrics        `json:"weighted_avg" yaml:"weighted_avg"`
	Note        string         `json:"note" yaml:"note"`
}

// Labels derives predicted and assumed-true labels for ranked entries.
func Labels(entries []ranking.Entry, th Thresholds) (predicted, actual []bool) {
	predicted = make([]bool, len(entries))
	actual = make([]bool, len(entries))
	for i, e := range entries {
		predicted[i] = e.Score > th.Relevance
		actual[i] = len(e.Matched) > th.KeywordMatches
	}
	return predicted, actual
}

// Evaluate computes the report. Metrics with a zero denominator are 0.
func Evaluate(predicted, actual []bool) (*Report, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("label length mismatch: %d predicted, %d actual", len(predicted), len(actual))
	}

	report := &Report{Note: Note}
	total := len(actual)

	correct := 0
	for i := range actual {
		if predicted[i] == actual[i] {
			correct++
		}
	}
	report.Accuracy = ratio(correct, total)

	for _, class := range []struct {
		name     string
		positive bool
	}{
		{ClassRelevant, true},
		{ClassNotRelevant, false},
	} {
		report.Classes = append(report.Classes, ClassMetrics{
			Class:   class.name,
			Metrics: classMetrics(predicted, actual, class.positive),
		})
	}

	for _, c := range report.Classes {
		n := float64(len(report.Classes))
		report.MacroAvg.Precision += c.Precision / n
		report.MacroAvg.Recall += c.Recall / n
		report.MacroAvg.F1 += c.F1 / n
		report.MacroAvg.Support += c.Support

		if total > 0 {
			w := float64(c.Support) / float64(total)
			report.WeightedAvg.Precision += c.Precision * w
			report.WeightedAvg.Recall += c.Recall * w
			report.WeightedAvg.F1 += c.F1 * w
		}
		report.WeightedAvg.Support += c.Support
	}

	return report, nil
}

func classMetrics(predicted, actual []bool, positive bool) Metrics {
	var tp, fp, fn int
	for i := range actual {
		p := predicted[i] == positive
		a := actual[i] == positive
		switch {
		case p && a:
			tp++
		case p:
			fp++
		case a:
			fn++
		}
	}

	m := Metrics{
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
		Support:   tp + fn,
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a text table followed by the note.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		writeRow(&b, c.Class, c.Metrics)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-14s %9s %9s %9.2f %9d\n", "accuracy", "", "", r.Accuracy, r.WeightedAvg.Support)
	writeRow(&b, "macro avg", r.MacroAvg)
	writeRow(&b, "weighted avg", r.WeightedAvg)
	b.WriteString("\nnote: ")
	b.WriteString(r.Note)
	b.WriteString("\n")
	return b.String()
}

func writeRow(b *strings.Builder, name string, m Metrics) {
	fmt.Fprintf(b, "%-14s %9.2f %9.2f %9.2f %9d\n", name, m.Precision, m.Recall, m.F1, m.Support)
}
