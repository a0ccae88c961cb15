package scoring

import (
	"strings"

	"github.com/spigell/resume-ranker/internal/textnorm"
)

// DefaultKeywords are the boost keywords used when none are configured.
var DefaultKeywords = []string{"python", "machine learning", "django", "rest api", "tensorflow", "flask"}

// DefaultPerKeyword is the boost added for every matched keyword.
const DefaultPerKeyword = 0.05

// Booster adds a fixed increment per distinct keyword found in normalized text.
type Booster struct {
	keywords   []string
	rejected   []string
	perKeyword float64
}

// NewBooster lower-cases and de-duplicates keywords once, keeping the first
// occurrence order. Blank keywords are skipped. A keyword holding anything
// besides letters and single spaces can never appear in normalized text, so
// it is rejected instead of being folded into a different, shorter keyword
// ("c++" would otherwise become "c").
func NewBooster(keywords []string, perKeyword float64) *Booster {
	seen := make(map[string]struct{}, len(keywords))
	kept := make([]string, 0, len(keywords))
	var rejected []string
	for _, raw := range keywords {
		lower := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
		if lower == "" {
			continue
		}
		if textnorm.Normalize(lower) != lower {
			rejected = append(rejected, raw)
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		kept = append(kept, lower)
	}
	return &Booster{keywords: kept, rejected: rejected, perKeyword: perKeyword}
}

// Rejected returns the configured keywords that can never match.
func (b *Booster) Rejected() []string {
	return append([]string(nil), b.rejected...)
}

// Keywords returns the effective keyword list.
func (b *Booster) Keywords() []string {
	return append([]string(nil), b.keywords...)
}

// Match scans normalized text for every keyword as a substring. A keyword
// inside a longer word still counts. Matched keywords keep the list order.
func (b *Booster) Match(normalized string) (float64, []string) {
	var matched []string
	boost := 0.0
	for _, kw := range b.keywords {
		if strings.Contains(normalized, kw) {
			matched = append(matched, kw)
			boost += b.perKeyword
		}
	}
	return boost, matched
}
