// Package ranking orders scored candidates.
package ranking

import (
	"sort"
)

// Item is a scored candidate waiting to be ranked.
type Item struct {
	Name       string
	Similarity float64
	Boost      float64
	Score      float64
	Matched    []string
}

// Entry is a ranked output row. Rank is 1-based.
type Entry struct {
	Rank       int      `json:"rank" yaml:"rank"`
	Name       string   `json:"name" yaml:"name"`
	Score      float64  `json:"score" yaml:"score"`
	Similarity float64  `json:"similarity" yaml:"similarity"`
	Boost      float64  `json:"boost" yaml:"boost"`
	Matched    []string `json:"matched_keywords" yaml:"matched_keywords"`
}

// Rank sorts items by score descending. Equal scores are ordered by name
// ascending (byte-wise), so identical input always gives identical output.
// Ranks are contiguous even when scores tie. items is not modified.
func Rank(items []Item) []Entry {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Name < sorted[j].Name
	})

	entries := make([]Entry, 0, len(sorted))
	for i, item := range sorted {
		entries = append(entries, Entry{
			Rank:       i + 1,
			Name:       item.Name,
			Score:      item.Score,
			Similarity: item.Similarity,
			Boost:      item.Boost,
			Matched:    append([]string(nil), item.Matched...),
		})
	}
	return entries
}
