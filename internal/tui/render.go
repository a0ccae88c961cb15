package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/resume-ranker/internal/ranking"
)

var (
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	topRankStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RenderRanking renders ranked entries in a box. The top entry is highlighted.
func RenderRanking(entries []ranking.Entry) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-30s %8s", "Rank", "Resume", "Score")))
	for _, e := range entries {
		b.WriteString("\n")
		line := fmt.Sprintf("%-5d %-30s %8.4f", e.Rank, e.Name, e.Score)
		if e.Rank == 1 {
			line = topRankStyle.Render(line)
		}
		b.WriteString(line)
		if len(e.Matched) > 0 {
			b.WriteString(" ")
			b.WriteString(keywordStyle.Render(strings.Join(e.Matched, ", ")))
		}
	}
	return boxStyle.Render(b.String())
}

// RenderBlock renders a titled block of preformatted text.
func RenderBlock(title, body string) string {
	return boxStyle.Render(headerStyle.Render(title) + "\n" + strings.TrimRight(body, "\n"))
}
