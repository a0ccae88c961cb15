// Package tui renders ranking progress and results in the terminal.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/resume-ranker/internal/pipeline"
)

type eventMsg pipeline.Event

// Model is the Bubble Tea model of the progress view.
type Model struct {
	bar       progress.Model
	phase     pipeline.Phase
	candidate string
	done      int
	total     int
	err       error
}

// NewModel creates an idle progress view.
func NewModel() Model {
	return Model{bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))}
}

// Init does nothing; the model only reacts to pipeline events.
func (m Model) Init() tea.Cmd { return nil }

// Update applies pipeline events and quits on a terminal phase.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.phase = msg.Phase
		if msg.Total > 0 {
			m.total = msg.Total
		}
		if msg.Candidate != "" {
			m.candidate = msg.Candidate
			m.done = msg.Done
		}
		if msg.Err != nil {
			m.err = msg.Err
		}
		if msg.Phase.Terminal() {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(60, msg.Width-20))
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

// Percent is the share of the run completed so far.
func (m Model) Percent() float64 {
	if m.phase.Terminal() {
		return 1
	}
	// Extraction covers the first 80 percent, later phases share the rest.
	extracting := 0.0
	if m.total > 0 {
		extracting = 0.8 * float64(m.done) / float64(m.total)
	}
	switch m.phase {
	case pipeline.PhaseIdle, pipeline.PhaseExtracting:
		return extracting
	case pipeline.PhaseFiltering:
		return 0.8
	case pipeline.PhaseScoring:
		return 0.85
	case pipeline.PhaseRanking:
		return 0.9
	case pipeline.PhaseEvaluating:
		return 0.95
	}
	return 0
}

// View renders the phase, the bar and the last extracted candidate.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Resume ranker"))
	b.WriteString("\n")
	b.WriteString(phaseStyle.Render(fmt.Sprintf("phase: %s", m.phase)))
	if m.total > 0 {
		fmt.Fprintf(&b, "  %d/%d", m.done, m.total)
	}
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n")
	if m.candidate != "" && m.phase == pipeline.PhaseExtracting {
		b.WriteString(mutedStyle.Render(m.candidate))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// Progress runs the progress view next to a pipeline run.
type Progress struct {
	program *tea.Program
	done    chan struct{}
}

// NewProgress creates a progress view writing to out. Keyboard input is
// not read, interrupts are left to the caller.
func NewProgress(out io.Writer) *Progress {
	return &Progress{
		program: tea.NewProgram(NewModel(), tea.WithOutput(out), tea.WithInput(nil), tea.WithoutSignalHandler()),
		done:    make(chan struct{}),
	}
}

// Start runs the view in the background.
func (p *Progress) Start() {
	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// Observe forwards a pipeline event to the view.
func (p *Progress) Observe(e pipeline.Event) {
	p.program.Send(eventMsg(e))
}

// Stop quits the view and waits until the terminal is restored.
func (p *Progress) Stop() {
	p.program.Quit()
	<-p.done
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
