// Package tui is an interactive findings browser: arrow keys move the
// cursor, the pane below shows the selected finding's detail.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

type modelT struct {
	findings []model.Finding
	cursor   int
}

func initialModel(findings []model.Finding) modelT { return modelT{findings: findings} }

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.findings)-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Findings (%d)  [up/down to move, q to quit]\n\n", len(m.findings))
	if len(m.findings) == 0 {
		b.WriteString("No findings detected.\n")
		return b.String()
	}
	for i, f := range m.findings {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%s [%s] %s:%d %s\n",
			marker, f.DetectorID, f.Severity, f.File, f.Line, f.Name)
	}

	selected := m.findings[m.cursor]
	b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "%s\n", selected.Message)
	if selected.Snippet != "" {
		fmt.Fprintf(&b, "| %s\n", strings.TrimSpace(selected.Snippet))
	}
	fmt.Fprintf(&b, "Recommendation: %s\n", selected.Recommendation)
	fmt.Fprintf(&b, "Severity: %s | Confidence: %s | Ecosystem: %s\n",
		selected.Severity, selected.Confidence, selected.Ecosystem)
	return b.String()
}

// Run blocks until the user quits.
func Run(findings []model.Finding) error {
	p := tea.NewProgram(initialModel(findings))
	_, err := p.Run()
	return err
}
