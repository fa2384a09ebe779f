// Package report renders findings for humans (text), machines (json),
// and code-review tooling (sarif).
package report

import (
	"fmt"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

// Reporter turns a sorted findings list into one output document.
type Reporter interface {
	Render(findings []model.Finding) (string, error)
}

// ForFormat maps a --format value to its reporter; unknown values fall
// back to text.
func ForFormat(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	case "sarif":
		return &SARIFReporter{}
	default:
		return &TextReporter{}
	}
}

func severityCounts(findings []model.Finding) map[model.Severity]int {
	counts := map[model.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func summaryLine(findings []model.Finding) string {
	counts := severityCounts(findings)
	return fmt.Sprintf("Summary: %d findings (%d critical, %d high, %d medium, %d low)",
		len(findings),
		counts[model.SeverityCritical],
		counts[model.SeverityHigh],
		counts[model.SeverityMedium],
		counts[model.SeverityLow])
}
