package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

// TextReporter writes a severity-grouped table plus per-finding detail
// blocks with the snippet and recommendation.
type TextReporter struct{}

var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
}

func (r *TextReporter) Render(findings []model.Finding) (string, error) {
	if len(findings) == 0 {
		return "No findings detected.\n", nil
	}

	var out bytes.Buffer

	table := tablewriter.NewWriter(&out)
	table.SetHeader([]string{"ID", "Severity", "Confidence", "Location", "Finding"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})
	for _, severity := range severityOrder {
		for _, f := range findings {
			if f.Severity != severity {
				continue
			}
			table.Append([]string{
				f.DetectorID,
				strings.ToUpper(string(f.Severity)),
				string(f.Confidence),
				fmt.Sprintf("%s:%d", f.File, f.Line),
				titleCase(f.Name),
			})
		}
	}
	table.Render()

	for _, severity := range severityOrder {
		for _, f := range findings {
			if f.Severity != severity {
				continue
			}
			fmt.Fprintf(&out, "\n[%s] %s (%s)\n", f.DetectorID, titleCase(f.Name), f.Ecosystem)
			fmt.Fprintf(&out, "  %s\n", f.Message)
			fmt.Fprintf(&out, "  --> %s:%d\n", f.File, f.Line)
			if f.Snippet != "" {
				fmt.Fprintf(&out, "  | %s\n", strings.TrimSpace(f.Snippet))
			}
			fmt.Fprintf(&out, "  Recommendation: %s\n", f.Recommendation)
		}
	}

	fmt.Fprintf(&out, "\n%s\n", summaryLine(findings))
	return out.String(), nil
}

// titleCase turns "missing-signer-check" into "Missing Signer Check".
func titleCase(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
