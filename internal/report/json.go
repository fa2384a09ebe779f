package report

import (
	"encoding/json"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

// JSONReporter emits a stable machine-readable document. Findings
// arrive pre-sorted, so output is deterministic.
type JSONReporter struct{}

type jsonReport struct {
	Version  string          `json:"version"`
	Findings []model.Finding `json:"findings"`
	Summary  jsonSummary     `json:"summary"`
}

type jsonSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

func (r *JSONReporter) Render(findings []model.Finding) (string, error) {
	if findings == nil {
		findings = []model.Finding{}
	}
	counts := severityCounts(findings)
	doc := jsonReport{
		Version:  "1",
		Findings: findings,
		Summary: jsonSummary{
			Total:    len(findings),
			Critical: counts[model.SeverityCritical],
			High:     counts[model.SeverityHigh],
			Medium:   counts[model.SeverityMedium],
			Low:      counts[model.SeverityLow],
		},
	}
	raw, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
