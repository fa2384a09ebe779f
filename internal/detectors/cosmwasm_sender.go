package detectors

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// missingSender flags execute handlers that mutate storage without
// ever looking at info.sender.
type missingSender struct{}

func (d *missingSender) ID() string   { return "CW-003" }
func (d *missingSender) Name() string { return "missing-sender-check" }
func (d *missingSender) Description() string {
	return "Detects execute handlers that mutate storage without checking info.sender"
}
func (d *missingSender) Severity() model.Severity     { return model.SeverityCritical }
func (d *missingSender) Confidence() model.Confidence { return model.ConfidenceMedium }
func (d *missingSender) Ecosystem() model.Ecosystem   { return model.EcoCosmWasm }

func (d *missingSender) Detect(ctx *analysis.ScanContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if !strings.Contains(fn.Name, "execute") || fn.IsTest() {
			continue
		}
		if !strings.Contains(fn.Body, "ExecuteMsg") {
			continue
		}
		if !fn.BodyContainsAny(".save(", ".update(", ".remove(") {
			continue
		}
		if strings.Contains(fn.Body, "sender") {
			continue
		}
		findings = append(findings, model.Finding{
			DetectorID: d.ID(),
			Name:       d.Name(),
			Severity:   d.Severity(),
			Confidence: d.Confidence(),
			Message: fmt.Sprintf("Execute handler '%s' mutates storage without checking info.sender",
				fn.Name),
			File:           ctx.FilePath,
			Line:           fn.Line,
			Column:         fn.Column,
			Snippet:        ctx.Unit.SnippetAt(fn.Line),
			Recommendation: "Add `if info.sender != authorized_addr { return Err(...) }` before storage mutations",
			Ecosystem:      model.EcoCosmWasm,
		})
	}
	return findings
}
