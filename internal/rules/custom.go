package rules

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/detectors"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// CustomDetector wraps a CustomRule so the registry can treat it like
// a built-in. Severity, confidence and ecosystem are resolved once at
// construction; unknown values fall back to medium / all ecosystems.
type CustomDetector struct {
	rule       CustomRule
	severity   model.Severity
	confidence model.Confidence
	ecosystem  model.Ecosystem
}

var _ detectors.Detector = (*CustomDetector)(nil)

func NewCustomDetector(rule CustomRule) *CustomDetector {
	d := &CustomDetector{
		rule:       rule,
		severity:   model.SeverityMedium,
		confidence: model.ConfidenceMedium,
	}
	if s, ok := model.ParseSeverity(rule.Severity); ok {
		d.severity = s
	}
	if c, ok := model.ParseConfidence(rule.Confidence); ok {
		d.confidence = c
	}
	if rule.Ecosystem != nil {
		if e, ok := model.ParseEcosystem(*rule.Ecosystem); ok {
			d.ecosystem = e
		}
	}
	return d
}

// Detectors converts loaded rules in file order.
func Detectors(rules []CustomRule) []detectors.Detector {
	out := make([]detectors.Detector, 0, len(rules))
	for _, r := range rules {
		out = append(out, NewCustomDetector(r))
	}
	return out
}

func (d *CustomDetector) ID() string                   { return d.rule.ID }
func (d *CustomDetector) Name() string                 { return d.rule.Name }
func (d *CustomDetector) Description() string          { return d.rule.Message }
func (d *CustomDetector) Severity() model.Severity     { return d.severity }
func (d *CustomDetector) Confidence() model.Confidence { return d.confidence }
func (d *CustomDetector) Ecosystem() model.Ecosystem   { return d.ecosystem }

func (d *CustomDetector) Detect(ctx *analysis.ScanContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if d.rule.excludesTests() && fn.IsTest() {
			continue
		}
		line, ok := d.matchLine(ctx, fn.Line, fn.EndLine)
		if !ok {
			continue
		}
		findings = append(findings, model.Finding{
			DetectorID:     d.rule.ID,
			Name:           d.rule.Name,
			Severity:       d.severity,
			Confidence:     d.confidence,
			Message:        fmt.Sprintf("%s (in function '%s')", d.rule.Message, fn.Name),
			File:           ctx.FilePath,
			Line:           line,
			Column:         1,
			Snippet:        ctx.Unit.SnippetAt(line),
			Recommendation: d.rule.Recommendation,
			Ecosystem:      ctx.Ecosystem,
		})
	}
	return findings
}

// matchLine scans the raw source between the function header and its
// closing brace so the reported line points at the pattern itself.
func (d *CustomDetector) matchLine(ctx *analysis.ScanContext, start, end int) (int, bool) {
	lines := ctx.Unit.Lines
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	for n := start; n <= end; n++ {
		if strings.Contains(lines[n-1], d.rule.Pattern) {
			return n, true
		}
	}
	return 0, false
}
