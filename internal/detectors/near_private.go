package detectors

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// missingPrivateCallback flags public callback methods missing the
// #[private] attribute, letting anyone invoke them directly.
type missingPrivateCallback struct{}

func (d *missingPrivateCallback) ID() string   { return "NEAR-006" }
func (d *missingPrivateCallback) Name() string { return "missing-private-callback" }
func (d *missingPrivateCallback) Description() string {
	return "Detects public callback methods (on_* / *_callback) without #[private] attribute"
}
func (d *missingPrivateCallback) Severity() model.Severity     { return model.SeverityCritical }
func (d *missingPrivateCallback) Confidence() model.Confidence { return model.ConfidenceHigh }
func (d *missingPrivateCallback) Ecosystem() model.Ecosystem   { return model.EcoNear }

func (d *missingPrivateCallback) Detect(ctx *analysis.ScanContext) []model.Finding {
	// Require NEAR markers to avoid cross-ecosystem false positives.
	src := ctx.Unit.Source
	if !strings.Contains(src, "near_sdk") && !strings.Contains(src, "near_contract_standards") &&
		!strings.Contains(src, "#[near_bindgen]") && !strings.Contains(src, "#[near(") &&
		!strings.Contains(src, "env::predecessor_account_id") &&
		!strings.Contains(src, "env::signer_account_id") &&
		!strings.Contains(src, "Promise::new") {
		return nil
	}

	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if !fn.IsMethod || !fn.Public || fn.IsTest() {
			continue
		}
		isCallback := strings.HasPrefix(fn.Name, "on_") ||
			strings.HasSuffix(fn.Name, "_callback") ||
			strings.HasPrefix(fn.Name, "handle_") ||
			strings.Contains(fn.Name, "callback")
		if !isCallback {
			continue
		}
		if fn.HasAttribute("private") {
			continue
		}
		findings = append(findings, model.Finding{
			DetectorID: d.ID(),
			Name:       d.Name(),
			Severity:   d.Severity(),
			Confidence: d.Confidence(),
			Message: fmt.Sprintf("Callback method '%s' is public without #[private] attribute",
				fn.Name),
			File:           ctx.FilePath,
			Line:           fn.Line,
			Column:         fn.Column,
			Snippet:        ctx.Unit.SnippetAt(fn.Line),
			Recommendation: "Add #[private] attribute so only the contract itself can call this callback",
			Ecosystem:      model.EcoNear,
		})
	}
	return findings
}
