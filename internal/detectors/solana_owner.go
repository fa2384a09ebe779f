package detectors

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// missingOwner flags deserialization of account data without an
// account-owner check on the function or any of its callers.
type missingOwner struct{}

func (d *missingOwner) ID() string   { return "SOL-002" }
func (d *missingOwner) Name() string { return "missing-owner-check" }
func (d *missingOwner) Description() string {
	return "Detects deserialization of account data without verifying account owner"
}
func (d *missingOwner) Severity() model.Severity     { return model.SeverityHigh }
func (d *missingOwner) Confidence() model.Confidence { return model.ConfidenceMedium }
func (d *missingOwner) Ecosystem() model.Ecosystem   { return model.EcoSolana }

func (d *missingOwner) Detect(ctx *analysis.ScanContext) []model.Finding {
	// Require Solana markers to avoid cross-ecosystem false positives.
	src := ctx.Unit.Source
	if !strings.Contains(src, "solana_program") && !strings.Contains(src, "anchor_lang") &&
		!strings.Contains(src, "AccountInfo") && !strings.Contains(src, "ProgramResult") &&
		!strings.Contains(src, "solana_sdk") {
		return nil
	}

	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if fn.IsTest() {
			continue
		}
		// Anchor's Account<'info, T> validates the owner at the type level.
		anchorOnly := false
		for _, p := range fn.Params {
			if strings.Contains(p.Type, "Account<") && !strings.Contains(p.Type, "AccountInfo") {
				anchorOnly = true
			}
			if strings.Contains(p.Type, "AccountInfo") {
				anchorOnly = false
				break
			}
		}
		if anchorOnly {
			continue
		}
		if !fn.BodyContainsAny("deserialize", "try_from_slice", "unpack", "try_deserialize", "try_borrow_data") {
			continue
		}
		if fn.BodyContainsAny("owner") && fn.BodyContainsAny("program_id", "key()") {
			continue
		}
		if ctx.CallerHasCheck(fn.Name, analysis.CheckOwner) {
			continue
		}
		findings = append(findings, model.Finding{
			DetectorID: d.ID(),
			Name:       d.Name(),
			Severity:   d.Severity(),
			Confidence: d.Confidence(),
			Message: fmt.Sprintf("Function '%s' deserializes account data without verifying account owner",
				fn.Name),
			File:           ctx.FilePath,
			Line:           fn.Line,
			Column:         fn.Column,
			Snippet:        ctx.Unit.SnippetAt(fn.Line),
			Recommendation: "Add `if account.owner != program_id { return Err(...) }` before deserialization, or use Anchor's `Account<'info, T>`",
			Ecosystem:      model.EcoSolana,
		})
	}
	return findings
}
