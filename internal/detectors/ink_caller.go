package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// inkMissingCallerCheck flags #[ink(message)] methods that write
// contract storage with no caller verification in the method or its
// callers.
type inkMissingCallerCheck struct{}

func (d *inkMissingCallerCheck) ID() string   { return "INK-003" }
func (d *inkMissingCallerCheck) Name() string { return "ink-missing-caller-check" }
func (d *inkMissingCallerCheck) Description() string {
	return "Detects #[ink(message)] functions that write storage without caller check"
}
func (d *inkMissingCallerCheck) Severity() model.Severity     { return model.SeverityCritical }
func (d *inkMissingCallerCheck) Confidence() model.Confidence { return model.ConfidenceMedium }
func (d *inkMissingCallerCheck) Ecosystem() model.Ecosystem   { return model.EcoInk }

var selfFieldWriteRe = regexp.MustCompile(`self\.[A-Za-z_][A-Za-z0-9_]*\s*=[^=]`)

// Standard interface methods and trivially permissionless operations.
var inkPermissionless = map[string]bool{
	"flip": true, "inc": true, "increment": true, "decrement": true,
	"vote": true, "register": true, "new": true,
	"transfer": true, "transfer_from": true, "approve": true,
	"increase_allowance": true, "decrease_allowance": true,
}

func (d *inkMissingCallerCheck) Detect(ctx *analysis.ScanContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if !fn.HasNestedAttribute("ink", "message") || fn.IsTest() {
			continue
		}
		lower := strings.ToLower(fn.Name)
		if inkPermissionless[lower] || strings.HasPrefix(lower, "get_") ||
			strings.HasPrefix(lower, "is_") || strings.HasPrefix(lower, "has_") {
			continue
		}
		if !selfFieldWriteRe.MatchString(fn.Body) {
			continue
		}
		// owner/admin alone can be the field being written; require an
		// access-control shape.
		if fn.BodyContainsAny("caller", "ensure!", "assert!", "only_owner") {
			continue
		}
		if ctx.CallerHasCheck(fn.Name, analysis.CheckInput) {
			continue
		}
		findings = append(findings, model.Finding{
			DetectorID: d.ID(),
			Name:       d.Name(),
			Severity:   d.Severity(),
			Confidence: d.Confidence(),
			Message: fmt.Sprintf("Message '%s' writes contract storage without verifying the caller",
				fn.Name),
			File:           ctx.FilePath,
			Line:           fn.Line,
			Column:         fn.Column,
			Snippet:        ctx.Unit.SnippetAt(fn.Line),
			Recommendation: "Compare self.env().caller() against an authorized account before mutating storage",
			Ecosystem:      model.EcoInk,
		})
	}
	return findings
}
