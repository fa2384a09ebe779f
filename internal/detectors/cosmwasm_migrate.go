package detectors

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// unguardedMigrate flags migrate entry points with neither an
// admin/sender check nor contract version validation.
type unguardedMigrate struct{}

func (d *unguardedMigrate) ID() string   { return "CW-010" }
func (d *unguardedMigrate) Name() string { return "unguarded-migrate-entry" }
func (d *unguardedMigrate) Description() string {
	return "Detects migrate handler without admin/sender check or version validation"
}
func (d *unguardedMigrate) Severity() model.Severity     { return model.SeverityMedium }
func (d *unguardedMigrate) Confidence() model.Confidence { return model.ConfidenceMedium }
func (d *unguardedMigrate) Ecosystem() model.Ecosystem   { return model.EcoCosmWasm }

var migrateAuthPatterns = []string{
	"info.sender", "sender", "admin", "owner", "ADMIN", "OWNER",
	"is_admin", "is_owner", "only_admin", "only_owner", "ensure_admin",
}

var migrateVersionPatterns = []string{
	"version", "VERSION", "get_contract_version", "set_contract_version",
	"cw2::", "migrate_version", "assert_contract_version", "ensure_from_older_version",
}

func (d *unguardedMigrate) Detect(ctx *analysis.ScanContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if fn.Name != "migrate" && !strings.HasPrefix(fn.Name, "migrate_") {
			continue
		}
		if fn.IsTest() {
			continue
		}
		// Stub bodies that just return Ok carry no risk surface.
		compact := strings.Join(strings.Fields(fn.Body), "")
		if compact == "" || strings.HasPrefix(compact, "Ok(Response::default())") ||
			strings.HasPrefix(compact, "Ok(Response::new())") {
			continue
		}
		if fn.BodyContainsAny(migrateAuthPatterns...) || fn.BodyContainsAny(migrateVersionPatterns...) {
			continue
		}
		findings = append(findings, model.Finding{
			DetectorID: d.ID(),
			Name:       d.Name(),
			Severity:   d.Severity(),
			Confidence: d.Confidence(),
			Message: fmt.Sprintf("Migrate handler '%s' has no admin check or version validation",
				fn.Name),
			File:           ctx.FilePath,
			Line:           fn.Line,
			Column:         fn.Column,
			Snippet:        ctx.Unit.SnippetAt(fn.Line),
			Recommendation: "Validate the migration with cw2::ensure_from_older_version or restrict it to the contract admin",
			Ecosystem:      model.EcoCosmWasm,
		})
	}
	return findings
}
