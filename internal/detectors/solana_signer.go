package detectors

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
	"github.com/dehvCurtis/RustDefend/internal/rustsrc"
)

// missingSigner flags functions that mutate an AccountInfo parameter
// without an is_signer check anywhere on the caller chain.
type missingSigner struct{}

func (d *missingSigner) ID() string   { return "SOL-001" }
func (d *missingSigner) Name() string { return "missing-signer-check" }
func (d *missingSigner) Description() string {
	return "Detects functions accepting AccountInfo without verifying is_signer"
}
func (d *missingSigner) Severity() model.Severity     { return model.SeverityCritical }
func (d *missingSigner) Confidence() model.Confidence { return model.ConfidenceHigh }
func (d *missingSigner) Ecosystem() model.Ecosystem   { return model.EcoSolana }

// Helper prefixes whose signer check conventionally lives at the
// caller; flagging them drowns real findings in noise.
var signerHelperPrefixes = []string{"_", "inner_", "do_", "impl_", "handle_"}

// CPI wrappers forward authority through invoke/invoke_signed.
var cpiWrapperNames = map[string]bool{
	"transfer": true, "burn": true, "mint_to": true, "freeze": true,
	"thaw": true, "approve": true, "revoke": true, "close": true,
	"close_account": true, "set_authority": true, "create_account": true,
}

func (d *missingSigner) Detect(ctx *analysis.ScanContext) []model.Finding {
	// Framework source handles signers architecturally, not per-fn.
	p := filepathToSlash(ctx.FilePath)
	for _, frag := range []string{"/spl-token", "/spl_token", "/anchor-lang/", "/anchor_lang/", "/anchor-spl/", "/anchor_spl/", "/solana-program/", "/solana_program/"} {
		if strings.Contains(p, frag) {
			return nil
		}
	}

	var findings []model.Finding
	for i := range ctx.Unit.Functions {
		fn := &ctx.Unit.Functions[i]
		if f, ok := d.checkFunction(ctx, fn); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func (d *missingSigner) checkFunction(ctx *analysis.ScanContext, fn *rustsrc.Function) (model.Finding, bool) {
	if fn.IsTest() {
		return model.Finding{}, false
	}
	lower := strings.ToLower(fn.Name)
	for _, prefix := range signerHelperPrefixes {
		if strings.HasPrefix(fn.Name, prefix) {
			return model.Finding{}, false
		}
	}
	// SPL-style sub-processors are dispatched from an entry point that
	// already validated the signer.
	if (strings.HasPrefix(lower, "process_") && lower != "process_instruction") ||
		strings.HasPrefix(lower, "execute_") {
		return model.Finding{}, false
	}
	if cpiWrapperNames[lower] ||
		strings.HasPrefix(lower, "transfer_") || strings.HasPrefix(lower, "burn_") ||
		strings.HasPrefix(lower, "mint_") || strings.HasPrefix(lower, "create_") ||
		strings.HasPrefix(lower, "close_") || strings.HasPrefix(lower, "set_") ||
		strings.HasSuffix(lower, "_tokens") || strings.HasSuffix(lower, "_account") {
		return model.Finding{}, false
	}
	for _, frag := range []string{"serialize", "deserialize", "pack", "unpack", "parse", "validate", "verify", "check"} {
		if strings.Contains(lower, frag) {
			return model.Finding{}, false
		}
	}

	var unchecked []string
	anchorTyped := false
	for _, param := range fn.Params {
		// Anchor's Signer<'info> / Context<T> validate at the type level.
		if strings.Contains(param.Type, "Signer") || strings.Contains(param.Type, "Context<") {
			anchorTyped = true
			break
		}
		if !strings.Contains(param.Type, "AccountInfo") {
			continue
		}
		// &[AccountInfo] is the standard instruction account array,
		// not an individual account reference.
		if strings.Contains(param.Type, "[") || strings.Contains(param.Type, "Vec") {
			continue
		}
		if signerExemptParam(param.Name) {
			continue
		}
		unchecked = append(unchecked, param.Name)
	}
	if anchorTyped || len(unchecked) == 0 {
		return model.Finding{}, false
	}

	if fn.BodyContainsAny("is_signer", "has_signer") {
		return model.Finding{}, false
	}
	if !fn.BodyContainsAny("serialize", "try_borrow_mut", "borrow_mut", "invoke") {
		return model.Finding{}, false
	}
	if ctx.CallerHasCheck(fn.Name, analysis.CheckSigner) {
		return model.Finding{}, false
	}

	quoted := make([]string, len(unchecked))
	for i, name := range unchecked {
		quoted[i] = "'" + name + "'"
	}
	return model.Finding{
		DetectorID: d.ID(),
		Name:       d.Name(),
		Severity:   d.Severity(),
		Confidence: d.Confidence(),
		Message: fmt.Sprintf("Function '%s' accepts AccountInfo %s without verifying is_signer",
			fn.Name, strings.Join(quoted, ", ")),
		File:           ctx.FilePath,
		Line:           fn.Line,
		Column:         fn.Column,
		Snippet:        ctx.Unit.SnippetAt(fn.Line),
		Recommendation: "Add `if !account.is_signer { return Err(...) }` check, or use Anchor's `Signer<'info>` type",
		Ecosystem:      model.EcoSolana,
	}, true
}

func signerExemptParam(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range []string{"program", "system", "rent", "clock", "token", "mint", "metadata", "sysvar", "pda", "vault", "pool", "config", "state", "data", "dest", "source"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
