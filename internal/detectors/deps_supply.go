package detectors

import (
	"fmt"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// supplyChain audits Cargo.toml for dependency hygiene issues:
// wildcard versions, unpinned git deps, and crates from published
// typosquatting campaigns.
type supplyChain struct{}

func (d *supplyChain) ID() string   { return "DEP-002" }
func (d *supplyChain) Name() string { return "supply-chain-risk" }
func (d *supplyChain) Description() string {
	return "Detects wildcard versions, unpinned git dependencies, and known-malicious crates"
}
func (d *supplyChain) Severity() model.Severity     { return model.SeverityMedium }
func (d *supplyChain) Confidence() model.Confidence { return model.ConfidenceHigh }
func (d *supplyChain) Ecosystem() model.Ecosystem   { return "" }

func (d *supplyChain) Detect(*analysis.ScanContext) []model.Finding { return nil }

// Crates removed from crates.io after malicious-code reports.
var knownMaliciousCrates = map[string]string{
	"rustdecimal":    "typosquat of rust_decimal, exfiltrated GitLab CI credentials",
	"faster_log":     "typosquat of fast_log, stole source files and secrets",
	"async_println":  "typosquat campaign companion of faster_log",
	"lazystatic":     "typosquat of lazy_static",
	"serd":           "typosquat of serde",
	"envlogger":      "typosquat of env_logger",
	"postgress":      "typosquat of postgres",
	"if-cfg":         "typosquat of cfg-if",
	"xrvrv":          "malicious payload dropper",
	"serde_derive_2": "typosquat of serde_derive",
}

func (d *supplyChain) DetectManifest(path string) []model.Finding {
	content, sections, ok := readManifestSections(path)
	if !ok {
		return nil
	}

	var findings []model.Finding
	emit := func(severity model.Severity, crate, message, recommendation string) {
		findings = append(findings, model.Finding{
			DetectorID:     d.ID(),
			Name:           d.Name(),
			Severity:       severity,
			Confidence:     d.Confidence(),
			Message:        message,
			File:           path,
			Line:           findDepLine(content, crate, ""),
			Column:         1,
			Snippet:        crate,
			Recommendation: recommendation,
		})
	}

	for _, section := range sections {
		for crate, raw := range section.deps {
			if reason, bad := knownMaliciousCrates[crate]; bad {
				emit(model.SeverityCritical, crate,
					fmt.Sprintf("Dependency %q is a known malicious crate (%s)", crate, reason),
					"Remove this dependency immediately and audit the build environment")
				continue
			}
			switch v := raw.(type) {
			case string:
				if v == "*" {
					emit(d.Severity(), crate,
						fmt.Sprintf("Dependency %q uses a wildcard version", crate),
						"Pin to an explicit version so builds stay reproducible")
				}
			case map[string]any:
				if version, _ := v["version"].(string); version == "*" {
					emit(d.Severity(), crate,
						fmt.Sprintf("Dependency %q uses a wildcard version", crate),
						"Pin to an explicit version so builds stay reproducible")
					continue
				}
				if _, git := v["git"]; git {
					_, hasRev := v["rev"]
					_, hasTag := v["tag"]
					if !hasRev && !hasTag {
						emit(d.Severity(), crate,
							fmt.Sprintf("Git dependency %q is not pinned to a rev or tag", crate),
							"Pin git dependencies with rev = \"<commit>\" or tag = \"<version>\"")
					}
				}
			}
		}
	}
	return findings
}
