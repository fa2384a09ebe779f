package detectors

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// outdatedDeps checks Cargo.toml declarations against known-vulnerable
// version ranges. Runs once per manifest, not per source file.
type outdatedDeps struct{}

func (d *outdatedDeps) ID() string   { return "DEP-001" }
func (d *outdatedDeps) Name() string { return "outdated-dependencies" }
func (d *outdatedDeps) Description() string {
	return "Detects known-vulnerable dependency versions in Cargo.toml"
}
func (d *outdatedDeps) Severity() model.Severity     { return model.SeverityHigh }
func (d *outdatedDeps) Confidence() model.Confidence { return model.ConfidenceHigh }
func (d *outdatedDeps) Ecosystem() model.Ecosystem   { return "" }

func (d *outdatedDeps) Detect(*analysis.ScanContext) []model.Finding { return nil }

type vulnRange struct {
	crate        string
	description  string
	advisory     string
	isVulnerable func(v semver) bool
	ecosystem    model.Ecosystem
}

type semver struct{ major, minor, patch int }

func (v semver) lt(o semver) bool {
	if v.major != o.major {
		return v.major < o.major
	}
	if v.minor != o.minor {
		return v.minor < o.minor
	}
	return v.patch < o.patch
}

func (v semver) inRange(lo, hi semver) bool { return !v.lt(lo) && v.lt(hi) }

func parseSemver(raw string) (semver, bool) {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "^~=")
	parts := strings.SplitN(raw, ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return semver{}, false
	}
	v := semver{major: major}
	if len(parts) > 1 {
		v.minor, _ = strconv.Atoi(strings.TrimRight(parts[1], "*"))
	}
	if len(parts) > 2 {
		// Strip pre-release/build suffixes like "1.4.4-rc.1".
		patch := parts[2]
		if i := strings.IndexAny(patch, "-+"); i >= 0 {
			patch = patch[:i]
		}
		v.patch, _ = strconv.Atoi(patch)
	}
	return v, true
}

var vulnerableRanges = []vulnRange{
	{
		crate:       "cosmwasm-std",
		description: "CWA-2024-002: Uint256::pow/Int256::neg use wrapping math",
		advisory:    "CWA-2024-002 / CVE-2024-58263",
		isVulnerable: func(v semver) bool {
			return v.lt(semver{1, 4, 4}) ||
				v.inRange(semver{1, 5, 0}, semver{1, 5, 4}) ||
				v.inRange(semver{2, 0, 0}, semver{2, 0, 2})
		},
		ecosystem: model.EcoCosmWasm,
	},
	{
		crate:       "cosmwasm-vm",
		description: "CWA-2025-001: VM memory safety issue",
		advisory:    "CWA-2025-001",
		isVulnerable: func(v semver) bool {
			return v.lt(semver{1, 5, 8}) || v.inRange(semver{2, 0, 0}, semver{2, 0, 6})
		},
		ecosystem: model.EcoCosmWasm,
	},
	{
		crate:        "near-sdk",
		description:  "Legacy callback handling issues",
		advisory:     "NEAR SDK < 4.0.0",
		isVulnerable: func(v semver) bool { return v.lt(semver{4, 0, 0}) },
		ecosystem:    model.EcoNear,
	},
	{
		crate:        "ink",
		description:  "Pre-reentrancy-default versions lack safe defaults",
		advisory:     "ink! < 4.0.0",
		isVulnerable: func(v semver) bool { return v.lt(semver{4, 0, 0}) },
		ecosystem:    model.EcoInk,
	},
	{
		crate:        "anchor-lang",
		description:  "Various account validation fixes",
		advisory:     "Anchor < 0.28.0",
		isVulnerable: func(v semver) bool { return v.lt(semver{0, 28, 0}) },
		ecosystem:    model.EcoSolana,
	},
	{
		crate:        "solana-program",
		description:  "Various runtime fixes",
		advisory:     "solana-program < 1.16.0",
		isVulnerable: func(v semver) bool { return v.lt(semver{1, 16, 0}) },
		ecosystem:    model.EcoSolana,
	},
}

func (d *outdatedDeps) DetectManifest(path string) []model.Finding {
	content, sections, ok := readManifestSections(path)
	if !ok {
		return nil
	}

	var findings []model.Finding
	for _, section := range sections {
		for _, vr := range vulnerableRanges {
			version, ok := depVersion(section.deps, vr.crate)
			if !ok {
				continue
			}
			v, ok := parseSemver(version)
			if !ok || !vr.isVulnerable(v) {
				continue
			}
			label := "dependency"
			if section.workspace {
				label = "workspace dependency"
			}
			findings = append(findings, model.Finding{
				DetectorID: d.ID(),
				Name:       d.Name(),
				Severity:   d.Severity(),
				Confidence: d.Confidence(),
				Message: fmt.Sprintf("Vulnerable %s: %s = %q (%s)",
					label, vr.crate, version, vr.description),
				File:           path,
				Line:           findDepLine(content, vr.crate, version),
				Column:         1,
				Snippet:        fmt.Sprintf("%s = %q", vr.crate, version),
				Recommendation: fmt.Sprintf("Update %s to a patched version. Advisory: %s", vr.crate, vr.advisory),
				Ecosystem:      vr.ecosystem,
			})
		}
	}
	return findings
}

type manifestSection struct {
	deps      map[string]any
	workspace bool
	dev       bool
}

// readManifestSections loads a Cargo.toml and returns its dependency
// tables. Unreadable or malformed manifests contribute nothing.
func readManifestSections(path string) (string, []manifestSection, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, false
	}
	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return "", nil, false
	}

	var sections []manifestSection
	if t, ok := doc["dependencies"].(map[string]any); ok {
		sections = append(sections, manifestSection{deps: t})
	}
	if t, ok := doc["dev-dependencies"].(map[string]any); ok {
		sections = append(sections, manifestSection{deps: t, dev: true})
	}
	if ws, ok := doc["workspace"].(map[string]any); ok {
		if t, ok := ws["dependencies"].(map[string]any); ok {
			sections = append(sections, manifestSection{deps: t, workspace: true})
		}
	}
	return string(raw), sections, true
}

// depVersion extracts a checkable version string; git/path deps and
// wildcards can't be checked against advisories.
func depVersion(deps map[string]any, crate string) (string, bool) {
	raw, ok := deps[crate]
	if !ok {
		return "", false
	}
	var version string
	switch v := raw.(type) {
	case string:
		version = v
	case map[string]any:
		if _, git := v["git"]; git {
			return "", false
		}
		if _, local := v["path"]; local {
			return "", false
		}
		version, _ = v["version"].(string)
	default:
		return "", false
	}
	if version == "" || version == "*" {
		return "", false
	}
	return version, true
}

// findDepLine locates a crate's declaration. The same crate may be
// declared in several sections; a non-empty version hint picks the
// occurrence that actually carries the flagged version.
func findDepLine(content, crate, version string) int {
	first := 0
	for i, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), crate) {
			continue
		}
		if version != "" && strings.Contains(line, version) {
			return i + 1
		}
		if first == 0 {
			first = i + 1
		}
	}
	if first == 0 {
		return 1
	}
	return first
}
