// Package workspace resolves which ecosystems a Rust source tree
// targets by reading Cargo.toml dependency tables, including Cargo
// workspace layouts where each member crate targets its own chain.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

// Dependency crate names that mark an ecosystem.
var ecosystemDeps = map[string]model.Ecosystem{
	"anchor-lang":             model.EcoSolana,
	"anchor-spl":              model.EcoSolana,
	"solana-program":          model.EcoSolana,
	"solana-sdk":              model.EcoSolana,
	"cosmwasm-std":            model.EcoCosmWasm,
	"cosmwasm-storage":        model.EcoCosmWasm,
	"cw-storage-plus":         model.EcoCosmWasm,
	"sylvia":                  model.EcoCosmWasm,
	"near-sdk":                model.EcoNear,
	"near-contract-standards": model.EcoNear,
	"ink":                     model.EcoInk,
	"ink_lang":                model.EcoInk,
	"ink_storage":             model.EcoInk,
	"ink_env":                 model.EcoInk,
}

type manifest struct {
	Package   map[string]any `toml:"package"`
	Deps      map[string]any `toml:"dependencies"`
	DevDeps   map[string]any `toml:"dev-dependencies"`
	Workspace struct {
		Members []string       `toml:"members"`
		Deps    map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

func loadManifest(path string) (*manifest, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var m manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// ecosystems returns the manifest's ecosystems in canonical order so
// scan results do not depend on map iteration.
func (m *manifest) ecosystems() []model.Ecosystem {
	seen := map[model.Ecosystem]bool{}
	for _, deps := range []map[string]any{m.Deps, m.DevDeps, m.Workspace.Deps} {
		for name := range deps {
			if eco, ok := ecosystemDeps[name]; ok {
				seen[eco] = true
			}
		}
	}
	var out []model.Ecosystem
	for _, eco := range model.AllEcosystems() {
		if seen[eco] {
			out = append(out, eco)
		}
	}
	return out
}

// DetectEcosystems finds the nearest Cargo.toml at or above path and
// reports which ecosystems its dependencies target. No manifest or an
// unreadable one yields nil.
func DetectEcosystems(path string) []model.Ecosystem {
	manifestPath, ok := findManifest(path)
	if !ok {
		return nil
	}
	return EcosystemsFromManifest(manifestPath)
}

// EcosystemsFromManifest reads one specific Cargo.toml.
func EcosystemsFromManifest(manifestPath string) []model.Ecosystem {
	m, ok := loadManifest(manifestPath)
	if !ok {
		return nil
	}
	return m.ecosystems()
}

// Map associates each crate root directory with its ecosystems.
type Map struct {
	crates map[string][]model.Ecosystem
}

// Build reads the root Cargo.toml and, for workspaces, each member's
// manifest. Virtual workspaces get one entry per member; single crates
// get one entry for the root.
func Build(root string) *Map {
	wm := &Map{crates: map[string][]model.Ecosystem{}}

	manifestPath, ok := findManifest(root)
	if !ok {
		return wm
	}
	m, ok := loadManifest(manifestPath)
	if !ok {
		return wm
	}
	wsRoot := filepath.Dir(manifestPath)

	for _, member := range m.Workspace.Members {
		for _, dir := range expandMember(wsRoot, member) {
			memberManifest := filepath.Join(dir, "Cargo.toml")
			if _, err := os.Stat(memberManifest); err != nil {
				continue
			}
			wm.crates[normalize(dir)] = EcosystemsFromManifest(memberManifest)
		}
	}

	// A root [package] can coexist with [workspace]; a manifest with
	// neither members nor package still counts as the single crate.
	if m.Package != nil || len(wm.crates) == 0 {
		wm.crates[normalize(wsRoot)] = m.ecosystems()
	}
	return wm
}

// ForFile resolves a source file to its crate's ecosystems, falling
// back when the crate is unknown or declared no chain dependency.
func (wm *Map) ForFile(file string, fallback []model.Ecosystem) []model.Ecosystem {
	if root, ok := FindCrateRoot(file); ok {
		if ecos := wm.crates[root]; len(ecos) > 0 {
			return ecos
		}
	}
	return fallback
}

// FindCrateRoot walks up from a file to the nearest directory holding
// a Cargo.toml.
func FindCrateRoot(file string) (string, bool) {
	dir := file
	if info, err := os.Stat(file); err != nil || !info.IsDir() {
		dir = filepath.Dir(file)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return normalize(dir), true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func findManifest(path string) (string, bool) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	for {
		candidate := filepath.Join(dir, "Cargo.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// expandMember handles plain member paths and trailing-star globs like
// "programs/*"; other glob shapes are ignored.
func expandMember(wsRoot, pattern string) []string {
	if !strings.ContainsAny(pattern, "*?") {
		dir := filepath.Join(wsRoot, pattern)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return []string{dir}
		}
		return nil
	}
	if !strings.HasSuffix(pattern, "*") || strings.Count(pattern, "*") != 1 {
		return nil
	}
	base := filepath.Join(wsRoot, strings.TrimSuffix(strings.TrimSuffix(pattern, "*"), "/"))
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(base, e.Name()))
		}
	}
	return dirs
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}
