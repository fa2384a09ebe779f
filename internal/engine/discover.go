package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/config"
	"github.com/dehvCurtis/RustDefend/internal/workspace"
)

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Directory components never worth scanning. Test trees are skipped
// because detectors target production entry points.
var skippedDirs = map[string]bool{
	"target": true,
	"tests":  true,
	"test":   true,
	"fuzz":   true,
}

// discoverFiles collects .rs sources under root, honoring the config's
// ignore_files globs. A direct .rs path scans just that file.
func discoverFiles(root string, cfg *config.Project, scanRoot string) []string {
	if strings.HasSuffix(root, ".rs") {
		if isFile(root) {
			return []string{root}
		}
		return nil
	}

	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".rs") ||
			strings.HasSuffix(name, "_test.rs") || name == "tests.rs" {
			return nil
		}
		if cfg != nil && cfg.IgnoresFile(path, scanRoot) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out
}

// discoverManifests collects Cargo.toml files for the dependency
// detectors, skipping build output. Single-file .rs scans resolve the
// owning crate's manifest instead of walking.
func discoverManifests(root string) []string {
	if strings.HasSuffix(root, "Cargo.toml") && isFile(root) {
		return []string{root}
	}
	if strings.HasSuffix(root, ".rs") {
		crateRoot, ok := workspace.FindCrateRoot(root)
		if !ok {
			return nil
		}
		return []string{filepath.Join(crateRoot, "Cargo.toml")}
	}

	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "target" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "Cargo.toml" {
			out = append(out, path)
		}
		return nil
	})
	return out
}
