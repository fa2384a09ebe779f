// Package baseline fingerprints findings so known issues can be
// accepted once and filtered from later scans even after edits shift
// line numbers.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

const formatVersion = 1

const snippetPrefixLen = 60

// Fingerprint identifies a finding without its line number.
type Fingerprint struct {
	DetectorID    string `json:"detectorId"`
	RelativeFile  string `json:"relativeFile"`
	ContextName   string `json:"contextName"`
	SnippetPrefix string `json:"snippetPrefix"`
}

// Baseline is the on-disk accepted-findings document.
type Baseline struct {
	Version      int           `json:"version"`
	Fingerprints []Fingerprint `json:"fingerprints"`
}

// FromFinding builds the line-shift-tolerant fingerprint: detector id,
// file path relative to the scan root, the first quoted token of the
// message, and a lowercased snippet prefix.
func FromFinding(f *model.Finding, scanRoot string) Fingerprint {
	relative := f.File
	if rel, err := filepath.Rel(scanRoot, f.File); err == nil && !strings.HasPrefix(rel, "..") {
		relative = rel
	}
	snippet := f.Snippet
	if len(snippet) > snippetPrefixLen {
		snippet = snippet[:snippetPrefixLen]
	}
	return Fingerprint{
		DetectorID:    f.DetectorID,
		RelativeFile:  filepath.ToSlash(relative),
		ContextName:   extractContextName(f.Message),
		SnippetPrefix: strings.ToLower(snippet),
	}
}

// extractContextName pulls the first single-quoted token out of a
// message like "Function 'withdraw' lacks a signer check".
func extractContextName(message string) string {
	start := strings.IndexByte(message, '\'')
	if start < 0 {
		return ""
	}
	rest := message[start+1:]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// Save writes the findings' fingerprints as a new baseline.
func Save(findings []model.Finding, scanRoot, path string) error {
	b := Baseline{Version: formatVersion, Fingerprints: make([]Fingerprint, 0, len(findings))}
	for i := range findings {
		b.Fingerprints = append(b.Fingerprints, FromFinding(&findings[i], scanRoot))
	}
	raw, err := json.MarshalIndent(&b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Load reads a baseline file. A missing, corrupt or version-mismatched
// file is reported as an error; callers choose how to degrade.
func Load(path string) (*Baseline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var b Baseline
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Version != formatVersion {
		return nil, fmt.Errorf("baseline %s has unsupported version %d", path, b.Version)
	}
	return &b, nil
}

// Diff partitions findings into those absent from the baseline and
// those it already covers. Every input lands in exactly one half.
func Diff(findings []model.Finding, b *Baseline, scanRoot string) (fresh, known []model.Finding) {
	accepted := make(map[Fingerprint]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		accepted[fp] = true
	}
	for i := range findings {
		if accepted[FromFinding(&findings[i], scanRoot)] {
			known = append(known, findings[i])
		} else {
			fresh = append(fresh, findings[i])
		}
	}
	return fresh, known
}
