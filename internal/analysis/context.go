package analysis

import (
	"strings"

	"github.com/dehvCurtis/RustDefend/internal/model"
	"github.com/dehvCurtis/RustDefend/internal/rustsrc"
)

// SuppressionMarker silences findings inline. Blanket form suppresses
// every detector on the line; rustdefend-ignore[SOL-001] suppresses
// one. Honored on the flagged line or the line immediately above.
const SuppressionMarker = "rustdefend-ignore"

// ScanContext bundles everything a detector may observe for one
// (file, ecosystem) pair. Created fresh per dispatch, read-only.
type ScanContext struct {
	FilePath  string
	Unit      *rustsrc.File
	Ecosystem model.Ecosystem
	Graph     CallGraph
	Project   *ProjectCallGraph
}

func NewScanContext(unit *rustsrc.File, eco model.Ecosystem, graph CallGraph, project *ProjectCallGraph) *ScanContext {
	return &ScanContext{
		FilePath:  unit.Path,
		Unit:      unit,
		Ecosystem: eco,
		Graph:     graph,
		Project:   project,
	}
}

// IsSuppressed reports whether a finding at the given 1-based line is
// silenced by an inline marker. Applied centrally after dispatch;
// detectors never implement suppression themselves.
func (c *ScanContext) IsSuppressed(line int, detectorID string) bool {
	if markerMatches(c.Unit.LineText(line), detectorID) {
		return true
	}
	return line > 1 && markerMatches(c.Unit.LineText(line-1), detectorID)
}

func markerMatches(text, detectorID string) bool {
	if !strings.Contains(text, SuppressionMarker) {
		return false
	}
	if !strings.Contains(text, "[") {
		return true // blanket form
	}
	return strings.Contains(text, SuppressionMarker+"["+detectorID+"]")
}

// CallerHasCheck consults the per-file graph first, then the shared
// project graph when whole-project mode is on.
func (c *ScanContext) CallerHasCheck(target string, check CheckKind) bool {
	if CallerHasCheck(c.Graph, target, check) {
		return true
	}
	if c.Project != nil {
		return CallerHasCheck(c.Project.Functions, target, check)
	}
	return false
}
