// Package detectors holds the pluggable rule contract, the registry,
// and the built-in rules. Detect must be pure: it observes the scan
// context but never mutates the source unit or the filesystem.
package detectors

import (
	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

// Detector is one pluggable rule. Severity, confidence and ecosystem
// are fixed properties, never computed per invocation. An empty
// Ecosystem means the detector applies to every ecosystem (custom
// rules without an ecosystem field, manifest detectors).
type Detector interface {
	ID() string
	Name() string
	Description() string
	Severity() model.Severity
	Confidence() model.Confidence
	Ecosystem() model.Ecosystem
	Detect(ctx *analysis.ScanContext) []model.Finding
}

// ManifestDetector runs once per Cargo.toml, orthogonal to the main
// per-source-file pass. Its Detect is a no-op.
type ManifestDetector interface {
	Detector
	DetectManifest(path string) []model.Finding
}

// Info describes a registered detector for listing.
type Info struct {
	ID          string
	Name        string
	Description string
	Severity    model.Severity
	Confidence  model.Confidence
	Ecosystem   model.Ecosystem
}

// Registry is the explicitly owned detector collection, built once at
// scan start and immutable for the scan's duration.
type Registry struct {
	detectors []Detector
}

func NewRegistry() *Registry {
	r := &Registry{}
	r.registerBuiltin()
	return r
}

func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

func (r *Registry) registerBuiltin() {
	r.Register(&missingSigner{})
	r.Register(&missingOwner{})
	r.Register(&missingSender{})
	r.Register(&unguardedMigrate{})
	r.Register(&missingPrivateCallback{})
	r.Register(&inkMissingCallerCheck{})
	r.Register(&outdatedDeps{})
	r.Register(&supplyChain{})
}

func matchesEco(d Detector, ecos []model.Ecosystem) bool {
	if d.Ecosystem() == "" {
		return true
	}
	for _, e := range ecos {
		if d.Ecosystem() == e {
			return true
		}
	}
	return false
}

// GetDetectors returns the pure intersection of the three filters;
// nil severities or ids means "no filter on that axis".
func (r *Registry) GetDetectors(ecos []model.Ecosystem, severities []model.Severity, ids []string) []Detector {
	var out []Detector
	for _, d := range r.detectors {
		if !matchesEco(d, ecos) {
			continue
		}
		if severities != nil && !containsSeverity(severities, d.Severity()) {
			continue
		}
		if ids != nil && !containsID(ids, d.ID()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ManifestDetectors returns the subset that inspects manifests.
func (r *Registry) ManifestDetectors() []ManifestDetector {
	var out []ManifestDetector
	for _, d := range r.detectors {
		if md, ok := d.(ManifestDetector); ok {
			out = append(out, md)
		}
	}
	return out
}

// List describes registered detectors, optionally ecosystem-filtered.
func (r *Registry) List(ecos []model.Ecosystem) []Info {
	var out []Info
	for _, d := range r.detectors {
		if ecos != nil && !matchesEco(d, ecos) {
			continue
		}
		out = append(out, Info{
			ID:          d.ID(),
			Name:        d.Name(),
			Description: d.Description(),
			Severity:    d.Severity(),
			Confidence:  d.Confidence(),
			Ecosystem:   d.Ecosystem(),
		})
	}
	return out
}

func containsSeverity(list []model.Severity, s model.Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
