package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/model"
	"github.com/dehvCurtis/RustDefend/internal/rustsrc"
)

// makeContext parses src and builds a scan context for one ecosystem.
func makeContext(t *testing.T, src string, eco model.Ecosystem) *analysis.ScanContext {
	t.Helper()
	f, err := rustsrc.ParseFile("src/lib.rs", src)
	require.NoError(t, err)
	return analysis.NewScanContext(f, eco, analysis.BuildCallGraph(f), nil)
}

// parseAt is makeContext with an explicit file path, for detectors
// that branch on path fragments.
func parseAt(t *testing.T, path, src string) *analysis.ScanContext {
	t.Helper()
	f, err := rustsrc.ParseFile(path, src)
	require.NoError(t, err)
	return analysis.NewScanContext(f, model.EcoSolana, analysis.BuildCallGraph(f), nil)
}

func detectorIDs(ds []Detector) []string {
	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.ID())
	}
	return ids
}

func TestRegistryBuiltinSet(t *testing.T) {
	r := NewRegistry()
	all := r.GetDetectors(model.AllEcosystems(), nil, nil)
	assert.ElementsMatch(t,
		[]string{"SOL-001", "SOL-002", "CW-003", "CW-010", "NEAR-006", "INK-003", "DEP-001", "DEP-002"},
		detectorIDs(all))
}

func TestRegistryEcosystemFilter(t *testing.T) {
	r := NewRegistry()
	solana := r.GetDetectors([]model.Ecosystem{model.EcoSolana}, nil, nil)
	ids := detectorIDs(solana)
	assert.Contains(t, ids, "SOL-001")
	assert.Contains(t, ids, "SOL-002")
	assert.Contains(t, ids, "DEP-001", "wildcard detectors match every ecosystem")
	assert.NotContains(t, ids, "CW-003")
	assert.NotContains(t, ids, "NEAR-006")
}

func TestRegistrySeverityFilter(t *testing.T) {
	r := NewRegistry()
	critical := r.GetDetectors([]model.Ecosystem{model.EcoSolana}, []model.Severity{model.SeverityCritical}, nil)
	assert.Equal(t, []string{"SOL-001"}, detectorIDs(critical))
}

func TestRegistryIDFilterIntersection(t *testing.T) {
	r := NewRegistry()
	// ID selected but ecosystem mismatched: intersection is empty.
	out := r.GetDetectors([]model.Ecosystem{model.EcoNear}, nil, []string{"SOL-001"})
	assert.Empty(t, out)

	out = r.GetDetectors([]model.Ecosystem{model.EcoSolana}, nil, []string{"SOL-001", "DEP-002"})
	assert.ElementsMatch(t, []string{"SOL-001", "DEP-002"}, detectorIDs(out))
}

func TestRegistryManifestDetectors(t *testing.T) {
	r := NewRegistry()
	mds := r.ManifestDetectors()
	require.Len(t, mds, 2)
	ids := []string{mds[0].ID(), mds[1].ID()}
	assert.ElementsMatch(t, []string{"DEP-001", "DEP-002"}, ids)
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	all := r.List(nil)
	assert.Len(t, all, 8)

	ink := r.List([]model.Ecosystem{model.EcoInk})
	var ids []string
	for _, info := range ink {
		ids = append(ids, info.ID)
	}
	assert.Contains(t, ids, "INK-003")
	assert.NotContains(t, ids, "SOL-001")
}
