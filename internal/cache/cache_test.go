package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

func sampleFinding() model.Finding {
	return model.Finding{
		DetectorID: "SOL-001",
		Name:       "missing-signer-check",
		Severity:   model.SeverityCritical,
		Confidence: model.ConfidenceHigh,
		Message:    "Function 'withdraw' accepts AccountInfo 'authority' without verifying is_signer",
		File:       "src/lib.rs",
		Line:       10,
		Column:     1,
		Snippet:    "fn withdraw(authority: &AccountInfo) {",
		Ecosystem:  model.EcoSolana,
	}
}

func TestLookupMissOnEmpty(t *testing.T) {
	c := New()
	_, hit := c.Lookup("src/lib.rs", 12345)
	assert.False(t, hit)
}

func TestStoreAndLookupHit(t *testing.T) {
	c := New()
	c.Store("src/lib.rs", 12345, []model.Finding{sampleFinding()})

	findings, hit := c.Lookup("src/lib.rs", 12345)
	require.True(t, hit)
	require.Len(t, findings, 1)
	assert.Equal(t, "SOL-001", findings[0].DetectorID)
}

func TestLookupMissOnMtimeDrift(t *testing.T) {
	c := New()
	c.Store("src/lib.rs", 12345, []model.Finding{sampleFinding()})

	_, hit := c.Lookup("src/lib.rs", 12346)
	assert.False(t, hit, "any mtime drift is a full miss")
}

func TestStoreEmptyFindingsIsStillAHit(t *testing.T) {
	c := New()
	c.Store("src/clean.rs", 99, nil)

	findings, hit := c.Lookup("src/clean.rs", 99)
	assert.True(t, hit, "a clean file must not be rescanned")
	assert.Empty(t, findings)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New()
	c.Store("src/lib.rs", 777, []model.Finding{sampleFinding()})
	require.NoError(t, Save(c, path))

	loaded := Load(path)
	findings, hit := loaded.Lookup("src/lib.rs", 777)
	require.True(t, hit)
	assert.Equal(t, sampleFinding(), findings[0])
}

func TestLoadMissingFile(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NotNil(t, c)
	assert.Empty(t, c.Entries)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := Load(path)
	require.NotNil(t, c)
	assert.Empty(t, c.Entries, "corrupt cache degrades to empty, never errors")
}

func TestLoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "entries": {"a": {"mtimeUnix": 1}}}`), 0o644))

	c := Load(path)
	assert.Empty(t, c.Entries)
}
