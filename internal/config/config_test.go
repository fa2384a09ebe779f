package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".rustdefend.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
ignore = ["SOL-002", "CW-003"]
ignore_files = ["generated/**", "vendor/**"]
min_severity = "high"
`), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL-002", "CW-003"}, p.Ignore)
	assert.Equal(t, []string{"generated/**", "vendor/**"}, p.IgnoreFiles)
	assert.Equal(t, "high", p.MinSeverity)
	assert.Equal(t, "", p.MinConfidence)
}

func TestLoadFileMissingErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefaultMissingGivesZero(t *testing.T) {
	p := LoadOrDefault(t.TempDir())
	require.NotNil(t, p)
	assert.Empty(t, p.Ignore)
	assert.Empty(t, p.IgnoreFiles)
}

func TestLoadOrDefaultReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rustdefend.toml"), []byte(`
ignore = ["NEAR-006"]
`), 0o644))

	p := LoadOrDefault(dir)
	assert.True(t, p.IgnoresDetector("NEAR-006"))
	assert.False(t, p.IgnoresDetector("SOL-001"))
}

func TestIgnoresFileDoubleStarGlob(t *testing.T) {
	p := &Project{IgnoreFiles: []string{"generated/**"}}
	assert.True(t, p.IgnoresFile("/project/generated/types.rs", "/project"))
	assert.True(t, p.IgnoresFile("/project/sub/generated/types.rs", "/project"))
	assert.False(t, p.IgnoresFile("/project/src/lib.rs", "/project"))
}

func TestIgnoresFileSingleStarGlob(t *testing.T) {
	p := &Project{IgnoreFiles: []string{"*.generated.rs"}}
	assert.True(t, p.IgnoresFile("/project/src/types.generated.rs", "/project"))
	assert.False(t, p.IgnoresFile("/project/src/types.rs", "/project"))
}

func TestIgnoresFileExactMatch(t *testing.T) {
	p := &Project{IgnoreFiles: []string{"src/legacy.rs"}}
	assert.True(t, p.IgnoresFile("/project/src/legacy.rs", "/project"))
	assert.False(t, p.IgnoresFile("/project/src/lib.rs", "/project"))
}
