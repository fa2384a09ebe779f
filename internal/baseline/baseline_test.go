package baseline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

func finding(detectorID, file string, line int, message string) model.Finding {
	return model.Finding{
		DetectorID: detectorID,
		Name:       "test",
		Severity:   model.SeverityHigh,
		Confidence: model.ConfidenceHigh,
		Message:    message,
		File:       file,
		Line:       line,
		Snippet:    "let x = a + b;",
	}
}

func TestFingerprintStableAcrossLineShifts(t *testing.T) {
	f1 := finding("SOL-001", "/project/src/lib.rs", 10, "Function 'withdraw' missing check")
	f2 := finding("SOL-001", "/project/src/lib.rs", 42, "Function 'withdraw' missing check")

	assert.Equal(t, FromFinding(&f1, "/project"), FromFinding(&f2, "/project"),
		"line number must not participate in the fingerprint")
}

func TestFingerprintFields(t *testing.T) {
	f := finding("SOL-001", "/project/src/lib.rs", 10, "Function 'withdraw' missing check")
	fp := FromFinding(&f, "/project")
	assert.Equal(t, "SOL-001", fp.DetectorID)
	assert.Equal(t, "src/lib.rs", fp.RelativeFile)
	assert.Equal(t, "withdraw", fp.ContextName)
	assert.Equal(t, "let x = a + b;", fp.SnippetPrefix)
}

func TestFingerprintSnippetPrefixTruncatesAndLowercases(t *testing.T) {
	f := finding("SOL-001", "/p/a.rs", 1, "msg")
	f.Snippet = "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJ"
	fp := FromFinding(&f, "/p")
	assert.Len(t, fp.SnippetPrefix, 60)
	assert.Equal(t, "abcdefghij", fp.SnippetPrefix[:10])
}

func TestFingerprintNoQuotedToken(t *testing.T) {
	f := finding("DEP-001", "/p/Cargo.toml", 1, "Vulnerable dependency without quotes")
	fp := FromFinding(&f, "/p")
	assert.Equal(t, "", fp.ContextName)
}

func TestFingerprintFileOutsideRoot(t *testing.T) {
	f := finding("SOL-001", "/elsewhere/lib.rs", 1, "msg")
	fp := FromFinding(&f, "/project")
	assert.Equal(t, "/elsewhere/lib.rs", fp.RelativeFile,
		"paths outside the scan root stay absolute")
}

func TestDiffPartitionsCompletely(t *testing.T) {
	known := finding("SOL-001", "/p/src/lib.rs", 10, "Function 'withdraw' missing check")
	novel := finding("SOL-002", "/p/src/lib.rs", 20, "Function 'load' missing owner check")

	b := &Baseline{Version: 1, Fingerprints: []Fingerprint{FromFinding(&known, "/p")}}
	fresh, suppressed := Diff([]model.Finding{known, novel}, b, "/p")

	require.Len(t, fresh, 1)
	require.Len(t, suppressed, 1)
	assert.Equal(t, "SOL-002", fresh[0].DetectorID)
	assert.Equal(t, "SOL-001", suppressed[0].DetectorID)
}

func TestDiffEmptyBaselineAllFresh(t *testing.T) {
	f := finding("SOL-001", "/p/src/lib.rs", 10, "Function 'a' missing check")
	fresh, suppressed := Diff([]model.Finding{f}, &Baseline{Version: 1}, "/p")
	assert.Len(t, fresh, 1)
	assert.Empty(t, suppressed)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	f := finding("SOL-001", "/p/src/lib.rs", 10, "Function 'withdraw' missing check")
	require.NoError(t, Save([]model.Finding{f}, "/p", path))

	b, err := Load(path)
	require.NoError(t, err)
	require.Len(t, b.Fingerprints, 1)
	assert.Equal(t, FromFinding(&f, "/p"), b.Fingerprints[0])
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err, "callers decide how to degrade a broken baseline")
}
