package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

func TestIsSuppressedBlanket(t *testing.T) {
	f := parse(t, `fn risky() { // rustdefend-ignore
    mutate();
}
`)
	ctx := NewScanContext(f, model.EcoSolana, BuildCallGraph(f), nil)
	assert.True(t, ctx.IsSuppressed(1, "SOL-001"))
	assert.True(t, ctx.IsSuppressed(1, "CW-003"), "blanket marker covers every detector")
	assert.True(t, ctx.IsSuppressed(2, "SOL-001"), "marker on the line above also applies")
	assert.False(t, ctx.IsSuppressed(3, "SOL-001"))
}

func TestIsSuppressedScoped(t *testing.T) {
	f := parse(t, `// rustdefend-ignore[SOL-001]
fn risky() {
    mutate();
}
`)
	ctx := NewScanContext(f, model.EcoSolana, BuildCallGraph(f), nil)
	assert.True(t, ctx.IsSuppressed(2, "SOL-001"))
	assert.False(t, ctx.IsSuppressed(2, "SOL-002"), "scoped marker covers only the named detector")
}

func TestCallerHasCheckPrefersLocalThenProject(t *testing.T) {
	local := parse(t, `fn helper(account: &AccountInfo) {
    let mut data = account.try_borrow_mut_data();
}
`)
	remote := parse(t, `fn entry(account: &AccountInfo) {
    assert!(account.is_signer);
    helper(account);
}
`)
	project := NewProjectCallGraph()
	project.Merge(BuildCallGraph(local))
	project.Merge(BuildCallGraph(remote))

	withProject := NewScanContext(local, model.EcoSolana, BuildCallGraph(local), project)
	assert.True(t, withProject.CallerHasCheck("helper", CheckSigner))

	withoutProject := NewScanContext(local, model.EcoSolana, BuildCallGraph(local), nil)
	assert.False(t, withoutProject.CallerHasCheck("helper", CheckSigner))
}
