package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

func TestMissingSignerFlagsUncheckedMutation(t *testing.T) {
	ctx := makeContext(t, `
fn withdraw(authority: &AccountInfo, amount: u64) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    data[0] = 1;
    Ok(())
}
`, model.EcoSolana)

	findings := (&missingSigner{}).Detect(ctx)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "SOL-001", f.DetectorID)
	assert.Equal(t, model.SeverityCritical, f.Severity)
	assert.Equal(t, 2, f.Line)
	assert.Contains(t, f.Message, "'withdraw'")
	assert.Contains(t, f.Message, "'authority'")
}

func TestMissingSignerAcceptsCheckedFunction(t *testing.T) {
	ctx := makeContext(t, `
fn withdraw(authority: &AccountInfo, amount: u64) -> ProgramResult {
    if !authority.is_signer {
        return Err(ProgramError::MissingRequiredSignature);
    }
    let mut data = authority.try_borrow_mut_data()?;
    Ok(())
}
`, model.EcoSolana)

	assert.Empty(t, (&missingSigner{}).Detect(ctx))
}

func TestMissingSignerCallerCheckPropagates(t *testing.T) {
	ctx := makeContext(t, `
fn entry(authority: &AccountInfo) -> ProgramResult {
    if !authority.is_signer {
        return Err(ProgramError::MissingRequiredSignature);
    }
    withdraw(authority)
}

fn withdraw(authority: &AccountInfo) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    Ok(())
}
`, model.EcoSolana)

	assert.Empty(t, (&missingSigner{}).Detect(ctx),
		"a signer check in the caller covers the callee")
}

func TestMissingSignerFlagsNameContainingTest(t *testing.T) {
	ctx := makeContext(t, `
fn update_latest(authority: &AccountInfo, price: u64) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    data[0] = 1;
    Ok(())
}
`, model.EcoSolana)

	findings := (&missingSigner{}).Detect(ctx)
	require.Len(t, findings, 1,
		"update_latest is production code, not a test function")
	assert.Contains(t, findings[0].Message, "'update_latest'")
}

func TestMissingSignerSkipsReadOnly(t *testing.T) {
	ctx := makeContext(t, `
fn balance_of(authority: &AccountInfo) -> u64 {
    authority.lamports()
}
`, model.EcoSolana)

	assert.Empty(t, (&missingSigner{}).Detect(ctx), "no mutation, no finding")
}

func TestMissingSignerSkipsAnchorTypes(t *testing.T) {
	ctx := makeContext(t, `
fn withdraw(ctx: Context<Withdraw>, user: Signer<'info>) -> Result<()> {
    let mut data = ctx.accounts.vault.try_borrow_mut_data()?;
    Ok(())
}
`, model.EcoSolana)

	assert.Empty(t, (&missingSigner{}).Detect(ctx))
}

func TestMissingSignerSkipsAccountArray(t *testing.T) {
	ctx := makeContext(t, `
fn route(accounts: &[AccountInfo], data: &[u8]) -> ProgramResult {
    invoke(&ix, accounts)
}
`, model.EcoSolana)

	assert.Empty(t, (&missingSigner{}).Detect(ctx))
}

func TestMissingSignerSkipsHelperNames(t *testing.T) {
	ctx := makeContext(t, `
fn do_withdraw(authority: &AccountInfo) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    Ok(())
}

fn process_transfer(authority: &AccountInfo) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    Ok(())
}
`, model.EcoSolana)

	assert.Empty(t, (&missingSigner{}).Detect(ctx))
}

func TestMissingSignerSkipsFrameworkPaths(t *testing.T) {
	f := parseAt(t, "/deps/anchor-lang/src/lib.rs", `
fn withdraw(authority: &AccountInfo) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    Ok(())
}
`)
	assert.Empty(t, (&missingSigner{}).Detect(f))
}
