package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

func TestMissingSenderFlagsUncheckedExecute(t *testing.T) {
	ctx := makeContext(t, `
pub fn execute(deps: DepsMut, env: Env, info: MessageInfo, msg: ExecuteMsg) -> Result<Response, ContractError> {
    match msg {
        ExecuteMsg::SetConfig { value } => {
            CONFIG.save(deps.storage, &value)?;
            Ok(Response::new())
        }
    }
}
`, model.EcoCosmWasm)

	findings := (&missingSender{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "CW-003", findings[0].DetectorID)
	assert.Equal(t, model.SeverityCritical, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "'execute'")
}

func TestMissingSenderAcceptsSenderCheck(t *testing.T) {
	ctx := makeContext(t, `
pub fn execute(deps: DepsMut, env: Env, info: MessageInfo, msg: ExecuteMsg) -> Result<Response, ContractError> {
    let owner = OWNER.load(deps.storage)?;
    if info.sender != owner {
        return Err(ContractError::Unauthorized {});
    }
    match msg {
        ExecuteMsg::SetConfig { value } => {
            CONFIG.save(deps.storage, &value)?;
            Ok(Response::new())
        }
    }
}
`, model.EcoCosmWasm)

	assert.Empty(t, (&missingSender{}).Detect(ctx))
}

func TestMissingSenderSkipsQueries(t *testing.T) {
	ctx := makeContext(t, `
pub fn query(deps: Deps, env: Env, msg: QueryMsg) -> StdResult<Binary> {
    let state = STATE.load(deps.storage)?;
    to_binary(&state)
}
`, model.EcoCosmWasm)

	assert.Empty(t, (&missingSender{}).Detect(ctx), "queries neither execute nor mutate")
}

func TestUnguardedMigrateFlagsBareHandler(t *testing.T) {
	ctx := makeContext(t, `
pub fn migrate(deps: DepsMut, env: Env, msg: MigrateMsg) -> Result<Response, ContractError> {
    STATE.save(deps.storage, &State::new(msg.param))?;
    Ok(Response::new().add_attribute("action", "migrated"))
}
`, model.EcoCosmWasm)

	findings := (&unguardedMigrate{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "CW-010", findings[0].DetectorID)
	assert.Equal(t, model.SeverityMedium, findings[0].Severity)
}

func TestUnguardedMigrateAcceptsVersionGuard(t *testing.T) {
	ctx := makeContext(t, `
pub fn migrate(deps: DepsMut, env: Env, msg: MigrateMsg) -> Result<Response, ContractError> {
    cw2::ensure_from_older_version(deps.storage, CONTRACT_NAME, CONTRACT_VERSION)?;
    STATE.save(deps.storage, &State::new(msg.param))?;
    Ok(Response::new())
}
`, model.EcoCosmWasm)

	assert.Empty(t, (&unguardedMigrate{}).Detect(ctx))
}

func TestUnguardedMigrateSkipsStub(t *testing.T) {
	ctx := makeContext(t, `
pub fn migrate(deps: DepsMut, env: Env, msg: MigrateMsg) -> StdResult<Response> {
    Ok(Response::default())
}
`, model.EcoCosmWasm)

	assert.Empty(t, (&unguardedMigrate{}).Detect(ctx), "empty stub carries no risk surface")
}
