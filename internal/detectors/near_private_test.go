package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

func TestMissingPrivateCallbackFlagsPublicCallback(t *testing.T) {
	ctx := makeContext(t, `
use near_sdk::near_bindgen;

#[near_bindgen]
impl Contract {
    pub fn on_transfer_complete(&mut self, amount: u128) {
        self.balance += amount;
    }
}
`, model.EcoNear)

	findings := (&missingPrivateCallback{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "NEAR-006", findings[0].DetectorID)
	assert.Contains(t, findings[0].Message, "'on_transfer_complete'")
}

func TestMissingPrivateCallbackAcceptsPrivateAttr(t *testing.T) {
	ctx := makeContext(t, `
use near_sdk::near_bindgen;

#[near_bindgen]
impl Contract {
    #[private]
    pub fn on_transfer_complete(&mut self, amount: u128) {
        self.balance += amount;
    }
}
`, model.EcoNear)

	assert.Empty(t, (&missingPrivateCallback{}).Detect(ctx))
}

func TestMissingPrivateCallbackSkipsNonCallbacks(t *testing.T) {
	ctx := makeContext(t, `
use near_sdk::near_bindgen;

#[near_bindgen]
impl Contract {
    pub fn deposit(&mut self, amount: u128) {
        self.balance += amount;
    }
}
`, model.EcoNear)

	assert.Empty(t, (&missingPrivateCallback{}).Detect(ctx))
}

func TestMissingPrivateCallbackSkipsPrivateFn(t *testing.T) {
	ctx := makeContext(t, `
use near_sdk::near_bindgen;

impl Contract {
    fn on_internal_update(&mut self) {
        self.version += 1;
    }
}
`, model.EcoNear)

	assert.Empty(t, (&missingPrivateCallback{}).Detect(ctx), "non-pub methods are not externally callable")
}

func TestMissingPrivateCallbackRequiresNearMarkers(t *testing.T) {
	ctx := makeContext(t, `
impl Contract {
    pub fn on_transfer_complete(&mut self, amount: u128) {
        self.balance += amount;
    }
}
`, model.EcoNear)

	assert.Empty(t, (&missingPrivateCallback{}).Detect(ctx))
}
