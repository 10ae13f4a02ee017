package chain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsidyledger/internal/model"
)

func TestIDHash(t *testing.T) {
	a := IDHash("green-h2-pilot")
	b := IDHash("green-h2-pilot")
	c := IDHash("other-program")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMilestoneHash(t *testing.T) {
	a := MilestoneHash("green-h2-pilot", "q1-500mwh")
	b := MilestoneHash("green-h2-pilot", "q1-500mwh")
	assert.Equal(t, a, b)

	// program and key both matter; concatenation must not be ambiguous
	assert.NotEqual(t, MilestoneHash("green-h2-pilot", "q1"), MilestoneHash("green-h2", "pilot:q1"))
	assert.NotEqual(t, a, MilestoneHash("green-h2-pilot", "q2-500mwh"))
}

func TestNewIntent(t *testing.T) {
	intent, err := NewIntent(model.IntentReleasePayment, ReleaseIntentRef(7), ReleasePaymentPayload{
		DisbursementID: 7,
		ProjectID:      "proj-1",
		ProgramID:      "green-h2-pilot",
		MilestoneKey:   "q1-500mwh",
		Amount:         25000,
	})
	require.NoError(t, err)

	assert.Equal(t, model.IntentReleasePayment, intent.Kind)
	assert.Equal(t, "7", intent.RefID)
	assert.Equal(t, model.IntentStatusPending, intent.Status)

	var payload ReleasePaymentPayload
	require.NoError(t, json.Unmarshal(intent.Payload, &payload))
	assert.Equal(t, int64(7), payload.DisbursementID)
	assert.Equal(t, int64(25000), payload.Amount)
}

func TestReleaseIntentRef(t *testing.T) {
	// cancellation on bank approval looks intents up by this ref, so it
	// must identify the disbursement row, not the project
	assert.Equal(t, "7", ReleaseIntentRef(7))
	assert.NotEqual(t, ReleaseIntentRef(7), ReleaseIntentRef(70))
}
