package chain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"subsidyledger/internal/model"
)

// Intent payloads carry everything the poller needs to submit the
// transaction without re-reading domain rows.

type CreateProgramPayload struct {
	ProgramID  string `json:"program_id"`
	RatePerKwh int64  `json:"rate_per_kwh"`
}

type ApproveProjectPayload struct {
	ProjectID string `json:"project_id"`
}

type DefineMilestonePayload struct {
	ProgramID string `json:"program_id"`
	Key       string `json:"key"`
	Amount    int64  `json:"amount"`
}

type AttestMilestonePayload struct {
	AttestationID int64  `json:"attestation_id"`
	ProjectID     string `json:"project_id"`
	ProgramID     string `json:"program_id"`
	MilestoneKey  string `json:"milestone_key"`
	Value         int64  `json:"value"`
	DataHash      string `json:"data_hash"`
	Deadline      int64  `json:"deadline"`
	Nonce         int64  `json:"nonce"`
	Signature     string `json:"signature"`
}

type ReleasePaymentPayload struct {
	DisbursementID int64  `json:"disbursement_id"`
	ProjectID      string `json:"project_id"`
	ProgramID      string `json:"program_id"`
	MilestoneKey   string `json:"milestone_key"`
	Amount         int64  `json:"amount"`
}

// ReleaseIntentRef keys a releasePayment intent to its disbursement row.
// Bank approval cancels the intent through the same ref, so the key must be
// disbursement-scoped, not project-scoped.
func ReleaseIntentRef(disbursementID int64) string {
	return strconv.FormatInt(disbursementID, 10)
}

// NewIntent builds a pending TxIntent with a JSON payload.
func NewIntent(kind, refID string, payload any) (*model.TxIntent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent payload: %w", err)
	}
	return &model.TxIntent{
		Kind:    kind,
		RefID:   refID,
		Payload: raw,
		Status:  model.IntentStatusPending,
	}, nil
}
