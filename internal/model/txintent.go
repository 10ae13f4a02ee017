package model

import (
	"encoding/json"
	"time"
)

const (
	IntentStatusPending   = "pending"
	IntentStatusConfirmed = "confirmed"
	IntentStatusFailed    = "failed"
	IntentStatusCancelled = "cancelled" // superseded by an off-chain settlement
)

const (
	IntentCreateProgram   = "createProgram"
	IntentApproveProject  = "approveProject"
	IntentDefineMilestone = "defineMilestone"
	IntentAttestMilestone = "attestMilestone"
	IntentReleasePayment  = "releasePayment"
)

// TxIntent is a queued on-chain write. The API records the intent in the
// same transaction as the domain rows; the chain poller submits it and
// finalizes the domain state when the transaction is mined.
type TxIntent struct {
	ID          int64           `json:"id"`
	Kind        string          `json:"kind"`
	RefID       string          `json:"refId"`
	Payload     json.RawMessage `json:"-"`
	Status      string          `json:"status"`
	RetryCount  int             `json:"retryCount"`
	NextRetryAt *time.Time      `json:"-"`
	TxHash      *string         `json:"txHash,omitempty"`
	LastError   *string         `json:"lastError,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"-"`
}
