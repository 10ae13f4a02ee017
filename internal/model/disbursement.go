package model

import "time"

const (
	DisbursementStatusQueued   = "queued"
	DisbursementStatusReleased = "released"

	RailChain    = "chain"
	RailBank     = "bank"
	RailClawback = "clawback"
)

// Disbursement records funds queued or released against a milestone.
type Disbursement struct {
	ID           int64     `json:"id"`
	ProjectID    string    `json:"projectId"`
	MilestoneKey string    `json:"milestoneKey"`
	Amount       int64     `json:"amount"`
	Rail         string    `json:"rail"`
	BankRef      *string   `json:"bankRef,omitempty"`
	Status       string    `json:"status"`
	TxHash       *string   `json:"txHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
