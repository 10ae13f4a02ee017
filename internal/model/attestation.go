package model

import "time"

// Attestation is a signed auditor claim over a milestone's measured value
// and evidence hash. Append-only; at most one per (project, milestone).
type Attestation struct {
	ID           int64     `json:"-"`
	ProjectID    string    `json:"projectId"`
	MilestoneKey string    `json:"milestoneKey"`
	Value        int64     `json:"value"`
	Unit         string    `json:"unit"`
	DataHash     string    `json:"dataHash"`
	Signer       string    `json:"signer"`
	Signature    string    `json:"signature"`
	Nonce        int64     `json:"nonce"`
	Deadline     int64     `json:"deadline"`
	TxHash       *string   `json:"txHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
