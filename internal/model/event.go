package model

import "time"

const (
	EventProgramCreated       = "program.created"
	EventProjectApplied       = "project.applied"
	EventProjectApproved      = "project.approved"
	EventProjectSuspended     = "project.suspended"
	EventProjectRevoked       = "project.revoked"
	EventMilestoneDefined     = "milestone.defined"
	EventAttestationSubmitted = "attestation.submitted"
	EventAttestationConfirmed = "attestation.confirmed"
	EventDisbursementQueued   = "disbursement.queued"
	EventDisbursementReleased = "disbursement.released"
	EventBankApproved         = "disbursement.bank_approved"
	EventClawbackRecorded     = "clawback.recorded"
	EventChainTxFailed        = "chain.tx_failed"
)

// Event is an append-only audit log entry. Program-level events carry a
// ProgramID and no ProjectID; the timeline reader joins both.
type Event struct {
	ID        int64          `json:"-"`
	ProjectID *string        `json:"projectId,omitempty"`
	ProgramID *string        `json:"programId,omitempty"`
	TS        time.Time      `json:"ts"`
	Type      string         `json:"type"`
	Label     string         `json:"label"`
	Details   map[string]any `json:"details,omitempty"`
}
