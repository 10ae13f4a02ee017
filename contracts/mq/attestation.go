package mq

import "time"

type AttestationRecordedPayload struct {
	ProjectID    string    `json:"project_id"`
	MilestoneKey string    `json:"milestone_key"`
	Value        int64     `json:"value"`
	DataHash     string    `json:"data_hash"`
	Signer       string    `json:"signer"`
	RecordedAt   time.Time `json:"recorded_at"`
	TraceID      string    `json:"trace_id,omitempty"`
}

type DisbursementReleasedPayload struct {
	ProjectID    string    `json:"project_id"`
	MilestoneKey string    `json:"milestone_key"`
	Amount       int64     `json:"amount"`
	Rail         string    `json:"rail"` // chain / bank / clawback
	ReleasedAt   time.Time `json:"released_at"`
	TraceID      string    `json:"trace_id,omitempty"`
}
