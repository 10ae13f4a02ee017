package mq

import "time"

type ProjectAppliedPayload struct {
	ProjectID string    `json:"project_id"`
	ProgramID string    `json:"program_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AppliedAt time.Time `json:"applied_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}

type ProjectStatusChangedPayload struct {
	ProjectID string    `json:"project_id"`
	Status    string    `json:"status"` // approved / suspended / revoked
	ChangedAt time.Time `json:"changed_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}

type MilestoneDefinedPayload struct {
	ProgramID string    `json:"program_id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"`
	Unit      string    `json:"unit"`
	DefinedAt time.Time `json:"defined_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}
