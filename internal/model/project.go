package model

import "time"

const (
	ProjectStatusPending   = "pending"
	ProjectStatusApproved  = "approved"
	ProjectStatusSuspended = "suspended"
	ProjectStatusRevoked   = "revoked"
)

// Project is a producer application against a program.
type Project struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"program"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	// ProgramName is joined in for explorer listings, not stored.
	ProgramName string `json:"programName,omitempty"`
}

// CanTransition 校验项目状态机的合法迁移
func (p *Project) CanTransition(to string) bool {
	switch p.Status {
	case ProjectStatusPending:
		return to == ProjectStatusApproved || to == ProjectStatusRevoked
	case ProjectStatusApproved:
		return to == ProjectStatusSuspended || to == ProjectStatusRevoked
	case ProjectStatusSuspended:
		return to == ProjectStatusApproved || to == ProjectStatusRevoked
	case ProjectStatusRevoked:
		return false
	}
	return false
}
