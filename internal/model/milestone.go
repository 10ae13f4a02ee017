package model

import "time"

// Milestone is a quantified production target tied to a subsidy amount.
// Uniqueness of (ProgramID, Key) is enforced by a DB constraint.
type Milestone struct {
	ID        int64     `json:"-"`
	ProgramID string    `json:"programId"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}
