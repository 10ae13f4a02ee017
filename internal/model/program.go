package model

import "time"

// Program is a subsidy program created by the government role.
// Immutable once milestones reference it.
type Program struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RatePerKwh *int64    `json:"ratePerKwh,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
