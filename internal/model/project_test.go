package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		ok   bool
	}{
		{ProjectStatusPending, ProjectStatusApproved, true},
		{ProjectStatusPending, ProjectStatusRevoked, true},
		{ProjectStatusPending, ProjectStatusSuspended, false},

		{ProjectStatusApproved, ProjectStatusSuspended, true},
		{ProjectStatusApproved, ProjectStatusRevoked, true},
		{ProjectStatusApproved, ProjectStatusApproved, false},

		{ProjectStatusSuspended, ProjectStatusApproved, true},
		{ProjectStatusSuspended, ProjectStatusRevoked, true},
		{ProjectStatusSuspended, ProjectStatusPending, false},

		// revoked is terminal
		{ProjectStatusRevoked, ProjectStatusApproved, false},
		{ProjectStatusRevoked, ProjectStatusPending, false},
		{ProjectStatusRevoked, ProjectStatusSuspended, false},
	}

	for _, tt := range tests {
		p := &Project{Status: tt.from}
		assert.Equal(t, tt.ok, p.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
