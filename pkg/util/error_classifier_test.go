package util

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		errType   string
	}{
		{"nil", nil, false, ""},
		{"no rows", pgx.ErrNoRows, false, "row_not_found"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "milestones_program_id_key_key"`), false, "duplicate_key"},
		{"db connection", errors.New("failed to connect to database: connection refused"), true, "db_connection_error"},
		{"deadline", context.DeadlineExceeded, true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"nonce too low", errors.New("nonce too low"), false, "tx_already_submitted"},
		{"already known", errors.New("already known"), false, "tx_already_submitted"},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), false, "insufficient_funds"},
		{"reverted", errors.New("execution reverted: milestone not attested"), false, "execution_reverted"},
		{"underpriced", errors.New("replacement transaction underpriced"), true, "gas_underpriced"},
		{"json payload", errors.New("json: bad createProgram payload"), false, "json_decode_error"},
		{"unknown", errors.New("something odd"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, errType := IsRetryableError(tt.err)
			assert.Equal(t, tt.retryable, retryable)
			assert.Equal(t, tt.errType, errType)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(0, 5, false))
	assert.True(t, ShouldRetry(3, 5, true))
	assert.False(t, ShouldRetry(6, 5, true))
}
