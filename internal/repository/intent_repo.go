package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type IntentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewIntentRepository(db *pgxpool.Pool, logger *zap.Logger) *IntentRepository {
	return &IntentRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx records a transaction intent inside the caller's transaction, so
// the intent commits atomically with the domain rows it refers to.
func (r *IntentRepository) InsertTx(ctx context.Context, tx pgx.Tx, i *model.TxIntent) error {
	query := `
        INSERT INTO tx_intents (kind, ref_id, payload, status)
        VALUES ($1, $2, $3, 'pending')
        RETURNING id, status, created_at, updated_at
    `
	err := tx.QueryRow(ctx, query,
		i.Kind,
		i.RefID,
		i.Payload,
	).Scan(&i.ID, &i.Status, &i.CreatedAt, &i.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to insert tx intent",
			zap.String("kind", i.Kind),
			zap.String("ref_id", i.RefID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (r *IntentRepository) FindByID(ctx context.Context, id int64) (*model.TxIntent, error) {
	query := `
        SELECT id, kind, ref_id, payload, status, retry_count, next_retry_at, tx_hash, last_error, created_at, updated_at
        FROM tx_intents
        WHERE id = $1
    `

	var i model.TxIntent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&i.ID,
		&i.Kind,
		&i.RefID,
		&i.Payload,
		&i.Status,
		&i.RetryCount,
		&i.NextRetryAt,
		&i.TxHash,
		&i.LastError,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &i, nil
}

// GetPending returns due pending intents, oldest first (for the poller).
func (r *IntentRepository) GetPending(ctx context.Context, limit int) ([]*model.TxIntent, error) {
	query := `
        SELECT id, kind, ref_id, payload, status, retry_count, next_retry_at, tx_hash, last_error, created_at, updated_at
        FROM tx_intents
        WHERE status = 'pending'
        AND (next_retry_at IS NULL OR next_retry_at <= NOW())
        ORDER BY created_at ASC
        LIMIT $1
    `

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []*model.TxIntent
	for rows.Next() {
		var i model.TxIntent
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.RefID,
			&i.Payload,
			&i.Status,
			&i.RetryCount,
			&i.NextRetryAt,
			&i.TxHash,
			&i.LastError,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		intents = append(intents, &i)
	}

	return intents, rows.Err()
}

// MarkConfirmed records the mined tx hash and closes the intent.
func (r *IntentRepository) MarkConfirmed(ctx context.Context, id int64, txHash string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE tx_intents
        SET status = 'confirmed', tx_hash = $1, updated_at = NOW()
        WHERE id = $2
    `, txHash, id)
	if err != nil {
		r.logger.Error("Failed to mark intent confirmed",
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
	return err
}

// SetTxHash records the submitted transaction hash while the intent stays
// pending. If the process dies between submit and finalize, the next cycle
// resumes from this hash instead of submitting a second transaction.
func (r *IntentRepository) SetTxHash(ctx context.Context, id int64, txHash string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE tx_intents
        SET tx_hash = $1, updated_at = NOW()
        WHERE id = $2
    `, txHash, id)
	if err != nil {
		r.logger.Error("Failed to record intent tx hash",
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
	return err
}

// CancelPendingTx closes a still-pending intent inside the caller's
// transaction. Used when an off-chain settlement supersedes the queued
// chain write.
func (r *IntentRepository) CancelPendingTx(ctx context.Context, tx pgx.Tx, kind, refID string) error {
	_, err := tx.Exec(ctx, `
        UPDATE tx_intents
        SET status = 'cancelled', updated_at = NOW()
        WHERE kind = $1 AND ref_id = $2 AND status = 'pending'
    `, kind, refID)
	if err != nil {
		r.logger.Error("Failed to cancel pending intent",
			zap.String("kind", kind),
			zap.String("ref_id", refID),
			zap.Error(err),
		)
	}
	return err
}

// MarkFailed bumps the retry count with linear backoff; past maxRetries the
// intent is closed as failed. Mirrors the outbox retry policy.
func (r *IntentRepository) MarkFailed(ctx context.Context, id int64, maxRetries int, lastError string) (final bool, err error) {
	var retryCount int
	err = r.db.QueryRow(ctx, `
        SELECT retry_count FROM tx_intents WHERE id = $1
    `, id).Scan(&retryCount)
	if err != nil {
		return false, err
	}

	retryCount++

	var status string
	var nextRetryAt *time.Time
	if retryCount >= maxRetries {
		status = model.IntentStatusFailed
		nextRetryAt = nil
	} else {
		status = model.IntentStatusPending
		nextRetry := time.Now().Add(time.Duration(retryCount) * 5 * time.Second) // 线性退避：5s, 10s, 15s...
		nextRetryAt = &nextRetry
	}

	_, err = r.db.Exec(ctx, `
        UPDATE tx_intents
        SET status = $1, retry_count = $2, next_retry_at = $3, last_error = $4, updated_at = NOW()
        WHERE id = $5
    `, status, retryCount, nextRetryAt, lastError, id)
	if err != nil {
		r.logger.Error("Failed to mark intent failed",
			zap.Int64("id", id),
			zap.Error(err),
		)
		return false, err
	}

	return status == model.IntentStatusFailed, nil
}
