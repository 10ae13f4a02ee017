package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type AttestationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAttestationRepository(db *pgxpool.Pool, logger *zap.Logger) *AttestationRepository {
	return &AttestationRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserts an attestation inside the caller's transaction.
// The (project_id, milestone_key) unique constraint is authoritative.
func (r *AttestationRepository) InsertTx(ctx context.Context, tx pgx.Tx, a *model.Attestation) error {
	r.logger.Debug("Inserting attestation",
		zap.String("project_id", a.ProjectID),
		zap.String("milestone_key", a.MilestoneKey),
	)

	query := `
        INSERT INTO attestations
            (project_id, milestone_key, value, unit, data_hash, signer, signature, nonce, deadline)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := tx.QueryRow(ctx, query,
		a.ProjectID,
		a.MilestoneKey,
		a.Value,
		a.Unit,
		a.DataHash,
		a.Signer,
		a.Signature,
		a.Nonce,
		a.Deadline,
	).Scan(&a.ID, &a.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert attestation", zap.Error(err))
		return translateError(err)
	}

	return nil
}

func (r *AttestationRepository) FindByProjectAndKey(ctx context.Context, projectID, milestoneKey string) (*model.Attestation, error) {
	query := `
        SELECT id, project_id, milestone_key, value, unit, data_hash, signer, signature, nonce, deadline, tx_hash, created_at
        FROM attestations
        WHERE project_id = $1 AND milestone_key = $2
    `

	var a model.Attestation
	err := r.db.QueryRow(ctx, query, projectID, milestoneKey).Scan(
		&a.ID,
		&a.ProjectID,
		&a.MilestoneKey,
		&a.Value,
		&a.Unit,
		&a.DataHash,
		&a.Signer,
		&a.Signature,
		&a.Nonce,
		&a.Deadline,
		&a.TxHash,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &a, nil
}

func (r *AttestationRepository) ListByProject(ctx context.Context, projectID string) ([]model.Attestation, error) {
	query := `
        SELECT id, project_id, milestone_key, value, unit, data_hash, signer, signature, nonce, deadline, tx_hash, created_at
        FROM attestations
        WHERE project_id = $1
        ORDER BY created_at ASC
    `

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to list attestations", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var attestations []model.Attestation
	for rows.Next() {
		var a model.Attestation
		if err := rows.Scan(
			&a.ID,
			&a.ProjectID,
			&a.MilestoneKey,
			&a.Value,
			&a.Unit,
			&a.DataHash,
			&a.Signer,
			&a.Signature,
			&a.Nonce,
			&a.Deadline,
			&a.TxHash,
			&a.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan attestation", zap.Error(err))
			return nil, err
		}
		attestations = append(attestations, a)
	}

	return attestations, rows.Err()
}

// SetTxHash records the mined transaction hash for an attestation. Called by
// the chain poller after confirmation; idempotent.
func (r *AttestationRepository) SetTxHash(ctx context.Context, id int64, txHash string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE attestations SET tx_hash = $1 WHERE id = $2
    `, txHash, id)
	if err != nil {
		r.logger.Error("Failed to set attestation tx hash",
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
	return err
}
