package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type DisbursementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDisbursementRepository(db *pgxpool.Pool, logger *zap.Logger) *DisbursementRepository {
	return &DisbursementRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserts a disbursement inside the caller's transaction.
// The (project_id, milestone_key, rail) unique constraint blocks a second
// release on the same rail; clawback rows coexist with the released row.
func (r *DisbursementRepository) InsertTx(ctx context.Context, tx pgx.Tx, d *model.Disbursement) error {
	r.logger.Debug("Inserting disbursement",
		zap.String("project_id", d.ProjectID),
		zap.String("milestone_key", d.MilestoneKey),
		zap.String("rail", d.Rail),
	)

	query := `
        INSERT INTO disbursements (project_id, milestone_key, amount, rail, bank_ref, status, tx_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	err := tx.QueryRow(ctx, query,
		d.ProjectID,
		d.MilestoneKey,
		d.Amount,
		d.Rail,
		d.BankRef,
		d.Status,
		d.TxHash,
	).Scan(&d.ID, &d.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert disbursement", zap.Error(err))
		return translateError(err)
	}

	return nil
}

func (r *DisbursementRepository) FindByID(ctx context.Context, id int64) (*model.Disbursement, error) {
	query := `
        SELECT id, project_id, milestone_key, amount, rail, bank_ref, status, tx_hash, created_at
        FROM disbursements
        WHERE id = $1
    `

	var d model.Disbursement
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.ProjectID,
		&d.MilestoneKey,
		&d.Amount,
		&d.Rail,
		&d.BankRef,
		&d.Status,
		&d.TxHash,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &d, nil
}

// FindReleaseByProjectAndKey returns the non-clawback disbursement for a
// (project, milestone) pair; its existence blocks a second release.
func (r *DisbursementRepository) FindReleaseByProjectAndKey(ctx context.Context, projectID, milestoneKey string) (*model.Disbursement, error) {
	query := `
        SELECT id, project_id, milestone_key, amount, rail, bank_ref, status, tx_hash, created_at
        FROM disbursements
        WHERE project_id = $1 AND milestone_key = $2 AND rail != 'clawback'
        LIMIT 1
    `

	var d model.Disbursement
	err := r.db.QueryRow(ctx, query, projectID, milestoneKey).Scan(
		&d.ID,
		&d.ProjectID,
		&d.MilestoneKey,
		&d.Amount,
		&d.Rail,
		&d.BankRef,
		&d.Status,
		&d.TxHash,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &d, nil
}

func (r *DisbursementRepository) ListByProject(ctx context.Context, projectID string) ([]model.Disbursement, error) {
	return r.list(ctx, `
        SELECT id, project_id, milestone_key, amount, rail, bank_ref, status, tx_hash, created_at
        FROM disbursements
        WHERE project_id = $1
        ORDER BY created_at ASC
    `, projectID)
}

// ListQueued returns disbursements awaiting bank approval or chain confirmation.
func (r *DisbursementRepository) ListQueued(ctx context.Context) ([]model.Disbursement, error) {
	return r.list(ctx, `
        SELECT id, project_id, milestone_key, amount, rail, bank_ref, status, tx_hash, created_at
        FROM disbursements
        WHERE status = 'queued'
        ORDER BY created_at ASC
    `)
}

func (r *DisbursementRepository) list(ctx context.Context, query string, args ...any) ([]model.Disbursement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list disbursements", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var disbursements []model.Disbursement
	for rows.Next() {
		var d model.Disbursement
		if err := rows.Scan(
			&d.ID,
			&d.ProjectID,
			&d.MilestoneKey,
			&d.Amount,
			&d.Rail,
			&d.BankRef,
			&d.Status,
			&d.TxHash,
			&d.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan disbursement", zap.Error(err))
			return nil, err
		}
		disbursements = append(disbursements, d)
	}

	return disbursements, rows.Err()
}

// MarkReleased flips a queued disbursement to released with the mined tx
// hash. Called by the chain poller. Reports false when the row is no longer
// queued, e.g. it was settled over the bank rail while the tx was in flight.
func (r *DisbursementRepository) MarkReleased(ctx context.Context, id int64, txHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE disbursements SET status = 'released', tx_hash = $1 WHERE id = $2 AND status = 'queued'
    `, txHash, id)
	if err != nil {
		r.logger.Error("Failed to mark disbursement released",
			zap.Int64("id", id),
			zap.Error(err),
		)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// BankApproveTx settles a queued disbursement over the bank rail inside the
// caller's transaction. Only a queued row can be approved.
func (r *DisbursementRepository) BankApproveTx(ctx context.Context, tx pgx.Tx, id int64, bankRef string) (*model.Disbursement, error) {
	query := `
        UPDATE disbursements
        SET status = 'released', rail = 'bank', bank_ref = $1
        WHERE id = $2 AND status = 'queued'
        RETURNING id, project_id, milestone_key, amount, rail, bank_ref, status, tx_hash, created_at
    `

	var d model.Disbursement
	err := tx.QueryRow(ctx, query, bankRef, id).Scan(
		&d.ID,
		&d.ProjectID,
		&d.MilestoneKey,
		&d.Amount,
		&d.Rail,
		&d.BankRef,
		&d.Status,
		&d.TxHash,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &d, nil
}
