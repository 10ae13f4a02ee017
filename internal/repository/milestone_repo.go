package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserts a milestone inside the caller's transaction.
// The (program_id, key) unique constraint is authoritative; callers map
// ErrDuplicate to a 409.
func (r *MilestoneRepository) InsertTx(ctx context.Context, tx pgx.Tx, m *model.Milestone) error {
	r.logger.Debug("Inserting milestone",
		zap.String("program_id", m.ProgramID),
		zap.String("key", m.Key),
	)

	query := `
        INSERT INTO milestones (program_id, key, title, amount, unit)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := tx.QueryRow(ctx, query,
		m.ProgramID,
		m.Key,
		m.Title,
		m.Amount,
		m.Unit,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return translateError(err)
	}

	r.logger.Info("Milestone inserted successfully",
		zap.Int64("id", m.ID),
		zap.String("program_id", m.ProgramID),
		zap.String("key", m.Key),
	)
	return nil
}

func (r *MilestoneRepository) FindByProgramAndKey(ctx context.Context, programID, key string) (*model.Milestone, error) {
	query := `
        SELECT id, program_id, key, title, amount, unit, created_at
        FROM milestones
        WHERE program_id = $1 AND key = $2
    `

	var m model.Milestone
	err := r.db.QueryRow(ctx, query, programID, key).Scan(
		&m.ID,
		&m.ProgramID,
		&m.Key,
		&m.Title,
		&m.Amount,
		&m.Unit,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &m, nil
}

func (r *MilestoneRepository) ListByProgram(ctx context.Context, programID string) ([]model.Milestone, error) {
	query := `
        SELECT id, program_id, key, title, amount, unit, created_at
        FROM milestones
        WHERE program_id = $1
        ORDER BY created_at ASC
    `

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		r.logger.Error("Failed to list milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(
			&m.ID,
			&m.ProgramID,
			&m.Key,
			&m.Title,
			&m.Amount,
			&m.Unit,
			&m.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan milestone", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}
