package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type ProgramRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProgramRepository(db *pgxpool.Pool, logger *zap.Logger) *ProgramRepository {
	return &ProgramRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserts a program inside the caller's transaction.
func (r *ProgramRepository) InsertTx(ctx context.Context, tx pgx.Tx, p *model.Program) error {
	r.logger.Debug("Inserting program",
		zap.String("id", p.ID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO programs (id, name, rate_per_kwh, unit)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
	err := tx.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.RatePerKwh,
		p.Unit,
	).Scan(&p.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert program", zap.Error(err))
		return translateError(err)
	}

	return nil
}

func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*model.Program, error) {
	query := `
        SELECT id, name, rate_per_kwh, unit, created_at
        FROM programs
        WHERE id = $1
    `

	var p model.Program
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.RatePerKwh,
		&p.Unit,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &p, nil
}

func (r *ProgramRepository) List(ctx context.Context) ([]model.Program, error) {
	query := `
        SELECT id, name, rate_per_kwh, unit, created_at
        FROM programs
        ORDER BY created_at ASC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list programs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var programs []model.Program
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.RatePerKwh,
			&p.Unit,
			&p.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan program", zap.Error(err))
			return nil, err
		}
		programs = append(programs, p)
	}

	return programs, rows.Err()
}
