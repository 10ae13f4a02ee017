package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserts a project inside the caller's transaction.
func (r *ProjectRepository) InsertTx(ctx context.Context, tx pgx.Tx, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("id", p.ID),
		zap.String("program_id", p.ProgramID),
	)

	query := `
        INSERT INTO projects (id, program_id, name, email, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	err := tx.QueryRow(ctx, query,
		p.ID,
		p.ProgramID,
		p.Name,
		p.Email,
		p.Status,
	).Scan(&p.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return translateError(err)
	}

	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
        SELECT id, program_id, name, email, status, created_at
        FROM projects
        WHERE id = $1
    `

	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.ProgramID,
		&p.Name,
		&p.Email,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &p, nil
}

// List returns projects, optionally filtered by status ("" means all),
// joined with the program name for dashboard listings.
func (r *ProjectRepository) List(ctx context.Context, status string) ([]model.Project, error) {
	query := `
        SELECT p.id, p.program_id, p.name, p.email, p.status, p.created_at, pr.name
        FROM projects p
        JOIN programs pr ON pr.id = p.program_id
        WHERE ($1 = '' OR p.status = $1)
        ORDER BY p.created_at ASC
    `

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.ProgramID,
			&p.Name,
			&p.Email,
			&p.Status,
			&p.CreatedAt,
			&p.ProgramName,
		); err != nil {
			r.logger.Error("Failed to scan project", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// UpdateStatusTx transitions a project's status inside the caller's transaction.
func (r *ProjectRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id, status string) error {
	tag, err := tx.Exec(ctx, `
        UPDATE projects SET status = $1 WHERE id = $2
    `, status, id)
	if err != nil {
		r.logger.Error("Failed to update project status",
			zap.String("id", id),
			zap.String("status", status),
			zap.Error(err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
