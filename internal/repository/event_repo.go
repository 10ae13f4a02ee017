package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

type EventRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEventRepository(db *pgxpool.Pool, logger *zap.Logger) *EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx appends a timeline event inside the caller's transaction.
func (r *EventRepository) InsertTx(ctx context.Context, tx pgx.Tx, e *model.Event) error {
	query := `
        INSERT INTO events (project_id, program_id, ts, type, label, details)
        VALUES ($1, $2, NOW(), $3, $4, $5)
        RETURNING id, ts
    `
	err := tx.QueryRow(ctx, query,
		e.ProjectID,
		e.ProgramID,
		e.Type,
		e.Label,
		e.Details,
	).Scan(&e.ID, &e.TS)

	if err != nil {
		r.logger.Error("Failed to insert event",
			zap.String("type", e.Type),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Insert appends a timeline event outside of any transaction. Used by the
// chain poller, which has no surrounding business transaction.
func (r *EventRepository) Insert(ctx context.Context, e *model.Event) error {
	query := `
        INSERT INTO events (project_id, program_id, ts, type, label, details)
        VALUES ($1, $2, NOW(), $3, $4, $5)
        RETURNING id, ts
    `
	err := r.db.QueryRow(ctx, query,
		e.ProjectID,
		e.ProgramID,
		e.Type,
		e.Label,
		e.Details,
	).Scan(&e.ID, &e.TS)

	if err != nil {
		r.logger.Error("Failed to insert event",
			zap.String("type", e.Type),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// ListForProject returns events attached to the project plus program-level
// events of its program, oldest first.
func (r *EventRepository) ListForProject(ctx context.Context, projectID, programID string) ([]model.Event, error) {
	query := `
        SELECT id, project_id, program_id, ts, type, label, details
        FROM events
        WHERE project_id = $1 OR (project_id IS NULL AND program_id = $2)
        ORDER BY ts ASC, id ASC
    `

	rows, err := r.db.Query(ctx, query, projectID, programID)
	if err != nil {
		r.logger.Error("Failed to list events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.ProgramID,
			&e.TS,
			&e.Type,
			&e.Label,
			&e.Details,
		); err != nil {
			r.logger.Error("Failed to scan event", zap.Error(err))
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
