package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceanz0604/gamecafe/internal/model"
)

type TerminalRepo struct {
	pool *pgxpool.Pool
}

// Create создаёт терминал
func (r *TerminalRepo) Create(ctx context.Context, terminal *model.Terminal) error {
	query := `
		INSERT INTO terminals (id, name, category, status, current_session_id, occupant_label, is_active, last_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(
		ctx, query,
		terminal.ID,
		terminal.Name,
		terminal.Category,
		terminal.Status,
		terminal.CurrentSessionID,
		terminal.OccupantLabel,
		terminal.IsActive,
		terminal.LastActivity,
		terminal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}

	return nil
}

// GetByID получает терминал по ID
func (r *TerminalRepo) GetByID(ctx context.Context, id string) (*model.Terminal, error) {
	query := `
		SELECT id, name, category, status, current_session_id, occupant_label, is_active, last_activity, created_at
		FROM terminals
		WHERE id = $1
	`

	terminal, err := scanTerminal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get terminal by id: %w", err)
	}

	return terminal, nil
}

// GetByName получает терминал по имени
func (r *TerminalRepo) GetByName(ctx context.Context, name string) (*model.Terminal, error) {
	query := `
		SELECT id, name, category, status, current_session_id, occupant_label, is_active, last_activity, created_at
		FROM terminals
		WHERE lower(name) = lower($1)
	`

	terminal, err := scanTerminal(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get terminal by name: %w", err)
	}

	return terminal, nil
}

// Update сохраняет изменённый терминал
func (r *TerminalRepo) Update(ctx context.Context, terminal *model.Terminal) error {
	query := `
		UPDATE terminals
		SET name = $2, category = $3, status = $4, current_session_id = $5,
		    occupant_label = $6, is_active = $7, last_activity = $8
		WHERE id = $1
	`

	result, err := r.pool.Exec(
		ctx, query,
		terminal.ID,
		terminal.Name,
		terminal.Category,
		terminal.Status,
		terminal.CurrentSessionID,
		terminal.OccupantLabel,
		terminal.IsActive,
		terminal.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("update terminal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("terminal not found")
	}

	return nil
}

// List получает все терминалы
func (r *TerminalRepo) List(ctx context.Context) ([]*model.Terminal, error) {
	query := `
		SELECT id, name, category, status, current_session_id, occupant_label, is_active, last_activity, created_at
		FROM terminals
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list terminals: %w", err)
	}
	defer rows.Close()

	var terminals []*model.Terminal
	for rows.Next() {
		terminal, err := scanTerminal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan terminal: %w", err)
		}
		terminals = append(terminals, terminal)
	}

	return terminals, nil
}

func scanTerminal(row pgx.Row) (*model.Terminal, error) {
	var terminal model.Terminal
	err := row.Scan(
		&terminal.ID,
		&terminal.Name,
		&terminal.Category,
		&terminal.Status,
		&terminal.CurrentSessionID,
		&terminal.OccupantLabel,
		&terminal.IsActive,
		&terminal.LastActivity,
		&terminal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}
