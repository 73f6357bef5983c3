package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceanz0604/gamecafe/internal/model"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

const sessionColumns = `id, member_id, guest_label, terminal_id, category, hourly_rate, start_time, end_time, duration_minutes, cost, status, created_at`

// Create создаёт сессию
func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(
		ctx, query,
		session.ID,
		session.MemberID,
		session.GuestLabel,
		session.TerminalID,
		session.Category,
		session.HourlyRate,
		session.StartTime,
		session.EndTime,
		session.DurationMinutes,
		session.Cost,
		session.Status,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID получает сессию по ID
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// GetActiveByMemberID получает активную сессию участника, если она есть
func (r *SessionRepo) GetActiveByMemberID(ctx context.Context, memberID string) (*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE member_id = $1 AND status = 'ACTIVE'
		LIMIT 1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session by member: %w", err)
	}

	return session, nil
}

// GetActiveByTerminalID получает активную сессию на терминале, если она есть
func (r *SessionRepo) GetActiveByTerminalID(ctx context.Context, terminalID string) (*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE terminal_id = $1 AND status = 'ACTIVE'
		LIMIT 1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, terminalID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session by terminal: %w", err)
	}

	return session, nil
}

// Update сохраняет изменённую сессию
func (r *SessionRepo) Update(ctx context.Context, session *model.Session) error {
	query := `
		UPDATE sessions
		SET end_time = $2, duration_minutes = $3, cost = $4, status = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(
		ctx, query,
		session.ID,
		session.EndTime,
		session.DurationMinutes,
		session.Cost,
		session.Status,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// Delete удаляет сессию. Используется только для отката несостоявшегося старта.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// List получает сессии, опционально фильтруя по статусу
func (r *SessionRepo) List(ctx context.Context, status *model.SessionStatus) ([]*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.MemberID,
		&session.GuestLabel,
		&session.TerminalID,
		&session.Category,
		&session.HourlyRate,
		&session.StartTime,
		&session.EndTime,
		&session.DurationMinutes,
		&session.Cost,
		&session.Status,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
