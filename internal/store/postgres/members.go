package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceanz0604/gamecafe/internal/model"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

// Create создаёт участника
func (r *MemberRepo) Create(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (id, username, tier, balance, total_minutes, total_spent, sessions_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(
		ctx, query,
		member.ID,
		member.Username,
		member.Tier,
		member.Balance,
		member.TotalMinutes,
		member.TotalSpent,
		member.SessionsCount,
		member.Status,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

// GetByID получает участника по ID
func (r *MemberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	query := `
		SELECT id, username, tier, balance, total_minutes, total_spent, sessions_count, status, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	member, err := scanMember(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}

	return member, nil
}

// GetByUsername получает участника по имени без учёта регистра
func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (*model.Member, error) {
	query := `
		SELECT id, username, tier, balance, total_minutes, total_spent, sessions_count, status, created_at, updated_at
		FROM members
		WHERE lower(username) = lower($1)
	`

	member, err := scanMember(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by username: %w", err)
	}

	return member, nil
}

// Update сохраняет изменённого участника
func (r *MemberRepo) Update(ctx context.Context, member *model.Member) error {
	query := `
		UPDATE members
		SET username = $2, tier = $3, balance = $4, total_minutes = $5, total_spent = $6,
		    sessions_count = $7, status = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(
		ctx, query,
		member.ID,
		member.Username,
		member.Tier,
		member.Balance,
		member.TotalMinutes,
		member.TotalSpent,
		member.SessionsCount,
		member.Status,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member not found")
	}

	return nil
}

// List получает всех участников
func (r *MemberRepo) List(ctx context.Context) ([]*model.Member, error) {
	query := `
		SELECT id, username, tier, balance, total_minutes, total_spent, sessions_count, status, created_at, updated_at
		FROM members
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

func scanMember(row pgx.Row) (*model.Member, error) {
	var member model.Member
	err := row.Scan(
		&member.ID,
		&member.Username,
		&member.Tier,
		&member.Balance,
		&member.TotalMinutes,
		&member.TotalSpent,
		&member.SessionsCount,
		&member.Status,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}
