package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceanz0604/gamecafe/internal/model"
)

type TransactionRepo struct {
	pool *pgxpool.Pool
}

// Append пишет строку журнала и новое состояние участника одной транзакцией.
// Журнал append-only: UPDATE/DELETE по transactions не существует.
func (r *TransactionRepo) Append(ctx context.Context, txn *model.Transaction, member *model.Member) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO transactions (id, member_id, type, amount, balance_after, related_session_id, method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.Exec(
		ctx, insertQuery,
		txn.ID,
		txn.MemberID,
		txn.Type,
		txn.Amount,
		txn.BalanceAfter,
		txn.RelatedSessionID,
		txn.Method,
		txn.Note,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	updateQuery := `
		UPDATE members
		SET balance = $2, total_minutes = $3, total_spent = $4, sessions_count = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := tx.Exec(
		ctx, updateQuery,
		member.ID,
		member.Balance,
		member.TotalMinutes,
		member.TotalSpent,
		member.SessionsCount,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update member balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListByMemberID получает журнал участника в порядке записи
func (r *TransactionRepo) ListByMemberID(ctx context.Context, memberID string) ([]*model.Transaction, error) {
	query := `
		SELECT id, member_id, type, amount, balance_after, related_session_id, method, note, created_at
		FROM transactions
		WHERE member_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		var txn model.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.MemberID,
			&txn.Type,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.RelatedSessionID,
			&txn.Method,
			&txn.Note,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	return txns, nil
}
