package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceanz0604/gamecafe/internal/store"
)

// Store — постоянное хранилище поверх пула pgx.
type Store struct {
	pool *pgxpool.Pool
}

// New подключается к базе и проверяет соединение.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Pool возвращает пул соединений (нужен мигратору).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Members() store.MemberRepo           { return &MemberRepo{pool: s.pool} }
func (s *Store) Terminals() store.TerminalRepo       { return &TerminalRepo{pool: s.pool} }
func (s *Store) Sessions() store.SessionRepo         { return &SessionRepo{pool: s.pool} }
func (s *Store) Transactions() store.TransactionRepo { return &TransactionRepo{pool: s.pool} }
func (s *Store) Bookings() store.BookingRepo         { return &BookingRepo{pool: s.pool} }

func (s *Store) Close() {
	s.pool.Close()
}
