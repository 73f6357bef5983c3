package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceanz0604/gamecafe/internal/model"
)

type BookingRepo struct {
	pool *pgxpool.Pool
}

const bookingColumns = `id, member_id, guest_label, terminal_id, start_time, end_time, duration_minutes, hourly_rate, estimated_cost, status, created_at`

// Create создаёт бронь
func (r *BookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(
		ctx, query,
		booking.ID,
		booking.MemberID,
		booking.GuestLabel,
		booking.TerminalID,
		booking.StartTime,
		booking.EndTime,
		booking.DurationMinutes,
		booking.HourlyRate,
		booking.EstimatedCost,
		booking.Status,
		booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронь по ID
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// Update сохраняет изменённую бронь
func (r *BookingRepo) Update(ctx context.Context, booking *model.Booking) error {
	query := `UPDATE bookings SET status = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, booking.ID, booking.Status)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// ListByTerminal получает брони терминала, опционально фильтруя по статусу
func (r *BookingRepo) ListByTerminal(ctx context.Context, terminalID string, status *model.BookingStatus) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE terminal_id = $1`
	args := []any{terminalID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings by terminal: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListExpired получает подтверждённые брони, чьё окно уже закончилось
func (r *BookingRepo) ListExpired(ctx context.Context, before time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'CONFIRMED' AND end_time <= $1
		ORDER BY end_time
	`

	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("list expired bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.MemberID,
		&booking.GuestLabel,
		&booking.TerminalID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.DurationMinutes,
		&booking.HourlyRate,
		&booking.EstimatedCost,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
