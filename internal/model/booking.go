package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking — резерв терминала на будущее окно времени. Это не живая сессия:
// бронь не трогает занятость терминала.
type Booking struct {
	ID              string        `json:"id"`
	MemberID        *string       `json:"member_id"`
	GuestLabel      *string       `json:"guest_label"`
	TerminalID      string        `json:"terminal_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	DurationMinutes int           `json:"duration_minutes"`
	HourlyRate      float64       `json:"hourly_rate"`
	EstimatedCost   float64       `json:"estimated_cost"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Overlaps — пересечение полуоткрытых интервалов: касание границ не конфликт.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && end.After(b.StartTime)
}
