package model

import "time"

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "ACTIVE"
	SessionStatusEnded  SessionStatus = "ENDED"
)

type Session struct {
	ID              string           `json:"id"`
	MemberID        *string          `json:"member_id"`   // nil — гостевая сессия
	GuestLabel      *string          `json:"guest_label"` // заполнено только для гостя
	TerminalID      string           `json:"terminal_id"`
	Category        TerminalCategory `json:"category"`    // снимок категории на момент старта
	HourlyRate      float64          `json:"hourly_rate"` // тариф зафиксирован на всю сессию
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time"`
	DurationMinutes int              `json:"duration_minutes"`
	Cost            float64          `json:"cost"`
	Status          SessionStatus    `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsGuest — сессия без привязки к участнику.
func (s *Session) IsGuest() bool {
	return s.MemberID == nil
}
