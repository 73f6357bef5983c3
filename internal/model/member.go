package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oceanz0604/gamecafe/internal/errs"
)

type MemberTier string

const (
	TierGuest   MemberTier = "guest"
	TierStudent MemberTier = "student"
	TierRegular MemberTier = "regular"
	TierVIP     MemberTier = "vip"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

type Member struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Tier          MemberTier   `json:"tier"`
	Balance       float64      `json:"balance"` // может уходить в минус после списания
	TotalMinutes  int          `json:"total_minutes"`
	TotalSpent    float64      `json:"total_spent"`
	SessionsCount int          `json:"sessions_count"`
	Status        MemberStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewMember валидирует ввод и создаёт участника со стартовым нулевым балансом.
func NewMember(username string, tier MemberTier) (*Member, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.Validationf("username is required")
	}
	switch tier {
	case TierGuest, TierStudent, TierRegular, TierVIP:
	default:
		return nil, errs.Validationf("unknown member tier %q", tier)
	}

	now := time.Now().UTC()
	return &Member{
		ID:        uuid.NewString(),
		Username:  username,
		Tier:      tier,
		Status:    MemberStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}
