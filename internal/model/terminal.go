package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oceanz0604/gamecafe/internal/errs"
)

type TerminalCategory string

const (
	CategoryPC   TerminalCategory = "PC"
	CategoryXbox TerminalCategory = "XBOX"
	CategoryPS   TerminalCategory = "PS"
)

type TerminalStatus string

const (
	TerminalStatusAvailable   TerminalStatus = "AVAILABLE"
	TerminalStatusOccupied    TerminalStatus = "OCCUPIED"
	TerminalStatusMaintenance TerminalStatus = "MAINTENANCE"
	TerminalStatusOffline     TerminalStatus = "OFFLINE"
)

type Terminal struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Category         TerminalCategory `json:"category"`
	Status           TerminalStatus   `json:"status"`
	CurrentSessionID *string          `json:"current_session_id"` // nil, пока терминал не занят
	OccupantLabel    *string          `json:"occupant_label"`
	IsActive         bool             `json:"is_active"`
	LastActivity     *time.Time       `json:"last_activity"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewTerminal валидирует ввод и создаёт терминал в статусе AVAILABLE.
func NewTerminal(name string, category TerminalCategory) (*Terminal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validationf("terminal name is required")
	}
	switch category {
	case CategoryPC, CategoryXbox, CategoryPS:
	default:
		return nil, errs.Validationf("unknown terminal category %q", category)
	}

	return &Terminal{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Status:    TerminalStatusAvailable,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Available — терминал существует, включён и свободен.
func (t *Terminal) Available() bool {
	return t.IsActive && t.Status == TerminalStatusAvailable
}
