package service

import (
	"sync"

	"github.com/oceanz0604/gamecafe/internal/model"
)

// Gate — общая критическая секция всех мутирующих операций ядра.
// Модель single-writer: авторитетный процесс один, каждая операция выполняет
// свой read-modify-write целиком под этим мьютексом, без чередования.
type Gate struct {
	mu sync.Mutex
}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) Lock()   { g.mu.Lock() }
func (g *Gate) Unlock() { g.mu.Unlock() }

// SessionEvent — полезная нагрузка событий session.started / session.ended.
type SessionEvent struct {
	Session  *model.Session  `json:"session"`
	Terminal *model.Terminal `json:"terminal"`
	Member   *model.Member   `json:"member,omitempty"`
}

// RechargeEvent — полезная нагрузка события member.recharged.
type RechargeEvent struct {
	Member      *model.Member      `json:"member"`
	Transaction *model.Transaction `json:"transaction"`
}
