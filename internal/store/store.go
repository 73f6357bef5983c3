package store

import (
	"context"
	"time"

	"github.com/oceanz0604/gamecafe/internal/model"
)

// Контракт хранилища: типизированные репозитории по коллекциям.
// Отсутствующая запись — (nil, nil); ошибки категоризирует сервисный слой.

type MemberRepo interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	// GetByUsername ищет без учёта регистра.
	GetByUsername(ctx context.Context, username string) (*model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	List(ctx context.Context) ([]*model.Member, error)
}

type TerminalRepo interface {
	Create(ctx context.Context, terminal *model.Terminal) error
	GetByID(ctx context.Context, id string) (*model.Terminal, error)
	GetByName(ctx context.Context, name string) (*model.Terminal, error)
	Update(ctx context.Context, terminal *model.Terminal) error
	List(ctx context.Context) ([]*model.Terminal, error)
}

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetActiveByMemberID(ctx context.Context, memberID string) (*model.Session, error)
	GetActiveByTerminalID(ctx context.Context, terminalID string) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	// Delete нужен только для отката несостоявшегося старта.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status *model.SessionStatus) ([]*model.Session, error)
}

type TransactionRepo interface {
	// Append атомарно пишет строку журнала и новое состояние участника.
	Append(ctx context.Context, txn *model.Transaction, member *model.Member) error
	ListByMemberID(ctx context.Context, memberID string) ([]*model.Transaction, error)
}

type BookingRepo interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) error
	// ListByTerminal фильтрует по статусу, если он задан.
	ListByTerminal(ctx context.Context, terminalID string, status *model.BookingStatus) ([]*model.Booking, error)
	// ListExpired — подтверждённые брони, чьё окно уже закончилось.
	ListExpired(ctx context.Context, before time.Time) ([]*model.Booking, error)
}

type Store interface {
	Members() MemberRepo
	Terminals() TerminalRepo
	Sessions() SessionRepo
	Transactions() TransactionRepo
	Bookings() BookingRepo
	Close()
}
