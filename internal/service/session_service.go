package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/events"
	"github.com/oceanz0604/gamecafe/internal/model"
	"github.com/oceanz0604/gamecafe/internal/money"
	"github.com/oceanz0604/gamecafe/internal/rates"
	"github.com/oceanz0604/gamecafe/internal/store"
)

// StartPolicy — настраиваемая политика старта. Базовое поведение разрешает
// старт при любом балансе (баланс может уйти в минус после списания);
// строгий режим требует на балансе хотя бы час по тарифу.
type StartPolicy struct {
	RequirePositiveBalance bool
}

// SessionService — движок сессий: связывает участника и терминал на время,
// а в конце считает длительность и стоимость и проводит списание.
type SessionService struct {
	gate      *Gate
	members   store.MemberRepo
	sessions  store.SessionRepo
	terminals *TerminalService
	billing   *BillingService
	rates     *rates.Table
	bus       events.Bus
	logger    *zap.Logger
	policy    StartPolicy
	now       func() time.Time
}

func NewSessionService(
	gate *Gate,
	members store.MemberRepo,
	sessions store.SessionRepo,
	terminals *TerminalService,
	billing *BillingService,
	table *rates.Table,
	bus events.Bus,
	logger *zap.Logger,
	policy StartPolicy,
) *SessionService {
	return &SessionService{
		gate:      gate,
		members:   members,
		sessions:  sessions,
		terminals: terminals,
		billing:   billing,
		rates:     table,
		bus:       bus,
		logger:    logger,
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// StartSession открывает сессию для участника (memberID задан) или гостя
// (memberID nil, guestLabel обязателен). Проверки и занятие терминала
// выполняются в одной критической секции: терминал не может оказаться занятым
// без активной сессии, и наоборот.
func (s *SessionService) StartSession(ctx context.Context, memberID *string, guestLabel string, terminalID string) (*model.Session, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	now := s.now()

	terminal, err := s.terminals.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if terminal == nil {
		return nil, errs.NotFound("terminal", terminalID)
	}
	if !terminal.Available() {
		return nil, errs.Conflictf("terminal %q is not available", terminal.Name)
	}

	var member *model.Member
	tier := model.TierGuest
	occupantLabel := guestLabel

	if memberID != nil {
		member, err = s.members.GetByID(ctx, *memberID)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if member == nil {
			return nil, errs.NotFound("member", *memberID)
		}
		if !member.IsActive() {
			return nil, errs.Inactive("member", member.Username)
		}

		active, err := s.sessions.GetActiveByMemberID(ctx, member.ID)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if active != nil {
			return nil, errs.Conflictf("member %q already has an active session", member.Username)
		}

		tier = member.Tier
		occupantLabel = member.Username
	} else if guestLabel == "" {
		return nil, errs.Validationf("guest label is required for guest sessions")
	}

	rate, err := s.rates.Lookup(terminal.Category, tier)
	if err != nil {
		return nil, err
	}

	if s.policy.RequirePositiveBalance && member != nil && member.Balance < rate {
		return nil, errs.Conflictf("member %q balance %.2f is below hourly rate %.2f", member.Username, member.Balance, rate)
	}

	session := &model.Session{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		TerminalID: terminal.ID,
		Category:   terminal.Category,
		HourlyRate: rate,
		StartTime:  now,
		Status:     model.SessionStatusActive,
		CreatedAt:  now,
	}
	if memberID == nil {
		session.GuestLabel = &guestLabel
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, errs.Storage(err)
	}

	terminal, err = s.terminals.occupy(ctx, terminal, session.ID, occupantLabel, now)
	if err != nil {
		// Занятие не прошло — откатываем созданную сессию, чтобы не оставить
		// активную сессию на свободном терминале.
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			return nil, errs.Storage(delErr)
		}
		return nil, err
	}

	s.logger.Info("Session started",
		zap.String("session_id", session.ID),
		zap.String("terminal", terminal.Name),
		zap.String("occupant", occupantLabel),
		zap.Float64("hourly_rate", rate),
	)
	s.bus.Emit(events.SessionStarted, SessionEvent{Session: session, Terminal: terminal, Member: member})

	return session, nil
}

// EndSession завершает сессию: фиксирует длительность и стоимость,
// освобождает терминал и, для участника, проводит списание.
func (s *SessionService) EndSession(ctx context.Context, sessionID string) (*model.Session, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	now := s.now()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if session == nil {
		return nil, errs.NotFound("session", sessionID)
	}
	if !session.IsActive() {
		return nil, errs.Conflictf("session %q is not active", sessionID)
	}

	session.EndTime = &now
	session.DurationMinutes = ceilMinutes(now.Sub(session.StartTime))
	session.Cost = money.Cost(session.DurationMinutes, session.HourlyRate)
	session.Status = model.SessionStatusEnded

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, errs.Storage(err)
	}

	terminal, err := s.terminals.release(ctx, session.TerminalID, now)
	if err != nil {
		return nil, err
	}

	var member *model.Member
	if session.MemberID != nil {
		member, _, err = s.billing.settle(ctx, *session.MemberID, session, now)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("Session ended",
		zap.String("session_id", session.ID),
		zap.Int("duration_minutes", session.DurationMinutes),
		zap.Float64("cost", session.Cost),
	)
	s.bus.Emit(events.SessionEnded, SessionEvent{Session: session, Terminal: terminal, Member: member})

	return session, nil
}

// Get получает сессию по ID.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if session == nil {
		return nil, errs.NotFound("session", sessionID)
	}
	return session, nil
}

// List получает сессии, опционально по статусу.
func (s *SessionService) List(ctx context.Context, status *model.SessionStatus) ([]*model.Session, error) {
	sessions, err := s.sessions.List(ctx, status)
	if err != nil {
		return nil, errs.Storage(err)
	}
	return sessions, nil
}

// ListActive — активные сессии для дашборда.
func (s *SessionService) ListActive(ctx context.Context) ([]*model.Session, error) {
	status := model.SessionStatusActive
	return s.List(ctx, &status)
}

// ceilMinutes округляет длительность вверх до целой минуты: неполная минута
// тарифицируется как полная. Ноль — только при нулевой длительности.
func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
