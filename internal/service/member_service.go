package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/events"
	"github.com/oceanz0604/gamecafe/internal/model"
	"github.com/oceanz0604/gamecafe/internal/store"
)

// MemberService — реестр участников. Участники с историей не удаляются
// физически, только деактивируются.
type MemberService struct {
	gate     *Gate
	members  store.MemberRepo
	sessions store.SessionRepo
	bus      events.Bus
	logger   *zap.Logger
}

func NewMemberService(gate *Gate, members store.MemberRepo, sessions store.SessionRepo, bus events.Bus, logger *zap.Logger) *MemberService {
	return &MemberService{
		gate:     gate,
		members:  members,
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

// Register создаёт участника. Имя уникально без учёта регистра.
func (s *MemberService) Register(ctx context.Context, username string, tier model.MemberTier) (*model.Member, error) {
	member, err := model.NewMember(username, tier)
	if err != nil {
		return nil, err
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	existing, err := s.members.GetByUsername(ctx, member.Username)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if existing != nil {
		return nil, errs.Conflictf("username %q is already taken", member.Username)
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Member registered",
		zap.String("member_id", member.ID),
		zap.String("username", member.Username),
		zap.String("tier", string(member.Tier)),
	)
	s.bus.Emit(events.MemberUpdated, member)

	return member, nil
}

// Deactivate — мягкое удаление. Участник с активной сессией не деактивируется.
func (s *MemberService) Deactivate(ctx context.Context, memberID string) (*model.Member, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if member == nil {
		return nil, errs.NotFound("member", memberID)
	}

	active, err := s.sessions.GetActiveByMemberID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if active != nil {
		return nil, errs.Conflictf("member %q has an active session", member.Username)
	}

	member.Status = model.MemberStatusInactive
	member.UpdatedAt = time.Now().UTC()

	if err := s.members.Update(ctx, member); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Member deactivated", zap.String("member_id", member.ID))
	s.bus.Emit(events.MemberUpdated, member)

	return member, nil
}

// Activate возвращает участника в строй.
func (s *MemberService) Activate(ctx context.Context, memberID string) (*model.Member, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if member == nil {
		return nil, errs.NotFound("member", memberID)
	}

	member.Status = model.MemberStatusActive
	member.UpdatedAt = time.Now().UTC()

	if err := s.members.Update(ctx, member); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Member activated", zap.String("member_id", member.ID))
	s.bus.Emit(events.MemberUpdated, member)

	return member, nil
}

// Get получает участника по ID.
func (s *MemberService) Get(ctx context.Context, memberID string) (*model.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if member == nil {
		return nil, errs.NotFound("member", memberID)
	}
	return member, nil
}

// List получает всех участников.
func (s *MemberService) List(ctx context.Context) ([]*model.Member, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, errs.Storage(err)
	}
	return members, nil
}
