package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/events"
	"github.com/oceanz0604/gamecafe/internal/model"
	"github.com/oceanz0604/gamecafe/internal/store"
)

// TerminalService — аллокатор терминалов. Единственный владелец переходов
// статуса AVAILABLE/OCCUPIED; MAINTENANCE/OFFLINE переключаются явными
// админскими операциями.
type TerminalService struct {
	gate      *Gate
	terminals store.TerminalRepo
	bus       events.Bus
	logger    *zap.Logger
}

func NewTerminalService(gate *Gate, terminals store.TerminalRepo, bus events.Bus, logger *zap.Logger) *TerminalService {
	return &TerminalService{
		gate:      gate,
		terminals: terminals,
		bus:       bus,
		logger:    logger,
	}
}

// Provision регистрирует новый терминал.
func (s *TerminalService) Provision(ctx context.Context, name string, category model.TerminalCategory) (*model.Terminal, error) {
	terminal, err := model.NewTerminal(name, category)
	if err != nil {
		return nil, err
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	existing, err := s.terminals.GetByName(ctx, terminal.Name)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if existing != nil {
		return nil, errs.Conflictf("terminal %q already exists", terminal.Name)
	}

	if err := s.terminals.Create(ctx, terminal); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Terminal provisioned",
		zap.String("terminal_id", terminal.ID),
		zap.String("name", terminal.Name),
		zap.String("category", string(terminal.Category)),
	)
	s.bus.Emit(events.TerminalUpdated, terminal)

	return terminal, nil
}

// Get получает терминал по ID.
func (s *TerminalService) Get(ctx context.Context, terminalID string) (*model.Terminal, error) {
	terminal, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if terminal == nil {
		return nil, errs.NotFound("terminal", terminalID)
	}
	return terminal, nil
}

// List получает все терминалы.
func (s *TerminalService) List(ctx context.Context) ([]*model.Terminal, error) {
	terminals, err := s.terminals.List(ctx)
	if err != nil {
		return nil, errs.Storage(err)
	}
	return terminals, nil
}

// IsAvailable — true, если терминал существует, включён и свободен.
// Несуществующий терминал — просто false, без ошибки.
func (s *TerminalService) IsAvailable(ctx context.Context, terminalID string) (bool, error) {
	terminal, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return false, errs.Storage(err)
	}
	return terminal != nil && terminal.Available(), nil
}

// Occupy занимает терминал под сессию.
func (s *TerminalService) Occupy(ctx context.Context, terminalID, sessionID, occupantLabel string) (*model.Terminal, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	terminal, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if terminal == nil {
		return nil, errs.NotFound("terminal", terminalID)
	}

	return s.occupy(ctx, terminal, sessionID, occupantLabel, time.Now().UTC())
}

// occupy выполняет занятие без захвата gate: вызывается движком сессий,
// который уже держит критическую секцию.
func (s *TerminalService) occupy(ctx context.Context, terminal *model.Terminal, sessionID, occupantLabel string, now time.Time) (*model.Terminal, error) {
	if !terminal.Available() {
		return nil, errs.Conflictf("terminal %q is not available", terminal.Name)
	}

	terminal.Status = model.TerminalStatusOccupied
	terminal.CurrentSessionID = &sessionID
	terminal.OccupantLabel = &occupantLabel
	terminal.LastActivity = &now

	if err := s.terminals.Update(ctx, terminal); err != nil {
		return nil, errs.Storage(fmt.Errorf("occupy terminal: %w", err))
	}

	s.bus.Emit(events.TerminalUpdated, terminal)
	return terminal, nil
}

// Release освобождает терминал.
func (s *TerminalService) Release(ctx context.Context, terminalID string) (*model.Terminal, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.release(ctx, terminalID, time.Now().UTC())
}

// release выполняет освобождение без захвата gate. Терминал в MAINTENANCE или
// OFFLINE остаётся в своём статусе, но данные о занятости очищаются.
func (s *TerminalService) release(ctx context.Context, terminalID string, now time.Time) (*model.Terminal, error) {
	terminal, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if terminal == nil {
		return nil, errs.NotFound("terminal", terminalID)
	}

	if terminal.Status == model.TerminalStatusOccupied {
		terminal.Status = model.TerminalStatusAvailable
	}
	terminal.CurrentSessionID = nil
	terminal.OccupantLabel = nil
	terminal.LastActivity = &now

	if err := s.terminals.Update(ctx, terminal); err != nil {
		return nil, errs.Storage(fmt.Errorf("release terminal: %w", err))
	}

	s.bus.Emit(events.TerminalUpdated, terminal)
	return terminal, nil
}

// SetMaintenance переводит терминал в обслуживание. Занятый терминал трогать нельзя.
func (s *TerminalService) SetMaintenance(ctx context.Context, terminalID string) (*model.Terminal, error) {
	return s.setStatus(ctx, terminalID, func(t *model.Terminal) {
		t.Status = model.TerminalStatusMaintenance
	})
}

// SetActive возвращает терминал в строй.
func (s *TerminalService) SetActive(ctx context.Context, terminalID string) (*model.Terminal, error) {
	return s.setStatus(ctx, terminalID, func(t *model.Terminal) {
		t.Status = model.TerminalStatusAvailable
		t.IsActive = true
	})
}

// Deactivate — мягкое удаление: терминал остаётся в истории, но недоступен.
func (s *TerminalService) Deactivate(ctx context.Context, terminalID string) (*model.Terminal, error) {
	return s.setStatus(ctx, terminalID, func(t *model.Terminal) {
		t.Status = model.TerminalStatusOffline
		t.IsActive = false
	})
}

func (s *TerminalService) setStatus(ctx context.Context, terminalID string, apply func(*model.Terminal)) (*model.Terminal, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	terminal, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if terminal == nil {
		return nil, errs.NotFound("terminal", terminalID)
	}
	if terminal.Status == model.TerminalStatusOccupied {
		return nil, errs.Conflictf("terminal %q is occupied", terminal.Name)
	}

	apply(terminal)

	if err := s.terminals.Update(ctx, terminal); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Terminal status changed",
		zap.String("terminal_id", terminal.ID),
		zap.String("status", string(terminal.Status)),
	)
	s.bus.Emit(events.TerminalUpdated, terminal)

	return terminal, nil
}
