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

// BookingService — резервы терминалов на будущее. Бронь не занимает терминал:
// живой занятостью управляет только движок сессий.
type BookingService struct {
	gate      *Gate
	members   store.MemberRepo
	terminals store.TerminalRepo
	bookings  store.BookingRepo
	rates     *rates.Table
	bus       events.Bus
	logger    *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	gate *Gate,
	members store.MemberRepo,
	terminals store.TerminalRepo,
	bookings store.BookingRepo,
	table *rates.Table,
	bus events.Bus,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		gate:      gate,
		members:   members,
		terminals: terminals,
		bookings:  bookings,
		rates:     table,
		bus:       bus,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking создаёт подтверждённую бронь, если окно не пересекается с
// другими подтверждёнными бронями того же терминала.
func (s *BookingService) CreateBooking(ctx context.Context, memberID *string, guestLabel, terminalID string, start, end time.Time) (*model.Booking, error) {
	if !end.After(start) {
		return nil, errs.Validationf("booking end must be after start")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	terminal, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if terminal == nil {
		return nil, errs.NotFound("terminal", terminalID)
	}
	if !terminal.IsActive {
		return nil, errs.Conflictf("terminal %q is not active", terminal.Name)
	}

	tier := model.TierGuest
	if memberID != nil {
		member, err := s.members.GetByID(ctx, *memberID)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if member == nil {
			return nil, errs.NotFound("member", *memberID)
		}
		if !member.IsActive() {
			return nil, errs.Inactive("member", member.Username)
		}
		tier = member.Tier
	} else if guestLabel == "" {
		return nil, errs.Validationf("guest label is required for guest bookings")
	}

	confirmed := model.BookingStatusConfirmed
	existing, err := s.bookings.ListByTerminal(ctx, terminalID, &confirmed)
	if err != nil {
		return nil, errs.Storage(err)
	}
	for _, b := range existing {
		if b.Overlaps(start, end) {
			return nil, errs.Conflictf("terminal %q is already booked from %s to %s",
				terminal.Name, b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))
		}
	}

	rate, err := s.rates.Lookup(terminal.Category, tier)
	if err != nil {
		return nil, err
	}

	duration := ceilMinutes(end.Sub(start))
	booking := &model.Booking{
		ID:              uuid.NewString(),
		MemberID:        memberID,
		TerminalID:      terminal.ID,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: duration,
		HourlyRate:      rate,
		EstimatedCost:   money.Cost(duration, rate),
		Status:          model.BookingStatusConfirmed,
		CreatedAt:       s.now(),
	}
	if memberID == nil {
		booking.GuestLabel = &guestLabel
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("terminal", terminal.Name),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	s.bus.Emit(events.BookingCreated, booking)

	return booking, nil
}

// CancelBooking отменяет подтверждённую бронь.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	return s.transition(ctx, bookingID, model.BookingStatusCancelled)
}

// CompleteBooking помечает бронь завершённой.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	return s.transition(ctx, bookingID, model.BookingStatusCompleted)
}

func (s *BookingService) transition(ctx context.Context, bookingID string, to model.BookingStatus) (*model.Booking, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if booking == nil {
		return nil, errs.NotFound("booking", bookingID)
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, errs.Conflictf("booking %q is not confirmed", bookingID)
	}

	booking.Status = to

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, errs.Storage(err)
	}

	s.logger.Info("Booking status changed",
		zap.String("booking_id", booking.ID),
		zap.String("status", string(to)),
	)
	s.bus.Emit(events.BookingUpdated, booking)

	return booking, nil
}

// ListByTerminal — брони терминала, опционально по статусу.
func (s *BookingService) ListByTerminal(ctx context.Context, terminalID string, status *model.BookingStatus) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListByTerminal(ctx, terminalID, status)
	if err != nil {
		return nil, errs.Storage(err)
	}
	return bookings, nil
}

// CompleteExpired завершает подтверждённые брони с истёкшим окном.
// Вызывается фоновым свипером хостинг-процесса.
func (s *BookingService) CompleteExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := func() ([]*model.Booking, error) {
		s.gate.Lock()
		defer s.gate.Unlock()
		return s.bookings.ListExpired(ctx, now)
	}()
	if err != nil {
		return 0, errs.Storage(err)
	}

	completed := 0
	for _, booking := range expired {
		if _, err := s.CompleteBooking(ctx, booking.ID); err != nil {
			s.logger.Warn("Failed to complete expired booking",
				zap.String("booking_id", booking.ID),
				zap.Error(err),
			)
			continue
		}
		completed++
	}

	return completed, nil
}
