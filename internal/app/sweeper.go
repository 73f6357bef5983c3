package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/service"
)

// Sweeper — фоновая задача хостинг-процесса: закрывает подтверждённые брони,
// чьё окно уже прошло. Ядро само по себе брони не просрочивает.
type Sweeper struct {
	bookings *service.BookingService
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

func NewSweeper(bookings *service.BookingService, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		bookings: bookings,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновый цикл.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting booking sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop останавливает цикл.
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping booking sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// Первый проход сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Booking sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Booking sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	completed, err := s.bookings.CompleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to sweep expired bookings", zap.Error(err))
		return
	}
	if completed > 0 {
		s.logger.Info("Expired bookings completed", zap.Int("count", completed))
	}
}
