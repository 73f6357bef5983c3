package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/app"
	"github.com/oceanz0604/gamecafe/internal/config"
	httpctl "github.com/oceanz0604/gamecafe/internal/controller/http"
	"github.com/oceanz0604/gamecafe/internal/events"
	"github.com/oceanz0604/gamecafe/internal/rates"
	"github.com/oceanz0604/gamecafe/internal/service"
	"github.com/oceanz0604/gamecafe/internal/store"
	"github.com/oceanz0604/gamecafe/internal/store/memory"
	"github.com/oceanz0604/gamecafe/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pg, err := postgres.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}

		migrator, err := app.NewMigrator(pg.Pool(), cfg.MigrationsPath)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrator.Close()

		st = pg
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, data will not survive a restart")
		st = memory.New()
	}
	defer st.Close()

	table, err := rates.Load(cfg.RatesPath)
	if err != nil {
		logger.Fatal("Failed to load rate table", zap.Error(err))
	}

	hub := events.NewHub(logger)
	gate := service.NewGate()

	terminals := service.NewTerminalService(gate, st.Terminals(), hub, logger)
	billing := service.NewBillingService(gate, st.Members(), st.Transactions(), hub, logger)
	members := service.NewMemberService(gate, st.Members(), st.Sessions(), hub, logger)
	sessions := service.NewSessionService(gate, st.Members(), st.Sessions(), terminals, billing, table, hub, logger, service.StartPolicy{})
	bookings := service.NewBookingService(gate, st.Members(), st.Terminals(), st.Bookings(), table, hub, logger)

	sweeper := app.NewSweeper(bookings, time.Minute, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	handler := httpctl.NewHandler(members, terminals, sessions, billing, bookings, logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Starting gamecafe server",
			zap.String("environment", cfg.Environment),
			zap.String("addr", cfg.ListenAddr),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
