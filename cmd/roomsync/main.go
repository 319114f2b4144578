package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/assistant"
	"github.com/example/roomsync/internal/auth"
	"github.com/example/roomsync/internal/catalog"
	"github.com/example/roomsync/internal/config"
	httptransport "github.com/example/roomsync/internal/http"
	"github.com/example/roomsync/internal/logging"
	"github.com/example/roomsync/internal/persistence"
	"github.com/example/roomsync/internal/persistence/memory"
	"github.com/example/roomsync/internal/persistence/sqlite"
	"github.com/example/roomsync/internal/persistence/sqlite/migration"
	"github.com/example/roomsync/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("roomsync exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger, time.Now)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.clock.Start(ctx); err != nil {
		return fmt.Errorf("start clock: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("roomsync API listening", "addr", server.Addr, "store", a.storeKind)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// app is the fully wired service graph.
type app struct {
	handler   http.Handler
	clock     *application.ClockService
	store     persistence.Store
	storeKind string
	logger    *slog.Logger
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time) (*app, error) {
	store, kind, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{store: store, storeKind: kind, logger: logger}

	roomRepo := newRoomRepositoryAdapter(store.Rooms(), now)
	scheduleRepo := newScheduleRepositoryAdapter(store.Schedules(), now)
	userRepo := newUserRepositoryAdapter(store.Users())

	roomService := application.NewRoomServiceWithLogger(roomRepo, logger)
	scheduleService := application.NewScheduleServiceWithLogger(scheduleRepo, roomService, uuid.NewString, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, now, logger)

	if _, err := roomService.SeedRooms(ctx, catalog.Rooms()); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("seed rooms: %w", err)
	}
	if cfg.SeedSchedule {
		if _, err := scheduleService.Seed(ctx, catalog.Schedule(now().Year())); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("seed schedule: %w", err)
		}
	}

	provider := scheduler.NewProvider(now, time.Local, cfg.Sunday())
	a.clock = application.NewClockServiceWithLogger(provider, cfg.RefreshInterval, logger)
	occupancyService := application.NewOccupancyServiceWithLogger(roomService, scheduleService, a.clock, now, logger)
	scheduleService.OnChange(occupancyService.Invalidate)

	passkeyHash, err := application.HashPasskey(cfg.AdminPasskey, application.DefaultArgon2idParams)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("hash admin passkey: %w", err)
	}
	issuer, err := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	authService := application.NewAuthServiceWithLogger(userRepo, newTokenIssuerAdapter(issuer), passkeyHash, uuid.NewString, now, logger)

	assistantService := application.NewAssistantServiceWithLogger(newCompleter(ctx, cfg, logger), roomService, scheduleService, logger)

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Rooms:      httptransport.NewRoomHandler(roomService, occupancyService, cfg.PublicBaseURL, logger),
		Occupancy:  httptransport.NewOccupancyHandler(occupancyService, logger),
		Schedules:  httptransport.NewScheduleHandler(scheduleService, logger),
		Bookings:   httptransport.NewBookingHandler(scheduleService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Assistant:  httptransport.NewAssistantHandler(assistantService, logger),
		Sessions:   authService,
		Logger:     logger,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
	return a, nil
}

// Close stops the refresh job and releases the store.
func (a *app) Close(ctx context.Context) {
	if a.clock != nil {
		a.clock.Stop(ctx)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close storage", "error", err)
		}
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, string, error) {
	if !cfg.UseSQLite() {
		return memory.New(), "memory", nil
	}

	sqliteConfig := migration.DefaultSQLiteConfig(cfg.SQLiteDSN)
	if cfg.SQLiteDSN == migration.MemoryDSN {
		sqliteConfig = migration.InMemorySQLiteConfig()
	}
	store, err := sqlite.Open(ctx, sqliteConfig, logger)
	if err != nil {
		return nil, "", fmt.Errorf("open sqlite store: %w", err)
	}
	return store, "sqlite", nil
}

// newCompleter returns nil when no API key is configured, which keeps the
// assistant answering with its not-configured message.
func newCompleter(ctx context.Context, cfg config.Config, logger *slog.Logger) application.Completer {
	if cfg.AssistantAPIKey == "" {
		logger.Info("assistant disabled: no API key configured")
		return nil
	}
	completer, err := assistant.NewGeminiCompleter(ctx, cfg.AssistantAPIKey, assistant.Options{
		Model:         cfg.AssistantModel,
		Timeout:       cfg.AssistantTimeout,
		RatePerSecond: cfg.AssistantRate,
	})
	if err != nil {
		logger.Warn("assistant disabled", "error", err)
		return nil
	}
	return completer
}
