package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/roomsync/internal/scheduler"
)

// DefaultRefreshInterval is how often the cached time context is recomputed.
const DefaultRefreshInterval = time.Minute

// ClockService keeps the shared time context current. Reads never block on
// the refresh job.
type ClockService struct {
	provider *scheduler.Provider
	interval time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewClockService wraps provider with a refresh job running every interval.
func NewClockService(provider *scheduler.Provider, interval time.Duration) *ClockService {
	return NewClockServiceWithLogger(provider, interval, nil)
}

// NewClockServiceWithLogger wraps provider with a specified logger.
func NewClockServiceWithLogger(provider *scheduler.Provider, interval time.Duration, logger *slog.Logger) *ClockService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	logger = defaultLogger(logger)
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	return &ClockService{
		provider: provider,
		interval: interval,
		cron:     cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		logger:   logger,
	}
}

// Current returns the cached time context.
func (s *ClockService) Current() scheduler.TimeContext {
	return s.provider.Current()
}

// Refresh recomputes the time context immediately.
func (s *ClockService) Refresh() scheduler.TimeContext {
	return s.provider.Refresh()
}

// Start schedules the refresh job. It returns immediately.
func (s *ClockService) Start(ctx context.Context) error {
	if s == nil || s.provider == nil {
		return fmt.Errorf("ClockService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "ClockService", "Start", "interval", s.interval.String())

	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		tc := s.provider.Refresh()
		logger.Debug("time context refreshed", "context", tc.String())
	}))
	s.cron.Start()
	logger.InfoContext(ctx, "time context refresh started", "policy", string(s.provider.Policy()))
	return nil
}

// Stop halts the refresh job and waits for a running refresh to finish or
// ctx to expire.
func (s *ClockService) Stop(ctx context.Context) {
	if s == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
