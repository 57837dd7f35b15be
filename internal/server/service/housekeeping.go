package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/resetkeys"
)

// HousekeepingService periodically drops reset records that can no longer
// be redeemed so the in-memory store doesn't grow without bound.
type HousekeepingService struct {
	ResetKeys resetkeys.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Window    time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(keys resetkeys.Store, logger *slog.Logger, interval, window time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if window <= 0 {
		window = domain.DefaultResetWindow
	}

	return &HousekeepingService{
		ResetKeys: keys,
		Logger:    logger,
		Interval:  interval,
		Window:    window,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs a single purge pass and returns how many records went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int {
	n, err := s.ResetKeys.Purge(ctx, s.Now().Add(-s.Window))
	if err != nil {
		s.Logger.Error("failed to purge expired reset keys", "error", err)
		return 0
	}
	s.Logger.Debug("housekeeping cleanup completed", "purged_reset_keys", n)
	return n
}
