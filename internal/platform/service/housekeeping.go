package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/store"
)

const (
	DefaultHousekeepingInterval = time.Hour
	// PendingMFATTL is how long an unconfirmed TOTP enrollment is kept.
	PendingMFATTL = 24 * time.Hour
	// DeadGrantTTL is how long an expired, non-renewable provider grant is
	// kept before it is removed.
	DeadGrantTTL = 30 * 24 * time.Hour
)

// HousekeepingService periodically drops abandoned TOTP enrollments and
// provider grants that can no longer be used.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A zero or negative
// interval defaults to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs cleanup now and then every Interval until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
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

// Cleanup performs one pass. Each step is independent; a failure in one does
// not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := clock(s.Now)

	if n, err := s.Store.Users().ClearStalePendingMFA(ctx, now.Add(-PendingMFATTL)); err != nil {
		s.Logger.Error("failed to clear stale MFA enrollments", "error", err)
	} else if n > 0 {
		s.Logger.Info("cleared stale MFA enrollments", "count", n)
	}

	if n, err := s.Store.LinkedAccounts().DeleteDeadLinkedAccounts(ctx, now.Add(-DeadGrantTTL)); err != nil {
		s.Logger.Error("failed to delete dead provider grants", "error", err)
	} else if n > 0 {
		s.Logger.Info("deleted dead provider grants", "count", n)
	}
}
