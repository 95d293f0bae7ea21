// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package server

import (
	"context"
	"time"

	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/cache"
	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/ratelimit"
)

// MaintenanceService periodically sweeps idle rate-limit records, expired
// sessions and expired cache memo entries. Request latency never pays for
// any of this cleanup.
type MaintenanceService struct {
	interval time.Duration
	limiter  *ratelimit.Limiter
	sessions auth.SessionStore
	cache    *cache.Cache
}

// NewMaintenanceService builds the sweep service.
func NewMaintenanceService(interval time.Duration, limiter *ratelimit.Limiter, sessions auth.SessionStore, ca *cache.Cache) *MaintenanceService {
	return &MaintenanceService{
		interval: interval,
		limiter:  limiter,
		sessions: sessions,
		cache:    ca,
	}
}

// Serve sweeps on every tick until ctx is canceled.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *MaintenanceService) sweep(ctx context.Context) {
	start := time.Now()

	limits, err := s.limiter.Sweep(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Rate limit sweep failed")
	}

	sessions, err := s.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		logging.Warn().Err(err).Msg("Session sweep failed")
	}

	memo := s.cache.GC()

	logging.Debug().
		Int("ratelimit_removed", limits).
		Int("sessions_removed", sessions).
		Int("cache_memo_removed", memo).
		Dur("duration", time.Since(start)).
		Msg("Maintenance sweep completed")
}

func (s *MaintenanceService) String() string {
	return "maintenance-sweep"
}
