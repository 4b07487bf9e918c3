// Package jobs contains implementations of scheduled jobs for the farming
// weight service.
package jobs

import (
	"context"
	"log/slog"

	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// SWEEP CACHES JOB
// ══════════════════════════════════════════════════════════════════════════════

// Sweeper evicts idle entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// SweepCachesJob evicts idle entries from the in-process result caches.
// Eviction is advisory; entries also refresh on access, so the sweep only
// bounds memory between lookups.
type SweepCachesJob struct {
	sweepers []Sweeper
	logger   *slog.Logger
}

// NewSweepCachesJob creates a sweep job over the given caches.
func NewSweepCachesJob(logger *slog.Logger, sweepers ...Sweeper) *SweepCachesJob {
	return &SweepCachesJob{
		sweepers: sweepers,
		logger:   logger,
	}
}

// Name returns the unique job name.
func (j *SweepCachesJob) Name() string {
	return "sweep_caches"
}

// Description returns a human-readable description.
func (j *SweepCachesJob) Description() string {
	return "Evicts idle entries from in-process result caches"
}

// Run performs one sweep over every registered cache.
func (j *SweepCachesJob) Run(ctx context.Context) error {
	evicted := 0
	for _, s := range j.sweepers {
		evicted += s.Sweep()
	}

	if evicted > 0 {
		metrics.RecordCacheEvictions(evicted)
		j.logger.Debug("cache sweep complete", "evicted", evicted)
	}

	return ctx.Err()
}
