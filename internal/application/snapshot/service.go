// Package snapshot contains the refresh pipeline shared by every read and
// write use case: fetch from the provider, fall back to the persisted copy
// on transient failure, reconcile, and persist the merged result.
package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// Fetcher retrieves a fresh snapshot from the upstream provider.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, playerUUID string) (*profile.Snapshot, error)
}

// Service produces the best available snapshot for a player.
type Service struct {
	fetcher   Fetcher
	repo      profile.SnapshotRepository
	transient func(error) bool
	logger    *slog.Logger
}

// NewService creates a snapshot service. The transient classifier decides
// which fetch errors allow serving the persisted copy instead.
func NewService(fetcher Fetcher, repo profile.SnapshotRepository, transient func(error) bool, logger *slog.Logger) *Service {
	if transient == nil {
		transient = func(error) bool { return false }
	}
	return &Service{
		fetcher:   fetcher,
		repo:      repo,
		transient: transient,
		logger:    logger,
	}
}

// Refresh returns the reconciled snapshot for a player.
//
// On a successful fetch the fresh data is merged with the persisted copy,
// the merge is stored, and the merged snapshot is returned. On a transient
// fetch failure the persisted copy is served stale; when neither source has
// data the error wraps shared.ErrNoData.
func (s *Service) Refresh(ctx context.Context, playerUUID string) (*profile.Snapshot, error) {
	start := time.Now()
	fresh, err := s.fetcher.FetchSnapshot(ctx, playerUUID)
	metrics.RecordProviderFetchLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		if !s.transient(err) {
			metrics.RecordProviderFetch("error")
			return nil, err
		}
		metrics.RecordProviderFetch("transient")

		saved, loadErr := s.repo.LoadSnapshot(ctx, playerUUID)
		if loadErr != nil {
			if errors.Is(loadErr, profile.ErrSnapshotNotFound) {
				return nil, shared.WrapError("snapshot", "Refresh", shared.ErrNoData,
					"provider unavailable and no stored snapshot", err)
			}
			return nil, loadErr
		}

		metrics.RecordSnapshotFallback()
		s.logger.Warn("serving stale snapshot after transient fetch failure",
			slog.String("player_uuid", playerUUID),
			slog.String("error", err.Error()),
		)
		return saved, nil
	}
	metrics.RecordProviderFetch("success")

	saved, loadErr := s.repo.LoadSnapshot(ctx, playerUUID)
	if loadErr != nil && !errors.Is(loadErr, profile.ErrSnapshotNotFound) {
		return nil, loadErr
	}

	merged := profile.Merge(saved, fresh)
	metrics.RecordSnapshotMerge()

	if saveErr := s.repo.SaveSnapshot(ctx, merged); saveErr != nil {
		// The merged snapshot is still good; losing one persist only
		// costs the next fallback freshness.
		s.logger.Warn("failed to persist merged snapshot",
			slog.String("player_uuid", playerUUID),
			slog.String("error", saveErr.Error()),
		)
	}

	return merged, nil
}
