package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/elitefarmers/farmhand/internal/application/identity"
	"github.com/elitefarmers/farmhand/internal/application/snapshot"
	"github.com/elitefarmers/farmhand/internal/domain/contest"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/internal/infrastructure/cache"
	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CONTESTS QUERY
// Aggregates a player's contest history across every profile into personal
// bests, lifetime counters, medals, and the recent participation window.
// ══════════════════════════════════════════════════════════════════════════════

// GetContestsQuery contains the parameters for a contest record lookup.
type GetContestsQuery struct {
	// Player is a Minecraft name or UUID.
	Player string
}

// Validate checks the query parameters.
func (q *GetContestsQuery) Validate() error {
	if strings.TrimSpace(q.Player) == "" {
		return shared.NewDomainError("query", "GetContests", shared.ErrEmptyValue, "player is required")
	}
	return nil
}

// ContestDTO is one contest participation.
type ContestDTO struct {
	Crop         string `json:"crop"`
	Date         int    `json:"date"`
	DateText     string `json:"date_text"`
	Collected    int64  `json:"collected"`
	Position     *int   `json:"position,omitempty"`
	Participants *int   `json:"participants,omitempty"`
	Medal        string `json:"medal"`
}

// BestDTO is a player's personal best for one crop.
type BestDTO struct {
	Collected    int64  `json:"collected"`
	Date         int    `json:"date"`
	DateText     string `json:"date_text"`
	Position     *int   `json:"position,omitempty"`
	Participants *int   `json:"participants,omitempty"`
	ProfileName  string `json:"profile_name"`
}

// MedalsDTO is a gold/silver/bronze tally.
type MedalsDTO struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// GetContestsResult is the aggregated contest record for a player.
type GetContestsResult struct {
	PlayerUUID string `json:"player_uuid"`
	PlayerName string `json:"player_name"`

	// Bests holds the per-crop personal bests, keyed by crop name.
	Bests map[string]BestDTO `json:"bests"`

	Participations int `json:"participations"`
	FirstPlaces    int `json:"first_places"`

	// CurrentMedals is the unspent inventory; TotalMedals the lifetime
	// tally from claimed history.
	CurrentMedals MedalsDTO `json:"current_medals"`
	TotalMedals   MedalsDTO `json:"total_medals"`

	// Recent is the latest participation window across all crops.
	Recent []ContestDTO `json:"recent"`

	FetchedAt time.Time `json:"fetched_at"`
}

// GetContestsHandler handles contest record lookups.
type GetContestsHandler struct {
	resolver  *identity.Resolver
	snapshots *snapshot.Service
	records   contest.RecordRepository
	results   *cache.Cache[*GetContestsResult]
	logger    *slog.Logger
}

// NewGetContestsHandler creates a new contest query handler.
func NewGetContestsHandler(
	resolver *identity.Resolver,
	snapshots *snapshot.Service,
	records contest.RecordRepository,
	results *cache.Cache[*GetContestsResult],
	logger *slog.Logger,
) *GetContestsHandler {
	return &GetContestsHandler{
		resolver:  resolver,
		snapshots: snapshots,
		records:   records,
		results:   results,
		logger:    logger,
	}
}

// Handle executes the contest record lookup.
func (h *GetContestsHandler) Handle(ctx context.Context, query GetContestsQuery) (*GetContestsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uuid, err := h.resolver.Resolve(ctx, query.Player)
	if err != nil {
		return nil, err
	}

	return h.results.GetOrCompute(ctx, uuid, func(ctx context.Context) (*GetContestsResult, error) {
		metrics.RecordCacheMiss("contests")
		return h.compute(ctx, uuid)
	})
}

func (h *GetContestsHandler) compute(ctx context.Context, uuid string) (*GetContestsResult, error) {
	snap, err := h.snapshots.Refresh(ctx, uuid)
	if err != nil {
		return nil, err
	}

	prev, err := h.records.LoadRecord(ctx, uuid)
	if err != nil && !errors.Is(err, contest.ErrRecordNotFound) {
		return nil, err
	}

	record := contest.Aggregate(prev, snap, h.logger)

	if err := h.records.SaveRecord(ctx, uuid, record); err != nil {
		// The aggregation stands on its own; only the monotonic floor
		// for the next run is lost.
		h.logger.Warn("failed to persist contest record",
			slog.String("player_uuid", uuid),
			slog.String("error", err.Error()),
		)
	}

	result := &GetContestsResult{
		PlayerUUID:     snap.PlayerUUID,
		PlayerName:     snap.PlayerName,
		Bests:          make(map[string]BestDTO, len(record.Bests)),
		Participations: record.Participations,
		FirstPlaces:    record.FirstPlaces,
		CurrentMedals:  MedalsDTO(record.CurrentMedals),
		TotalMedals:    MedalsDTO(record.TotalMedals),
		Recent:         make([]ContestDTO, 0, len(record.RecentOverall)),
		FetchedAt:      snap.FetchedAt,
	}

	for crop, best := range record.Bests {
		result.Bests[string(crop)] = BestDTO{
			Collected:    best.Collected,
			Date:         int(best.Date),
			DateText:     best.Date.String(),
			Position:     best.Position,
			Participants: best.Participants,
			ProfileName:  best.ProfileName,
		}
	}

	for _, c := range record.RecentOverall {
		result.Recent = append(result.Recent, ContestDTO{
			Crop:         string(c.Crop),
			Date:         int(c.Date),
			DateText:     c.Date.String(),
			Collected:    c.Collected,
			Position:     c.Position,
			Participants: c.Participants,
			Medal:        c.Medal().String(),
		})
	}

	return result, nil
}
