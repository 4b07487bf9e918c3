// Package query contains read operations following CQRS pattern.
// Queries never modify state beyond refreshing caches and snapshots - each
// query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/elitefarmers/farmhand/internal/application/identity"
	"github.com/elitefarmers/farmhand/internal/application/snapshot"
	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/internal/infrastructure/cache"
	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET WEIGHT QUERY
// Computes the farming weight for a player's best (or named) profile.
// ══════════════════════════════════════════════════════════════════════════════

// GetWeightQuery contains the parameters for a weight lookup.
type GetWeightQuery struct {
	// Player is a Minecraft name or UUID.
	Player string

	// ProfileName optionally pins the lookup to one profile instead of
	// the highest-scoring one.
	ProfileName string
}

// Validate checks the query parameters.
func (q *GetWeightQuery) Validate() error {
	if strings.TrimSpace(q.Player) == "" {
		return shared.NewDomainError("query", "GetWeight", shared.ErrEmptyValue, "player is required")
	}
	return nil
}

// GetWeightResult is the computed weight for one profile.
type GetWeightResult struct {
	// PlayerUUID is the canonical undashed UUID.
	PlayerUUID string `json:"player_uuid"`

	// PlayerName is the display name reported by the provider.
	PlayerName string `json:"player_name"`

	// ProfileID and ProfileName identify the selected profile.
	ProfileID   string `json:"profile_id"`
	ProfileName string `json:"profile_name"`

	// Hidden is true when the profile's collections are not exposed; the
	// per-crop breakdown is empty in that case.
	Hidden bool `json:"hidden"`

	// Crops is the per-crop weight breakdown.
	Crops map[string]float64 `json:"crops,omitempty"`

	// Bonus is the flat bonus weight on top of the crop sum.
	Bonus float64 `json:"bonus"`

	// Total is the final weight, or -1 for hidden profiles.
	Total float64 `json:"total"`

	// FetchedAt is when the underlying snapshot was taken.
	FetchedAt time.Time `json:"fetched_at"`
}

// GetWeightHandler handles weight lookups.
type GetWeightHandler struct {
	resolver  *identity.Resolver
	snapshots *snapshot.Service
	results   *cache.Cache[*GetWeightResult]
}

// NewGetWeightHandler creates a new weight query handler.
func NewGetWeightHandler(
	resolver *identity.Resolver,
	snapshots *snapshot.Service,
	results *cache.Cache[*GetWeightResult],
) *GetWeightHandler {
	return &GetWeightHandler{
		resolver:  resolver,
		snapshots: snapshots,
		results:   results,
	}
}

// Handle executes the weight lookup. Concurrent lookups for the same player
// and profile collapse into a single refresh.
func (h *GetWeightHandler) Handle(ctx context.Context, query GetWeightQuery) (*GetWeightResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uuid, err := h.resolver.Resolve(ctx, query.Player)
	if err != nil {
		return nil, err
	}

	key := uuid + "|" + strings.ToLower(query.ProfileName)
	return h.results.GetOrCompute(ctx, key, func(ctx context.Context) (*GetWeightResult, error) {
		metrics.RecordCacheMiss("weight")
		return h.compute(ctx, uuid, query.ProfileName)
	})
}

func (h *GetWeightHandler) compute(ctx context.Context, uuid, profileName string) (*GetWeightResult, error) {
	snap, err := h.snapshots.Refresh(ctx, uuid)
	if err != nil {
		return nil, err
	}

	selection, err := profile.SelectBest(snap.Profiles, profileName)
	if err != nil {
		return nil, shared.WrapError("query", "GetWeight", shared.ErrNotFound,
			"no matching profile", err)
	}

	result := &GetWeightResult{
		PlayerUUID:  snap.PlayerUUID,
		PlayerName:  snap.PlayerName,
		ProfileID:   selection.Profile.ID,
		ProfileName: selection.Profile.Name,
		Hidden:      selection.Weight.Hidden(),
		Bonus:       selection.Weight.Bonus,
		Total:       selection.Weight.Total,
		FetchedAt:   snap.FetchedAt,
	}

	if !result.Hidden {
		result.Crops = make(map[string]float64, len(selection.Weight.Crops))
		for crop, w := range selection.Weight.Crops {
			result.Crops[string(crop)] = w
		}
	}

	return result, nil
}
