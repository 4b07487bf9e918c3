package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/elitefarmers/farmhand/internal/domain/guild"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Renders one guild's per-crop top lists.
// ══════════════════════════════════════════════════════════════════════════════

// BoardViewCache caches rendered board views per guild.
type BoardViewCache interface {
	Get(ctx context.Context, guildID string, dest interface{}) error
	Put(ctx context.Context, guildID string, view interface{}) error
}

// GetLeaderboardQuery contains the parameters for a board lookup.
type GetLeaderboardQuery struct {
	// GuildID identifies the community board to render.
	GuildID string
}

// Validate checks the query parameters.
func (q *GetLeaderboardQuery) Validate() error {
	if strings.TrimSpace(q.GuildID) == "" {
		return shared.NewDomainError("query", "GetLeaderboard", shared.ErrEmptyValue, "guild id is required")
	}
	return nil
}

// BoardEntryDTO is one placement on a crop's top list.
type BoardEntryDTO struct {
	// Rank is the 1-based position.
	Rank int `json:"rank"`

	PlayerUUID string `json:"player_uuid"`
	PlayerName string `json:"player_name"`
	Collected  int64  `json:"collected"`
	Date       int    `json:"date"`
	DateText   string `json:"date_text"`

	// Position and Participants carry the claimed contest placement when
	// known.
	Position     *int `json:"position,omitempty"`
	Participants *int `json:"participants,omitempty"`
}

// GetLeaderboardResult is the rendered board for one guild.
type GetLeaderboardResult struct {
	GuildID string `json:"guild_id"`

	// CutoffDate is the earliest counted contest date.
	CutoffDate     int    `json:"cutoff_date"`
	CutoffDateText string `json:"cutoff_date_text"`

	// Crops maps crop name to its top list, only for tracked crops.
	Crops map[string][]BoardEntryDTO `json:"crops"`

	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler handles board lookups.
type GetLeaderboardHandler struct {
	guilds guild.Repository
	views  BoardViewCache
	logger *slog.Logger
}

// NewGetLeaderboardHandler creates a new board query handler. The view
// cache may be nil.
func NewGetLeaderboardHandler(guilds guild.Repository, views BoardViewCache, logger *slog.Logger) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		guilds: guilds,
		views:  views,
		logger: logger,
	}
}

// Handle renders the board, serving the cached view when present.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if h.views != nil {
		var cached GetLeaderboardResult
		if err := h.views.Get(ctx, query.GuildID, &cached); err == nil {
			metrics.RecordCacheHit("board")
			return &cached, nil
		}
		metrics.RecordCacheMiss("board")
	}

	settings, err := h.guilds.LoadSettings(ctx, query.GuildID)
	if err != nil {
		if !errors.Is(err, guild.ErrGuildNotFound) {
			return nil, err
		}
		settings = guild.DefaultSettings(query.GuildID)
	}

	board, err := h.guilds.LoadBoard(ctx, query.GuildID)
	if err != nil {
		if !errors.Is(err, guild.ErrGuildNotFound) {
			return nil, err
		}
		board = guild.NewBoard(query.GuildID)
	}

	result := &GetLeaderboardResult{
		GuildID:        query.GuildID,
		CutoffDate:     int(settings.CutoffDate),
		CutoffDateText: settings.CutoffDate.String(),
		Crops:          make(map[string][]BoardEntryDTO, len(settings.Crops)),
		GeneratedAt:    time.Now().UTC(),
	}

	for _, crop := range settings.Crops {
		slot := board.Slots[crop]
		entries := make([]BoardEntryDTO, 0, len(slot))
		for i, e := range slot {
			entries = append(entries, BoardEntryDTO{
				Rank:         i + 1,
				PlayerUUID:   e.OwnerUUID,
				PlayerName:   e.OwnerName,
				Collected:    e.Collected,
				Date:         int(e.Date),
				DateText:     e.Date.String(),
				Position:     e.Position,
				Participants: e.Participants,
			})
		}
		result.Crops[string(crop)] = entries
	}

	if h.views != nil {
		if err := h.views.Put(ctx, query.GuildID, result); err != nil {
			h.logger.Warn("failed to cache board view",
				slog.String("guild_id", query.GuildID),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}
