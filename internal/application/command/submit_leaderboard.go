// Package command contains write operations following CQRS pattern.
// Commands mutate leaderboard and settings state; each command is a
// self-contained use case with its own request/response types.
package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/elitefarmers/farmhand/internal/application/identity"
	"github.com/elitefarmers/farmhand/internal/application/snapshot"
	"github.com/elitefarmers/farmhand/internal/domain/contest"
	"github.com/elitefarmers/farmhand/internal/domain/guild"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT LEADERBOARD COMMAND
// Refreshes a player's contest record and applies their eligible bests to
// one guild's per-crop top lists.
// ══════════════════════════════════════════════════════════════════════════════

// BoardInvalidator drops a cached leaderboard view after a board change.
type BoardInvalidator interface {
	Invalidate(ctx context.Context, guildID string) error
}

// SubmitLeaderboardCommand contains the parameters for a submission.
type SubmitLeaderboardCommand struct {
	// GuildID identifies the community whose board receives the scores.
	GuildID string

	// Player is a Minecraft name or UUID.
	Player string
}

// Validate checks the command parameters.
func (c *SubmitLeaderboardCommand) Validate() error {
	if strings.TrimSpace(c.GuildID) == "" {
		return shared.NewDomainError("command", "SubmitLeaderboard", shared.ErrEmptyValue, "guild id is required")
	}
	if strings.TrimSpace(c.Player) == "" {
		return shared.NewDomainError("command", "SubmitLeaderboard", shared.ErrEmptyValue, "player is required")
	}
	return nil
}

// AnnouncementDTO describes one board change worth announcing. Only a new
// first place gets a public message; lower ranks and reclaimed refreshes
// stay silent.
type AnnouncementDTO struct {
	Crop       string `json:"crop"`
	PlayerName string `json:"player_name"`
	Collected  int64  `json:"collected"`

	// Rank is the 1-based position on the board after the update.
	Rank int `json:"rank"`

	// Record is true when the score took the top spot.
	Record bool `json:"record"`
}

// SubmitLeaderboardResult describes the outcome per tracked crop.
type SubmitLeaderboardResult struct {
	GuildID    string `json:"guild_id"`
	PlayerUUID string `json:"player_uuid"`
	PlayerName string `json:"player_name"`

	// Results maps crop name to the submission outcome ("reclaimed",
	// "ranked", "record"). Crops whose slot did not change are omitted.
	Results map[string]string `json:"results"`

	// Changed is true when the board was written back.
	Changed bool `json:"changed"`

	// Announcements lists the changes that warrant a public message.
	Announcements []AnnouncementDTO `json:"announcements"`
}

// SubmitLeaderboardHandler handles leaderboard submissions.
type SubmitLeaderboardHandler struct {
	resolver    *identity.Resolver
	snapshots   *snapshot.Service
	records     contest.RecordRepository
	guilds      guild.Repository
	invalidator BoardInvalidator
	logger      *slog.Logger

	locks keyedMutex
}

// NewSubmitLeaderboardHandler creates a new submission handler. The
// invalidator may be nil when no view cache is in play.
func NewSubmitLeaderboardHandler(
	resolver *identity.Resolver,
	snapshots *snapshot.Service,
	records contest.RecordRepository,
	guilds guild.Repository,
	invalidator BoardInvalidator,
	logger *slog.Logger,
) *SubmitLeaderboardHandler {
	return &SubmitLeaderboardHandler{
		resolver:    resolver,
		snapshots:   snapshots,
		records:     records,
		guilds:      guilds,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle executes the submission. Submissions for the same guild serialize
// on a per-guild lock so the read-modify-write over the board is safe.
func (h *SubmitLeaderboardHandler) Handle(ctx context.Context, cmd SubmitLeaderboardCommand) (*SubmitLeaderboardResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uuid, err := h.resolver.Resolve(ctx, cmd.Player)
	if err != nil {
		return nil, err
	}

	// Refresh outside the guild lock; only the board mutation needs it.
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
		h.logger.Warn("failed to persist contest record",
			slog.String("player_uuid", uuid),
			slog.String("error", err.Error()),
		)
	}

	unlock := h.locks.lock(cmd.GuildID)
	defer unlock()

	settings, err := h.guilds.LoadSettings(ctx, cmd.GuildID)
	if err != nil {
		if !errors.Is(err, guild.ErrGuildNotFound) {
			return nil, err
		}
		settings = guild.DefaultSettings(cmd.GuildID)
	}

	board, err := h.guilds.LoadBoard(ctx, cmd.GuildID)
	if err != nil {
		if !errors.Is(err, guild.ErrGuildNotFound) {
			return nil, err
		}
		board = guild.NewBoard(cmd.GuildID)
	}

	bests := record.EligibleBests(settings.CutoffDate)
	outcomes := guild.SubmitBests(board, settings, uuid, snap.PlayerName, bests)

	result := &SubmitLeaderboardResult{
		GuildID:    cmd.GuildID,
		PlayerUUID: uuid,
		PlayerName: snap.PlayerName,
		Results:    make(map[string]string, len(outcomes)),
	}

	// Every returned outcome changed its slot; no-change crops are absent.
	for crop, outcome := range outcomes {
		result.Results[string(crop)] = outcome.String()
		metrics.RecordLeaderboardSubmission(outcome.String())
		result.Changed = true

		if outcome == guild.ResultRecord {
			result.Announcements = append(result.Announcements, AnnouncementDTO{
				Crop:       string(crop),
				PlayerName: snap.PlayerName,
				Collected:  bests[crop].Collected,
				Rank:       1,
				Record:     true,
			})
		}
	}

	if result.Changed {
		if err := h.guilds.SaveBoard(ctx, board); err != nil {
			return nil, err
		}
		metrics.RecordBoardUpdate()

		if h.invalidator != nil {
			if err := h.invalidator.Invalidate(ctx, cmd.GuildID); err != nil {
				h.logger.Warn("failed to invalidate board view",
					slog.String("guild_id", cmd.GuildID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return result, nil
}

// keyedMutex serializes work per string key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for a key and returns its unlock func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
