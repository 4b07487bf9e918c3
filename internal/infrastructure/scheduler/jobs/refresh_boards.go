package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elitefarmers/farmhand/internal/application/command"
	"github.com/elitefarmers/farmhand/internal/domain/guild"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH BOARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// BoardSubmitter re-applies a player's scores to a guild board.
type BoardSubmitter interface {
	Handle(ctx context.Context, cmd command.SubmitLeaderboardCommand) (*command.SubmitLeaderboardResult, error)
}

// RefreshBoardsJob walks every guild board and re-submits each current
// entry holder. Claim data that arrived since the score was posted gets
// picked up without anyone asking, and stale snapshots refresh on the way.
type RefreshBoardsJob struct {
	guilds    guild.Repository
	submitter BoardSubmitter
	logger    *slog.Logger

	// PlayerDelay spaces out submissions so one sweep cannot saturate
	// the provider's rate budget.
	PlayerDelay time.Duration
}

// NewRefreshBoardsJob creates a board refresh job.
func NewRefreshBoardsJob(guilds guild.Repository, submitter BoardSubmitter, logger *slog.Logger) *RefreshBoardsJob {
	return &RefreshBoardsJob{
		guilds:      guilds,
		submitter:   submitter,
		logger:      logger,
		PlayerDelay: 2 * time.Second,
	}
}

// Name returns the unique job name.
func (j *RefreshBoardsJob) Name() string {
	return "refresh_boards"
}

// Description returns a human-readable description.
func (j *RefreshBoardsJob) Description() string {
	return "Re-submits every board entry holder to pick up claim data"
}

// Run refreshes every guild board. Per-player failures are logged and
// skipped so one missing player cannot stall the sweep.
func (j *RefreshBoardsJob) Run(ctx context.Context) error {
	guildIDs, err := j.guilds.ListGuildIDs(ctx)
	if err != nil {
		return err
	}

	for _, guildID := range guildIDs {
		board, err := j.guilds.LoadBoard(ctx, guildID)
		if err != nil {
			if errors.Is(err, guild.ErrGuildNotFound) {
				continue
			}
			return err
		}

		for _, uuid := range boardOwners(board) {
			if err := ctx.Err(); err != nil {
				return err
			}

			_, err := j.submitter.Handle(ctx, command.SubmitLeaderboardCommand{
				GuildID: guildID,
				Player:  uuid,
			})
			if err != nil {
				j.logger.Warn("board refresh submission failed",
					"guild_id", guildID,
					"player_uuid", uuid,
					"error", err,
				)
			}

			if j.PlayerDelay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(j.PlayerDelay):
				}
			}
		}
	}

	return nil
}

// boardOwners returns the distinct entry holders across all slots.
func boardOwners(board *guild.Board) []string {
	seen := make(map[string]struct{})
	var owners []string
	for _, slot := range board.Slots {
		for _, entry := range slot {
			if _, ok := seen[entry.OwnerUUID]; ok {
				continue
			}
			seen[entry.OwnerUUID] = struct{}{}
			owners = append(owners, entry.OwnerUUID)
		}
	}
	return owners
}
