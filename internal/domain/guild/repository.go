package guild

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Storage is a keyed read/write store; the board for one guild is a single
// key with single-key atomicity and nothing more.
// ══════════════════════════════════════════════════════════════════════════════

// Repository persists guild settings and leaderboard boards.
type Repository interface {
	// LoadSettings returns the guild's configuration.
	// Returns ErrGuildNotFound if the guild was never configured; callers
	// typically fall back to DefaultSettings.
	LoadSettings(ctx context.Context, guildID string) (Settings, error)

	// SaveSettings stores the guild's configuration.
	SaveSettings(ctx context.Context, settings Settings) error

	// LoadBoard returns the guild's leaderboard.
	// Returns ErrGuildNotFound if none exists yet.
	LoadBoard(ctx context.Context, guildID string) (*Board, error)

	// SaveBoard stores the guild's leaderboard, replacing the previous
	// state.
	SaveBoard(ctx context.Context, board *Board) error

	// ListGuildIDs returns every configured guild, for background
	// refresh sweeps.
	ListGuildIDs(ctx context.Context) ([]string, error)
}
