package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/guild"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// LeaderboardRepository implements guild.Repository for PostgreSQL.
// Settings and boards are each one row per guild; the slot map travels as a
// single JSONB document so a board write is atomic without transactions.
type LeaderboardRepository struct {
	conn *Connection
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(conn *Connection) *LeaderboardRepository {
	return &LeaderboardRepository{conn: conn}
}

// LoadSettings returns the guild's configuration.
func (r *LeaderboardRepository) LoadSettings(ctx context.Context, guildID string) (guild.Settings, error) {
	if guildID == "" {
		return guild.Settings{}, guild.ErrInvalidGuildID
	}

	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	query := `
		SELECT guild_id, cutoff_date, crops
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings guild.Settings
	var cutoff int
	var cropsJSON []byte

	err := r.conn.QueryRow(ctx, query, guildID).Scan(&settings.GuildID, &cutoff, &cropsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return guild.Settings{}, guild.ErrGuildNotFound
		}
		return guild.Settings{}, fmt.Errorf("failed to load settings for guild %s: %w", guildID, err)
	}

	settings.CutoffDate = timeutil.ContestDate(cutoff)
	if err := json.Unmarshal(cropsJSON, &settings.Crops); err != nil {
		return guild.Settings{}, fmt.Errorf("failed to decode crops for guild %s: %w", guildID, err)
	}

	return settings, nil
}

// SaveSettings stores the guild's configuration.
func (r *LeaderboardRepository) SaveSettings(ctx context.Context, settings guild.Settings) error {
	if settings.GuildID == "" {
		return guild.ErrInvalidGuildID
	}

	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	cropsJSON, err := json.Marshal(settings.Crops)
	if err != nil {
		return fmt.Errorf("failed to encode crops for guild %s: %w", settings.GuildID, err)
	}

	query := `
		INSERT INTO guild_settings (guild_id, cutoff_date, crops)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE SET
			cutoff_date = EXCLUDED.cutoff_date,
			crops = EXCLUDED.crops
	`

	_, err = r.conn.Exec(ctx, query, settings.GuildID, int(settings.CutoffDate), cropsJSON)
	if err != nil {
		return fmt.Errorf("failed to save settings for guild %s: %w", settings.GuildID, err)
	}

	return nil
}

// LoadBoard returns the guild's leaderboard.
func (r *LeaderboardRepository) LoadBoard(ctx context.Context, guildID string) (*guild.Board, error) {
	if guildID == "" {
		return nil, guild.ErrInvalidGuildID
	}

	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	query := `
		SELECT guild_id, slots
		FROM guild_leaderboards
		WHERE guild_id = $1
	`

	board := guild.NewBoard(guildID)
	var slotsJSON []byte

	err := r.conn.QueryRow(ctx, query, guildID).Scan(&board.GuildID, &slotsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guild.ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to load board for guild %s: %w", guildID, err)
	}

	slots := make(map[farming.Crop]guild.Slot)
	if err := json.Unmarshal(slotsJSON, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode board for guild %s: %w", guildID, err)
	}
	board.Slots = slots

	return board, nil
}

// SaveBoard stores the guild's leaderboard, replacing the previous state.
// Settings are created on demand so the foreign key always holds.
func (r *LeaderboardRepository) SaveBoard(ctx context.Context, board *guild.Board) error {
	if board == nil || board.GuildID == "" {
		return guild.ErrInvalidGuildID
	}

	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	slotsJSON, err := json.Marshal(board.Slots)
	if err != nil {
		return fmt.Errorf("failed to encode board for guild %s: %w", board.GuildID, err)
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		ensure := `
			INSERT INTO guild_settings (guild_id, cutoff_date, crops)
			VALUES ($1, $2, $3)
			ON CONFLICT (guild_id) DO NOTHING
		`
		defaults := guild.DefaultSettings(board.GuildID)
		defaultCrops, err := json.Marshal(defaults.Crops)
		if err != nil {
			return fmt.Errorf("failed to encode default crops: %w", err)
		}
		if _, err := tx.Exec(ctx, ensure, board.GuildID, int(defaults.CutoffDate), defaultCrops); err != nil {
			return fmt.Errorf("failed to ensure settings for guild %s: %w", board.GuildID, err)
		}

		upsert := `
			INSERT INTO guild_leaderboards (guild_id, slots)
			VALUES ($1, $2)
			ON CONFLICT (guild_id) DO UPDATE SET
				slots = EXCLUDED.slots
		`
		if _, err := tx.Exec(ctx, upsert, board.GuildID, slotsJSON); err != nil {
			return fmt.Errorf("failed to save board for guild %s: %w", board.GuildID, err)
		}
		return nil
	})
}

// ListGuildIDs returns every configured guild.
func (r *LeaderboardRepository) ListGuildIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	rows, err := r.conn.Query(ctx, `SELECT guild_id FROM guild_settings ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
