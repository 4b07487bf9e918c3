package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/elitefarmers/farmhand/internal/domain/profile"
)

// SnapshotRepository implements profile.SnapshotRepository for PostgreSQL.
// Each player's merged profile list is stored as one JSONB document; a save
// replaces the whole document in a single upsert.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// LoadSnapshot returns the persisted snapshot for a player.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, playerUUID string) (*profile.Snapshot, error) {
	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	query := `
		SELECT player_uuid, player_name, profiles, fetched_at
		FROM player_snapshots
		WHERE player_uuid = $1
	`

	var snap profile.Snapshot
	var profilesJSON []byte

	err := r.conn.QueryRow(ctx, query, playerUUID).Scan(
		&snap.PlayerUUID,
		&snap.PlayerName,
		&profilesJSON,
		&snap.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", playerUUID, err)
	}

	if err := json.Unmarshal(profilesJSON, &snap.Profiles); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot profiles for %s: %w", playerUUID, err)
	}

	return &snap, nil
}

// SaveSnapshot stores the merged snapshot, replacing any previous one.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *profile.Snapshot) error {
	if snapshot == nil || snapshot.PlayerUUID == "" {
		return fmt.Errorf("cannot save snapshot without a player uuid")
	}

	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	profilesJSON, err := json.Marshal(snapshot.Profiles)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot profiles for %s: %w", snapshot.PlayerUUID, err)
	}

	query := `
		INSERT INTO player_snapshots (player_uuid, player_name, profiles, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_uuid) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			profiles = EXCLUDED.profiles,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err = r.conn.Exec(ctx, query,
		snapshot.PlayerUUID,
		snapshot.PlayerName,
		profilesJSON,
		snapshot.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", snapshot.PlayerUUID, err)
	}

	return nil
}

// FindUUIDByName resolves a previously seen player name to its UUID.
// Returns profile.ErrSnapshotNotFound when the name has never been stored.
func (r *SnapshotRepository) FindUUIDByName(ctx context.Context, name string) (string, error) {
	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	query := `
		SELECT player_uuid
		FROM player_snapshots
		WHERE LOWER(player_name) = LOWER($1)
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var uuid string
	err := r.conn.QueryRow(ctx, query, name).Scan(&uuid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", profile.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("failed to resolve player name %q: %w", name, err)
	}

	return uuid, nil
}
