package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/elitefarmers/farmhand/internal/domain/contest"
)

// RecordRepository implements contest.RecordRepository for PostgreSQL.
type RecordRepository struct {
	conn *Connection
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(conn *Connection) *RecordRepository {
	return &RecordRepository{conn: conn}
}

// LoadRecord returns the stored record for a player.
func (r *RecordRepository) LoadRecord(ctx context.Context, playerUUID string) (*contest.PlayerRecord, error) {
	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	query := `SELECT record FROM player_records WHERE player_uuid = $1`

	var recordJSON []byte
	err := r.conn.QueryRow(ctx, query, playerUUID).Scan(&recordJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contest.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load record for %s: %w", playerUUID, err)
	}

	record := contest.NewPlayerRecord()
	if err := json.Unmarshal(recordJSON, record); err != nil {
		return nil, fmt.Errorf("failed to decode record for %s: %w", playerUUID, err)
	}

	return record, nil
}

// SaveRecord stores the aggregated record, replacing any previous one.
func (r *RecordRepository) SaveRecord(ctx context.Context, playerUUID string, record *contest.PlayerRecord) error {
	if playerUUID == "" {
		return fmt.Errorf("cannot save record without a player uuid")
	}
	if record == nil {
		return fmt.Errorf("cannot save a nil record")
	}

	ctx, cancel := r.conn.queryContext(ctx)
	defer cancel()

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", playerUUID, err)
	}

	query := `
		INSERT INTO player_records (player_uuid, record)
		VALUES ($1, $2)
		ON CONFLICT (player_uuid) DO UPDATE SET
			record = EXCLUDED.record
	`

	if _, err := r.conn.Exec(ctx, query, playerUUID, recordJSON); err != nil {
		return fmt.Errorf("failed to save record for %s: %w", playerUUID, err)
	}

	return nil
}
