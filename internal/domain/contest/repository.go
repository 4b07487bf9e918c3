package contest

import (
	"context"
	"errors"
)

// ErrRecordNotFound - no aggregated record has been stored for the player.
var ErrRecordNotFound = errors.New("contest record not found")

// RecordRepository persists the aggregated contest record per player. The
// record is the monotonic floor for lifetime counters and personal bests;
// the merged snapshot remains the source the record is rebuilt from.
type RecordRepository interface {
	// LoadRecord returns the stored record for a player.
	// Returns ErrRecordNotFound if none has been saved yet.
	LoadRecord(ctx context.Context, playerUUID string) (*PlayerRecord, error)

	// SaveRecord stores the aggregated record, replacing any previous one.
	SaveRecord(ctx context.Context, playerUUID string, record *PlayerRecord) error
}
