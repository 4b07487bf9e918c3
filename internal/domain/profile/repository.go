package profile

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the storage contract the core requires. The
// implementations live in infrastructure/persistence. No transactional
// multi-key guarantees are assumed beyond single-key atomicity.
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository persists the best known snapshot per player.
type SnapshotRepository interface {
	// LoadSnapshot returns the persisted snapshot for a player.
	// Returns ErrSnapshotNotFound if none has been saved yet.
	LoadSnapshot(ctx context.Context, playerUUID string) (*Snapshot, error)

	// SaveSnapshot stores the merged snapshot for a player, replacing any
	// previous one.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}
