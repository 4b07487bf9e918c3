package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PLAYER SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create player snapshot table
-- Version: 001

-- Merged profile snapshots, one document per player. The profiles column
-- holds the full reconciled profile list as JSONB; reads and writes always
-- replace the whole document, so a single upsert is the unit of atomicity.
CREATE TABLE IF NOT EXISTS player_snapshots (
    player_uuid VARCHAR(36) PRIMARY KEY,
    player_name VARCHAR(32) NOT NULL DEFAULT '',
    profiles JSONB NOT NULL DEFAULT '[]'::jsonb,
    fetched_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_player_snapshots_name ON player_snapshots(LOWER(player_name));
CREATE INDEX IF NOT EXISTS idx_player_snapshots_fetched_at ON player_snapshots(fetched_at DESC);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_player_snapshots_updated_at ON player_snapshots;
CREATE TRIGGER update_player_snapshots_updated_at
    BEFORE UPDATE ON player_snapshots
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_player_snapshots_updated_at ON player_snapshots;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS player_snapshots;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE GUILD LEADERBOARDS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create guild leaderboard tables
-- Version: 002

-- Per-guild contest settings: the eligibility cutoff date and the set of
-- tracked crops. Crops are stored as a JSONB array of crop names.
CREATE TABLE IF NOT EXISTS guild_settings (
    guild_id VARCHAR(64) PRIMARY KEY,
    cutoff_date INTEGER NOT NULL DEFAULT 0,
    crops JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_cutoff CHECK (cutoff_date >= 0)
);

-- Per-guild leaderboard state, one row per guild. Slots hold the full
-- per-crop top lists as a JSONB document keyed by crop name; the board is
-- read, mutated in memory under the guild lock, and written back whole.
CREATE TABLE IF NOT EXISTS guild_leaderboards (
    guild_id VARCHAR(64) PRIMARY KEY REFERENCES guild_settings(guild_id) ON DELETE CASCADE,
    slots JSONB NOT NULL DEFAULT '{}'::jsonb,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

DROP TRIGGER IF EXISTS update_guild_settings_updated_at ON guild_settings;
CREATE TRIGGER update_guild_settings_updated_at
    BEFORE UPDATE ON guild_settings
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();

DROP TRIGGER IF EXISTS update_guild_leaderboards_updated_at ON guild_leaderboards;
CREATE TRIGGER update_guild_leaderboards_updated_at
    BEFORE UPDATE ON guild_leaderboards
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration002Down = `
DROP TRIGGER IF EXISTS update_guild_leaderboards_updated_at ON guild_leaderboards;
DROP TRIGGER IF EXISTS update_guild_settings_updated_at ON guild_settings;
DROP TABLE IF EXISTS guild_leaderboards;
DROP TABLE IF EXISTS guild_settings;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE PLAYER RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create player contest record table
-- Version: 003

-- Aggregated contest records, one document per player. Holds the monotonic
-- personal bests and lifetime counters derived from snapshot history.
CREATE TABLE IF NOT EXISTS player_records (
    player_uuid VARCHAR(36) PRIMARY KEY,
    record JSONB NOT NULL DEFAULT '{}'::jsonb,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

DROP TRIGGER IF EXISTS update_player_records_updated_at ON player_records;
CREATE TRIGGER update_player_records_updated_at
    BEFORE UPDATE ON player_records
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration003Down = `
DROP TRIGGER IF EXISTS update_player_records_updated_at ON player_records;
DROP TABLE IF EXISTS player_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_player_snapshots",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_guild_leaderboards",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_player_records",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
