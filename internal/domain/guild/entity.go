// Package guild contains the per-community leaderboard domain model: guild
// settings, the per-crop top-3 contest slots, and the ranker that applies
// player submissions with idempotent, anti-regression semantics.
package guild

import (
	"errors"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// SlotSize is the number of entries kept per (guild, crop) slot.
const SlotSize = 3

// DefaultCutoff is the earliest contest date counted when a guild has not
// configured its own cutoff.
var DefaultCutoff = timeutil.NewContestDate(160, 1, 1)

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

// Settings is the per-guild leaderboard configuration surface.
type Settings struct {
	GuildID string

	// CutoffDate is the earliest contest date counted for this guild.
	CutoffDate timeutil.ContestDate

	// Crops is the set of crops this guild tracks.
	Crops []farming.Crop
}

// DefaultSettings returns settings tracking all ten crops with the global
// cutoff.
func DefaultSettings(guildID string) Settings {
	crops := make([]farming.Crop, len(farming.AllCrops))
	copy(crops, farming.AllCrops)
	return Settings{
		GuildID:    guildID,
		CutoffDate: DefaultCutoff,
		Crops:      crops,
	}
}

// TracksCrop reports whether the guild tracks the given crop.
func (s Settings) TracksCrop(crop farming.Crop) bool {
	for _, c := range s.Crops {
		if c == crop {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// SLOTS
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one leaderboard placement.
type Entry struct {
	OwnerUUID string
	OwnerName string
	Collected int64
	Date      timeutil.ContestDate

	// Position (1-based) and Participants are both set for claimed
	// results, and both nil for unclaimed ones.
	Position     *int
	Participants *int
}

// Claimed reports whether the entry carries claim data.
func (e Entry) Claimed() bool {
	return e.Position != nil && e.Participants != nil
}

// Slot is the ordered top-3 list for one (guild, crop) pair: at most
// SlotSize entries, sorted descending by collected, at most one entry per
// owner.
type Slot []Entry

// IndexOfOwner returns the index of the owner's entry, or -1.
func (s Slot) IndexOfOwner(ownerUUID string) int {
	for i, e := range s {
		if e.OwnerUUID == ownerUUID {
			return i
		}
	}
	return -1
}

// Board holds a guild's slots for every tracked crop.
type Board struct {
	GuildID string
	Slots   map[farming.Crop]Slot
}

// NewBoard returns an empty board for a guild.
func NewBoard(guildID string) *Board {
	return &Board{
		GuildID: guildID,
		Slots:   make(map[farming.Crop]Slot),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrGuildNotFound - no leaderboard exists for the guild.
	ErrGuildNotFound = errors.New("guild leaderboard not found")

	// ErrInvalidGuildID - empty or malformed guild identifier.
	ErrInvalidGuildID = errors.New("invalid guild id")
)
