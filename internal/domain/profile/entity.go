// Package profile contains the player and profile domain model: the tracked
// player identity, their SkyBlock profiles, the persisted snapshot of raw
// member data, and the reconciler that merges repeated provider fetches
// without losing previously observed data.
package profile

import (
	"errors"
	"time"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER & PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Player identifies a tracked player. The UUID is immutable; the display
// name can change at any time and is refreshed on every fetch.
type Player struct {
	UUID string
	Name string
}

// Profile is one of a player's parallel game saves. Co-op profiles are
// shared by several real players; only the tracked player's member entry
// is retained.
type Profile struct {
	// ID is the stable profile identifier assigned by the provider.
	ID string

	// Name is the cute profile name ("Apple", "Banana", ...).
	Name string

	// Member holds the tracked player's member data on this profile.
	Member Member

	// API is true when the collections API was visible at the last fetch
	// that touched this profile.
	API bool
}

// Member holds one member's raw values on a profile.
type Member struct {
	// Collections holds raw collection counters keyed by crop. A nil map
	// means the collections API is currently disabled for this member.
	Collections map[farming.Crop]int64

	// FarmingXP is cumulative farming skill experience.
	FarmingXP float64

	// LevelCapUnlocked is true when the farming level cap was raised to 60.
	LevelCapUnlocked bool

	// AnitaBuff is the double drop buff level.
	AnitaBuff int

	// GoldMedals is the lifetime gold medal count.
	GoldMedals int

	// MedalInventory holds the unspent medal counts reported by the
	// provider, as opposed to lifetime totals summed from history.
	MedalInventory MedalInventory

	// Minions lists owned crafted minion IDs, e.g. "WHEAT_12".
	Minions []string

	// Contests is the raw contest history keyed by the provider's event
	// key "<year>:<month>_<day>:<crop>".
	Contests map[string]RawContest
}

// HasCollections reports whether collection data is visible.
func (m *Member) HasCollections() bool {
	return m.Collections != nil
}

// WeightInput bundles the member values the weight calculator consumes.
func (m *Member) WeightInput() farming.Input {
	return farming.Input{
		Collections:      m.Collections,
		FarmingXP:        m.FarmingXP,
		LevelCapUnlocked: m.LevelCapUnlocked,
		AnitaBuff:        m.AnitaBuff,
		GoldMedals:       m.GoldMedals,
		Minions:          m.Minions,
	}
}

// MedalInventory holds unspent medals per tier.
type MedalInventory struct {
	Gold   int
	Silver int
	Bronze int
}

// RawContest is one unparsed contest participation as stored by the
// provider. Position and Participants are both present once the result is
// claimed, and both absent before that.
type RawContest struct {
	Collected    int64
	Position     *int
	Participants *int
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot is the best known state of a player's profiles, produced by
// merging every successful fetch into the previously persisted state.
type Snapshot struct {
	PlayerUUID string
	PlayerName string
	Profiles   []*Profile
	FetchedAt  time.Time
}

// FindProfile returns the profile with the given ID, or nil.
func (s *Snapshot) FindProfile(id string) *Profile {
	if s == nil {
		return nil
	}
	for _, p := range s.Profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSnapshotNotFound - no persisted snapshot exists for the player.
	ErrSnapshotNotFound = errors.New("profile snapshot not found")

	// ErrProfileNotFound - the requested profile name does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNoProfiles - the player has no profiles at all.
	ErrNoProfiles = errors.New("player has no profiles")
)
