package hypixel

// DTOs mirror the provider's loosely typed JSON documents. Optional fields
// are pointers or maps that may be absent entirely; all default resolution
// happens in the mapper, nowhere else.

// ProfilesResponseDTO is the envelope of the profiles endpoint.
type ProfilesResponseDTO struct {
	Success  bool         `json:"success"`
	Cause    string       `json:"cause,omitempty"`
	Profiles []ProfileDTO `json:"profiles"`
}

// ProfileDTO is one profile document. Members is keyed by undashed player
// UUID; co-op profiles carry several members.
type ProfileDTO struct {
	ProfileID string               `json:"profile_id"`
	CuteName  string               `json:"cute_name"`
	Members   map[string]MemberDTO `json:"members"`
}

// MemberDTO is one member's raw stats on a profile.
type MemberDTO struct {
	// Collection is absent entirely when the member disabled the
	// collections API. Counters wrap at 2^32-2 and may appear negative.
	Collection map[string]int64 `json:"collection,omitempty"`

	// FarmingXP is cumulative farming skill experience. Hidden together
	// with the skills API; absent reads as zero.
	FarmingXP *float64 `json:"experience_skill_farming,omitempty"`

	// CraftedGenerators lists crafted minion IDs like "WHEAT_12".
	CraftedGenerators []string `json:"crafted_generators,omitempty"`

	// Jacob holds contest history and farming perks.
	Jacob *JacobDTO `json:"jacob2,omitempty"`
}

// JacobDTO is the member's Jacob contest document.
type JacobDTO struct {
	MedalsInv MedalsDTO             `json:"medals_inv"`
	Perks     PerksDTO              `json:"perks"`
	Contests  map[string]ContestDTO `json:"contests,omitempty"`
}

// MedalsDTO is the unspent medal inventory.
type MedalsDTO struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// PerksDTO holds purchased farming perks.
type PerksDTO struct {
	DoubleDrops     int `json:"double_drops"`
	FarmingLevelCap int `json:"farming_level_cap"`
}

// ContestDTO is one raw contest participation. ClaimedPosition is 0-based
// in the provider's encoding; the mapper converts to 1-based.
type ContestDTO struct {
	Collected           int64  `json:"collected"`
	ClaimedPosition     *int   `json:"claimed_position,omitempty"`
	ClaimedParticipants *int   `json:"claimed_participants,omitempty"`
	ClaimedMedal        string `json:"claimed_medal,omitempty"`
}

// PlayerResponseDTO is the envelope of the player endpoint, used to refresh
// display names.
type PlayerResponseDTO struct {
	Success bool       `json:"success"`
	Cause   string     `json:"cause,omitempty"`
	Player  *PlayerDTO `json:"player"`
}

// PlayerDTO carries the fields we read from the player document.
type PlayerDTO struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayname"`
}

// APIErrorDTO is the provider's error body.
type APIErrorDTO struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return "hypixel api error: " + e.Cause
}
