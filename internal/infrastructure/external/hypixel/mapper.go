package hypixel

import (
	"strings"
	"time"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to domain conversion
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts provider DTOs into domain snapshots. All defaulting of
// the provider's optional fields is centralized here.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// SnapshotFromDTO converts a profiles response into a domain snapshot for
// one tracked player. Only the tracked player's member entry is retained on
// each profile; profiles the player is not a member of are skipped.
func (m *Mapper) SnapshotFromDTO(playerUUID, playerName string, dtos []ProfileDTO, fetchedAt time.Time) *profile.Snapshot {
	snap := &profile.Snapshot{
		PlayerUUID: playerUUID,
		PlayerName: playerName,
		FetchedAt:  fetchedAt,
	}

	memberKey := undash(playerUUID)
	for _, dto := range dtos {
		memberDTO, ok := dto.Members[memberKey]
		if !ok {
			continue
		}

		member := m.memberFromDTO(memberDTO)
		snap.Profiles = append(snap.Profiles, &profile.Profile{
			ID:     dto.ProfileID,
			Name:   dto.CuteName,
			Member: member,
			API:    member.HasCollections(),
		})
	}

	return snap
}

// memberFromDTO maps one member document, resolving every optional field.
func (m *Mapper) memberFromDTO(dto MemberDTO) profile.Member {
	member := profile.Member{
		Minions: dto.CraftedGenerators,
	}

	// A missing collection map means the API is hidden; a present but
	// empty map is a genuine "nothing collected yet".
	if dto.Collection != nil {
		member.Collections = make(map[farming.Crop]int64, len(farming.AllCrops))
		for key, raw := range dto.Collection {
			crop, err := farming.CropFromAPIKey(key)
			if err != nil {
				continue // non-farming collection
			}
			member.Collections[crop] = raw
		}
	}

	if dto.FarmingXP != nil {
		member.FarmingXP = *dto.FarmingXP
	}

	if dto.Jacob != nil {
		member.AnitaBuff = dto.Jacob.Perks.DoubleDrops
		member.LevelCapUnlocked = dto.Jacob.Perks.FarmingLevelCap > 0
		member.MedalInventory = profile.MedalInventory{
			Gold:   dto.Jacob.MedalsInv.Gold,
			Silver: dto.Jacob.MedalsInv.Silver,
			Bronze: dto.Jacob.MedalsInv.Bronze,
		}
		member.Contests = m.contestsFromDTO(dto.Jacob.Contests)
		member.GoldMedals = countGoldMedals(dto.Jacob.Contests)
	}

	return member
}

// contestsFromDTO maps the raw contest history. The provider's claimed
// position is 0-based; domain positions are 1-based. A result is claimed
// only when position and participants are both present.
func (m *Mapper) contestsFromDTO(dtos map[string]ContestDTO) map[string]profile.RawContest {
	if dtos == nil {
		return nil
	}

	contests := make(map[string]profile.RawContest, len(dtos))
	for key, dto := range dtos {
		raw := profile.RawContest{Collected: dto.Collected}
		if dto.ClaimedPosition != nil && dto.ClaimedParticipants != nil {
			pos := *dto.ClaimedPosition + 1
			par := *dto.ClaimedParticipants
			raw.Position = &pos
			raw.Participants = &par
		}
		contests[key] = raw
	}
	return contests
}

// countGoldMedals counts lifetime gold medals from the claimed history.
// The weight bonus uses lifetime golds, not the spendable inventory.
func countGoldMedals(dtos map[string]ContestDTO) int {
	var golds int
	for _, dto := range dtos {
		if strings.EqualFold(dto.ClaimedMedal, "gold") {
			golds++
		}
	}
	return golds
}

// undash strips dashes from a UUID; the provider keys members by the
// undashed form.
func undash(uuid string) string {
	return strings.ReplaceAll(uuid, "-", "")
}
