package guild

import (
	"sort"

	"github.com/elitefarmers/farmhand/internal/domain/contest"
	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD RANKER
// ══════════════════════════════════════════════════════════════════════════════

// Result classifies what one submission did to one slot.
type Result int

const (
	// ResultNoChange - the submission was rejected; the slot is untouched.
	// A normal outcome, not an error.
	ResultNoChange Result = iota

	// ResultReclaimed - only the top entry's claim metadata was upgraded.
	// The leaderboard view must refresh, but nothing is announced.
	ResultReclaimed

	// ResultRanked - the submission entered or moved within ranks 2-3.
	ResultRanked

	// ResultRecord - the submission took first place. Announced publicly.
	ResultRecord
)

// String returns the result name for logging.
func (r Result) String() string {
	switch r {
	case ResultRecord:
		return "record"
	case ResultRanked:
		return "ranked"
	case ResultReclaimed:
		return "reclaimed"
	default:
		return "no_change"
	}
}

// Submit applies one candidate entry to the slot and returns the updated
// slot. The caller must hold the per-(guild, crop) lock: both the 3rd-place
// displacement and the reclaim decision depend on a consistent read of the
// slot.
//
// Transitions:
//   - reject when the candidate predates the cutoff, or the submitter
//     already holds an entry with collected >= candidate
//   - reclaim when the submitter holds the top entry, that entry is
//     unclaimed, and the candidate for the same date now carries claim data
//   - accept when the slot has room or the candidate beats third place;
//     the submitter's old entry is removed, the candidate inserted, and
//     the slot re-sorted descending and truncated
func Submit(slot Slot, cutoff timeutil.ContestDate, cand Entry) (Slot, Result) {
	if cand.Date.Before(cutoff) {
		return slot, ResultNoChange
	}

	own := slot.IndexOfOwner(cand.OwnerUUID)
	if own >= 0 && slot[own].Collected >= cand.Collected {
		if own == 0 && !slot[0].Claimed() && cand.Claimed() && slot[0].Date == cand.Date {
			upgraded := slot[0]
			upgraded.Position = cand.Position
			upgraded.Participants = cand.Participants
			out := make(Slot, len(slot))
			copy(out, slot)
			out[0] = upgraded
			return out, ResultReclaimed
		}
		return slot, ResultNoChange
	}

	if own < 0 && len(slot) >= SlotSize && cand.Collected <= slot[len(slot)-1].Collected {
		return slot, ResultNoChange
	}

	out := make(Slot, 0, SlotSize+1)
	for i, e := range slot {
		if i == own {
			continue
		}
		out = append(out, e)
	}
	out = append(out, cand)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Collected > out[j].Collected
	})
	if len(out) > SlotSize {
		out = out[:SlotSize]
	}

	if out[0].OwnerUUID == cand.OwnerUUID && out[0].Collected == cand.Collected {
		return out, ResultRecord
	}
	return out, ResultRanked
}

// SubmitBests folds one player's eligible per-crop bests into the board and
// reports what changed per crop. Crops the guild does not track are
// skipped.
func SubmitBests(board *Board, settings Settings, playerUUID, playerName string, bests map[farming.Crop]contest.Best) map[farming.Crop]Result {
	results := make(map[farming.Crop]Result)

	for crop, best := range bests {
		if !settings.TracksCrop(crop) {
			continue
		}

		cand := Entry{
			OwnerUUID:    playerUUID,
			OwnerName:    playerName,
			Collected:    best.Collected,
			Date:         best.Date,
			Position:     best.Position,
			Participants: best.Participants,
		}

		slot, result := Submit(board.Slots[crop], settings.CutoffDate, cand)
		if result != ResultNoChange {
			board.Slots[crop] = slot
			results[crop] = result
		}
	}

	return results
}
