package contest

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// RecentLimit caps the recency-ordered contest lists, per crop and overall.
const RecentLimit = 11

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATED RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Best is a player's highest collected amount for one crop, tagged with the
// profile it came from.
type Best struct {
	Collected    int64
	Date         timeutil.ContestDate
	Position     *int
	Participants *int
	ProfileName  string
}

// Claimed reports whether the best result carries claim data.
func (b Best) Claimed() bool {
	return b.Position != nil && b.Participants != nil
}

// PlayerRecord is a player's aggregated contest history across all
// profiles.
type PlayerRecord struct {
	// Bests holds the per-crop personal bests. A crop's best only grows
	// across successive aggregations unless the record is reset.
	Bests map[farming.Crop]Best

	// Lifetime counters over all scoreable events.
	Participations int
	FirstPlaces    int

	// CurrentMedals is the unspent medal inventory reported by the
	// provider; TotalMedals is the lifetime count summed from history.
	CurrentMedals Medals
	TotalMedals   Medals

	// Recent holds the latest contests per crop and overall, descending
	// by date, deduplicated on date, capped at RecentLimit.
	Recent        map[farming.Crop][]Contest
	RecentOverall []Contest
}

// NewPlayerRecord returns an empty record.
func NewPlayerRecord() *PlayerRecord {
	return &PlayerRecord{
		Bests:  make(map[farming.Crop]Best),
		Recent: make(map[farming.Crop][]Contest),
	}
}

// EligibleBests returns the per-crop bests dated at or after the cutoff.
// Cutoff filtering lives with the caller so global and per-guild consumers
// can share one aggregation.
func (r *PlayerRecord) EligibleBests(cutoff timeutil.ContestDate) map[farming.Crop]Best {
	out := make(map[farming.Crop]Best, len(r.Bests))
	for crop, best := range r.Bests {
		if !best.Date.Before(cutoff) {
			out[crop] = best
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// Aggregate folds every profile's raw contest history into a PlayerRecord.
//
// Events below the noise floor are ignored; malformed events are logged and
// skipped so one broken entry never aborts the rest. When prev is non-nil
// its per-crop bests act as a floor, keeping bests monotonic even if the
// provider stops returning an old profile's history.
func Aggregate(prev *PlayerRecord, snap *profile.Snapshot, logger *slog.Logger) *PlayerRecord {
	if logger == nil {
		logger = slog.Default()
	}

	rec := NewPlayerRecord()
	perCrop := make(map[farming.Crop][]Contest)
	var all []Contest

	for _, prof := range snap.Profiles {
		rec.CurrentMedals.Gold += prof.Member.MedalInventory.Gold
		rec.CurrentMedals.Silver += prof.Member.MedalInventory.Silver
		rec.CurrentMedals.Bronze += prof.Member.MedalInventory.Bronze

		for key, raw := range prof.Member.Contests {
			c, err := Normalize(key, raw)
			if err != nil {
				if !errors.Is(err, ErrBelowNoiseFloor) {
					logger.Warn("skipping malformed contest event",
						"player", snap.PlayerUUID,
						"profile", prof.Name,
						"key", key,
						"error", err,
					)
				}
				continue
			}

			rec.Participations++
			rec.TotalMedals.Add(c.Medal())
			if c.Claimed() && *c.Position == 1 {
				rec.FirstPlaces++
			}

			if best, ok := rec.Bests[c.Crop]; !ok || c.Collected > best.Collected {
				rec.Bests[c.Crop] = Best{
					Collected:    c.Collected,
					Date:         c.Date,
					Position:     c.Position,
					Participants: c.Participants,
					ProfileName:  prof.Name,
				}
			}

			perCrop[c.Crop] = append(perCrop[c.Crop], c)
			all = append(all, c)
		}
	}

	for crop, list := range perCrop {
		rec.Recent[crop] = recentWindow(list)
	}
	rec.RecentOverall = recentWindow(all)

	if prev != nil {
		rec.floorBests(prev)
	}
	return rec
}

// floorBests keeps previously observed bests that the fresh aggregation no
// longer reaches.
func (r *PlayerRecord) floorBests(prev *PlayerRecord) {
	for crop, old := range prev.Bests {
		if cur, ok := r.Bests[crop]; !ok || cur.Collected < old.Collected {
			r.Bests[crop] = old
		}
	}
}

// recentWindow sorts contests descending by date, drops duplicate dates
// keeping the higher collected amount, and truncates to RecentLimit.
func recentWindow(list []Contest) []Contest {
	if len(list) == 0 {
		return nil
	}

	sorted := make([]Contest, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].Collected > sorted[j].Collected
	})

	out := sorted[:0]
	var lastDate timeutil.ContestDate
	for i, c := range sorted {
		if i > 0 && c.Date == lastDate {
			continue
		}
		out = append(out, c)
		lastDate = c.Date
		if len(out) == RecentLimit {
			break
		}
	}
	return out
}
