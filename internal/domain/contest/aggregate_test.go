package contest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

func snapshotWith(profiles ...*profile.Profile) *profile.Snapshot {
	return &profile.Snapshot{PlayerUUID: "u1", PlayerName: "Farmer", Profiles: profiles}
}

func contestProfile(name string, contests map[string]profile.RawContest) *profile.Profile {
	return &profile.Profile{
		ID:     name + "-id",
		Name:   name,
		Member: profile.Member{Contests: contests},
	}
}

func TestAggregate_LifetimeCounters(t *testing.T) {
	snap := snapshotWith(contestProfile("Apple", map[string]profile.RawContest{
		"285:6_11:WHEAT":  {Collected: 50_000, Position: intp(1), Participants: intp(100)},  // gold, first place
		"285:6_14:WHEAT":  {Collected: 40_000, Position: intp(20), Participants: intp(100)}, // silver
		"285:6_17:CACTUS": {Collected: 30_000, Position: intp(50), Participants: intp(100)}, // bronze
		"285:6_20:MELON":  {Collected: 20_000},                                              // unclaimed
		"285:6_23:MELON":  {Collected: 50},                                                  // noise, ignored
		"bogus-key":       {Collected: 10_000},                                              // malformed, skipped
	}))

	rec := Aggregate(nil, snap, nil)

	assert.Equal(t, 4, rec.Participations)
	assert.Equal(t, 1, rec.FirstPlaces)
	assert.Equal(t, Medals{Gold: 1, Silver: 1, Bronze: 1}, rec.TotalMedals)
}

func TestAggregate_CrossProfileBests(t *testing.T) {
	snap := snapshotWith(
		contestProfile("Apple", map[string]profile.RawContest{
			"285:6_11:WHEAT": {Collected: 50_000},
		}),
		contestProfile("Banana", map[string]profile.RawContest{
			"286:3_5:WHEAT": {Collected: 90_000},
			"286:3_8:MELON": {Collected: 10_000},
		}),
	)

	rec := Aggregate(nil, snap, nil)

	require.Contains(t, rec.Bests, farming.CropWheat)
	assert.Equal(t, int64(90_000), rec.Bests[farming.CropWheat].Collected)
	assert.Equal(t, "Banana", rec.Bests[farming.CropWheat].ProfileName)
	assert.Equal(t, "Banana", rec.Bests[farming.CropMelon].ProfileName)
}

func TestAggregate_BestsAreMonotonic(t *testing.T) {
	first := snapshotWith(contestProfile("Apple", map[string]profile.RawContest{
		"285:6_11:WHEAT": {Collected: 90_000},
	}))
	rec := Aggregate(nil, first, nil)

	// The provider stopped returning the old history; the best survives.
	second := snapshotWith(contestProfile("Apple", map[string]profile.RawContest{
		"286:1_2:WHEAT": {Collected: 10_000},
	}))
	rec2 := Aggregate(rec, second, nil)

	assert.Equal(t, int64(90_000), rec2.Bests[farming.CropWheat].Collected)

	// A higher fresh result replaces the floor.
	third := snapshotWith(contestProfile("Apple", map[string]profile.RawContest{
		"286:2_2:WHEAT": {Collected: 120_000},
	}))
	rec3 := Aggregate(rec2, third, nil)

	assert.Equal(t, int64(120_000), rec3.Bests[farming.CropWheat].Collected)
}

func TestAggregate_RecentWindow(t *testing.T) {
	contests := make(map[string]profile.RawContest, 15)
	for day := 1; day <= 15; day++ {
		contests[fmt.Sprintf("285:6_%d:WHEAT", day)] = profile.RawContest{Collected: int64(1_000 * day)}
	}
	snap := snapshotWith(contestProfile("Apple", contests))

	rec := Aggregate(nil, snap, nil)

	recent := rec.Recent[farming.CropWheat]
	require.Len(t, recent, RecentLimit)

	// Descending by date, newest first.
	for i := 1; i < len(recent); i++ {
		assert.Greater(t, recent[i-1].Date, recent[i].Date)
	}
	assert.Equal(t, timeutil.NewContestDate(285, 6, 15), recent[0].Date)
	assert.Len(t, rec.RecentOverall, RecentLimit)
}

func TestAggregate_RecentDeduplicatesOnDate(t *testing.T) {
	// The same contest observed on two profiles appears once, with the
	// higher collected amount.
	snap := snapshotWith(
		contestProfile("Apple", map[string]profile.RawContest{
			"285:6_11:WHEAT": {Collected: 10_000},
		}),
		contestProfile("Banana", map[string]profile.RawContest{
			"285:6_11:WHEAT": {Collected: 30_000},
		}),
	)

	rec := Aggregate(nil, snap, nil)

	require.Len(t, rec.Recent[farming.CropWheat], 1)
	assert.Equal(t, int64(30_000), rec.Recent[farming.CropWheat][0].Collected)
}

func TestAggregate_MedalInventory(t *testing.T) {
	p := contestProfile("Apple", nil)
	p.Member.MedalInventory = profile.MedalInventory{Gold: 2, Silver: 4, Bronze: 8}
	rec := Aggregate(nil, snapshotWith(p), nil)

	assert.Equal(t, Medals{Gold: 2, Silver: 4, Bronze: 8}, rec.CurrentMedals)
}

func TestEligibleBests(t *testing.T) {
	snap := snapshotWith(contestProfile("Apple", map[string]profile.RawContest{
		"280:6_11:WHEAT": {Collected: 90_000},
		"285:6_11:MELON": {Collected: 50_000},
	}))
	rec := Aggregate(nil, snap, nil)

	eligible := rec.EligibleBests(timeutil.NewContestDate(283, 1, 1))

	assert.NotContains(t, eligible, farming.CropWheat)
	assert.Contains(t, eligible, farming.CropMelon)
}
