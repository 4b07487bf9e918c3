package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
)

func visibleProfile(id, name string, wheat int64) *Profile {
	return &Profile{
		ID:   id,
		Name: name,
		Member: Member{
			Collections: map[farming.Crop]int64{farming.CropWheat: wheat},
			FarmingXP:   1000,
			Contests:    map[string]RawContest{},
		},
		API: true,
	}
}

func hiddenProfile(id, name string, contests map[string]RawContest) *Profile {
	return &Profile{
		ID:   id,
		Name: name,
		Member: Member{
			Contests: contests,
			Minions:  []string{"WHEAT_12"},
		},
		API: false,
	}
}

func TestMerge_Fallbacks(t *testing.T) {
	saved := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{visibleProfile("p1", "Apple", 100)}}
	fresh := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{visibleProfile("p1", "Apple", 200)}}

	t.Run("nil saved degenerates to fresh", func(t *testing.T) {
		assert.Equal(t, fresh, Merge(nil, fresh))
	})

	t.Run("empty saved degenerates to fresh", func(t *testing.T) {
		assert.Equal(t, fresh, Merge(&Snapshot{}, fresh))
	})

	t.Run("nil fresh degenerates to saved", func(t *testing.T) {
		assert.Equal(t, saved, Merge(saved, nil))
	})
}

func TestMerge_ProfileAbsentFromFresh(t *testing.T) {
	old := visibleProfile("p1", "Apple", 100)
	saved := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{old}}
	fresh := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{visibleProfile("p2", "Banana", 50)}}

	merged := Merge(saved, fresh)

	require.Len(t, merged.Profiles, 2)
	assert.Same(t, old, merged.FindProfile("p1"), "profile missing from this pull is kept unchanged")
	assert.NotNil(t, merged.FindProfile("p2"))
}

func TestMerge_FreshHidesCollections(t *testing.T) {
	contests := map[string]RawContest{"285:6_11:WHEAT": {Collected: 50_000}}
	saved := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{visibleProfile("p1", "Apple", 100)}}
	fresh := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{hiddenProfile("p1", "Apple", contests)}}

	merged := Merge(saved, fresh)

	require.Len(t, merged.Profiles, 1)
	got := merged.Profiles[0]

	// Stale counters beat no counters.
	assert.Equal(t, int64(100), got.Member.Collections[farming.CropWheat])
	assert.Equal(t, float64(1000), got.Member.FarmingXP)

	// Contest history and minions are always visible; fresh wins.
	assert.Equal(t, contests, got.Member.Contests)
	assert.Equal(t, []string{"WHEAT_12"}, got.Member.Minions)
	assert.False(t, got.API)
}

func TestMerge_FreshVisibleWins(t *testing.T) {
	saved := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{visibleProfile("p1", "Apple", 100)}}
	cur := visibleProfile("p1", "Apple", 999)
	fresh := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{cur}}

	merged := Merge(saved, fresh)

	require.Len(t, merged.Profiles, 1)
	assert.Same(t, cur, merged.Profiles[0])
	assert.True(t, merged.Profiles[0].API)
}

func TestMerge_Idempotent(t *testing.T) {
	saved := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{
		visibleProfile("p1", "Apple", 100),
		visibleProfile("p2", "Banana", 200),
	}}
	fresh := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{
		hiddenProfile("p1", "Apple", map[string]RawContest{"285:6_11:WHEAT": {Collected: 1_000}}),
		visibleProfile("p3", "Coconut", 300),
	}}

	once := Merge(saved, fresh)
	twice := Merge(once, fresh)

	assert.Equal(t, once, twice, "re-merging the same fresh pull must be a no-op")
}

func TestMerge_DeduplicatesProfileIDs(t *testing.T) {
	saved := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{
		visibleProfile("p1", "Apple", 100),
		visibleProfile("p1", "Apple", 100),
	}}
	fresh := &Snapshot{PlayerUUID: "u1", Profiles: []*Profile{
		visibleProfile("p1", "Apple", 150),
		visibleProfile("p1", "Apple", 150),
	}}

	merged := Merge(saved, fresh)

	assert.Len(t, merged.Profiles, 1)
}

func TestSelectBest(t *testing.T) {
	low := visibleProfile("p1", "Apple", 100_000)     // 1.0
	high := visibleProfile("p2", "Banana", 1_000_000) // 10.0
	hidden := hiddenProfile("p3", "Coconut", nil)

	t.Run("highest total wins", func(t *testing.T) {
		sel, err := SelectBest([]*Profile{low, high, hidden}, "")
		require.NoError(t, err)
		assert.Same(t, high, sel.Profile)
		assert.InDelta(t, 10.0, sel.Weight.Total, 0.001)
	})

	t.Run("override wins regardless of score", func(t *testing.T) {
		sel, err := SelectBest([]*Profile{low, high}, "apple")
		require.NoError(t, err)
		assert.Same(t, low, sel.Profile)
	})

	t.Run("unknown override", func(t *testing.T) {
		_, err := SelectBest([]*Profile{low}, "Durian")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		_, err := SelectBest(nil, "")
		assert.ErrorIs(t, err, ErrNoProfiles)
	})

	t.Run("all hidden reports sentinel", func(t *testing.T) {
		sel, err := SelectBest([]*Profile{hidden}, "")
		require.NoError(t, err)
		assert.True(t, sel.Weight.Hidden())
	})
}
