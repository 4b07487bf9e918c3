package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
)

func selectorProfiles() []*Profile {
	return []*Profile{
		{
			ID:   "p1",
			Name: "Apple",
			API:  true,
			Member: Member{
				Collections: map[farming.Crop]int64{farming.CropWheat: 200_000},
			},
		},
		{
			ID:   "p2",
			Name: "Banana",
			API:  true,
			Member: Member{
				Collections: map[farming.Crop]int64{farming.CropWheat: 1_000_000},
			},
		},
	}
}

func TestSelectBest_HighestTotalWins(t *testing.T) {
	sel, err := SelectBest(selectorProfiles(), "")
	require.NoError(t, err)

	assert.Equal(t, "p2", sel.Profile.ID)
	assert.Greater(t, sel.Weight.Total, 0.0)
}

func TestSelectBest_OverrideName(t *testing.T) {
	sel, err := SelectBest(selectorProfiles(), "apple")
	require.NoError(t, err)

	// The override wins even though it scores lower.
	assert.Equal(t, "p1", sel.Profile.ID)
}

func TestSelectBest_OverrideNameMissing(t *testing.T) {
	_, err := SelectBest(selectorProfiles(), "Cherry")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSelectBest_NoProfiles(t *testing.T) {
	_, err := SelectBest(nil, "")
	assert.ErrorIs(t, err, ErrNoProfiles)
}

func TestSelectBest_AllHidden(t *testing.T) {
	profiles := selectorProfiles()
	for _, p := range profiles {
		p.Member.Collections = nil
		p.API = false
	}

	sel, err := SelectBest(profiles, "")
	require.NoError(t, err)
	assert.True(t, sel.Weight.Hidden())
}
