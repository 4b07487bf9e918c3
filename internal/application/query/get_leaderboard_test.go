package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/guild"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// fakeViewCache mimics the serialize/deserialize round trip of the real
// Redis-backed view cache.
type fakeViewCache struct {
	data map[string][]byte
	puts int
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{data: make(map[string][]byte)}
}

func (f *fakeViewCache) Get(_ context.Context, guildID string, dest interface{}) error {
	raw, ok := f.data[guildID]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeViewCache) Put(_ context.Context, guildID string, view interface{}) error {
	f.puts++
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	f.data[guildID] = raw
	return nil
}

func seededGuildRepo(t *testing.T) *fakeGuildRepo {
	t.Helper()

	guilds := newFakeGuildRepo()
	settings := guild.DefaultSettings("guild-1")
	settings.Crops = []farming.Crop{farming.CropWheat, farming.CropCactus}
	guilds.settings["guild-1"] = settings

	board := guild.NewBoard("guild-1")
	board.Slots[farming.CropWheat] = guild.Slot{
		{OwnerUUID: "u1", OwnerName: "Alice", Collected: 500_000, Date: timeutil.NewContestDate(200, 1, 1)},
		{OwnerUUID: "u2", OwnerName: "Bob", Collected: 300_000, Date: timeutil.NewContestDate(200, 2, 5)},
	}
	guilds.boards["guild-1"] = board
	return guilds
}

func TestGetLeaderboard_RendersTrackedCrops(t *testing.T) {
	h := NewGetLeaderboardHandler(seededGuildRepo(t), nil, testLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: "guild-1"})
	require.NoError(t, err)

	assert.Equal(t, "guild-1", result.GuildID)
	require.Contains(t, result.Crops, string(farming.CropWheat))
	require.Contains(t, result.Crops, string(farming.CropCactus))
	assert.NotContains(t, result.Crops, string(farming.CropMelon), "untracked crops are not rendered")

	wheat := result.Crops[string(farming.CropWheat)]
	require.Len(t, wheat, 2)
	assert.Equal(t, 1, wheat[0].Rank)
	assert.Equal(t, "Alice", wheat[0].PlayerName)
	assert.Equal(t, int64(500_000), wheat[0].Collected)
	assert.Equal(t, 2, wheat[1].Rank)

	assert.Empty(t, result.Crops[string(farming.CropCactus)])
}

func TestGetLeaderboard_UnknownGuildGetsDefaults(t *testing.T) {
	h := NewGetLeaderboardHandler(newFakeGuildRepo(), nil, testLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: "nobody"})
	require.NoError(t, err)

	assert.Equal(t, int(guild.DefaultCutoff), result.CutoffDate)
	assert.Len(t, result.Crops, len(farming.AllCrops))
	for _, entries := range result.Crops {
		assert.Empty(t, entries)
	}
}

func TestGetLeaderboard_ServesCachedView(t *testing.T) {
	guilds := seededGuildRepo(t)
	views := newFakeViewCache()
	h := NewGetLeaderboardHandler(guilds, views, testLogger())

	first, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: "guild-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, views.puts)

	// Mutate the store; the cached view must still be served.
	guilds.boards["guild-1"].Slots[farming.CropWheat] = nil

	second, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: "guild-1"})
	require.NoError(t, err)
	assert.Equal(t, first.Crops[string(farming.CropWheat)], second.Crops[string(farming.CropWheat)])
	assert.Equal(t, 1, views.puts, "cache hits must not rewrite the view")
}

func TestGetLeaderboard_Validation(t *testing.T) {
	h := NewGetLeaderboardHandler(newFakeGuildRepo(), nil, testLogger())

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: " "})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}
