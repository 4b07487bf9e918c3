package command

import (
	"context"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefarmers/farmhand/internal/application/identity"
	"github.com/elitefarmers/farmhand/internal/application/snapshot"
	"github.com/elitefarmers/farmhand/internal/domain/contest"
	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/guild"
	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

const testUUID = "b876ec32e396476ba1158438d83c67d4"

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeFetcher struct {
	snap *profile.Snapshot
}

func (f *fakeFetcher) FetchSnapshot(_ context.Context, _ string) (*profile.Snapshot, error) {
	return f.snap, nil
}

type fakeSnapshotRepo struct {
	snapshots map[string]*profile.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: make(map[string]*profile.Snapshot)}
}

func (r *fakeSnapshotRepo) LoadSnapshot(_ context.Context, playerUUID string) (*profile.Snapshot, error) {
	snap, ok := r.snapshots[playerUUID]
	if !ok {
		return nil, profile.ErrSnapshotNotFound
	}
	return snap, nil
}

func (r *fakeSnapshotRepo) SaveSnapshot(_ context.Context, snapshot *profile.Snapshot) error {
	r.snapshots[snapshot.PlayerUUID] = snapshot
	return nil
}

type fakeRecordRepo struct {
	records map[string]*contest.PlayerRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*contest.PlayerRecord)}
}

func (r *fakeRecordRepo) LoadRecord(_ context.Context, playerUUID string) (*contest.PlayerRecord, error) {
	rec, ok := r.records[playerUUID]
	if !ok {
		return nil, contest.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeRecordRepo) SaveRecord(_ context.Context, playerUUID string, record *contest.PlayerRecord) error {
	r.records[playerUUID] = record
	return nil
}

type fakeGuildRepo struct {
	settings   map[string]guild.Settings
	boards     map[string]*guild.Board
	boardSaves int
}

func newFakeGuildRepo() *fakeGuildRepo {
	return &fakeGuildRepo{
		settings: make(map[string]guild.Settings),
		boards:   make(map[string]*guild.Board),
	}
}

func (r *fakeGuildRepo) LoadSettings(_ context.Context, guildID string) (guild.Settings, error) {
	s, ok := r.settings[guildID]
	if !ok {
		return guild.Settings{}, guild.ErrGuildNotFound
	}
	return s, nil
}

func (r *fakeGuildRepo) SaveSettings(_ context.Context, settings guild.Settings) error {
	r.settings[settings.GuildID] = settings
	return nil
}

func (r *fakeGuildRepo) LoadBoard(_ context.Context, guildID string) (*guild.Board, error) {
	b, ok := r.boards[guildID]
	if !ok {
		return nil, guild.ErrGuildNotFound
	}
	return b, nil
}

func (r *fakeGuildRepo) SaveBoard(_ context.Context, board *guild.Board) error {
	r.boardSaves++
	r.boards[board.GuildID] = board
	return nil
}

func (r *fakeGuildRepo) ListGuildIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.settings))
	for id := range r.settings {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeInvalidator struct {
	calls []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, guildID string) error {
	f.calls = append(f.calls, guildID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// snapshotWithContests builds a snapshot whose single profile carries the
// given raw contest history.
func snapshotWithContests(contests map[string]profile.RawContest) *profile.Snapshot {
	return &profile.Snapshot{
		PlayerUUID: testUUID,
		PlayerName: "Technoblade",
		FetchedAt:  time.Now(),
		Profiles: []*profile.Profile{
			{
				ID:   "profile-1",
				Name: "Apple",
				API:  true,
				Member: profile.Member{
					Collections: map[farming.Crop]int64{farming.CropWheat: 1_000_000},
					Contests:    contests,
				},
			},
		},
	}
}

func newHandler(snap *profile.Snapshot, guilds *fakeGuildRepo, inval BoardInvalidator) (*SubmitLeaderboardHandler, *fakeRecordRepo) {
	log := testLogger()
	resolver := identity.NewResolver(nil, nil, nil, log)
	snapshots := snapshot.NewService(&fakeFetcher{snap: snap}, newFakeSnapshotRepo(), nil, log)
	records := newFakeRecordRepo()
	return NewSubmitLeaderboardHandler(resolver, snapshots, records, guilds, inval, log), records
}

func intPtr(v int) *int { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestSubmitLeaderboard_Validation(t *testing.T) {
	h, _ := newHandler(snapshotWithContests(nil), newFakeGuildRepo(), nil)

	_, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "", Player: testUUID})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: " "})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestSubmitLeaderboard_FirstScoreTakesRecord(t *testing.T) {
	snap := snapshotWithContests(map[string]profile.RawContest{
		"160:1_1:WHEAT": {Collected: 500_000, Position: intPtr(1), Participants: intPtr(100)},
	})
	guilds := newFakeGuildRepo()
	inval := &fakeInvalidator{}
	h, records := newHandler(snap, guilds, inval)

	result, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	assert.Equal(t, "guild-1", result.GuildID)
	assert.Equal(t, testUUID, result.PlayerUUID)
	assert.Equal(t, "Technoblade", result.PlayerName)
	assert.True(t, result.Changed)
	assert.Equal(t, "record", result.Results[string(farming.CropWheat)])

	require.Len(t, result.Announcements, 1)
	ann := result.Announcements[0]
	assert.Equal(t, string(farming.CropWheat), ann.Crop)
	assert.Equal(t, int64(500_000), ann.Collected)
	assert.Equal(t, 1, ann.Rank)
	assert.True(t, ann.Record)

	assert.Equal(t, 1, guilds.boardSaves)
	assert.Equal(t, []string{"guild-1"}, inval.calls)
	assert.Contains(t, records.records, testUUID)
}

func TestSubmitLeaderboard_RepeatSubmissionIsNoChange(t *testing.T) {
	snap := snapshotWithContests(map[string]profile.RawContest{
		"160:1_1:WHEAT": {Collected: 500_000, Position: intPtr(1), Participants: intPtr(100)},
	})
	guilds := newFakeGuildRepo()
	h, _ := newHandler(snap, guilds, nil)

	_, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Announcements)
	assert.Equal(t, 1, guilds.boardSaves, "unchanged boards must not be rewritten")
}

func TestSubmitLeaderboard_LowerRankIsNotAnnounced(t *testing.T) {
	guilds := newFakeGuildRepo()

	// Another player already holds first place.
	board := guild.NewBoard("guild-1")
	board.Slots[farming.CropWheat] = guild.Slot{
		{
			OwnerUUID: "11111111111111111111111111111111",
			OwnerName: "Apple",
			Collected: 900_000,
			Date:      timeutil.NewContestDate(160, 1, 1),
		},
	}
	guilds.boards["guild-1"] = board

	snap := snapshotWithContests(map[string]profile.RawContest{
		"160:2_1:WHEAT": {Collected: 500_000, Position: intPtr(2), Participants: intPtr(100)},
	})
	h, _ := newHandler(snap, guilds, nil)

	result, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, "ranked", result.Results[string(farming.CropWheat)])
	assert.Empty(t, result.Announcements, "only a new first place is announced")

	slot := guilds.boards["guild-1"].Slots[farming.CropWheat]
	require.Len(t, slot, 2)
	assert.Equal(t, "Apple", slot[0].OwnerName)
	assert.Equal(t, testUUID, slot[1].OwnerUUID)
}

func TestSubmitLeaderboard_ReclaimStaysSilent(t *testing.T) {
	guilds := newFakeGuildRepo()

	// First pass: result not yet claimed.
	unclaimed := snapshotWithContests(map[string]profile.RawContest{
		"160:1_1:WHEAT": {Collected: 500_000},
	})
	h, _ := newHandler(unclaimed, guilds, nil)
	first, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)
	require.True(t, first.Changed)

	// Second pass: same contest, claim data now present.
	claimed := snapshotWithContests(map[string]profile.RawContest{
		"160:1_1:WHEAT": {Collected: 500_000, Position: intPtr(3), Participants: intPtr(100)},
	})
	h2, _ := newHandler(claimed, guilds, nil)
	second, err := h2.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	assert.True(t, second.Changed)
	assert.Equal(t, "reclaimed", second.Results[string(farming.CropWheat)])
	assert.Empty(t, second.Announcements, "reclaim refreshes are not announced")

	// The stored entry now carries the claim data.
	slot := guilds.boards["guild-1"].Slots[farming.CropWheat]
	require.Len(t, slot, 1)
	require.NotNil(t, slot[0].Position)
	assert.Equal(t, 3, *slot[0].Position)
}

func TestSubmitLeaderboard_UntrackedCropIgnored(t *testing.T) {
	snap := snapshotWithContests(map[string]profile.RawContest{
		"160:1_1:WHEAT":  {Collected: 500_000},
		"160:1_1:CACTUS": {Collected: 400_000},
	})
	guilds := newFakeGuildRepo()
	settings := guild.DefaultSettings("guild-1")
	settings.Crops = []farming.Crop{farming.CropWheat}
	guilds.settings["guild-1"] = settings

	h, _ := newHandler(snap, guilds, nil)
	result, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	assert.Contains(t, result.Results, string(farming.CropWheat))
	assert.NotContains(t, result.Results, string(farming.CropCactus))
}

func TestSubmitLeaderboard_CutoffFiltersOldScores(t *testing.T) {
	snap := snapshotWithContests(map[string]profile.RawContest{
		"160:1_1:WHEAT": {Collected: 500_000},
	})
	guilds := newFakeGuildRepo()
	settings := guild.DefaultSettings("guild-1")
	settings.CutoffDate = timeutil.NewContestDate(161, 1, 1)
	guilds.settings["guild-1"] = settings

	h, _ := newHandler(snap, guilds, nil)
	result, err := h.Handle(context.Background(), SubmitLeaderboardCommand{GuildID: "guild-1", Player: testUUID})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, result.Results)
	assert.Zero(t, guilds.boardSaves)
}
