package query

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
	"github.com/elitefarmers/farmhand/internal/infrastructure/cache"
)

const testUUID = "b876ec32e396476ba1158438d83c67d4"

// ─────────────────────────────────────────────────────────────────────────────
// Fakes shared by the query tests
// ─────────────────────────────────────────────────────────────────────────────

type fakeFetcher struct {
	snap  *profile.Snapshot
	calls int
}

func (f *fakeFetcher) FetchSnapshot(_ context.Context, _ string) (*profile.Snapshot, error) {
	f.calls++
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
	settings map[string]guild.Settings
	boards   map[string]*guild.Board
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSnapshotService(snap *profile.Snapshot) (*snapshot.Service, *fakeFetcher) {
	fetcher := &fakeFetcher{snap: snap}
	return snapshot.NewService(fetcher, newFakeSnapshotRepo(), nil, testLogger()), fetcher
}

func testResolver() *identity.Resolver {
	return identity.NewResolver(nil, nil, nil, testLogger())
}

func intPtr(v int) *int { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// Weight query tests
// ─────────────────────────────────────────────────────────────────────────────

func weightSnapshot() *profile.Snapshot {
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
				},
			},
			{
				ID:   "profile-2",
				Name: "Banana",
				API:  true,
				Member: profile.Member{
					Collections: map[farming.Crop]int64{farming.CropWheat: 200_000},
				},
			},
		},
	}
}

func TestGetWeight_PicksHighestProfile(t *testing.T) {
	snapshots, _ := testSnapshotService(weightSnapshot())
	h := NewGetWeightHandler(testResolver(), snapshots, cache.New[*GetWeightResult](time.Minute))

	result, err := h.Handle(context.Background(), GetWeightQuery{Player: testUUID})
	require.NoError(t, err)

	assert.Equal(t, testUUID, result.PlayerUUID)
	assert.Equal(t, "Apple", result.ProfileName)
	assert.False(t, result.Hidden)
	assert.InDelta(t, 10.0, result.Crops[string(farming.CropWheat)], 0.001)
	assert.Greater(t, result.Total, 0.0)
}

func TestGetWeight_NamedProfile(t *testing.T) {
	snapshots, _ := testSnapshotService(weightSnapshot())
	h := NewGetWeightHandler(testResolver(), snapshots, cache.New[*GetWeightResult](time.Minute))

	result, err := h.Handle(context.Background(), GetWeightQuery{Player: testUUID, ProfileName: "banana"})
	require.NoError(t, err)

	assert.Equal(t, "Banana", result.ProfileName)
	assert.InDelta(t, 2.0, result.Crops[string(farming.CropWheat)], 0.001)
}

func TestGetWeight_UnknownProfileName(t *testing.T) {
	snapshots, _ := testSnapshotService(weightSnapshot())
	h := NewGetWeightHandler(testResolver(), snapshots, cache.New[*GetWeightResult](time.Minute))

	_, err := h.Handle(context.Background(), GetWeightQuery{Player: testUUID, ProfileName: "Cherry"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetWeight_HiddenCollections(t *testing.T) {
	snap := weightSnapshot()
	for _, p := range snap.Profiles {
		p.Member.Collections = nil
		p.API = false
	}
	snapshots, _ := testSnapshotService(snap)
	h := NewGetWeightHandler(testResolver(), snapshots, cache.New[*GetWeightResult](time.Minute))

	result, err := h.Handle(context.Background(), GetWeightQuery{Player: testUUID})
	require.NoError(t, err)

	assert.True(t, result.Hidden)
	assert.Empty(t, result.Crops)
	assert.Equal(t, -1.0, result.Total)
}

func TestGetWeight_ResultCached(t *testing.T) {
	snapshots, fetcher := testSnapshotService(weightSnapshot())
	h := NewGetWeightHandler(testResolver(), snapshots, cache.New[*GetWeightResult](time.Minute))

	first, err := h.Handle(context.Background(), GetWeightQuery{Player: testUUID})
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), GetWeightQuery{Player: testUUID})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "cached lookups must not refetch")
}

func TestGetWeight_Validation(t *testing.T) {
	snapshots, _ := testSnapshotService(weightSnapshot())
	h := NewGetWeightHandler(testResolver(), snapshots, cache.New[*GetWeightResult](time.Minute))

	_, err := h.Handle(context.Background(), GetWeightQuery{Player: "  "})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}
