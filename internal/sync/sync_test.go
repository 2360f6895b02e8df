package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/remote"
)

type fakeService struct {
	offline    bool
	entries    map[uint32]remote.SeriesEntry
	updateErr  error
	updateCalls int
}

func (f *fakeService) SearchInfoByName(ctx context.Context, name string) ([]remote.SeriesInfo, error) {
	return nil, nil
}
func (f *fakeService) SearchInfoByID(ctx context.Context, id uint32) (remote.SeriesInfo, error) {
	return remote.SeriesInfo{}, nil
}
func (f *fakeService) GetListEntry(ctx context.Context, id uint32) (*remote.SeriesEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
func (f *fakeService) UpdateListEntry(ctx context.Context, e remote.SeriesEntry) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.entries == nil {
		f.entries = map[uint32]remote.SeriesEntry{}
	}
	f.entries[e.ID] = e
	return nil
}
func (f *fakeService) IsOffline() bool                   { return f.offline }
func (f *fakeService) ParseScore(s string) (uint8, error) { return 0, nil }
func (f *fakeService) ScoreToStr(score uint8) string      { return "" }

func TestToRemote_NoopWhenClean(t *testing.T) {
	svc := &fakeService{}
	e := entry.FromRemote(remote.NewSeriesEntry(1))

	pushed, err := ToRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.False(t, pushed)
	assert.Equal(t, 0, svc.updateCalls)
}

func TestToRemote_PushesWhenDirty(t *testing.T) {
	svc := &fakeService{}
	e := entry.New(1)
	e.BeginWatching(entry.Config{}, 12)
	require.True(t, e.NeedsSync())

	pushed, err := ToRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.True(t, pushed)
	assert.False(t, e.NeedsSync())
	assert.Equal(t, 1, svc.updateCalls)
}

func TestForceToRemote_SkipsWhenOffline(t *testing.T) {
	svc := &fakeService{offline: true}
	e := entry.New(1)
	e.BeginWatching(entry.Config{}, 12)

	err := ForceToRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.Equal(t, 0, svc.updateCalls)
	assert.True(t, e.NeedsSync(), "dirty bit should survive a skipped offline push")
}

func TestFromRemote_NoopWhenDirty(t *testing.T) {
	svc := &fakeService{entries: map[uint32]remote.SeriesEntry{1: {ID: 1, WatchedEps: 9}}}
	e := entry.New(1)
	e.BeginWatching(entry.Config{}, 12)

	result, err := FromRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.Same(t, e, result)
	assert.Equal(t, uint32(0), result.WatchedEpisodes())
}

func TestForceFromRemote_ReplacesWithFreshWhenMissing(t *testing.T) {
	svc := &fakeService{}
	e := entry.FromRemote(remote.SeriesEntry{ID: 5, WatchedEps: 3, Status: remote.Watching})

	result, err := ForceFromRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.Equal(t, remote.PlanToWatch, result.Status())
	assert.Equal(t, uint32(0), result.WatchedEpisodes())
	assert.False(t, result.NeedsSync())
}

func TestForceFromRemote_SkipsWhenOffline(t *testing.T) {
	svc := &fakeService{offline: true}
	e := entry.FromRemote(remote.SeriesEntry{ID: 5, WatchedEps: 3, Status: remote.Watching})

	result, err := ForceFromRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.Same(t, e, result, "offline pull must leave the local entry untouched")
	assert.Equal(t, uint32(3), result.WatchedEpisodes())
	assert.Equal(t, remote.Watching, result.Status())
}

func TestForceFromRemote_PullsExisting(t *testing.T) {
	svc := &fakeService{entries: map[uint32]remote.SeriesEntry{5: {ID: 5, WatchedEps: 7, Status: remote.Watching}}}
	e := entry.New(5)

	result, err := ForceFromRemote(context.Background(), svc, e)

	require.NoError(t, err)
	assert.Equal(t, uint32(7), result.WatchedEpisodes())
	assert.False(t, result.NeedsSync())
}
