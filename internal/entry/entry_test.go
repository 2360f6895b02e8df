package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godver3/anitrack/internal/remote"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestBeginWatching_PlanToWatchSetsStartDate(t *testing.T) {
	today := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	e := New(1).WithClock(fixedClock(today))

	e.BeginWatching(Config{}, 12)

	assert.Equal(t, remote.Watching, e.Status())
	require.NotNil(t, e.StartDate())
	assert.True(t, e.StartDate().Equal(today))
	assert.True(t, e.NeedsSync())
}

func TestBeginWatching_IdempotentWhileIncomplete(t *testing.T) {
	e := New(1).WithClock(fixedClock(time.Now()))
	e.BeginWatching(Config{}, 12)
	e.ClearSyncFlag()

	e.BeginWatching(Config{}, 12)

	assert.Equal(t, remote.Watching, e.Status())
	assert.False(t, e.NeedsSync())
}

func TestBeginWatching_DroppedResetsProgress(t *testing.T) {
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Dropped, WatchedEps: 5})
	e.BeginWatching(Config{}, 12)

	assert.Equal(t, remote.Watching, e.Status())
	assert.Equal(t, uint32(0), e.WatchedEpisodes())
}

func TestBeginWatching_CompletedGoesToRewatching(t *testing.T) {
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Completed, WatchedEps: 12})
	e.BeginWatching(Config{}, 12)

	assert.Equal(t, remote.Rewatching, e.Status())
	assert.Equal(t, uint32(0), e.WatchedEpisodes())
}

func TestEpisodeCompleted_IncrementsUntilDone(t *testing.T) {
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Watching, WatchedEps: 10})

	e.EpisodeCompleted(Config{}, 12)
	assert.Equal(t, uint32(11), e.WatchedEpisodes())
	assert.Equal(t, remote.Watching, e.Status())

	e.EpisodeCompleted(Config{}, 12)
	assert.Equal(t, uint32(12), e.WatchedEpisodes())
	assert.Equal(t, remote.Completed, e.Status())
	assert.NotNil(t, e.EndDate())
}

func TestEpisodeCompleted_FromRewatchingIncrementsCount(t *testing.T) {
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Rewatching, WatchedEps: 11, TimesRewatched: 0})

	e.EpisodeCompleted(Config{}, 12)

	assert.Equal(t, remote.Completed, e.Status())
	assert.Equal(t, uint32(1), e.TimesRewatched())
}

func TestEpisodeRegressed_Saturates(t *testing.T) {
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Watching, WatchedEps: 0})
	e.EpisodeRegressed(Config{})
	assert.Equal(t, uint32(0), e.WatchedEpisodes())
}

func TestEpisodeRegressed_CompletedWithRewatchGoesToRewatching(t *testing.T) {
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Completed, WatchedEps: 12, TimesRewatched: 1})
	e.EpisodeRegressed(Config{})
	assert.Equal(t, remote.Rewatching, e.Status())
	assert.Equal(t, uint32(11), e.WatchedEpisodes())
}

func TestSync_ClearsNeedsSync(t *testing.T) {
	e := New(1)
	e.BeginWatching(Config{}, 12)
	require.True(t, e.NeedsSync())

	e.ClearSyncFlag()
	assert.False(t, e.NeedsSync())
}

func TestDatesDoNotStompByDefault(t *testing.T) {
	existing := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Completed, WatchedEps: 12, StartDate: &existing})

	e.BeginWatching(Config{ResetDatesOnRewatch: false}, 12)

	require.NotNil(t, e.StartDate())
	assert.True(t, e.StartDate().Equal(existing))
}

func TestDatesResetOnRewatchWhenConfigured(t *testing.T) {
	existing := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	e := FromRemote(remote.SeriesEntry{ID: 1, Status: remote.Completed, WatchedEps: 12, StartDate: &existing})
	e.WithClock(fixedClock(today))

	e.BeginWatching(Config{ResetDatesOnRewatch: true}, 12)

	require.NotNil(t, e.StartDate())
	assert.True(t, e.StartDate().Equal(today))
}

func TestFromSnapshot_PreservesNeedsSyncBit(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	score := uint8(85)

	e := FromSnapshot(7, 4, &score, remote.Watching, 1, &started, nil, true)

	assert.Equal(t, uint32(7), e.ID())
	assert.Equal(t, uint32(4), e.WatchedEpisodes())
	require.NotNil(t, e.Score())
	assert.Equal(t, uint8(85), *e.Score())
	assert.Equal(t, remote.Watching, e.Status())
	assert.Equal(t, uint32(1), e.TimesRewatched())
	assert.True(t, e.NeedsSync())
}
