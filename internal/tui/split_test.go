package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godver3/anitrack/internal/config"
	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/remote"
	"github.com/godver3/anitrack/internal/store"
)

type fakeSplitService struct {
	byID map[uint32]remote.SeriesInfo
}

func (f *fakeSplitService) SearchInfoByName(ctx context.Context, name string) ([]remote.SeriesInfo, error) {
	return nil, nil
}
func (f *fakeSplitService) SearchInfoByID(ctx context.Context, id uint32) (remote.SeriesInfo, error) {
	info, ok := f.byID[id]
	if !ok {
		return remote.SeriesInfo{}, &remote.HTTPError{Code: 404, Message: "not found"}
	}
	return info, nil
}
func (f *fakeSplitService) GetListEntry(ctx context.Context, id uint32) (*remote.SeriesEntry, error) {
	return nil, nil
}
func (f *fakeSplitService) UpdateListEntry(ctx context.Context, e remote.SeriesEntry) error { return nil }
func (f *fakeSplitService) IsOffline() bool                                                { return false }
func (f *fakeSplitService) ParseScore(s string) (uint8, error)                             { return 0, nil }
func (f *fakeSplitService) ScoreToStr(score uint8) string                                  { return "" }

func TestSplitCurrentSeasons_SplitsMergedFolderAndRepointsRow(t *testing.T) {
	srcDir := t.TempDir()
	for n := 1; n <= 25; n++ {
		name := filepath.Join(srcDir, fmt.Sprintf("Merged Show - %02d.mkv", n))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	root := remote.SeriesInfo{
		ID: 1, Episodes: 13, Kind: remote.KindSeason,
		Title:   remote.SeriesTitle{Preferred: "Season One"},
		Sequels: []remote.Sequel{{ID: 2, Kind: remote.KindSeason}},
	}
	sequel := remote.SeriesInfo{ID: 2, Episodes: 12, Kind: remote.KindSeason, Title: remote.SeriesTitle{Preferred: "Season Two"}}
	svc := &fakeSplitService{byID: map[uint32]remote.SeriesInfo{2: sequel}}

	cfg := store.SeriesConfig{ID: 1, Nickname: "merged show", Path: srcDir}
	row := Load(cfg, &root, entry.New(1))
	require.Equal(t, LoadComplete, row.Kind)

	dbPath := filepath.Join(t.TempDir(), "anitrack.db")
	db, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SaveSeries(cfg, root, store.SnapshotFromEntry(row.Series.Entry)))

	m := New(config.New(srcDir), db, svc, []LoadedSeries{row}, "")

	m.splitCurrentSeasons()
	require.Empty(t, m.errLog, "unexpected error: %v", m.errLog)

	updated := m.series[0]
	require.Equal(t, LoadComplete, updated.Kind)
	assert.Equal(t, srcDir+"-split", updated.Series.Config.Path)
	assert.Equal(t, uint32(13), updated.Series.Info.Episodes)

	split, ok := updated.Series.Episodes.TakeSeasonEpisodesOrPresent()
	require.True(t, ok)
	assert.Equal(t, 13, split.Len())

	persisted, err := db.LoadSeriesConfig(1)
	require.NoError(t, err)
	assert.Equal(t, srcDir+"-split", persisted.Path)
}

func TestSplitCurrentSeasons_NoopWithoutMergedFolder(t *testing.T) {
	srcDir := t.TempDir()

	cfg := store.SeriesConfig{ID: 1, Nickname: "empty show", Path: srcDir}
	row := LoadedSeries{Kind: LoadComplete, Series: Series{Config: cfg, Entry: entry.New(1)}}

	dbPath := filepath.Join(t.TempDir(), "anitrack.db")
	db, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := New(config.New(srcDir), db, &fakeSplitService{}, []LoadedSeries{row}, "")

	m.splitCurrentSeasons()
	require.NotEmpty(t, m.errLog)
	assert.Equal(t, srcDir, m.series[0].Series.Config.Path)
}

func TestHandleKey_SplitSeasonsBindingInvokesSplit(t *testing.T) {
	srcDir := t.TempDir()
	cfg := store.SeriesConfig{ID: 1, Nickname: "empty show", Path: srcDir}
	row := LoadedSeries{Kind: LoadComplete, Series: Series{Config: cfg, Entry: entry.New(1)}}

	dbPath := filepath.Join(t.TempDir(), "anitrack.db")
	db, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := New(config.New(srcDir), db, &fakeSplitService{}, []LoadedSeries{row}, "")

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}
	_, _ = m.handleKey(msg)

	require.NotEmpty(t, m.errLog, "expected splitCurrentSeasons to run and log the missing-folder error")
}
