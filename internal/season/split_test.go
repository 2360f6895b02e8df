package season

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godver3/anitrack/internal/library"
	"github.com/godver3/anitrack/internal/remote"
)

func TestSplitMergedSeasons_GroupsByCumulativeCount(t *testing.T) {
	root := remote.SeriesInfo{
		ID: 1, Episodes: 13, Kind: remote.KindSeason,
		Title:   remote.SeriesTitle{Preferred: "Season One"},
		Sequels: []remote.Sequel{{ID: 2, Kind: remote.KindSeason}},
	}
	s2 := remote.SeriesInfo{ID: 2, Episodes: 12, Kind: remote.KindSeason, Title: remote.SeriesTitle{Preferred: "Season Two"}}
	svc := &fakeService{byID: map[uint32]remote.SeriesInfo{2: s2}}

	var eps []library.Episode
	for n := uint32(1); n <= 25; n++ {
		eps = append(eps, library.Episode{Number: n, Filename: fmt.Sprintf("ep-%02d.mkv", n)})
	}
	sorted := library.NewSortedEpisodes(eps)

	actions, err := SplitMergedSeasons(context.Background(), svc, root, sorted, "/src", "/out")
	require.NoError(t, err)
	require.Len(t, actions, 25)

	assert.Equal(t, filepath.Join("/out", "Season One - 01.mkv"), actions[0].DestPath)
	assert.Equal(t, filepath.Join("/out", "Season Two - 01.mkv"), actions[13].DestPath)
}

func TestApply_IdempotentWhenLinkExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.mkv")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	outDir := filepath.Join(dir, "out")
	action := LinkAction{SourcePath: src, DestPath: filepath.Join(outDir, "link.mkv")}

	require.NoError(t, Apply(outDir, []LinkAction{action}))
	require.NoError(t, Apply(outDir, []LinkAction{action}))

	info, err := os.Lstat(action.DestPath)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)
}
