package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/store"
	"github.com/godver3/anitrack/internal/tui"
)

func completeRow(nickname string) tui.LoadedSeries {
	return tui.LoadedSeries{
		Kind: tui.LoadComplete,
		Series: tui.Series{
			Config: store.SeriesConfig{ID: 1, Nickname: nickname},
			Entry:  entry.New(1),
		},
	}
}

func TestFindSeries_MatchesNicknameCaseInsensitively(t *testing.T) {
	rows := []tui.LoadedSeries{completeRow("Mushoku Tensei")}

	row, err := findSeries(rows, "mushoku tensei")

	require.NoError(t, err)
	assert.Equal(t, "Mushoku Tensei", row.Nickname())
}

func TestFindSeries_ErrorsWhenNoRowMatches(t *testing.T) {
	rows := []tui.LoadedSeries{completeRow("Mushoku Tensei")}

	_, err := findSeries(rows, "Frieren")

	assert.Error(t, err)
}

func TestFindSeries_SkipsPartialRows(t *testing.T) {
	rows := []tui.LoadedSeries{
		{Kind: tui.LoadPartial, Config: store.SeriesConfig{Nickname: "Broken Show"}},
	}

	_, err := findSeries(rows, "Broken Show")

	assert.Error(t, err)
}
