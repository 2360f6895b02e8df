package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godver3/anitrack/internal/store"
)

func TestLoadedSeries_NicknameForComplete(t *testing.T) {
	row := LoadedSeries{Kind: LoadComplete, Series: Series{Config: store.SeriesConfig{Nickname: "myshow"}}}
	assert.Equal(t, "myshow", row.Nickname())
	assert.Equal(t, "myshow", row.FilterValue())
}

func TestLoadedSeries_NicknameForPartialUsesConfigField(t *testing.T) {
	row := LoadedSeries{Kind: LoadPartial, Config: store.SeriesConfig{Nickname: "broken"}, Err: errors.New("scan failed")}
	assert.Equal(t, "broken", row.Nickname())
}
