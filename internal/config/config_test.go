package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage_RoundTripsThroughMultiplier(t *testing.T) {
	p := NewPercentage(50.0)
	assert.InDelta(t, 0.5, p.AsMultiplier(), 0.0001)
}

func TestSaveAndLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := New("/media/anime")
	cfg.ResetDatesOnRewatch = true
	cfg.Episode.PcntMustWatch = NewPercentage(75.0)
	cfg.TUI.Keys.DropSeries = 'x'

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/media/anime", loaded.SeriesDir)
	assert.True(t, loaded.ResetDatesOnRewatch)
	assert.InDelta(t, 0.75, loaded.Episode.PcntMustWatch.AsMultiplier(), 0.0001)
	assert.Equal(t, 'x', loaded.TUI.Keys.DropSeries)
}

func TestLoadOrCreate_CreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := LoadOrCreate(path, "/media/anime")
	require.NoError(t, err)
	assert.Equal(t, "/media/anime", cfg.SeriesDir)
	assert.InDelta(t, 0.5, cfg.Episode.PcntMustWatch.AsMultiplier(), 0.0001)

	reloaded, err := LoadOrCreate(path, "/should/not/be/used")
	require.NoError(t, err)
	assert.Equal(t, "/media/anime", reloaded.SeriesDir)
}
