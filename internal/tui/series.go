package tui

import (
	"github.com/spf13/afero"

	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/episode"
	"github.com/godver3/anitrack/internal/library"
	"github.com/godver3/anitrack/internal/remote"
	"github.com/godver3/anitrack/internal/store"
)

// Series is the fully-assembled view of one tracked show: its on-disk
// config, the remote-derived info for its current season, its local entry
// state, and the episode files found under its directory.
type Series struct {
	Config   store.SeriesConfig
	Info     remote.SeriesInfo
	Entry    *entry.Entry
	Episodes library.CategorizedEpisodes
}

// LoadKind tags which variant of LoadedSeries a row holds.
type LoadKind int

const (
	// LoadComplete means Config, Info, Entry, and Episodes all loaded
	// successfully.
	LoadComplete LoadKind = iota
	// LoadPartial means the config loaded but something downstream (its
	// custom episode pattern or its directory scan, including a directory
	// that no longer exists) failed; Config and Err are valid.
	LoadPartial
	// LoadNone means even the config could not be used; Config and Err are
	// valid. Load itself never returns this variant.
	LoadNone
)

// LoadedSeries is one row in the series list. A scan failure never drops the
// row outright; it is carried as Partial/None so the user still sees the
// nickname and can act on it (re-point --path, drop the series, etc).
type LoadedSeries struct {
	Kind   LoadKind
	Series Series
	Config store.SeriesConfig
	Err    error
}

// Nickname returns the display name regardless of which variant this row is.
func (l LoadedSeries) Nickname() string {
	if l.Kind == LoadComplete {
		return l.Series.Config.Nickname
	}
	return l.Config.Nickname
}

// FilterValue satisfies bubbles/list.Item so the series list can be filtered
// by nickname.
func (l LoadedSeries) FilterValue() string { return l.Nickname() }

// Load assembles a LoadedSeries row for cfg: scanning its episode
// directory with the configured (or default) parser, resolving info if
// given, and seeding e as the row's entry. Shared by the TUI's add-series
// flow and the CLI's startup load of every persisted series.
func Load(cfg store.SeriesConfig, info *remote.SeriesInfo, e *entry.Entry) LoadedSeries {
	parser := episode.Parser{}
	if cfg.EpisodeMatcher != nil {
		custom, err := episode.NewCustom(*cfg.EpisodeMatcher)
		if err != nil {
			return LoadedSeries{Kind: LoadPartial, Config: cfg, Err: err}
		}
		parser = custom
	}

	episodes, err := library.Parse(afero.NewOsFs(), cfg.Path, parser)
	if err != nil {
		return LoadedSeries{Kind: LoadPartial, Config: cfg, Err: err}
	}

	resolved := remote.SeriesInfo{ID: cfg.ID, Episodes: 1, EpisodeLengthMins: remote.DefaultEpisodeLengthMins}
	if info != nil {
		resolved = *info
		resolved.ID = cfg.ID
	}

	return LoadedSeries{
		Kind: LoadComplete,
		Series: Series{
			Config:   cfg,
			Info:     resolved,
			Entry:    e,
			Episodes: episodes,
		},
	}
}
