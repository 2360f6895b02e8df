// Command anitrack is an anime watch-tracker: an interactive terminal UI by
// default, or a handful of one-shot batch operations (prefetch, sync,
// single-episode play, token registration) selected by flag.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/godver3/anitrack/internal/config"
	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/logging"
	"github.com/godver3/anitrack/internal/remote"
	"github.com/godver3/anitrack/internal/remote/anilist"
	"github.com/godver3/anitrack/internal/remote/offline"
	"github.com/godver3/anitrack/internal/store"
	"github.com/godver3/anitrack/internal/sync"
	"github.com/godver3/anitrack/internal/tui"
	"github.com/godver3/anitrack/internal/watch"
)

type flags struct {
	series   string
	matcher  string
	path     string
	offline  bool
	prefetch bool
	sync     bool
	single   bool
	token    string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.series, "series", "", "pick an existing series or desired new one")
	flag.StringVar(&f.matcher, "matcher", "", "override episode parser pattern for --series")
	flag.StringVar(&f.path, "path", "", "override the configured series directory")
	flag.BoolVar(&f.offline, "offline", false, "start in offline mode")
	flag.BoolVar(&f.prefetch, "prefetch", false, "fetch series info without playing, then exit")
	flag.BoolVar(&f.sync, "sync", false, "push all needs_sync entries, then exit")
	flag.BoolVar(&f.single, "single", false, "play one episode and exit (no TUI)")
	flag.StringVar(&f.token, "token", "", "set a new access token and exit")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	if err := run(f); err != nil {
		for i, line := range logging.CauseChain(err) {
			if i == 0 {
				fmt.Fprintln(os.Stderr, line)
			} else {
				fmt.Fprintln(os.Stderr, strings.Repeat("  ", i)+"caused by: "+line)
			}
		}
		os.Exit(1)
	}
}

// dataPath resolves a per-user data file path under XDG, creating parent
// directories as needed.
func dataPath(name string) (string, error) {
	path, err := xdg.DataFile(filepath.Join("anitrack", name))
	if err != nil {
		return "", fmt.Errorf("resolving data path %q: %w", name, err)
	}
	return path, nil
}

func run(f flags) error {
	ctx := context.Background()

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	cfg, err := config.LoadOrCreate(cfgPath, filepath.Join(home, "Anime"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if f.path != "" {
		cfg.SeriesDir = f.path
	}

	logPath, err := dataPath("anitrack.log")
	if err != nil {
		return err
	}
	_, closer, err := logging.Setup(logging.Options{File: logPath, MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closer.Close()

	usersPath, err := dataPath("users.msgpack")
	if err != nil {
		return err
	}
	users, err := store.LoadUsers(usersPath)
	if err != nil {
		return err
	}

	if f.token != "" {
		return setToken(ctx, f.token, users, usersPath)
	}

	svc, err := buildService(ctx, f.offline, users)
	if err != nil {
		return err
	}

	dbPath, err := dataPath("library.db")
	if err != nil {
		return err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := loadAllSeries(db, f.series, f.matcher)
	if err != nil {
		return err
	}

	switch {
	case f.prefetch:
		return prefetch(ctx, svc, db, rows, f.series)
	case f.sync:
		return syncAll(ctx, svc, db)
	case f.single:
		return playSingle(ctx, svc, db, rows, f.series, cfg)
	}

	return runTUI(cfg, db, svc, rows, f.series)
}

func setToken(ctx context.Context, rawToken string, users *store.Users, usersPath string) error {
	token := remote.NewAccessToken(rawToken)

	client, err := anilist.NewAuthenticated(ctx, token)
	if err != nil {
		return fmt.Errorf("authenticating with new token: %w", err)
	}

	user := store.UserInfo{Service: store.RemoteTypeAniList, Username: fmt.Sprintf("%d", client.UserID())}
	users.AddAndSetLast(user, token)

	if err := users.Save(usersPath); err != nil {
		return fmt.Errorf("saving users file: %w", err)
	}

	fmt.Println("access token saved")
	return nil
}

func buildService(ctx context.Context, offlineMode bool, users *store.Users) (remote.Service, error) {
	if offlineMode {
		return offline.New(), nil
	}

	token, ok := users.TakeLastUsedToken()
	if !ok {
		return anilist.New(), nil
	}

	client, err := anilist.NewAuthenticated(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("authenticating with stored token: %w", err)
	}
	return client, nil
}

// loadAllSeries hydrates every persisted series config into a LoadedSeries
// row. When matcher is non-empty it overrides the episode parser pattern
// for the row whose nickname matches series (spec.md §6's --matcher flag).
func loadAllSeries(db *store.DB, series, matcher string) ([]tui.LoadedSeries, error) {
	configs, err := db.AllSeriesConfigs()
	if err != nil {
		return nil, fmt.Errorf("listing series: %w", err)
	}

	rows := make([]tui.LoadedSeries, 0, len(configs))
	for _, cfg := range configs {
		if matcher != "" && strings.EqualFold(cfg.Nickname, series) {
			pattern := matcher
			cfg.EpisodeMatcher = &pattern
		}

		var infoPtr *remote.SeriesInfo
		if info, err := db.LoadSeriesInfo(cfg.ID); err == nil {
			infoPtr = &info
		}

		var e *entry.Entry
		if snap, err := db.LoadEntry(cfg.ID); err == nil {
			e = entry.FromSnapshot(snap.ID, snap.WatchedEps, snap.Score, snap.Status, snap.TimesRewatched, snap.StartDate, snap.EndDate, snap.NeedsSync)
		} else {
			e = entry.New(cfg.ID)
		}

		rows = append(rows, tui.Load(cfg, infoPtr, e))
	}

	return rows, nil
}

// findSeries locates the LoadComplete row matching nickname.
func findSeries(rows []tui.LoadedSeries, nickname string) (*tui.LoadedSeries, error) {
	for i := range rows {
		if rows[i].Kind == tui.LoadComplete && strings.EqualFold(rows[i].Nickname(), nickname) {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("no existing series named %q; add it from the interactive shell first", nickname)
}

// prefetch re-fetches remote info for the --series target (or, with no
// target, every online-capable series) and persists it without playing.
func prefetch(ctx context.Context, svc remote.Service, db *store.DB, rows []tui.LoadedSeries, series string) error {
	if svc.IsOffline() {
		return errors.New("cannot prefetch while offline")
	}

	targets := rows
	if series != "" {
		row, err := findSeries(rows, series)
		if err != nil {
			return err
		}
		targets = []tui.LoadedSeries{*row}
	}

	for _, row := range targets {
		if row.Kind != tui.LoadComplete {
			continue
		}
		info, err := svc.SearchInfoByID(ctx, row.Series.Config.ID)
		if err != nil {
			return fmt.Errorf("prefetching %q: %w", row.Nickname(), err)
		}
		if err := db.SaveSeries(row.Series.Config, info, store.SnapshotFromEntry(row.Series.Entry)); err != nil {
			return fmt.Errorf("saving prefetched info for %q: %w", row.Nickname(), err)
		}
	}

	return nil
}

// syncAll pushes every local entry with a set needs_sync bit.
func syncAll(ctx context.Context, svc remote.Service, db *store.DB) error {
	pending, err := db.EntriesThatNeedSync()
	if err != nil {
		return fmt.Errorf("listing entries needing sync: %w", err)
	}

	for _, snap := range pending {
		e := entry.FromSnapshot(snap.ID, snap.WatchedEps, snap.Score, snap.Status, snap.TimesRewatched, snap.StartDate, snap.EndDate, snap.NeedsSync)
		if err := sync.ForceToRemote(ctx, svc, e); err != nil {
			return fmt.Errorf("syncing entry %d: %w", snap.ID, err)
		}
		if err := db.SaveEntry(store.SnapshotFromEntry(e)); err != nil {
			return fmt.Errorf("persisting synced entry %d: %w", snap.ID, err)
		}
	}

	return nil
}

// playSingle implements the C7 controller sequence synchronously for one
// series, with no TUI event loop involved.
func playSingle(ctx context.Context, svc remote.Service, db *store.DB, rows []tui.LoadedSeries, series string, cfg config.Config) error {
	if series == "" {
		return errors.New("--single requires --series")
	}

	row, err := findSeries(rows, series)
	if err != nil {
		return err
	}
	s := row.Series

	entryCfg := entry.Config{ResetDatesOnRewatch: cfg.ResetDatesOnRewatch}
	s.Entry.BeginWatching(entryCfg, s.Info.Episodes)
	if err := db.SaveEntry(store.SnapshotFromEntry(s.Entry)); err != nil {
		return fmt.Errorf("persisting begin_watching: %w", err)
	}
	if _, err := sync.ToRemote(ctx, svc, s.Entry); err != nil {
		return fmt.Errorf("pushing begin_watching: %w", err)
	}

	episodes, ok := s.Episodes.TakeSeasonEpisodesOrPresent()
	if !ok {
		return fmt.Errorf("series %q needs its episode folder split by season first", s.Config.Nickname)
	}

	nextEp := s.Entry.WatchedEpisodes() + 1
	playerCfg := watch.PlayerConfig{
		Player:        cfg.Episode.Player,
		GlobalArgs:    cfg.Episode.PlayerArgs,
		PcntMustWatch: cfg.Episode.PcntMustWatch.AsMultiplier(),
		SeriesArgs:    s.Config.PlayerArgs,
	}

	sess, err := watch.Start(s.Config.Path, episodes, nextEp, s.Info.EpisodeLengthMins, playerCfg)
	if err != nil {
		return fmt.Errorf("starting player: %w", err)
	}

	outcome := sess.Wait()
	if outcome.Err != nil {
		return outcome.Err
	}
	if !outcome.Counted {
		fmt.Fprintln(os.Stderr, "episode not watched long enough; not counted")
		return nil
	}

	s.Entry.EpisodeCompleted(entryCfg, s.Info.Episodes)
	if err := db.SaveEntry(store.SnapshotFromEntry(s.Entry)); err != nil {
		return fmt.Errorf("persisting episode_completed: %w", err)
	}
	if _, err := sync.ToRemote(ctx, svc, s.Entry); err != nil {
		return fmt.Errorf("pushing episode_completed: %w", err)
	}

	return nil
}

func runTUI(cfg config.Config, db *store.DB, svc remote.Service, rows []tui.LoadedSeries, series string) error {
	lastWatchedPath, err := dataPath("last_watched")
	if err != nil {
		return err
	}

	lastWatched, err := store.LoadLastWatched(lastWatchedPath)
	if err != nil {
		return err
	}
	if series != "" {
		lastWatched = series
	}

	m := tui.New(cfg, db, svc, rows, lastWatched)
	return tui.Run(m)
}
