// Package tui is anitrack's interactive shell: a bubbletea program showing
// the tracked series list, an add-series panel with debounced fuzzy-match
// suggestions, and a watch-session/sync/error status area.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/godver3/anitrack/internal/config"
	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/episode"
	"github.com/godver3/anitrack/internal/logging"
	"github.com/godver3/anitrack/internal/remote"
	"github.com/godver3/anitrack/internal/season"
	"github.com/godver3/anitrack/internal/store"
	"github.com/godver3/anitrack/internal/sync"
	"github.com/godver3/anitrack/internal/watch"
)

// watchState tracks the one in-flight "watching episode N" session; there is
// at most one at a time (per spec.md §5's "one owner" rule).
type watchState struct {
	seriesIndex int
	episode     uint32
	session     *watch.Session
}

// watchDoneMsg is delivered once the background waiter (internal/watch,
// dispatched through sourcegraph/conc) observes the player child exit.
type watchDoneMsg struct {
	seriesIndex int
	episode     uint32
	outcome     watch.Outcome
}

// Model is the root bubbletea model.
type Model struct {
	cfg config.Config
	db  *store.DB
	svc remote.Service

	series []LoadedSeries
	cursor int

	watchPool    *pool.ContextPool
	watching     *watchState
	watchResults chan watchDoneMsg

	adding      bool
	input       *Input
	gen         uint64
	suggestions []Suggestion
	engine      *SuggestionEngine

	scoring    bool
	scoreInput *Input

	errLog []string

	width, height int
	quitting      bool
}

// New builds the root Model, ready to run via tea.NewProgram.
func New(cfg config.Config, db *store.DB, svc remote.Service, initial []LoadedSeries, lastWatched string) *Model {
	m := &Model{
		cfg:          cfg,
		db:           db,
		svc:          svc,
		series:       initial,
		watchPool:    pool.New().WithContext(context.Background()),
		watchResults: make(chan watchDoneMsg, 1),
		engine:       NewSuggestionEngine(),
	}

	for i, s := range initial {
		if s.Nickname() == lastWatched {
			m.cursor = i
			break
		}
	}

	return m
}

// Init satisfies tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.engine.waitForSuggestion()
}

// Update satisfies tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case suggestionsMsg:
		cmd := m.engine.waitForSuggestion()
		if msg.gen != m.gen {
			return m, cmd
		}
		m.suggestions = msg.results
		return m, cmd

	case watchDoneMsg:
		m.handleWatchDone(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.handleAddSeriesKey(msg)
	}
	if m.scoring {
		return m.handleScoreKey(msg)
	}

	keys := m.cfg.TUI.Keys

	switch {
	case key.Matches(msg, staticKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, staticKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, staticKeys.Down):
		if m.cursor < len(m.series)-1 {
			m.cursor++
		}

	case key.Matches(msg, staticKeys.Add):
		m.startAddSeries()

	case matchesRune(msg, keys.PlayNextEpisode):
		return m, m.playNextEpisode()

	case matchesRune(msg, keys.SyncFromList):
		m.syncCurrentFromRemote()
	case matchesRune(msg, keys.SyncToList):
		m.syncCurrentToRemote()
	case matchesRune(msg, keys.DropSeries):
		m.setCurrentStatus((*entry.Entry).MarkDropped)
	case matchesRune(msg, keys.PutSeriesOnHold):
		m.setCurrentStatus((*entry.Entry).MarkOnHold)
	case matchesRune(msg, keys.ForceForwardsProgress):
		m.forceProgress(1)
	case matchesRune(msg, keys.ForceBackwardsProgress):
		m.forceProgress(-1)
	case matchesRune(msg, keys.ScorePrompt):
		m.startScorePrompt()
	case matchesRune(msg, keys.SplitSeasons):
		m.splitCurrentSeasons()
	}

	return m, nil
}

// matchesRune reports whether msg is a single-rune keypress matching want.
// PlayNextEpisode's default binding is '\n' (Enter), which tea.KeyMsg
// reports as KeyEnter rather than a rune, so that case is special-cased.
func matchesRune(msg tea.KeyMsg, want rune) bool {
	if want == '\n' && msg.Type == tea.KeyEnter {
		return true
	}
	runes := msg.Runes
	return len(runes) == 1 && runes[0] == want
}

func (m *Model) currentLoaded() (*LoadedSeries, bool) {
	if m.cursor < 0 || m.cursor >= len(m.series) {
		return nil, false
	}
	return &m.series[m.cursor], m.series[m.cursor].Kind == LoadComplete
}

func (m *Model) logError(err error) {
	if err == nil {
		return
	}
	m.errLog = logging.CauseChain(err)
}

func (m *Model) setCurrentStatus(apply func(*entry.Entry, entry.Config)) {
	row, ok := m.currentLoaded()
	if !ok {
		return
	}
	apply(row.Series.Entry, entry.Config{ResetDatesOnRewatch: m.cfg.ResetDatesOnRewatch})
	m.persistCurrentEntry(row)
}

func (m *Model) forceProgress(direction int) {
	row, ok := m.currentLoaded()
	if !ok {
		return
	}

	cfg := entry.Config{ResetDatesOnRewatch: m.cfg.ResetDatesOnRewatch}
	if direction > 0 {
		row.Series.Entry.EpisodeCompleted(cfg, row.Series.Info.Episodes)
	} else {
		row.Series.Entry.EpisodeRegressed(cfg)
	}
	m.persistCurrentEntry(row)
}

func (m *Model) persistCurrentEntry(row *LoadedSeries) {
	snap := store.SnapshotFromEntry(row.Series.Entry)
	if err := m.db.SaveEntry(snap); err != nil {
		m.logError(fmt.Errorf("saving entry after status change: %w", err))
	}
}

func (m *Model) syncCurrentToRemote() {
	row, ok := m.currentLoaded()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := sync.ToRemote(ctx, m.svc, row.Series.Entry); err != nil {
		m.logError(err)
		return
	}
	m.persistCurrentEntry(row)
}

func (m *Model) syncCurrentFromRemote() {
	row, ok := m.currentLoaded()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pulled, err := sync.FromRemote(ctx, m.svc, row.Series.Entry)
	if err != nil {
		m.logError(err)
		return
	}
	row.Series.Entry = pulled
	m.persistCurrentEntry(row)
}

// playNextEpisode implements the C7 controller sequence from spec.md §4.7:
// mark last-watched, begin_watching, push to remote, resolve the next
// episode, then spawn the player and hand the wait off to the pool.
func (m *Model) playNextEpisode() tea.Cmd {
	row, ok := m.currentLoaded()
	if m.watching != nil || !ok {
		return nil
	}
	s := row.Series

	lastWatchedPath := m.lastWatchedPath()
	if prev, _ := store.LoadLastWatched(lastWatchedPath); prev != s.Config.Nickname {
		if err := store.SaveLastWatched(lastWatchedPath, s.Config.Nickname); err != nil {
			m.logError(fmt.Errorf("saving last watched: %w", err))
		}
	}

	cfg := entry.Config{ResetDatesOnRewatch: m.cfg.ResetDatesOnRewatch}
	s.Entry.BeginWatching(cfg, s.Info.Episodes)
	m.persistCurrentEntry(row)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := sync.ToRemote(ctx, m.svc, s.Entry); err != nil {
		m.logError(err)
	}

	episodes, ok := s.Episodes.TakeSeasonEpisodesOrPresent()
	if !ok {
		m.logError(fmt.Errorf("series %q needs its episode folder split by season first", s.Config.Nickname))
		return nil
	}

	nextEp := s.Entry.WatchedEpisodes() + 1
	playerCfg := watch.PlayerConfig{
		Player:        m.cfg.Episode.Player,
		GlobalArgs:    m.cfg.Episode.PlayerArgs,
		PcntMustWatch: m.cfg.Episode.PcntMustWatch.AsMultiplier(),
		SeriesArgs:    s.Config.PlayerArgs,
	}

	sess, err := watch.Start(s.Config.Path, episodes, nextEp, s.Info.EpisodeLengthMins, playerCfg)
	if err != nil {
		m.logError(fmt.Errorf("starting player: %w", err))
		return nil
	}

	m.watching = &watchState{seriesIndex: m.cursor, episode: nextEp, session: sess}

	seriesIndex := m.cursor
	watch.WaitAsync(context.Background(), m.watchPool, sess, func(outcome watch.Outcome) {
		m.watchResults <- watchDoneMsg{seriesIndex: seriesIndex, episode: nextEp, outcome: outcome}
	})

	return func() tea.Msg {
		return <-m.watchResults
	}
}

// splitCurrentSeasons resolves the sequel chain for the current series and
// splits its merged "Season" episode folder into per-season symlinks under
// a sibling directory, then re-points the row at the split output. This is
// the explicit fix-up for a series whose TakeSeasonEpisodesOrPresent
// refuses to play because the folder mixes numbering across seasons.
func (m *Model) splitCurrentSeasons() {
	row, ok := m.currentLoaded()
	if !ok {
		return
	}

	merged, present := row.Series.Episodes[episode.Season]
	if !present {
		m.logError(fmt.Errorf("series %q has no merged season folder to split", row.Series.Config.Nickname))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outputDir := row.Series.Config.Path + "-split"
	actions, err := season.SplitMergedSeasons(ctx, m.svc, row.Series.Info, merged, row.Series.Config.Path, outputDir)
	if err != nil {
		m.logError(fmt.Errorf("resolving season split for %q: %w", row.Series.Config.Nickname, err))
		return
	}
	if err := season.Apply(outputDir, actions); err != nil {
		m.logError(fmt.Errorf("applying season split for %q: %w", row.Series.Config.Nickname, err))
		return
	}

	row.Series.Config.Path = outputDir
	*row = Load(row.Series.Config, &row.Series.Info, row.Series.Entry)

	if err := m.db.SaveSeries(row.Series.Config, row.Series.Info, store.SnapshotFromEntry(row.Series.Entry)); err != nil {
		m.logError(fmt.Errorf("persisting split path for %q: %w", row.Series.Config.Nickname, err))
	}
}

func (m *Model) handleWatchDone(msg watchDoneMsg) {
	m.watching = nil

	if msg.seriesIndex < 0 || msg.seriesIndex >= len(m.series) {
		return
	}
	row := &m.series[msg.seriesIndex]
	if row.Kind != LoadComplete {
		return
	}

	if msg.outcome.Err != nil {
		m.logError(msg.outcome.Err)
		return
	}
	if !msg.outcome.Counted {
		m.errLog = []string{"episode not watched long enough; not counted"}
		return
	}

	cfg := entry.Config{ResetDatesOnRewatch: m.cfg.ResetDatesOnRewatch}
	row.Series.Entry.EpisodeCompleted(cfg, row.Series.Info.Episodes)
	m.persistCurrentEntry(row)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := sync.ToRemote(ctx, m.svc, row.Series.Entry); err != nil {
		m.logError(err)
	}
}

func (m *Model) lastWatchedPath() string {
	path, _ := xdg.DataFile(filepath.Join("anitrack", "last_watched"))
	return path
}

// startAddSeries opens the add-series input panel with an empty input and
// clears any previous suggestions. Folder candidates are scanned from the
// configured series directory on each keystroke (handleAddSeriesKey).
func (m *Model) startAddSeries() {
	m.adding = true
	m.input = NewInput()
	m.suggestions = nil
	m.gen++
}

func (m *Model) handleAddSeriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input = nil
		m.suggestions = nil
		return m, nil

	case tea.KeyEnter:
		return m.confirmAddSeries()

	case tea.KeyBackspace:
		m.input.Pop()
	case tea.KeyLeft:
		m.input.MoveLeft()
	case tea.KeyRight:
		m.input.MoveRight()

	case tea.KeyRunes:
		m.input.Push(string(msg.Runes))
	case tea.KeySpace:
		m.input.Push(" ")
	default:
		return m, nil
	}

	m.gen++
	gen := m.gen
	query := m.input.Value()
	dirs := m.scanSeriesDirs()

	var searchRemote func(context.Context, string) []remote.SeriesInfo
	if !m.svc.IsOffline() {
		searchRemote = func(ctx context.Context, name string) []remote.SeriesInfo {
			infos, err := m.svc.SearchInfoByName(ctx, name)
			if err != nil {
				return nil
			}
			return infos
		}
	}

	m.engine.Dispatch(query, dirs, searchRemote, gen)
	return m, nil
}

func (m *Model) scanSeriesDirs() []string {
	entries, err := afero.ReadDir(afero.NewOsFs(), m.cfg.SeriesDir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}

// confirmAddSeries finalizes the add-series flow against the best current
// suggestion (or the raw typed nickname if nothing matched yet), loading a
// fresh Series row and appending it to the list.
func (m *Model) confirmAddSeries() (tea.Model, tea.Cmd) {
	nickname := m.input.Value()
	m.adding = false
	m.input = nil

	folderName := nickname
	var info *remote.SeriesInfo
	for _, s := range m.suggestions {
		if s.FolderName != "" {
			folderName = s.FolderName
		}
		if s.Info != nil && info == nil {
			info = s.Info
		}
	}
	m.suggestions = nil

	id := nextSeriesID(m.series)
	if info != nil {
		id = info.ID
	} else if m.svc.IsOffline() {
		id = store.NewOfflinePlaceholderID()
	}

	seriesPath := filepath.Join(m.cfg.SeriesDir, folderName)
	cfg := store.SeriesConfig{ID: id, Nickname: nickname, Path: seriesPath}

	row := m.loadSeries(cfg, info)
	m.series = append(m.series, row)
	sort.SliceStable(m.series, func(i, j int) bool { return m.series[i].Nickname() < m.series[j].Nickname() })

	if err := m.db.SaveSeries(cfg, row.Series.Info, store.SnapshotFromEntry(row.Series.Entry)); err != nil {
		m.logError(fmt.Errorf("saving new series %q: %w", nickname, err))
	}

	return m, nil
}

func nextSeriesID(existing []LoadedSeries) uint32 {
	var max uint32
	for _, s := range existing {
		if s.Kind == LoadComplete && s.Series.Config.ID > max {
			max = s.Series.Config.ID
		}
	}
	return max + 1
}

// loadSeries assembles a Series row for a freshly-added config: scanning its
// directory, using info if one was matched, and seeding a fresh entry.
func (m *Model) loadSeries(cfg store.SeriesConfig, info *remote.SeriesInfo) LoadedSeries {
	return Load(cfg, info, entry.New(cfg.ID))
}

func (m *Model) startScorePrompt() {
	if _, ok := m.currentLoaded(); !ok {
		return
	}
	m.scoring = true
	m.scoreInput = NewInput()
}

func (m *Model) handleScoreKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.scoring = false
		m.scoreInput = nil
		return m, nil

	case tea.KeyEnter:
		row, _ := m.currentLoaded()
		score, err := m.svc.ParseScore(m.scoreInput.Value())
		if err != nil {
			m.logError(fmt.Errorf("parsing score: %w", err))
		} else {
			row.Series.Entry.SetScore(score)
			m.persistCurrentEntry(row)
		}
		m.scoring = false
		m.scoreInput = nil
		return m, nil

	case tea.KeyBackspace:
		m.scoreInput.Pop()
	case tea.KeyRunes:
		m.scoreInput.Push(string(msg.Runes))
	}

	return m, nil
}

// Run starts the bubbletea program and blocks until the user quits.
func Run(m *Model) error {
	p := tea.NewProgram(m)
	_, err := p.Run()
	m.engine.Close()
	return err
}
