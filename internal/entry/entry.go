// Package entry implements the per-series watch-list state machine: status
// transitions, progress tracking, dirty-bit sync tracking, and the date
// bookkeeping rules around starting/finishing/rewatching a series.
package entry

import (
	"time"

	"github.com/godver3/anitrack/internal/remote"
)

// Clock is injectable so tests can pin "today" instead of depending on
// wall-clock time.
type Clock func() time.Time

// Entry holds one series' local watch-list state. needsSync is set by every
// mutating method and cleared only by a successful sync (internal/sync).
type Entry struct {
	id             uint32
	watchedEps     uint32
	score          *uint8
	status         remote.Status
	timesRewatched uint32
	startDate      *time.Time
	endDate        *time.Time
	needsSync      bool

	now Clock
}

// New constructs a fresh PlanToWatch entry for a series with no prior list
// data.
func New(id uint32) *Entry {
	return &Entry{id: id, status: remote.PlanToWatch, now: time.Now}
}

// FromRemote builds an Entry from a previously-fetched remote.SeriesEntry.
// The result is considered in sync (needsSync = false) since it mirrors
// what the remote already holds.
func FromRemote(e remote.SeriesEntry) *Entry {
	return &Entry{
		id:             e.ID,
		watchedEps:     e.WatchedEps,
		score:          e.Score,
		status:         e.Status,
		timesRewatched: e.TimesRewatched,
		startDate:      e.StartDate,
		endDate:        e.EndDate,
		needsSync:      false,
		now:            time.Now,
	}
}

// FromSnapshot rebuilds an Entry from its persisted field values (internal
// store.EntrySnapshot's shape, passed in flattened to avoid entry depending
// on the store package), preserving needsSync exactly as stored.
func FromSnapshot(id uint32, watchedEps uint32, score *uint8, status remote.Status, timesRewatched uint32, startDate, endDate *time.Time, needsSync bool) *Entry {
	return &Entry{
		id:             id,
		watchedEps:     watchedEps,
		score:          score,
		status:         status,
		timesRewatched: timesRewatched,
		startDate:      startDate,
		endDate:        endDate,
		needsSync:      needsSync,
		now:            time.Now,
	}
}

// WithClock overrides the entry's notion of "now", for tests.
func (e *Entry) WithClock(now Clock) *Entry {
	e.now = now
	return e
}

func (e *Entry) today() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

// ToRemote produces the wire-shaped view of this entry for a sync push.
func (e *Entry) ToRemote() remote.SeriesEntry {
	return remote.SeriesEntry{
		ID:             e.id,
		WatchedEps:     e.watchedEps,
		Score:          e.score,
		Status:         e.status,
		TimesRewatched: e.timesRewatched,
		StartDate:      e.startDate,
		EndDate:        e.endDate,
	}
}

func (e *Entry) ID() uint32                { return e.id }
func (e *Entry) WatchedEpisodes() uint32   { return e.watchedEps }
func (e *Entry) Score() *uint8             { return e.score }
func (e *Entry) Status() remote.Status     { return e.status }
func (e *Entry) TimesRewatched() uint32    { return e.timesRewatched }
func (e *Entry) StartDate() *time.Time     { return e.startDate }
func (e *Entry) EndDate() *time.Time       { return e.endDate }
func (e *Entry) NeedsSync() bool           { return e.needsSync }
func (e *Entry) ClearSyncFlag()            { e.needsSync = false }

// SetScore sets the user score (0..=100, 0 meaning unscored) and marks the
// entry dirty.
func (e *Entry) SetScore(score uint8) {
	if score == 0 {
		e.score = nil
	} else {
		e.score = &score
	}
	e.needsSync = true
}

// Config holds the entry-state-machine-relevant settings (see
// internal/config for the full application config).
type Config struct {
	ResetDatesOnRewatch bool
}

// BeginWatching implements the begin_watching transition (spec.md §4.6).
// totalEpisodes is the series' total episode count, needed to decide
// whether a Watching/Rewatching entry has actually finished.
func (e *Entry) BeginWatching(cfg Config, totalEpisodes uint32) {
	prevStatus := e.status

	switch e.status {
	case remote.PlanToWatch, remote.OnHold:
		e.setStatus(remote.Watching, cfg, prevStatus)

	case remote.Dropped:
		e.watchedEps = 0
		e.setStatus(remote.Watching, cfg, prevStatus)

	case remote.Watching:
		if e.watchedEps >= totalEpisodes {
			e.watchedEps = 0
			e.setStatus(remote.Rewatching, cfg, prevStatus)
		}
		// else: idempotent, no-op (still Watching).

	case remote.Completed:
		e.watchedEps = 0
		e.setStatus(remote.Rewatching, cfg, prevStatus)

	case remote.Rewatching:
		if e.watchedEps >= totalEpisodes {
			e.watchedEps = 0
			e.timesRewatched++
			e.setStatus(remote.Rewatching, cfg, prevStatus)
		}
	}
}

// EpisodeCompleted implements the episode_completed transition.
func (e *Entry) EpisodeCompleted(cfg Config, totalEpisodes uint32) {
	prevStatus := e.status
	newWatched := e.watchedEps + 1

	if newWatched >= totalEpisodes {
		e.watchedEps = totalEpisodes
		if prevStatus == remote.Rewatching {
			e.timesRewatched++
		}
		e.setStatus(remote.Completed, cfg, prevStatus)
		return
	}

	e.watchedEps = newWatched
	e.needsSync = true
}

// EpisodeRegressed implements the episode_regressed transition ("force
// backwards progress").
func (e *Entry) EpisodeRegressed(cfg Config) {
	prevStatus := e.status

	if e.watchedEps > 0 {
		e.watchedEps--
	}

	switch {
	case prevStatus == remote.Completed && e.timesRewatched > 0:
		e.setStatus(remote.Rewatching, cfg, prevStatus)
	case prevStatus == remote.Rewatching:
		e.setStatus(remote.Rewatching, cfg, prevStatus)
	default:
		e.setStatus(remote.Watching, cfg, prevStatus)
	}
}

// MarkDropped is a direct status-setting helper exposed to the UI's "drop
// series" keybinding.
func (e *Entry) MarkDropped(cfg Config) {
	e.setStatus(remote.Dropped, cfg, e.status)
}

// MarkOnHold is a direct status-setting helper exposed to the UI's "put on
// hold" keybinding.
func (e *Entry) MarkOnHold(cfg Config) {
	e.setStatus(remote.OnHold, cfg, e.status)
}

// setStatus applies the date "don't stomp" rules from spec.md §4.6: a
// start/end date is only written if unset, unless cfg.ResetDatesOnRewatch
// is set and the transition is rewatch-related.
func (e *Entry) setStatus(status remote.Status, cfg Config, prevStatus remote.Status) {
	today := e.today()

	switch status {
	case remote.Watching:
		if e.startDate == nil {
			e.startDate = &today
		}

	case remote.Rewatching:
		if e.startDate == nil || (prevStatus == remote.Completed && cfg.ResetDatesOnRewatch) {
			e.startDate = &today
		}

	case remote.Completed:
		if e.endDate == nil || (prevStatus == remote.Rewatching && cfg.ResetDatesOnRewatch) {
			e.endDate = &today
		}

	case remote.Dropped:
		if e.endDate == nil {
			e.endDate = &today
		}
	}

	e.status = status
	e.needsSync = true
}
