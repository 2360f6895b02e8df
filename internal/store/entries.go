package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/remote"
)

const dateLayout = "2006-01-02"

// EntrySnapshot is the flat row shape persisted for one series_entries row,
// including the needs_sync bit, which is not part of the remote-facing
// shape. SnapshotFromEntry builds one from an entry.Entry; entry.FromSnapshot
// rebuilds an Entry from its fields.
type EntrySnapshot struct {
	ID             uint32
	WatchedEps     uint32
	Score          *uint8
	Status         remote.Status
	TimesRewatched uint32
	StartDate      *time.Time
	EndDate        *time.Time
	NeedsSync      bool
}

// SnapshotFromEntry flattens an entry.Entry's current in-memory state into
// its persisted row shape, the single place both the TUI and the CLI build
// an EntrySnapshot from.
func SnapshotFromEntry(e *entry.Entry) EntrySnapshot {
	return EntrySnapshot{
		ID:             e.ID(),
		WatchedEps:     e.WatchedEpisodes(),
		Score:          e.Score(),
		Status:         e.Status(),
		TimesRewatched: e.TimesRewatched(),
		StartDate:      e.StartDate(),
		EndDate:        e.EndDate(),
		NeedsSync:      e.NeedsSync(),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("parsing stored date %q: %w", *s, err)
	}
	return &t, nil
}

func saveEntryTx(tx *sql.Tx, e EntrySnapshot) error {
	_, err := tx.Exec(
		`INSERT INTO series_entries (id, watched_episodes, score, status, times_rewatched, start_date, end_date, needs_sync)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET watched_episodes=excluded.watched_episodes,
			score=excluded.score, status=excluded.status, times_rewatched=excluded.times_rewatched,
			start_date=excluded.start_date, end_date=excluded.end_date, needs_sync=excluded.needs_sync`,
		e.ID, e.WatchedEps, e.Score, int(e.Status), e.TimesRewatched,
		formatDate(e.StartDate), formatDate(e.EndDate), e.NeedsSync,
	)
	if err != nil {
		return fmt.Errorf("saving series_entries row %d: %w", e.ID, err)
	}
	return nil
}

// SaveEntry persists just the entry row, outside of the full
// config+info+entry transaction SaveSeries performs (used after a
// progress-only mutation like episode_completed).
func (db *DB) SaveEntry(e EntrySnapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveEntryTx(tx, e); err != nil {
		return err
	}

	return tx.Commit()
}

func scanEntry(row interface{ Scan(...any) error }) (EntrySnapshot, error) {
	var e EntrySnapshot
	var status int
	var startDate, endDate *string

	if err := row.Scan(&e.ID, &e.WatchedEps, &e.Score, &status, &e.TimesRewatched, &startDate, &endDate, &e.NeedsSync); err != nil {
		return EntrySnapshot{}, err
	}

	e.Status = remote.Status(status)

	var err error
	if e.StartDate, err = parseDate(startDate); err != nil {
		return EntrySnapshot{}, err
	}
	if e.EndDate, err = parseDate(endDate); err != nil {
		return EntrySnapshot{}, err
	}

	return e, nil
}

// LoadEntry loads one entry row by id.
func (db *DB) LoadEntry(id uint32) (EntrySnapshot, error) {
	row := db.conn.QueryRow(
		`SELECT id, watched_episodes, score, status, times_rewatched, start_date, end_date, needs_sync
		 FROM series_entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err != nil {
		return EntrySnapshot{}, fmt.Errorf("loading series_entries row %d: %w", id, err)
	}
	return e, nil
}

// EntriesThatNeedSync enumerates every local entry with needs_sync = true,
// for a batch-sync command to push when the user next comes online.
func (db *DB) EntriesThatNeedSync() ([]EntrySnapshot, error) {
	rows, err := db.conn.Query(
		`SELECT id, watched_episodes, score, status, times_rewatched, start_date, end_date, needs_sync
		 FROM series_entries WHERE needs_sync = 1`)
	if err != nil {
		return nil, fmt.Errorf("querying entries needing sync: %w", err)
	}
	defer rows.Close()

	var entries []EntrySnapshot
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning series_entries row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
