// Package store persists series configuration, remote-derived info, and
// watch-list entries to a local SQLite database, plus a MessagePack users
// file and a plaintext last-watched marker.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/godver3/anitrack/internal/remote"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the sqlite connection for one user's library.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and brings
// its schema up to date via goose-managed migrations, rather than the
// unconditional "DDL on open" the original tool used.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}

	if err := goose.Up(conn, "migrations"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema in %q: %w", path, err)
	}

	return &DB{conn: conn}, nil
}

// Close runs a best-effort PRAGMA optimize and closes the connection.
func (db *DB) Close() error {
	_, _ = db.conn.Exec("PRAGMA optimize")
	return db.conn.Close()
}

// SeriesConfig is the persisted row describing where a series lives on
// disk and how to parse its episode filenames.
type SeriesConfig struct {
	ID             uint32
	Nickname       string
	Path           string
	EpisodeMatcher *string // nil means Default parser
	PlayerArgs     []string
}

func joinPlayerArgs(args []string) *string {
	if len(args) == 0 {
		return nil
	}
	joined := strings.Join(args, ";;")
	return &joined
}

func splitPlayerArgs(s *string) []string {
	if s == nil || *s == "" {
		return nil
	}
	return strings.Split(*s, ";;")
}

// SaveSeries writes a series' config, info, and entry rows in a single
// transaction.
func (db *DB) SaveSeries(cfg SeriesConfig, info remote.SeriesInfo, e EntrySnapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO series_configs (id, nickname, path, episode_matcher, player_args)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET nickname=excluded.nickname, path=excluded.path,
			episode_matcher=excluded.episode_matcher, player_args=excluded.player_args`,
		cfg.ID, cfg.Nickname, cfg.Path, cfg.EpisodeMatcher, joinPlayerArgs(cfg.PlayerArgs),
	); err != nil {
		return fmt.Errorf("saving series_configs row: %w", err)
	}

	var sequel *uint32
	if id, ok := info.DirectSequelID(); ok {
		sequel = &id
	}

	if _, err := tx.Exec(
		`INSERT INTO series_info (id, title_preferred, title_romaji, episodes, episode_length_mins, sequel, kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title_preferred=excluded.title_preferred,
			title_romaji=excluded.title_romaji, episodes=excluded.episodes,
			episode_length_mins=excluded.episode_length_mins, sequel=excluded.sequel,
			kind=excluded.kind`,
		info.ID, info.Title.Preferred, info.Title.Romaji, info.Episodes, info.EpisodeLengthMins, sequel, int(info.Kind),
	); err != nil {
		return fmt.Errorf("saving series_info row: %w", err)
	}

	if err := saveEntryTx(tx, e); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSeries removes the config row and its matching info/entry rows.
func (db *DB) DeleteSeries(id uint32) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"series_configs", "series_info", "series_entries"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// LoadSeriesConfig loads one series' config row by id.
func (db *DB) LoadSeriesConfig(id uint32) (SeriesConfig, error) {
	row := db.conn.QueryRow(
		`SELECT id, nickname, path, episode_matcher, player_args FROM series_configs WHERE id = ?`, id)

	var cfg SeriesConfig
	var playerArgs *string
	if err := row.Scan(&cfg.ID, &cfg.Nickname, &cfg.Path, &cfg.EpisodeMatcher, &playerArgs); err != nil {
		return SeriesConfig{}, fmt.Errorf("loading series_configs row %d: %w", id, err)
	}
	cfg.PlayerArgs = splitPlayerArgs(playerArgs)

	return cfg, nil
}

// LoadSeriesInfo loads one series' remote-derived info row by id.
func (db *DB) LoadSeriesInfo(id uint32) (remote.SeriesInfo, error) {
	row := db.conn.QueryRow(
		`SELECT id, title_preferred, title_romaji, episodes, episode_length_mins, sequel, kind
		 FROM series_info WHERE id = ?`, id)

	var info remote.SeriesInfo
	var sequel *uint32
	var kind int
	if err := row.Scan(&info.ID, &info.Title.Preferred, &info.Title.Romaji, &info.Episodes, &info.EpisodeLengthMins, &sequel, &kind); err != nil {
		return remote.SeriesInfo{}, fmt.Errorf("loading series_info row %d: %w", id, err)
	}
	info.Kind = remote.SeriesKind(kind)
	if sequel != nil {
		info.Sequels = []remote.Sequel{{ID: *sequel, Kind: info.Kind}}
	}

	return info, nil
}

// AllSeriesConfigs loads every persisted series config row.
func (db *DB) AllSeriesConfigs() ([]SeriesConfig, error) {
	rows, err := db.conn.Query(`SELECT id, nickname, path, episode_matcher, player_args FROM series_configs`)
	if err != nil {
		return nil, fmt.Errorf("listing series_configs: %w", err)
	}
	defer rows.Close()

	var configs []SeriesConfig
	for rows.Next() {
		var cfg SeriesConfig
		var playerArgs *string
		if err := rows.Scan(&cfg.ID, &cfg.Nickname, &cfg.Path, &cfg.EpisodeMatcher, &playerArgs); err != nil {
			return nil, fmt.Errorf("scanning series_configs row: %w", err)
		}
		cfg.PlayerArgs = splitPlayerArgs(playerArgs)
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}
