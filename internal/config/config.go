// Package config loads and saves anitrack's TOML configuration file,
// resolved through XDG base directories.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

const filename = "config.toml"

// Percentage stores a fraction (0..1) but round-trips through TOML as a
// human-entered percentage (0..100), matching how pcnt_must_watch is
// authored by hand in the config file.
type Percentage float64

// NewPercentage builds a Percentage from a human value like 50.0 meaning 50%.
func NewPercentage(value float64) Percentage {
	return Percentage(value / 100.0)
}

// AsMultiplier returns the 0..1 fraction used by internal/watch's progress
// threshold computation.
func (p Percentage) AsMultiplier() float64 { return float64(p) }

func (p Percentage) MarshalTOML() ([]byte, error) {
	return []byte(fmt.Sprintf("%g", float64(p)*100.0)), nil
}

// UnmarshalTOML implements toml.Unmarshaler against the already-decoded
// value, not raw bytes: go-toml/v2 hands scalars through as float64/int64.
func (p *Percentage) UnmarshalTOML(value interface{}) error {
	var asFloat float64
	switch v := value.(type) {
	case float64:
		asFloat = v
	case int64:
		asFloat = float64(v)
	default:
		return fmt.Errorf("percentage must be a number, got %T", value)
	}

	if asFloat < 0 {
		return fmt.Errorf("percentage must not be negative: %g", asFloat)
	}

	*p = Percentage(asFloat / 100.0)
	return nil
}

// EpisodeConfig groups episode-playback-related settings: the progress
// threshold plus the media player binary and the args applied to every
// series (a given series' own player_args, stored in its SeriesConfig, are
// appended after these).
type EpisodeConfig struct {
	PcntMustWatch Percentage `toml:"percent_watched_to_progress"`
	Player        string     `toml:"player"`
	PlayerArgs    []string   `toml:"player_args"`
}

func defaultEpisodeConfig() EpisodeConfig {
	return EpisodeConfig{PcntMustWatch: NewPercentage(50.0), Player: "mpv"}
}

// TuiKeys is the configurable keybinding set for the interactive shell.
type TuiKeys struct {
	SyncFromList           rune `toml:"sync_from_list"`
	SyncToList             rune `toml:"sync_to_list"`
	DropSeries             rune `toml:"drop_series"`
	PutSeriesOnHold        rune `toml:"put_series_on_hold"`
	ForceForwardsProgress  rune `toml:"force_forwards_progress"`
	ForceBackwardsProgress rune `toml:"force_backwards_progress"`
	PlayNextEpisode        rune `toml:"play_next_episode"`
	ScorePrompt            rune `toml:"score_prompt"`
	SplitSeasons           rune `toml:"split_seasons"`
}

func defaultTuiKeys() TuiKeys {
	return TuiKeys{
		SyncFromList:           'r',
		SyncToList:             's',
		DropSeries:             'd',
		PutSeriesOnHold:        'h',
		ForceForwardsProgress:  'f',
		ForceBackwardsProgress: 'b',
		PlayNextEpisode:        '\n',
		ScorePrompt:            'e',
		SplitSeasons:           'x',
	}
}

// TuiConfig groups TUI-related settings.
type TuiConfig struct {
	Keys TuiKeys `toml:"keys"`
}

func defaultTuiConfig() TuiConfig {
	return TuiConfig{Keys: defaultTuiKeys()}
}

// Config is anitrack's top-level configuration file.
type Config struct {
	SeriesDir           string        `toml:"series_dir"`
	ResetDatesOnRewatch bool          `toml:"reset_dates_on_rewatch"`
	Episode             EpisodeConfig `toml:"episode"`
	TUI                 TuiConfig     `toml:"tui"`
}

// New builds a Config with defaults applied, rooted at seriesDir.
func New(seriesDir string) Config {
	return Config{
		SeriesDir: seriesDir,
		Episode:   defaultEpisodeConfig(),
		TUI:       defaultTuiConfig(),
	}
}

// Dir resolves the XDG config directory anitrack's files live under.
func Dir() (string, error) {
	dir, err := xdg.ConfigFile(filepath.Join("anitrack", filename))
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Dir(dir), nil
}

// Path resolves the full path to config.toml under the XDG config dir.
func Path() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("anitrack", filename))
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return path, nil
}

// Load reads and parses the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}

	return cfg, nil
}

// LoadOrCreate loads the config at path, creating it (via New, rooted at
// defaultSeriesDir) with defaults if it does not yet exist.
func LoadOrCreate(path, defaultSeriesDir string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New(defaultSeriesDir)
		if err := Save(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	return Load(path)
}

// Save serializes cfg to path as TOML, creating parent directories as
// needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %q: %w", path, err)
	}

	return nil
}
