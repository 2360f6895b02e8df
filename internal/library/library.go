// Package library scans a directory of video files and groups them into
// categorized, sorted episode sets.
package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/godver3/anitrack/internal/episode"
)

// Episode is one recognized file within a series directory.
type Episode struct {
	Number   uint32
	Filename string
}

// SortedEpisodes is an ascending, gap-tolerant, duplicate-free sequence of
// episodes keyed by number.
type SortedEpisodes struct {
	episodes []Episode
}

// NewSortedEpisodes builds a SortedEpisodes, sorting by number. The caller
// must already have rejected duplicate numbers (see MultipleTitlesError).
func NewSortedEpisodes(episodes []Episode) SortedEpisodes {
	sorted := append([]Episode(nil), episodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	return SortedEpisodes{episodes: sorted}
}

// Find returns the episode with the given number, if present.
func (s SortedEpisodes) Find(number uint32) (Episode, bool) {
	for _, ep := range s.episodes {
		if ep.Number == number {
			return ep, true
		}
	}
	return Episode{}, false
}

// Len returns the number of episodes.
func (s SortedEpisodes) Len() int { return len(s.episodes) }

// At returns the i'th episode in ascending order.
func (s SortedEpisodes) At(i int) Episode { return s.episodes[i] }

// HighestEpisodeNumber returns the largest episode number present, or 0 if
// empty.
func (s SortedEpisodes) HighestEpisodeNumber() uint32 {
	highest := uint32(0)
	for _, ep := range s.episodes {
		if ep.Number > highest {
			highest = ep.Number
		}
	}
	return highest
}

// CategorizedEpisodes maps a SeriesKind to its SortedEpisodes.
type CategorizedEpisodes map[episode.Kind]SortedEpisodes

// MultipleTitlesError is returned when two files under the same category
// claim the same episode number with disagreeing titles.
type MultipleTitlesError struct {
	Expecting string
	Found     string
}

func (e *MultipleTitlesError) Error() string {
	return fmt.Sprintf("multiple titles found for the same episode: expecting %q, found %q", e.Expecting, e.Found)
}

// DuplicateEpisodeError is returned when two files under the same category
// claim the same episode number with agreeing titles.
type DuplicateEpisodeError struct {
	Number uint32
}

func (e *DuplicateEpisodeError) Error() string {
	return fmt.Sprintf("duplicate episode number %d", e.Number)
}

// Parse enumerates files directly in dir (non-recursive; subdirectories are
// ignored), skips files ending in ".part" (download-in-progress), and
// applies parser to each remaining file. The first parse failure aborts the
// whole scan.
func Parse(fs afero.Fs, dir string, parser episode.Parser) (CategorizedEpisodes, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading series directory %q: %w", dir, err)
	}

	titles := map[episode.Kind]map[uint32]string{}
	grouped := map[episode.Kind][]Episode{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".part") {
			continue
		}

		parsed, err := parser.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("scanning %q: %w", filepath.Join(dir, name), err)
		}

		if titles[parsed.Category] == nil {
			titles[parsed.Category] = map[uint32]string{}
		}

		if existing, ok := titles[parsed.Category][parsed.Episode]; ok {
			if existing != parsed.Title {
				return nil, &MultipleTitlesError{Expecting: existing, Found: parsed.Title}
			}
			return nil, &DuplicateEpisodeError{Number: parsed.Episode}
		}

		titles[parsed.Category][parsed.Episode] = parsed.Title
		grouped[parsed.Category] = append(grouped[parsed.Category], Episode{
			Number:   parsed.Episode,
			Filename: name,
		})
	}

	result := make(CategorizedEpisodes, len(grouped))
	for kind, eps := range grouped {
		result[kind] = NewSortedEpisodes(eps)
	}

	return result, nil
}

// TakeSeasonEpisodesOrPresent returns the Season category's episodes if it
// is the only category present. If exactly one non-Season category is
// present instead (e.g. a folder of nothing but OVAs), those are returned.
// Otherwise ok is false, signaling the caller ("the UI") that the directory
// needs an explicit category split.
func (c CategorizedEpisodes) TakeSeasonEpisodesOrPresent() (SortedEpisodes, bool) {
	if len(c) != 1 {
		return SortedEpisodes{}, false
	}

	for _, eps := range c {
		return eps, true
	}

	return SortedEpisodes{}, false
}
