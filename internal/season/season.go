// Package season resolves a root series into an ordered list of seasons by
// walking the remote sequel graph, and maps locally-numbered episodes
// (possibly from a merged multi-season folder) onto the right season.
package season

import (
	"context"
	"fmt"

	"github.com/godver3/anitrack/internal/remote"
)

// MaxRequests bounds how many remote lookups a single resolve may make, so
// a malformed or cyclic-looking sequel chain can't spam the remote.
const MaxRequests = 10

// InfoList is an ordered, non-empty sequence of SeriesInfo: index 0 is the
// user-specified root, index N is reached by following the direct sequel
// edge from index N-1.
type InfoList struct {
	seasons []remote.SeriesInfo
}

// Resolve builds an InfoList starting from root by following direct sequel
// edges up to MaxRequests times.
func Resolve(ctx context.Context, svc remote.Service, root remote.SeriesInfo) (InfoList, error) {
	list := InfoList{seasons: []remote.SeriesInfo{root}}

	cur := root
	for i := 0; i < MaxRequests; i++ {
		nextID, ok := cur.DirectSequelID()
		if !ok {
			break
		}

		next, err := svc.SearchInfoByID(ctx, nextID)
		if err != nil {
			return InfoList{}, fmt.Errorf("resolving sequel %d: %w", nextID, err)
		}

		list.seasons = append(list.seasons, next)
		cur = next
	}

	return list, nil
}

// AddFromRemote extends an already-resolved list by continuing to walk the
// sequel chain from its last entry. It reports whether any new seasons were
// appended.
func (l *InfoList) AddFromRemote(ctx context.Context, svc remote.Service) (bool, error) {
	if len(l.seasons) == 0 {
		return false, nil
	}

	last := l.seasons[len(l.seasons)-1]

	extended, err := Resolve(ctx, svc, last)
	if err != nil {
		return false, err
	}

	added := extended.seasons[1:]
	if len(added) == 0 {
		return false, nil
	}

	l.seasons = append(l.seasons, added...)
	return true, nil
}

// Has reports whether season index s is present.
func (l InfoList) Has(s int) bool { return s >= 0 && s < len(l.seasons) }

// Get returns season index s.
func (l InfoList) Get(s int) (remote.SeriesInfo, bool) {
	if !l.Has(s) {
		return remote.SeriesInfo{}, false
	}
	return l.seasons[s], true
}

// Len returns the number of resolved seasons.
func (l InfoList) Len() int { return len(l.seasons) }

// NoSeasonError is returned when a requested season index is out of range.
type NoSeasonError struct {
	Season int // 1-indexed, matching the UI's season numbering
}

func (e *NoSeasonError) Error() string {
	return fmt.Sprintf("no season %d", e.Season)
}

// EpisodeOffset returns the sum of episode counts for all seasons before
// index s (i.e. the absolute-episode offset to add to a season-relative
// episode number).
func (l InfoList) EpisodeOffset(s int) (uint32, error) {
	if !l.Has(s) {
		return 0, &NoSeasonError{Season: s + 1}
	}

	var offset uint32
	for i := 0; i < s; i++ {
		offset += l.seasons[i].Episodes
	}

	return offset, nil
}

// AbsoluteEpisode maps a season-relative episode number to its absolute
// position across all prior seasons' episode counts.
func (l InfoList) AbsoluteEpisode(s int, episode uint32) (uint32, error) {
	offset, err := l.EpisodeOffset(s)
	if err != nil {
		return 0, err
	}
	return offset + episode, nil
}
