// Package match implements fuzzy matching of a user-supplied nickname
// against a set of candidate strings (directory names or remote titles).
package match

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// shortCircuitScore is the score above which ClosestMatch stops scanning
// and returns the current best immediately.
const shortCircuitScore = 0.99

// ClosestMatch iterates items once, scoring each with score, and returns the
// highest-scoring item along with its index. It short-circuits the first
// time a score exceeds 0.99. If the best score found is below minConfidence,
// it returns ok=false.
func ClosestMatch[T any](items []T, minConfidence float64, score func(T) float64) (best T, index int, ok bool) {
	bestScore := -1.0
	bestIndex := -1

	for i, item := range items {
		s := score(item)
		if s > bestScore {
			bestScore = s
			bestIndex = i
			best = item
		}
		if bestScore > shortCircuitScore {
			break
		}
	}

	if bestIndex == -1 || bestScore < minConfidence {
		var zero T
		return zero, -1, false
	}

	return best, bestIndex, true
}

const (
	// FolderMatchThreshold is the minimum Jaro similarity for a directory
	// name to be considered a match for a user-supplied nickname.
	FolderMatchThreshold = 0.6
	// InfoMatchThreshold is the minimum Jaro-Winkler similarity for a
	// remote title to be considered a match for a user-supplied nickname.
	InfoMatchThreshold = 0.85
)

var (
	jaro        = metrics.NewJaro()
	jaroWinkler = metrics.NewJaroWinkler()
)

// FolderName fuzzy-matches query against each directory name in dirs,
// case-insensitively, using Jaro similarity. dirs are expected to already
// have tag blocks stripped by the caller (see internal/episode).
func FolderName(query string, dirs []string) (name string, index int, ok bool) {
	query = strings.ToLower(query)

	return ClosestMatch(dirs, FolderMatchThreshold, func(dir string) float64 {
		return strutil.Similarity(query, strings.ToLower(dir), jaro)
	})
}

// InfoTitle fuzzy-matches query against a set of romaji titles using
// Jaro-Winkler similarity.
func InfoTitle(query string, titles []string) (title string, index int, ok bool) {
	return ClosestMatch(titles, InfoMatchThreshold, func(title string) float64 {
		return strutil.Similarity(query, title, jaroWinkler)
	})
}
