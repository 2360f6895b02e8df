package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosestMatch_PicksHighest(t *testing.T) {
	items := []string{"aaa", "aab", "zzz"}

	best, idx, ok := ClosestMatch(items, 0.1, func(s string) float64 {
		if s == "aab" {
			return 0.9
		}
		return 0.2
	})

	require.True(t, ok)
	assert.Equal(t, "aab", best)
	assert.Equal(t, 1, idx)
}

func TestClosestMatch_BelowConfidence(t *testing.T) {
	items := []string{"a", "b"}

	_, _, ok := ClosestMatch(items, 0.9, func(s string) float64 {
		return 0.5
	})

	assert.False(t, ok)
}

func TestClosestMatch_ShortCircuits(t *testing.T) {
	calls := 0
	items := []string{"first", "second", "third"}

	_, idx, ok := ClosestMatch(items, 0.1, func(s string) float64 {
		calls++
		if s == "first" {
			return 1.0
		}
		return 0.0
	})

	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, calls)
}

func TestFolderName(t *testing.T) {
	dirs := []string{"Some Other Show", "My Series Title", "Another Thing"}

	name, _, ok := FolderName("my series title", dirs)
	require.True(t, ok)
	assert.Equal(t, "My Series Title", name)
}

func TestInfoTitle(t *testing.T) {
	titles := []string{"Totally Unrelated", "My Series Title"}

	title, _, ok := InfoTitle("My Series Title", titles)
	require.True(t, ok)
	assert.Equal(t, "My Series Title", title)
}
