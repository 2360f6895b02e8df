package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/godver3/anitrack/internal/remote"
)

func waitForMsg(t *testing.T, cmd tea.Cmd, timeout time.Duration) tea.Msg {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for suggestion message")
		return nil
	}
}

func TestSuggestionEngine_DeliversFolderMatchAfterDebounce(t *testing.T) {
	engine := NewSuggestionEngine()
	defer engine.Close()

	engine.Dispatch("My Show", []string{"My.Show.S01", "Unrelated"}, nil, 1)

	msg := waitForMsg(t, engine.waitForSuggestion(), 2*time.Second)
	result, ok := msg.(suggestionsMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(1), result.gen)
	require.Len(t, result.results, 1)
	assert.Equal(t, "My.Show.S01", result.results[0].FolderName)
}

func TestSuggestionEngine_SupersededDispatchCancelsEarlierOne(t *testing.T) {
	engine := NewSuggestionEngine()
	defer engine.Close()

	engine.Dispatch("first query", nil, nil, 1)
	engine.Dispatch("second query", nil, nil, 2)

	msg := waitForMsg(t, engine.waitForSuggestion(), 2*time.Second)
	result, ok := msg.(suggestionsMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(2), result.gen, "the cancelled first dispatch should never deliver")
}

func TestSuggestionEngine_IncludesRemoteSearchResults(t *testing.T) {
	engine := NewSuggestionEngine()
	defer engine.Close()

	searchRemote := func(ctx context.Context, name string) []remote.SeriesInfo {
		return []remote.SeriesInfo{{ID: 1, Title: remote.SeriesTitle{Preferred: name}}}
	}

	engine.Dispatch("My Show", nil, searchRemote, 1)

	msg := waitForMsg(t, engine.waitForSuggestion(), 2*time.Second)
	result := msg.(suggestionsMsg)
	require.Len(t, result.results, 1)
	require.NotNil(t, result.results[0].Info)
	assert.Equal(t, "My Show", result.results[0].Info.Title.Preferred)
}
