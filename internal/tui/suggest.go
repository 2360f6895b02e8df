package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc/pool"

	"github.com/godver3/anitrack/internal/match"
	"github.com/godver3/anitrack/internal/remote"
)

// debounceDelay is how long the add-series panel waits after the last
// keystroke before recomputing folder/title suggestions in the background.
const debounceDelay = 750 * time.Millisecond

// Suggestion is one candidate surfaced to the user while typing a series
// nickname: a folder on disk, optionally paired with a matched remote title.
type Suggestion struct {
	FolderName string
	Info       *remote.SeriesInfo
}

// suggestionsMsg is delivered back to Update once a debounced recomputation
// finishes. Gen lets Update discard a stale result: if the user kept typing
// after this computation was dispatched, gen no longer matches the model's
// current generation and the message is dropped.
type suggestionsMsg struct {
	gen     uint64
	query   string
	results []Suggestion
}

// SuggestionEngine owns the background worker pool that recomputes
// add-series candidates off the event-loop thread. The UI state itself
// (which generation is current) is read/written only from Update; this type
// only guards the pool and the in-flight cancel func, per spec.md §5's "one
// owner" rule for UI state.
type SuggestionEngine struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	pool    *pool.ContextPool
	results chan suggestionsMsg
}

// NewSuggestionEngine builds a SuggestionEngine backed by a panic-safe
// goroutine pool, matching the watch-session waiter's use of
// sourcegraph/conc for background work (internal/watch.WaitAsync). Results
// are buffered so a background worker never blocks on the event loop
// catching up.
func NewSuggestionEngine() *SuggestionEngine {
	return &SuggestionEngine{
		pool:    pool.New().WithContext(context.Background()),
		results: make(chan suggestionsMsg, 4),
	}
}

// waitForSuggestion returns a tea.Cmd that blocks on the next background
// result. Wired into the Model's Init/Update so the bubbletea runtime, not
// this package, owns the goroutine that feeds results back onto the event
// loop thread.
func (s *SuggestionEngine) waitForSuggestion() tea.Cmd {
	return func() tea.Msg {
		return <-s.results
	}
}

// Dispatch cancels any in-flight recomputation and schedules a new one,
// debounced by debounceDelay. dirs are the candidate folder names under the
// configured series directory; searchRemote, if non-nil, is fuzzy-matched
// against remote search results. gen is the model's current input
// generation, stamped onto the result so Update can discard a stale
// response it receives after the user kept typing.
func (s *SuggestionEngine) Dispatch(query string, dirs []string, searchRemote func(ctx context.Context, name string) []remote.SeriesInfo, gen uint64) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	dispatchCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.pool.Go(func(context.Context) error {
		select {
		case <-time.After(debounceDelay):
		case <-dispatchCtx.Done():
			return nil
		}

		if dispatchCtx.Err() != nil {
			return nil
		}

		var results []Suggestion
		if name, _, ok := match.FolderName(query, dirs); ok {
			results = append(results, Suggestion{FolderName: name})
		}

		if searchRemote != nil {
			for _, info := range searchRemote(dispatchCtx, query) {
				results = append(results, Suggestion{Info: &info})
			}
		}

		if dispatchCtx.Err() != nil {
			return nil
		}

		s.results <- suggestionsMsg{gen: gen, query: query, results: results}
		return nil
	})
}

// Close cancels any in-flight recomputation and waits for the pool to drain,
// called by Run once the bubbletea program has exited.
func (s *SuggestionEngine) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	_ = s.pool.Wait()
}
