// Package watch drives one "play next episode" session: it spawns the
// configured media player, tracks how long it ran, and decides whether the
// episode counts as watched.
package watch

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/godver3/anitrack/internal/library"
)

// ErrEpisodeNotFound is returned when the requested episode does not exist
// in the scanned episode set.
var ErrEpisodeNotFound = errors.New("episode not found")

// ErrAbnormalPlayerExit is reported (not returned as a hard error) when the
// player process exits with a non-zero status; the episode is not marked
// watched in that case.
var ErrAbnormalPlayerExit = errors.New("video player did not exit properly")

// PlayerConfig describes how to invoke the external media player.
type PlayerConfig struct {
	Player         string
	GlobalArgs     []string
	SeriesArgs     []string
	PcntMustWatch  float64 // 0..1 multiplier, e.g. 0.5 = 50%
}

// Outcome is reported once a watch session's player process has exited.
type Outcome struct {
	Counted bool
	Err     error
}

// Session represents one in-flight "watching episode N" session: the
// player's process handle plus the timestamp after which the episode counts
// as watched.
type Session struct {
	cmd          *exec.Cmd
	progressTime time.Time
	startTime    time.Time
}

// Start resolves the absolute episode path, spawns the player with the
// episode path plus global and per-series args, and records the progress
// threshold. It does not wait for the process; call Wait (usually from a
// background goroutine/pool) to learn the outcome.
func Start(seriesDir string, episodes library.SortedEpisodes, absoluteEpisode uint32, episodeLengthMins uint32, cfg PlayerConfig) (*Session, error) {
	ep, ok := episodes.Find(absoluteEpisode)
	if !ok {
		return nil, ErrEpisodeNotFound
	}

	path := seriesDir + string(os.PathSeparator) + ep.Filename

	args := append([]string{}, cfg.GlobalArgs...)
	args = append(args, cfg.SeriesArgs...)
	args = append([]string{path}, args...)

	cmd := exec.Command(cfg.Player, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	start := time.Now()
	progressMinutes := float64(episodeLengthMins) * cfg.PcntMustWatch

	return &Session{
		cmd:          cmd,
		startTime:    start,
		progressTime: start.Add(time.Duration(progressMinutes * float64(time.Minute))),
	}, nil
}

// Wait blocks until the player process exits and classifies the result: the
// episode counts as watched only if the process exited successfully and ran
// at least until the progress threshold.
func (s *Session) Wait() Outcome {
	err := s.cmd.Wait()
	if err != nil {
		return Outcome{Counted: false, Err: ErrAbnormalPlayerExit}
	}

	if time.Now().Before(s.progressTime) {
		return Outcome{Counted: false}
	}

	return Outcome{Counted: true}
}

// WaitAsync dispatches Wait to a goroutine pool instead of blocking the
// caller, matching the cooperative-event-loop concurrency model: the
// event loop thread never blocks on the child process itself.
func WaitAsync(ctx context.Context, p *pool.ContextPool, s *Session, onDone func(Outcome)) {
	p.Go(func(ctx context.Context) error {
		onDone(s.Wait())
		return nil
	})
}
