// Package logging sets up anitrack's structured logger: a text handler
// writing to a rotating file and, when debug logging is enabled, also to
// stderr.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures where and how verbosely logs are written.
type Options struct {
	// File is the rotated log file path. Empty disables file logging.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
}

// Setup builds a slog.Logger writing to File (rotated via lumberjack) and,
// if Debug is set, also to stderr, and installs it as slog's default logger.
// The returned io.Closer should be deferred by the caller to flush the
// rotation writer.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var writer io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		closer = rotator

		if opts.Debug {
			writer = io.MultiWriter(os.Stderr, rotator)
		} else {
			writer = rotator
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CauseChain unwraps err into its wrapped causes, innermost last, for the
// TUI's multi-line "caused by" error display.
func CauseChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
