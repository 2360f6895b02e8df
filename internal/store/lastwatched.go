package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadLastWatched reads the plaintext last-watched series nickname from
// path, so the TUI can preselect it on startup. A missing file yields ""
// rather than an error.
func LoadLastWatched(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading last-watched file %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveLastWatched overwrites path with nickname. The caller should only call
// this when nickname actually changed, to avoid needless disk writes on
// every episode completion.
func SaveLastWatched(path, nickname string) error {
	if err := os.WriteFile(path, []byte(nickname), 0o644); err != nil {
		return fmt.Errorf("writing last-watched file %q: %w", path, err)
	}
	return nil
}
