package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCauseChain_UnwrapsAllLevels(t *testing.T) {
	root := errors.New("disk full")
	wrapped := fmt.Errorf("writing entry: %w", root)
	outer := fmt.Errorf("saving series: %w", wrapped)

	chain := CauseChain(outer)

	assert.Len(t, chain, 3)
	assert.Equal(t, "saving series: writing entry: disk full", chain[0])
	assert.Equal(t, "disk full", chain[2])
}

func TestCauseChain_SingleError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, []string{"boom"}, CauseChain(err))
}
