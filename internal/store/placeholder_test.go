package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOfflinePlaceholderID_SetsMarkerBit(t *testing.T) {
	id := NewOfflinePlaceholderID()
	assert.True(t, IsOfflinePlaceholderID(id))
}

func TestIsOfflinePlaceholderID_FalseForOrdinaryRemoteID(t *testing.T) {
	assert.False(t, IsOfflinePlaceholderID(12345))
}

func TestNewOfflinePlaceholderID_ProducesDistinctValues(t *testing.T) {
	a := NewOfflinePlaceholderID()
	b := NewOfflinePlaceholderID()
	assert.NotEqual(t, a, b)
}
