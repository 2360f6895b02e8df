package store

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// offlineIDMarker is OR'd into every placeholder id's top bit so it can
// never collide with a real AniList media id (those are small positive
// integers well under 2^31).
const offlineIDMarker = uint32(1) << 31

// NewOfflinePlaceholderID mints an anonymous series id for use when a series
// is added while offline and has no known remote id yet. Nothing replaces it
// with a remote id later; IsOfflinePlaceholderID tells such ids apart.
func NewOfflinePlaceholderID() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[:4]) | offlineIDMarker
}

// IsOfflinePlaceholderID reports whether id was minted by
// NewOfflinePlaceholderID rather than assigned by the remote.
func IsOfflinePlaceholderID(id uint32) bool {
	return id&offlineIDMarker != 0
}
