// Package remote abstracts the online (AniList) and offline backends that
// anitrack can synchronize watch progress against.
package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// SeriesKind mirrors episode.Kind without importing it, so this package has
// no dependency on the filename-parsing internals; values line up 1:1 with
// the AniList media format.
type SeriesKind int

const (
	KindSeason SeriesKind = iota
	KindMovie
	KindSpecial
	KindOVA
	KindONA
)

// RelationKind distinguishes why two series are linked in the sequel graph.
type RelationKind int

const (
	RelationSequel RelationKind = iota
	RelationOther
)

// Sequel is one edge out of a SeriesInfo's relations list.
type Sequel struct {
	ID   uint32
	Kind SeriesKind
}

// SeriesTitle holds the title variants the core cares about.
type SeriesTitle struct {
	Romaji   string
	Preferred string
}

// SeriesInfo is the remote-derived description of one series (one "season"
// in the sequel graph sense).
type SeriesInfo struct {
	ID                 uint32
	Title              SeriesTitle
	Episodes           uint32
	EpisodeLengthMins  uint32
	Sequels            []Sequel
	Kind               SeriesKind
}

// DefaultEpisodeLengthMins is used when the remote does not report a
// duration.
const DefaultEpisodeLengthMins = 24

// DirectSequelID returns the id of the first sequel edge whose relation is
// SEQUEL and whose kind matches this series' own kind, disambiguating a
// season sequel from an unrelated movie/OVA spin-off. It returns false if
// there is no such edge.
func (s SeriesInfo) DirectSequelID() (uint32, bool) {
	for _, seq := range s.Sequels {
		if seq.Kind == s.Kind {
			return seq.ID, true
		}
	}
	return 0, false
}

// Status is a list-entry's watch status.
type Status int

const (
	PlanToWatch Status = iota
	Watching
	Completed
	OnHold
	Dropped
	Rewatching
)

func (s Status) String() string {
	switch s {
	case Watching:
		return "Watching"
	case Completed:
		return "Completed"
	case OnHold:
		return "OnHold"
	case Dropped:
		return "Dropped"
	case Rewatching:
		return "Rewatching"
	default:
		return "PlanToWatch"
	}
}

// SeriesEntry is the remote-shaped view of a list entry, used for
// round-tripping through the Service interface. The richer local
// representation with the needs_sync bit lives in internal/entry.
type SeriesEntry struct {
	ID             uint32
	WatchedEps     uint32
	Score          *uint8
	Status         Status
	TimesRewatched uint32
	StartDate      *time.Time
	EndDate        *time.Time
}

// NewSeriesEntry constructs a fresh entry for a series with no prior list
// data, as PlanToWatch with no progress.
func NewSeriesEntry(id uint32) SeriesEntry {
	return SeriesEntry{ID: id, Status: PlanToWatch}
}

// AccessToken is an opaque bearer token for an authenticated session. Its
// value is never rendered by String, so formatting it with fmt or slog
// cannot leak it into logs.
type AccessToken struct {
	encoded string
}

// NewAccessToken wraps a raw token string.
func NewAccessToken(raw string) AccessToken {
	return AccessToken{encoded: base64.StdEncoding.EncodeToString([]byte(raw))}
}

// Decode returns the raw token value for use in an Authorization header.
func (t AccessToken) Decode() (string, error) {
	raw, err := base64.StdEncoding.DecodeString(t.encoded)
	if err != nil {
		return "", fmt.Errorf("decoding access token: %w", err)
	}
	return string(raw), nil
}

// Encoded returns the token's storage representation.
func (t AccessToken) Encoded() string { return t.encoded }

// AccessTokenFromEncoded reconstructs an AccessToken from its stored form.
func AccessTokenFromEncoded(encoded string) AccessToken {
	return AccessToken{encoded: encoded}
}

func (t AccessToken) String() string { return "AccessToken(redacted)" }

// HTTPError is a transport-shaped remote error carrying a status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("remote http error %d: %s", e.Code, e.Message)
}

// IsHTTPCode reports whether err is an HTTPError with the given status
// code.
func IsHTTPCode(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == code
	}
	return false
}

// Sentinel errors, named per spec.
var (
	ErrNeedExistingSeriesData = errors.New("need existing series info to run in offline mode; run with --prefetch first when online")
	ErrNeedAuthentication     = errors.New("this operation requires an authenticated AniList session")
	ErrNotAnAnime             = errors.New("remote result is not an anime")
	ErrMustRunOnline          = errors.New("this command can only be run in online mode")
)

// BadResponseError wraps a semantically invalid AniList response.
type BadResponseError struct {
	Code    int
	Message string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("bad AniList response (%d): %s", e.Code, e.Message)
}

// ScoreFormat is one of the five AniList user-configurable score display
// formats. All are stored internally as 0..=100.
type ScoreFormat int

const (
	Point100 ScoreFormat = iota
	Point10Decimal
	Point10
	Point5
	Point3
)

// Service is the polymorphic remote backend contract: AniList
// (authenticated or not) and Offline both implement it.
type Service interface {
	SearchInfoByName(ctx context.Context, name string) ([]SeriesInfo, error)
	SearchInfoByID(ctx context.Context, id uint32) (SeriesInfo, error)
	GetListEntry(ctx context.Context, id uint32) (*SeriesEntry, error)
	UpdateListEntry(ctx context.Context, entry SeriesEntry) error
	IsOffline() bool
	ParseScore(s string) (uint8, error)
	ScoreToStr(score uint8) string
}
