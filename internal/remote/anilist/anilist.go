// Package anilist implements remote.Service against the AniList GraphQL
// API (https://graphql.anilist.co).
package anilist

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/machinebox/graphql"

	"github.com/godver3/anitrack/internal/remote"
)

const apiURL = "https://graphql.anilist.co"

// statusTransport remembers the most recent response status code so run can
// translate a 404 into remote.HTTPError: machinebox/graphql itself discards
// the status once it has tried (and failed) to decode a JSON body from it.
type statusTransport struct {
	base   http.RoundTripper
	status int
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		t.status = resp.StatusCode
	}
	return resp, err
}

// Client is an AniList remote.Service. The zero value is not usable; build
// one with New or NewAuthenticated.
type Client struct {
	gql         *graphql.Client
	transport   *statusTransport
	token       *remote.AccessToken
	userID      uint32
	scoreFormat remote.ScoreFormat
}

func newClient() *Client {
	transport := &statusTransport{base: http.DefaultTransport}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}
	return &Client{
		gql:       graphql.NewClient(apiURL, graphql.WithHTTPClient(httpClient)),
		transport: transport,
	}
}

// New builds an unauthenticated client, usable only for the read-only
// search operations.
func New() *Client {
	return newClient()
}

// NewAuthenticated builds a client bound to a user's access token, fetching
// their viewer id and preferred score format.
func NewAuthenticated(ctx context.Context, token remote.AccessToken) (*Client, error) {
	c := newClient()
	c.token = &token

	userID, format, err := c.viewer(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching AniList viewer: %w", err)
	}

	c.userID = userID
	c.scoreFormat = format

	return c, nil
}

func (c *Client) run(ctx context.Context, req *graphql.Request, out any) error {
	if c.token != nil {
		raw, err := c.token.Decode()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+raw)
	}

	err := retry.Do(
		func() error {
			c.transport.status = 0
			runErr := c.gql.Run(ctx, req, out)
			if runErr != nil && c.transport.status != 0 && c.transport.status != http.StatusOK {
				return retry.Unrecoverable(&remote.HTTPError{Code: c.transport.status, Message: runErr.Error()})
			}
			return runErr
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.Context(ctx),
	)
	return err
}

const viewerQuery = `
query {
	Viewer {
		id
		mediaListOptions {
			scoreFormat
		}
	}
}`

func (c *Client) viewer(ctx context.Context) (uint32, remote.ScoreFormat, error) {
	var resp struct {
		Viewer struct {
			ID                int `json:"id"`
			MediaListOptions  struct {
				ScoreFormat string `json:"scoreFormat"`
			} `json:"mediaListOptions"`
		} `json:"Viewer"`
	}

	req := graphql.NewRequest(viewerQuery)
	if err := c.run(ctx, req, &resp); err != nil {
		return 0, 0, err
	}

	return uint32(resp.Viewer.ID), parseScoreFormat(resp.Viewer.MediaListOptions.ScoreFormat), nil
}

func parseScoreFormat(s string) remote.ScoreFormat {
	switch s {
	case "POINT_10_DECIMAL":
		return remote.Point10Decimal
	case "POINT_10":
		return remote.Point10
	case "POINT_5":
		return remote.Point5
	case "POINT_3":
		return remote.Point3
	default:
		return remote.Point100
	}
}

const searchQuery = `
query ($search: String) {
	Page(perPage: 10) {
		media(search: $search, type: ANIME) {
			...mediaFields
		}
	}
}
` + mediaFields

const byIDQuery = `
query ($id: Int) {
	Media(id: $id, type: ANIME) {
		...mediaFields
	}
}
` + mediaFields

const mediaFields = `
fragment mediaFields on Media {
	id
	title { romaji userPreferred }
	episodes
	duration
	format
	relations {
		edges {
			relationType
			node { id format }
		}
	}
}`

type mediaPayload struct {
	ID    int `json:"id"`
	Title struct {
		Romaji        string `json:"romaji"`
		UserPreferred string `json:"userPreferred"`
	} `json:"title"`
	Episodes  *int    `json:"episodes"`
	Duration  *int    `json:"duration"`
	Format    string  `json:"format"`
	Relations struct {
		Edges []struct {
			RelationType string `json:"relationType"`
			Node         struct {
				ID     int    `json:"id"`
				Format string `json:"format"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"relations"`
}

func (m mediaPayload) toSeriesInfo() remote.SeriesInfo {
	info := remote.SeriesInfo{
		ID: uint32(m.ID),
		Title: remote.SeriesTitle{
			Romaji:    m.Title.Romaji,
			Preferred: m.Title.UserPreferred,
		},
		Episodes:          1,
		EpisodeLengthMins: remote.DefaultEpisodeLengthMins,
		Kind:              mediaFormatToKind(m.Format),
	}

	if m.Episodes != nil && *m.Episodes > 0 {
		info.Episodes = uint32(*m.Episodes)
	}
	if m.Duration != nil && *m.Duration > 0 {
		info.EpisodeLengthMins = uint32(*m.Duration)
	}

	for _, edge := range m.Relations.Edges {
		if edge.RelationType != "SEQUEL" {
			continue
		}
		info.Sequels = append(info.Sequels, remote.Sequel{
			ID:   uint32(edge.Node.ID),
			Kind: mediaFormatToKind(edge.Node.Format),
		})
	}

	return info
}

func mediaFormatToKind(format string) remote.SeriesKind {
	switch format {
	case "MOVIE":
		return remote.KindMovie
	case "SPECIAL":
		return remote.KindSpecial
	case "OVA":
		return remote.KindOVA
	case "ONA":
		return remote.KindONA
	default:
		return remote.KindSeason
	}
}

// SearchInfoByName queries AniList for anime matching name, ordered as
// returned by the remote.
func (c *Client) SearchInfoByName(ctx context.Context, name string) ([]remote.SeriesInfo, error) {
	var resp struct {
		Page struct {
			Media []mediaPayload `json:"media"`
		} `json:"Page"`
	}

	req := graphql.NewRequest(searchQuery)
	req.Var("search", name)

	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}

	results := make([]remote.SeriesInfo, 0, len(resp.Page.Media))
	for _, m := range resp.Page.Media {
		results = append(results, m.toSeriesInfo())
	}

	return results, nil
}

// SearchInfoByID fetches a single series by remote id, populating Sequels.
func (c *Client) SearchInfoByID(ctx context.Context, id uint32) (remote.SeriesInfo, error) {
	var resp struct {
		Media mediaPayload `json:"Media"`
	}

	req := graphql.NewRequest(byIDQuery)
	req.Var("id", id)

	if err := c.run(ctx, req, &resp); err != nil {
		return remote.SeriesInfo{}, err
	}

	return resp.Media.toSeriesInfo(), nil
}

const listEntryQuery = `
query ($mediaId: Int, $userId: Int) {
	MediaList(mediaId: $mediaId, userId: $userId) {
		id
		progress
		score(format: POINT_100)
		status
		repeat
		startedAt { year month day }
		completedAt { year month day }
	}
}`

type listEntryPayload struct {
	ID       int    `json:"id"`
	Progress int    `json:"progress"`
	Score    int    `json:"score"`
	Status   string `json:"status"`
	Repeat   int    `json:"repeat"`
	StartedAt fuzzyDate `json:"startedAt"`
	CompletedAt fuzzyDate `json:"completedAt"`
}

type fuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

func (d fuzzyDate) toTime() *time.Time {
	if d.Year == nil || d.Month == nil || d.Day == nil {
		return nil
	}
	t := time.Date(*d.Year, time.Month(*d.Month), *d.Day, 0, 0, 0, 0, time.UTC)
	return &t
}

func statusFromAniList(s string) remote.Status {
	switch s {
	case "CURRENT":
		return remote.Watching
	case "COMPLETED":
		return remote.Completed
	case "PAUSED":
		return remote.OnHold
	case "DROPPED":
		return remote.Dropped
	case "REPEATING":
		return remote.Rewatching
	default:
		return remote.PlanToWatch
	}
}

func statusToAniList(s remote.Status) string {
	switch s {
	case remote.Watching:
		return "CURRENT"
	case remote.Completed:
		return "COMPLETED"
	case remote.OnHold:
		return "PAUSED"
	case remote.Dropped:
		return "DROPPED"
	case remote.Rewatching:
		return "REPEATING"
	default:
		return "PLANNING"
	}
}

// GetListEntry returns the authenticated user's list entry for mediaID, or
// nil if they have none (AniList responds 404, which the client treats as
// Ok(None) rather than an error).
func (c *Client) GetListEntry(ctx context.Context, mediaID uint32) (*remote.SeriesEntry, error) {
	var resp struct {
		MediaList *listEntryPayload `json:"MediaList"`
	}

	req := graphql.NewRequest(listEntryQuery)
	req.Var("mediaId", mediaID)
	req.Var("userId", c.userID)

	err := c.run(ctx, req, &resp)
	if err != nil {
		if remote.IsHTTPCode(err, 404) {
			return nil, nil
		}
		return nil, err
	}

	if resp.MediaList == nil {
		return nil, nil
	}

	p := *resp.MediaList
	score := uint8(p.Score)

	entry := remote.SeriesEntry{
		ID:             mediaID,
		WatchedEps:     uint32(p.Progress),
		Status:         statusFromAniList(p.Status),
		TimesRewatched: uint32(p.Repeat),
		StartDate:      p.StartedAt.toTime(),
		EndDate:        p.CompletedAt.toTime(),
	}
	if score > 0 {
		entry.Score = &score
	}

	return &entry, nil
}

const saveMutation = `
mutation ($mediaId: Int, $progress: Int, $score: Float, $status: MediaListStatus, $repeat: Int, $startedAt: FuzzyDateInput, $completedAt: FuzzyDateInput) {
	SaveMediaListEntry(mediaId: $mediaId, progress: $progress, score: $score, status: $status, repeat: $repeat, startedAt: $startedAt, completedAt: $completedAt) {
		id
	}
}`

// UpdateListEntry pushes entry to AniList via SaveMediaListEntry.
func (c *Client) UpdateListEntry(ctx context.Context, entry remote.SeriesEntry) error {
	if c.token == nil {
		return remote.ErrNeedAuthentication
	}

	req := graphql.NewRequest(saveMutation)
	req.Var("mediaId", entry.ID)
	req.Var("progress", entry.WatchedEps)

	score := 0
	if entry.Score != nil {
		score = int(*entry.Score)
	}
	req.Var("score", score)
	req.Var("status", statusToAniList(entry.Status))
	req.Var("repeat", entry.TimesRewatched)
	req.Var("startedAt", fuzzyDateInput(entry.StartDate))
	req.Var("completedAt", fuzzyDateInput(entry.EndDate))

	var resp struct {
		SaveMediaListEntry struct {
			ID int `json:"id"`
		} `json:"SaveMediaListEntry"`
	}

	return c.run(ctx, req, &resp)
}

func fuzzyDateInput(t *time.Time) map[string]int {
	if t == nil {
		return map[string]int{"year": 0, "month": 0, "day": 0}
	}
	return map[string]int{"year": t.Year(), "month": int(t.Month()), "day": t.Day()}
}

// IsOffline always returns false for the AniList client.
func (c *Client) IsOffline() bool { return false }

// UserID returns the viewer id fetched by NewAuthenticated, for the caller
// to key the local users file on. Zero for a client built with New.
func (c *Client) UserID() uint32 { return c.userID }

// ParseScore interprets s according to the viewer's configured score
// format.
func (c *Client) ParseScore(s string) (uint8, error) {
	return remote.ParseScore(c.scoreFormat, s)
}

// ScoreToStr renders score according to the viewer's configured score
// format.
func (c *Client) ScoreToStr(score uint8) string {
	return remote.ScoreToStr(c.scoreFormat, score)
}

var _ remote.Service = (*Client)(nil)
