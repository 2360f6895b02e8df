// Package offline implements remote.Service for disconnected operation: all
// info lookups fail (the core must already have cached data), list-entry
// reads return nothing, and writes succeed as no-ops.
package offline

import (
	"context"

	"github.com/godver3/anitrack/internal/remote"
)

// Service is the offline remote.Service implementation.
type Service struct{}

// New constructs an offline Service.
func New() Service { return Service{} }

func (Service) SearchInfoByName(ctx context.Context, name string) ([]remote.SeriesInfo, error) {
	return nil, remote.ErrNeedExistingSeriesData
}

func (Service) SearchInfoByID(ctx context.Context, id uint32) (remote.SeriesInfo, error) {
	return remote.SeriesInfo{}, remote.ErrNeedExistingSeriesData
}

func (Service) GetListEntry(ctx context.Context, id uint32) (*remote.SeriesEntry, error) {
	return nil, nil
}

func (Service) UpdateListEntry(ctx context.Context, entry remote.SeriesEntry) error {
	return nil
}

func (Service) IsOffline() bool { return true }

// ParseScore/ScoreToStr are identity in offline mode: the score is already
// the internal 0..=100 integer.
func (Service) ParseScore(s string) (uint8, error) {
	return remote.ParseScore(remote.Point100, s)
}

func (Service) ScoreToStr(score uint8) string {
	return remote.ScoreToStr(remote.Point100, score)
}
