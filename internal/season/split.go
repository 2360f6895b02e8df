package season

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/godver3/anitrack/internal/library"
	"github.com/godver3/anitrack/internal/remote"
)

// rateLimit is the crude delay between remote lookups while walking the
// sequel chain to determine season boundaries for a merged folder. It lives
// here, not in the remote client, because it is specific to this bulk walk
// and an ordinary single lookup should not be throttled.
const rateLimit = 250 * time.Millisecond

// LinkAction describes one symlink the splitter wants created, mapping a
// source episode file to its season-qualified destination name.
type LinkAction struct {
	SourcePath string
	DestPath   string
}

// SplitMergedSeasons walks the sequel chain starting at root, splitting
// episodes (numbered by continuous cumulative count across seasons 1..K)
// into per-season groups, and returns the symlink actions needed to expose
// each group as "<season title> - NN.ext" under outputDir.
func SplitMergedSeasons(ctx context.Context, svc remote.Service, root remote.SeriesInfo, episodes library.SortedEpisodes, sourceDir, outputDir string) ([]LinkAction, error) {
	seasons := []remote.SeriesInfo{root}

	cur := root
	for i := 0; i < MaxRequests; i++ {
		nextID, ok := cur.DirectSequelID()
		if !ok {
			break
		}

		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(rateLimit):
			}
		}

		next, err := svc.SearchInfoByID(ctx, nextID)
		if err != nil {
			return nil, fmt.Errorf("resolving sequel %d while splitting: %w", nextID, err)
		}

		seasons = append(seasons, next)
		cur = next
	}

	var actions []LinkAction
	offset := uint32(0)

	for _, s := range seasons {
		for localEp := uint32(1); localEp <= s.Episodes; localEp++ {
			abs := offset + localEp
			ep, ok := episodes.Find(abs)
			if !ok {
				continue
			}

			ext := filepath.Ext(ep.Filename)
			destName := fmt.Sprintf("%s - %02d%s", s.Title.Preferred, localEp, ext)

			actions = append(actions, LinkAction{
				SourcePath: filepath.Join(sourceDir, ep.Filename),
				DestPath:   filepath.Join(outputDir, destName),
			})
		}

		offset += s.Episodes
	}

	return actions, nil
}

// Apply performs each LinkAction, creating outputDir if needed. An action
// whose destination link already exists is treated as already applied, not
// an error.
func Apply(outputDir string, actions []LinkAction) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating split output directory: %w", err)
	}

	for _, action := range actions {
		if _, err := os.Lstat(action.DestPath); err == nil {
			continue
		}

		if err := os.Symlink(action.SourcePath, action.DestPath); err != nil {
			return fmt.Errorf("linking %q -> %q: %w", action.SourcePath, action.DestPath, err)
		}
	}

	return nil
}
