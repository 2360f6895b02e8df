// Package sync pushes and pulls watch-list entries between the local store
// and a remote.Service, honoring the dirty bit so an unsynced local change is
// never silently clobbered by a stale remote read.
package sync

import (
	"context"
	"fmt"

	"github.com/godver3/anitrack/internal/entry"
	"github.com/godver3/anitrack/internal/remote"
)

// ToRemote pushes e to svc only if e has unsynced local changes. It is a
// no-op otherwise, returning false to tell the caller nothing happened.
func ToRemote(ctx context.Context, svc remote.Service, e *entry.Entry) (bool, error) {
	if !e.NeedsSync() {
		return false, nil
	}
	return true, ForceToRemote(ctx, svc, e)
}

// ForceToRemote pushes e to svc unconditionally, except when svc is offline,
// in which case the push is skipped (the dirty bit is left set so a later
// online sync will still pick it up).
func ForceToRemote(ctx context.Context, svc remote.Service, e *entry.Entry) error {
	if svc.IsOffline() {
		return nil
	}

	if err := svc.UpdateListEntry(ctx, e.ToRemote()); err != nil {
		return fmt.Errorf("pushing entry %d to remote: %w", e.ID(), err)
	}

	e.ClearSyncFlag()
	return nil
}

// FromRemote pulls e's entry from svc only if the local copy has no unsynced
// changes, so a pending local edit is never overwritten by a remote read.
func FromRemote(ctx context.Context, svc remote.Service, e *entry.Entry) (*entry.Entry, error) {
	if e.NeedsSync() {
		return e, nil
	}
	return ForceFromRemote(ctx, svc, e)
}

// ForceFromRemote fetches e's id from svc regardless of the dirty bit and
// replaces the local entry; when svc is offline it returns e unchanged
// without fetching. If the remote has no entry for this id, the local entry is
// replaced with a fresh default-constructed one rather than left as-is,
// matching the remote's "this is not on your list" state.
func ForceFromRemote(ctx context.Context, svc remote.Service, e *entry.Entry) (*entry.Entry, error) {
	if svc.IsOffline() {
		return e, nil
	}

	remoteEntry, err := svc.GetListEntry(ctx, e.ID())
	if err != nil {
		return nil, fmt.Errorf("pulling entry %d from remote: %w", e.ID(), err)
	}

	if remoteEntry == nil {
		fresh := entry.New(e.ID())
		fresh.ClearSyncFlag()
		return fresh, nil
	}

	pulled := entry.FromRemote(*remoteEntry)
	pulled.ClearSyncFlag()
	return pulled, nil
}
