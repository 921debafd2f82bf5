// Package storage is the backend-transparent persistence and change
// notification layer. A Backend is chosen once at startup (see SelectMode) and
// injected everywhere else; call sites never branch on the active mode.
package storage

import (
	"context"
	"errors"

	"github.com/itchan-dev/askanon/shared/domain"
)

// ErrPushOnly is returned by ReadAll when the backend only publishes snapshots
// through Subscribe. Callers must rely on notifications instead of polling.
var ErrPushOnly = errors.New("snapshot only available through subscription")

// Disposer permanently stops a subscription. Calling it more than once has the
// same effect as calling it once. A callback already running may still finish.
type Disposer func()

// SnapshotFunc receives full snapshots. Calls for one subscription never overlap.
type SnapshotFunc func(domain.Snapshot)

type Backend interface {
	Mode() Mode

	// Append writes rec as a new child of path and returns the assigned key.
	// Content is not validated here. Existing entries are never overwritten.
	Append(ctx context.Context, path domain.CollectionPath, rec domain.Record) (domain.RecordRef, error)

	// ReadAll returns the current snapshot, or ErrPushOnly.
	ReadAll(ctx context.Context) (domain.Snapshot, error)

	// Subscribe delivers the current snapshot and then every later one until the
	// returned Disposer is called or ctx is done.
	//
	// Latency: remote snapshots follow each committed write; local snapshots
	// arrive within one poll interval, or immediately when another context
	// attached to the same host writes.
	Subscribe(ctx context.Context, fn SnapshotFunc) (Disposer, error)

	// Now returns a write-time value matching the backend's clock semantics.
	Now() domain.TimeValue

	Close() error
}
