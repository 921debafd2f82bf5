package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/itchan-dev/askanon/shared/domain"
)

// Subscription holds the bookkeeping shared by both backend variants: the
// stopped flag, delivery serialization and idempotent teardown.
type Subscription struct {
	fn      SnapshotFunc
	stopped atomic.Bool
	deliver sync.Mutex
	once    sync.Once

	ctx     context.Context
	cancel  context.CancelFunc
	cleanup []func()
}

// NewSubscription derives the subscription lifetime from ctx. Call Start once
// all teardown work is registered.
func NewSubscription(ctx context.Context, fn SnapshotFunc) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	return &Subscription{fn: fn, ctx: subCtx, cancel: cancel}
}

// Start ties disposal to the parent context and returns the Disposer.
func (s *Subscription) Start() Disposer {
	context.AfterFunc(s.ctx, s.Dispose)
	return s.Dispose
}

// Context is done once the subscription is disposed.
func (s *Subscription) Context() context.Context {
	return s.ctx
}

// OnDispose registers teardown work. Must be called before the subscription is shared.
func (s *Subscription) OnDispose(f func()) {
	s.cleanup = append(s.cleanup, f)
}

// Deliver reads a snapshot with read and hands it to the callback unless the
// subscription has been disposed. It reports whether the callback ran.
func (s *Subscription) Deliver(read func() (domain.Snapshot, error)) (bool, error) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	if s.stopped.Load() {
		return false, nil
	}
	snap, err := read()
	if err != nil {
		return false, err
	}
	if s.stopped.Load() {
		return false, nil
	}
	s.fn(snap)
	return true, nil
}

func (s *Subscription) Stopped() bool {
	return s.stopped.Load()
}

// Dispose is the Disposer for this subscription.
func (s *Subscription) Dispose() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
		for _, f := range s.cleanup {
			f()
		}
	})
}
