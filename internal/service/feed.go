package service

import (
	"context"
	"sync"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/errors"
	"github.com/itchan-dev/askanon/shared/logger"
)

// Feed keeps the latest snapshot delivered by the backend's change notifier
// and fans it out to any number of local subscribers over a single backend
// subscription. It is what serves reads when the backend is push-only.
type Feed struct {
	store storage.Backend

	mu        sync.RWMutex
	snap      domain.Snapshot
	listeners map[uint64]*storage.Subscription
	next      uint64

	// order serializes fan-out with the initial delivery of new subscribers,
	// so nobody sees an older snapshot after a newer one.
	order sync.Mutex

	ready     chan struct{}
	readyOnce sync.Once
	dispose   storage.Disposer
}

func NewFeed(store storage.Backend) *Feed {
	return &Feed{
		store:     store,
		listeners: make(map[uint64]*storage.Subscription),
		ready:     make(chan struct{}),
	}
}

// Start subscribes to the backend. The subscription ends when ctx is cancelled
// or Stop is called.
func (f *Feed) Start(ctx context.Context) error {
	dispose, err := f.store.Subscribe(ctx, f.update)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.dispose = dispose
	f.mu.Unlock()

	logger.Log.Info("started question feed",
		"component", "feed",
		"mode", f.store.Mode().String())
	return nil
}

func (f *Feed) update(snap domain.Snapshot) {
	f.order.Lock()
	defer f.order.Unlock()

	f.mu.Lock()
	f.snap = snap
	listeners := make([]*storage.Subscription, 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	f.mu.Unlock()
	f.readyOnce.Do(func() { close(f.ready) })

	logger.Log.Debug("question feed updated",
		"component", "feed",
		"questions", len(snap),
		"subscribers", len(listeners))

	for _, l := range listeners {
		l.Deliver(func() (domain.Snapshot, error) { return snap, nil })
	}
}

// Snapshot returns the latest snapshot, waiting for the first delivery if
// none has arrived yet. The result is shared and must not be modified.
func (f *Feed) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	select {
	case <-f.ready:
	case <-ctx.Done():
		return nil, &errors.ErrorWithStatusCode{Message: "Questions are not loaded yet", StatusCode: 503}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap, nil
}

// Subscribe registers fn for every future snapshot. When a snapshot is already
// known it is delivered before Subscribe returns. fn must not subscribe to the
// same Feed.
func (f *Feed) Subscribe(ctx context.Context, fn storage.SnapshotFunc) storage.Disposer {
	sub := storage.NewSubscription(ctx, fn)

	f.order.Lock()
	defer f.order.Unlock()

	f.mu.Lock()
	id := f.next
	f.next++
	f.listeners[id] = sub
	snap := f.snap
	f.mu.Unlock()

	sub.OnDispose(func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	})
	dispose := sub.Start()

	if snap != nil {
		sub.Deliver(func() (domain.Snapshot, error) { return snap, nil })
	}
	return dispose
}

// Stop ends the backend subscription and every local subscriber.
func (f *Feed) Stop() {
	f.mu.Lock()
	dispose := f.dispose
	f.dispose = nil
	listeners := make([]*storage.Subscription, 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	f.mu.Unlock()

	if dispose != nil {
		dispose()
	}
	for _, l := range listeners {
		l.Dispose()
	}
	logger.Log.Info("question feed stopped", "component", "feed")
}
