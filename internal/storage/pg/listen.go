package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/logger"
)

const (
	minReconnectInterval = 100 * time.Millisecond
	maxReconnectInterval = 10 * time.Second
	keepaliveInterval    = 90 * time.Second
)

// Subscribe opens a dedicated LISTEN connection, delivers the current snapshot
// and then one fresh snapshot per notification. After a reconnect (nil
// notification) a snapshot is delivered as well, since events may have been missed.
func (s *Storage) Subscribe(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
	log := logger.Component("remote_store")

	listener := pq.NewListener(s.connStr, minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Warn("listener event", "event", ev, "error", err)
			}
		})
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	sub := storage.NewSubscription(ctx, fn)
	sub.OnDispose(func() {
		if err := listener.Close(); err != nil {
			log.Warn("failed to close listener", "error", err)
		}
	})

	read := func() (domain.Snapshot, error) { return s.snapshot(sub.Context()) }
	if _, err := sub.Deliver(read); err != nil {
		sub.Dispose()
		return nil, err
	}

	go func() {
		done := sub.Context().Done()
		for {
			select {
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					log.Info("listener reconnected, resyncing")
				}
				if _, err := sub.Deliver(read); err != nil && !sub.Stopped() {
					log.Error("remote snapshot refresh failed", "error", err)
				}
			case <-time.After(keepaliveInterval):
				go func() {
					if err := listener.Ping(); err != nil {
						log.Warn("listener ping failed", "error", err)
					}
				}()
			case <-done:
				return
			}
		}
	}()

	return sub.Start(), nil
}
