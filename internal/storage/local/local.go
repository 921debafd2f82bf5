// Package local is the same-device storage.Backend. The whole question
// collection lives as one JSON document under a fixed key; every write is a
// full read-modify-write. Changes reach subscribers through a fixed-interval
// poll plus the host's change signal from other contexts.
package local

import (
	"context"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/config"
	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/logger"
)

// Storage is one context attached to a Host. It implements storage.Backend.
type Storage struct {
	host         *Host
	id           uint64
	key          string
	pollInterval time.Duration
	now          func() time.Time
	ownsHost     bool
}

type Option func(*Storage)

// WithClock replaces the wall clock used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

// WithPollInterval overrides config.DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Storage) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithKey overrides config.DefaultLocalKey.
func WithKey(key string) Option {
	return func(s *Storage) {
		if key != "" {
			s.key = key
		}
	}
}

// Attach creates a new context on host.
func Attach(host *Host, opts ...Option) *Storage {
	s := &Storage{
		host:         host,
		id:           host.newContextID(),
		key:          config.DefaultLocalKey,
		pollInterval: config.DefaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the Pebble store at cfg.Path and attaches a single context that
// owns the host and closes it on Close.
func Open(cfg config.Local) (*Storage, error) {
	kv, err := OpenPebble(cfg.Path)
	if err != nil {
		return nil, err
	}
	s := Attach(NewHost(kv), WithKey(cfg.Key), WithPollInterval(cfg.PollInterval))
	s.ownsHost = true
	return s, nil
}

func (s *Storage) Mode() storage.Mode {
	return storage.ModeLocal
}

// Host returns the shared host, for attaching more contexts.
func (s *Storage) Host() *Host {
	return s.host
}

func (s *Storage) Now() domain.TimeValue {
	return domain.WallClock(s.now())
}

func (s *Storage) ReadAll(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	err := s.host.view(s.key, func(data []byte) error {
		var err error
		snap, err = decodeDocument(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Append adds a question, or a reply to an existing question. A reply whose
// question is not in the document is dropped without error and the returned
// ref has an empty Key.
func (s *Storage) Append(ctx context.Context, path domain.CollectionPath, rec domain.Record) (domain.RecordRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecordRef{}, err
	}

	ref := domain.RecordRef{Path: path}
	err := s.host.update(s.id, s.key, func(data []byte) ([]byte, error) {
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}

		now := s.now()
		ts := rec.Timestamp.Resolve(func() time.Time { return now })

		if !path.IsReplies() {
			id := newID(questionPrefix, now)
			replies := rec.Replies
			if replies == nil {
				replies = map[domain.ReplyId]domain.Reply{}
			}
			doc[id] = domain.Question{Id: id, Text: rec.Text, Timestamp: ts, Replies: replies}
			ref.Key = id
			return encodeDocument(doc)
		}

		q, ok := doc[path.QuestionId()]
		if !ok {
			logger.Log.Debug("reply target missing, nothing written",
				"component", "local_store",
				"question_id", path.QuestionId())
			return nil, nil
		}
		if q.Replies == nil {
			q.Replies = map[domain.ReplyId]domain.Reply{}
		}
		id := newID(replyPrefix, now)
		q.Replies[id] = domain.Reply{Id: id, Text: rec.Text, Timestamp: ts}
		doc[path.QuestionId()] = q
		ref.Key = id
		return encodeDocument(doc)
	})
	if err != nil {
		return domain.RecordRef{}, err
	}
	return ref, nil
}

// Subscribe delivers the current snapshot before returning, then re-delivers on
// every poll tick and on every change signal from another context.
func (s *Storage) Subscribe(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
	sub := storage.NewSubscription(ctx, fn)
	read := func() (domain.Snapshot, error) { return s.ReadAll(context.Background()) }

	if _, err := sub.Deliver(read); err != nil {
		sub.Dispose()
		return nil, err
	}

	refresh := func(reason string) {
		_, err := sub.Deliver(read)
		switch {
		case err == nil:
		case errors.Is(err, pebble.ErrClosed):
			// the host went away under a live subscription
			logger.Log.Debug("local store closed, ending subscription", "component", "local_store")
			sub.Dispose()
		default:
			logger.Log.Error("local snapshot refresh failed",
				"component", "local_store",
				"reason", reason,
				"error", err)
		}
	}

	unlisten := s.host.Listen(s.id, func(ev ChangeEvent) {
		if ev.Key == s.key {
			refresh("signal")
		}
	})
	sub.OnDispose(unlisten)

	ticker := time.NewTicker(s.pollInterval)
	sub.OnDispose(ticker.Stop)
	go func() {
		done := sub.Context().Done()
		for {
			select {
			case <-ticker.C:
				refresh("poll")
			case <-done:
				return
			}
		}
	}()

	return sub.Start(), nil
}

// Ping checks that the document can still be read and decoded.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.ReadAll(ctx)
	return err
}

// Close releases the host when this context opened it.
func (s *Storage) Close() error {
	if !s.ownsHost {
		return nil
	}
	return s.host.Close()
}
