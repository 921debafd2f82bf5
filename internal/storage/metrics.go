package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/itchan-dev/askanon/shared/domain"
)

var (
	appendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askanon_store_appends_total",
			Help: "Total number of append calls by backend, collection and result",
		},
		[]string{"mode", "collection", "result"},
	)

	appendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "askanon_store_append_duration_seconds",
			Help:    "Append latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"mode"},
	)

	snapshotDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askanon_snapshot_deliveries_total",
			Help: "Total number of snapshots handed to subscribers",
		},
		[]string{"mode"},
	)

	activeSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "askanon_active_subscriptions",
			Help: "Number of live subscriptions",
		},
		[]string{"mode"},
	)
)

type instrumented struct {
	Backend
}

// Instrument wraps b so that appends and snapshot deliveries are recorded in
// Prometheus. The wrapper is transparent to callers.
func Instrument(b Backend) Backend {
	return &instrumented{Backend: b}
}

func (i *instrumented) Append(ctx context.Context, path domain.CollectionPath, rec domain.Record) (domain.RecordRef, error) {
	mode := i.Mode().String()
	start := time.Now()
	ref, err := i.Backend.Append(ctx, path, rec)
	appendDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	collection := "questions"
	if path.IsReplies() {
		collection = "replies"
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !ref.Written():
		result = "noop"
	}
	appendsTotal.WithLabelValues(mode, collection, result).Inc()
	return ref, err
}

func (i *instrumented) Subscribe(ctx context.Context, fn SnapshotFunc) (Disposer, error) {
	mode := i.Mode().String()
	dispose, err := i.Backend.Subscribe(ctx, func(snap domain.Snapshot) {
		snapshotDeliveries.WithLabelValues(mode).Inc()
		fn(snap)
	})
	if err != nil {
		return nil, err
	}
	gauge := activeSubscriptions.WithLabelValues(mode)
	gauge.Inc()

	var once sync.Once
	release := func() { once.Do(gauge.Dec) }
	stopAfter := context.AfterFunc(ctx, release)
	return func() {
		dispose()
		stopAfter()
		release()
	}, nil
}

// Unwrap exposes the wrapped backend.
func (i *instrumented) Unwrap() Backend {
	return i.Backend
}

// IsPushOnly reports whether err means the snapshot must come from Subscribe.
func IsPushOnly(err error) bool {
	return errors.Is(err, ErrPushOnly)
}
