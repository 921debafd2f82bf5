package setup

import (
	"context"
	"time"

	"github.com/itchan-dev/askanon/internal/frontend"
	"github.com/itchan-dev/askanon/internal/handler"
	"github.com/itchan-dev/askanon/internal/service"
	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/internal/storage/local"
	"github.com/itchan-dev/askanon/internal/storage/pg"
	"github.com/itchan-dev/askanon/internal/utils"
	"github.com/itchan-dev/askanon/shared/config"
	"github.com/itchan-dev/askanon/shared/logger"
	"github.com/itchan-dev/askanon/shared/middleware/ratelimiter"
)

const remoteProbeTimeout = 5 * time.Second

// Backend is what the composition root needs from a storage variant.
type Backend interface {
	storage.Backend
	handler.HealthChecker
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config       *config.Config
	Storage      storage.Backend
	Feed         *service.Feed
	Handler      *handler.Handler
	Frontend     *frontend.Handler
	WriteLimiter *ratelimiter.UserRateLimiter

	backend Backend
}

// SetupDependencies picks the storage variant once and wires everything on top of it.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps, err := NewDependencies(ctx, cfg, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return deps, nil
}

// openBackend probes the remote store when it is enabled and falls back to
// the local one when the probe fails.
func openBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	enabled := cfg.Public.Remote.Enabled
	var remote *pg.Storage
	if enabled {
		probeCtx, cancel := context.WithTimeout(ctx, remoteProbeTimeout)
		var err error
		remote, err = pg.New(probeCtx, cfg.Private.Pg)
		cancel()
		if err != nil {
			logger.Log.Warn("remote store unavailable, falling back to local",
				"component", "setup",
				"error", err)
		}
	}

	mode := storage.SelectMode(enabled, remote != nil)
	logger.Log.Info("storage selected", "component", "setup", "mode", mode.String())
	if mode == storage.ModeRemote {
		return remote, nil
	}
	store, err := local.Open(cfg.Public.Local)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewDependencies builds the service graph on an already opened backend.
func NewDependencies(ctx context.Context, cfg *config.Config, backend Backend) (*Dependencies, error) {
	store := storage.Instrument(backend)

	feed := service.NewFeed(store)
	if err := feed.Start(ctx); err != nil {
		return nil, err
	}

	validator := utils.New(cfg.Public.Limits.QuestionMaxLen, cfg.Public.Limits.ReplyMaxLen)
	question := service.NewQuestion(store, validator, feed)

	var limiter *ratelimiter.UserRateLimiter
	if cfg.Public.HTTP.WriteRPS > 0 {
		limiter = ratelimiter.New(cfg.Public.HTTP.WriteRPS, max(cfg.Public.HTTP.WriteBurst, 1), time.Hour)
	}

	return &Dependencies{
		Config:       cfg,
		Storage:      store,
		Feed:         feed,
		Handler:      handler.New(question, cfg, backend),
		Frontend:     frontend.New(question, cfg),
		WriteLimiter: limiter,
		backend:      backend,
	}, nil
}

// Close stops background work and releases the backend.
func (d *Dependencies) Close() error {
	d.Feed.Stop()
	if d.WriteLimiter != nil {
		d.WriteLimiter.Stop()
	}
	return d.backend.Close()
}
