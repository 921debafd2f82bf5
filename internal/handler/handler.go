package handler

import (
	"context"
	"sync"

	"github.com/itchan-dev/askanon/internal/service"
	"github.com/itchan-dev/askanon/shared/config"
)

// HealthChecker is implemented by both storage backends.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	question service.QuestionService
	cfg      *config.Config
	health   HealthChecker

	closing   chan struct{}
	closeOnce sync.Once
}

func New(question service.QuestionService, cfg *config.Config, health HealthChecker) *Handler {
	return &Handler{question: question, cfg: cfg, health: health, closing: make(chan struct{})}
}

// CloseStreams ends every open event stream. Used on server shutdown, since
// Shutdown does not interrupt active connections.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}
