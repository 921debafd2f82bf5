package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/itchan-dev/askanon/shared/api"
	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/logger"
	"github.com/itchan-dev/askanon/shared/utils"
)

const streamHeartbeat = 30 * time.Second

// StreamQuestions sends the sorted feed as a Server-Sent Event every time the
// snapshot changes. A slow client only ever gets the newest snapshot.
func (h *Handler) StreamQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	log := logger.Log.With("component", "stream", "subscriber", uuid.NewString())

	latest := make(chan domain.Snapshot, 1)
	dispose, err := h.question.Subscribe(ctx, func(snap domain.Snapshot) {
		// deliveries are serialized, so this is the only writer
		select {
		case <-latest:
		default:
		}
		latest <- snap
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer dispose()

	// the server write timeout must not cut a long-lived stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("can't clear write deadline", "error", err)
	}

	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Error("streaming unsupported", "error", err)
		return
	}
	log.Info("stream opened", "remote_addr", r.RemoteAddr)
	defer log.Info("stream closed")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	var seq int
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closing:
			return
		case snap := <-latest:
			data, err := json.Marshal(api.NewQuestionsResponse(snap))
			if err != nil {
				log.Error("failed to encode snapshot", "error", err)
				continue
			}
			seq++
			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", seq, data); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
