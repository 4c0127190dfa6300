package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/poll"
)

// warmRunTimeout bounds a run started over HTTP, which outlives the request.
const warmRunTimeout = 10 * time.Minute

type WarmHandler struct {
	Warmer Warmer
	Log    logger.Logger
}

func (h WarmHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Warmer.Status())
}

// Run starts a warm pass in the background. Progress is reported through
// /warm/status and the event stream.
func (h WarmHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Warmer.Status().Running {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmRunTimeout)
		defer cancel()
		if _, err := h.Warmer.RunOnce(ctx); err != nil && !errors.Is(err, poll.ErrAlreadyRunning) {
			h.Log.Warn("manual warm run failed", logger.Error(err))
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
