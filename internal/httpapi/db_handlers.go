package httpapi

import (
	"net/http"

	"onlyremote-engine/internal/logger"
)

type DBHandler struct {
	Profiles Profiles
	Log      logger.Logger
}

// Checkpoint folds the WAL into the main database file. Only loopback
// callers may trigger it.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLocal(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if err := h.Profiles.Checkpoint(r.Context()); err != nil {
		h.Log.Error("wal checkpoint failed", logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
