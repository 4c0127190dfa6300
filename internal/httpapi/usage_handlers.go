package httpapi

import (
	"errors"
	"net/http"

	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/usage"
)

type UsageHandler struct {
	Profiles Profiles
	Gate     Gate
	Log      logger.Logger
}

// Get serves GET /api/usage?kind=resume_scan|cover_letter.
func (h UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	kind, err := usage.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	st, ok := h.check(w, r, id, kind)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// check makes sure the profile exists, then asks the gate. On failure it
// has already written the response.
func (h UsageHandler) check(w http.ResponseWriter, r *http.Request, id string, kind usage.Kind) (usage.Status, bool) {
	if err := h.Profiles.EnsureProfile(r.Context(), id); err != nil {
		h.Log.Error("ensure profile failed", logger.String("user", id), logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "could not load profile")
		return usage.Status{}, false
	}
	st, err := h.Gate.Check(r.Context(), id, kind)
	switch {
	case errors.Is(err, usage.ErrUnknownKind):
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return st, false
	case err != nil:
		h.Log.Error("usage check failed", logger.String("user", id), logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "could not check usage")
		return st, false
	}
	return st, true
}
