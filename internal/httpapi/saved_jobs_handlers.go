package httpapi

import (
	"net/http"
	"strings"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/logger"
)

type SavedJobsHandler struct {
	Profiles Profiles
	Log      logger.Logger
}

func (h SavedJobsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	jobs, err := h.Profiles.ListSavedJobs(r.Context(), id)
	if err != nil {
		h.Log.Error("list saved jobs failed", logger.String("user", id), logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "could not list saved jobs")
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Toggle bookmarks the posted job, or removes the bookmark if it exists.
func (h SavedJobsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	var job domain.Job
	if err := decodeBody(w, r, &job); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(job.ID) == "" || strings.TrimSpace(job.Title) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "job id and title are required")
		return
	}

	if err := h.Profiles.EnsureProfile(r.Context(), id); err != nil {
		h.Log.Error("ensure profile failed", logger.String("user", id), logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "could not load profile")
		return
	}
	saved, err := h.Profiles.ToggleSavedJob(r.Context(), id, job)
	if err != nil {
		h.Log.Error("toggle saved job failed", logger.String("user", id), logger.String("job", job.ID), logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "could not save job")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"saved": saved, "id": job.ID})
}
