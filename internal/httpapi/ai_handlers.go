package httpapi

import (
	"context"
	"errors"
	"net/http"

	"onlyremote-engine/internal/generate"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/usage"
)

type AIHandler struct {
	Usage  UsageHandler
	Writer Writer
	Log    logger.Logger
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (h AIHandler) AnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid json: "+err.Error())
		return
	}
	h.gated(w, r, usage.ResumeScan, func(ctx context.Context) (map[string]any, error) {
		a, err := h.Writer.AnalyzeResume(ctx, req.Text)
		if err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "data": a}, nil
	})
}

func (h AIHandler) CoverLetter(w http.ResponseWriter, r *http.Request) {
	var req generate.LetterRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid json: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.gated(w, r, usage.CoverLetter, func(ctx context.Context) (map[string]any, error) {
		text, err := h.Writer.CoverLetter(ctx, req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "coverLetter": text}, nil
	})
}

// gated checks the caller's allowance, runs fn and counts one use only when
// fn succeeds.
func (h AIHandler) gated(w http.ResponseWriter, r *http.Request, kind usage.Kind, fn func(context.Context) (map[string]any, error)) {
	id, err := userID(r)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	st, ok := h.Usage.check(w, r, id, kind)
	if !ok {
		return
	}
	if !st.Allowed {
		WriteError(w, r, http.StatusForbidden, "limit_reached", "free plan limit reached for "+string(kind))
		return
	}

	out, err := fn(r.Context())
	if err != nil {
		h.writeGenError(w, r, kind, err)
		return
	}

	if err := h.Usage.Gate.Increment(r.Context(), id, kind); err != nil {
		h.Log.Warn("usage increment failed", logger.String("user", id), logger.String("kind", string(kind)), logger.Error(err))
	} else if st.Limit != usage.Unlimited {
		st.Count++
		st.Allowed = st.Count < st.Limit
	}
	out["usage"] = st
	WriteJSON(w, http.StatusOK, out)
}

func (h AIHandler) writeGenError(w http.ResponseWriter, r *http.Request, kind usage.Kind, err error) {
	switch {
	case errors.Is(err, generate.ErrResumeTooShort), errors.Is(err, generate.ErrMissingFields):
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, generate.ErrNotConfigured):
		WriteError(w, r, http.StatusServiceUnavailable, "not_configured", err.Error())
	default:
		h.Log.Error("generation failed", logger.String("kind", string(kind)), logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "generation_failed", "An unexpected error occurred")
	}
}
