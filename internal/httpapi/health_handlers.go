package httpapi

import (
	"net/http"
)

type HealthHandler struct {
	Sources func() []string
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var sources []string
	if h.Sources != nil {
		sources = h.Sources()
	}
	if sources == nil {
		sources = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"sources": sources,
	})
}
