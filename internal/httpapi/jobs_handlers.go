package httpapi

import (
	"net/http"
	"strings"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/logger"
)

const defaultJobsLimit = 50

type JobsHandler struct {
	Search Searcher
	Log    logger.Logger
}

type jobsResponse struct {
	Jobs     []domain.Job `json:"jobs"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// List serves GET /api/jobs.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseJobsQuery(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res, err := h.Search.FetchAggregated(r.Context(), q)
	if err != nil {
		h.Log.Error("fetch jobs failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("q", q.Q),
			logger.Error(err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch jobs"})
		return
	}

	jobs := res.Jobs
	if jobs == nil {
		jobs = []domain.Job{}
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	WriteJSON(w, http.StatusOK, jobsResponse{
		Jobs:     jobs,
		Total:    res.Total,
		Page:     page,
		PageSize: len(jobs),
	})
}

func parseJobsQuery(r *http.Request) (domain.Query, error) {
	v := r.URL.Query()
	q := domain.Query{
		Q:        strings.TrimSpace(v.Get("q")),
		Category: strings.TrimSpace(v.Get("category")),
		Location: strings.TrimSpace(v.Get("location")),
		JobType:  strings.TrimSpace(v.Get("job_type")),
		H1B:      boolParam(r, "h1b"),
		Sources:  csvParam(r, "sources"),
	}

	var err error
	if q.Limit, err = intParam(r, "limit", defaultJobsLimit); err != nil {
		return q, err
	}
	if q.Page, err = intParam(r, "page", 0); err != nil {
		return q, err
	}

	switch s := strings.ToLower(strings.TrimSpace(v.Get("sort"))); s {
	case "", domain.SortNewest:
		q.Sort = domain.SortNewest
	case domain.SortOldest:
		q.Sort = s
	default:
		return q, errBadSort
	}
	return q, nil
}
