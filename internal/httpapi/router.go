package httpapi

import (
	"net/http"

	"onlyremote-engine/internal/logger"
)

// NewMux registers every route. main() wraps it with Handler's middleware.
func NewMux(d Deps) *http.ServeMux {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	mux := http.NewServeMux()

	// Jobs
	jh := JobsHandler{Search: d.Search, Log: d.Logger}
	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))

	// Usage, saved jobs and the gated AI features
	uh := UsageHandler{Profiles: d.Profiles, Gate: d.Gate, Log: d.Logger}
	mux.HandleFunc("/api/usage", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: uh.Get,
	}))
	sj := SavedJobsHandler{Profiles: d.Profiles, Log: d.Logger}
	mux.HandleFunc("/api/saved-jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  sj.List,
		http.MethodPost: sj.Toggle,
	}))
	ai := AIHandler{Usage: uh, Writer: d.Writer, Log: d.Logger}
	mux.HandleFunc("/api/resume/analyze", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ai.AnalyzeResume,
	}))
	mux.HandleFunc("/api/cover-letter", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ai.CoverLetter,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		OnConfig:    d.OnConfig,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Cache warmer
	wh := WarmHandler{Warmer: d.Warmer, Log: d.Logger}
	mux.HandleFunc("/warm/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: wh.Status,
	}))
	mux.HandleFunc("/warm/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	dh := DBHandler{Profiles: d.Profiles, Log: d.Logger}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	hh := HealthHandler{Sources: d.Sources}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	return mux
}

// Handler is the full middleware chain around NewMux.
func Handler(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return Chain(NewMux(d), RequestID, Recover(d.Logger), AccessLog(d.Logger), Cors)
}
