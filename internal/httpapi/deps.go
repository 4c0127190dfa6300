package httpapi

import (
	"context"
	"sync/atomic"

	"onlyremote-engine/internal/config"
	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/events"
	"onlyremote-engine/internal/generate"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/usage"
)

type Searcher interface {
	FetchAggregated(ctx context.Context, q domain.Query) (domain.Result, error)
}

// Profiles is the slice of *store.DB the user-facing routes need.
type Profiles interface {
	EnsureProfile(ctx context.Context, id string) error
	ToggleSavedJob(ctx context.Context, userID string, j domain.Job) (bool, error)
	ListSavedJobs(ctx context.Context, userID string) ([]domain.Job, error)
	Checkpoint(ctx context.Context) error
}

type Gate interface {
	Check(ctx context.Context, userID string, kind usage.Kind) (usage.Status, error)
	Increment(ctx context.Context, userID string, kind usage.Kind) error
}

type Writer interface {
	AnalyzeResume(ctx context.Context, text string) (generate.Analysis, error)
	CoverLetter(ctx context.Context, r generate.LetterRequest) (string, error)
}

type Warmer interface {
	Status() types.WarmStatus
	RunOnce(ctx context.Context) (int, error)
}

type Deps struct {
	Search   Searcher
	Profiles Profiles
	Gate     Gate
	Writer   Writer
	Warmer   Warmer
	Hub      *events.Hub
	Metrics  *metrics.Metrics
	Logger   logger.Logger

	// Sources lists the registered adapter names for /health.
	Sources func() []string

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	// OnConfig runs after a config change has been saved and reloaded.
	OnConfig func(config.Config)
}
