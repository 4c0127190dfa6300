// Package generate wraps the text-generation backend used for resume
// analysis and cover letters.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"onlyremote-engine/internal/logger"
)

var (
	ErrNoContent       = errors.New("model returned no content")
	ErrAllModelsFailed = errors.New("all models failed")
	ErrNotConfigured   = errors.New("text generation is not configured")
)

type Prompt struct {
	Model     string
	System    string
	User      string
	JSON      bool
	MaxTokens int
}

// Generator turns one prompt into text using exactly the model named.
type Generator interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Service runs the product prompts against a Generator, walking a model
// list until one produces usable output.
type Service struct {
	gen          Generator
	resumeModels []string
	letterModels []string
	log          logger.Logger
}

func NewService(gen Generator, resumeModels, letterModels []string, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{gen: gen, resumeModels: resumeModels, letterModels: letterModels, log: log}
}

// Ready reports whether a backend is wired.
func (s *Service) Ready() bool { return s != nil && s.gen != nil }

// firstSuccess calls try for each model in order and stops at the first
// nil error.
func (s *Service) firstSuccess(ctx context.Context, task string, models []string, try func(model string) error) error {
	if len(models) == 0 {
		return fmt.Errorf("%s: %w: no models configured", task, ErrAllModelsFailed)
	}
	var last error
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := try(m)
		if err == nil {
			s.log.Info("generation succeeded", logger.String("task", task), logger.String("model", m))
			return nil
		}
		s.log.Warn("generation failed, trying next model",
			logger.String("task", task), logger.String("model", m), logger.Error(err))
		last = err
	}
	return fmt.Errorf("%s: %w after %d models: %v", task, ErrAllModelsFailed, len(models), last)
}

func (s *Service) complete(ctx context.Context, p Prompt) (string, error) {
	out, err := s.gen.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s: %w", p.Model, ErrNoContent)
	}
	return out, nil
}
