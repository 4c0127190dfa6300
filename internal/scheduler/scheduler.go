package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"onlyremote-engine/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task now and then on each tick until ctx ends. A tick that
// arrives while the previous run is still going is skipped.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	var busy atomic.Bool
	run := func() {
		if !busy.CompareAndSwap(false, true) {
			log.Debug("previous run still in progress, skipping tick", logger.String("task", name))
			return
		}
		defer busy.Store(false)
		if err := task(ctx); err != nil {
			log.Error("scheduled task failed", logger.String("task", name), logger.Error(err))
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	// run immediately
	go run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go run()
		}
	}
}
