package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"onlyremote-engine/internal/config"
	"onlyremote-engine/internal/events"
	"onlyremote-engine/internal/httpapi"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/poll"
	"onlyremote-engine/internal/scheduler"
	"onlyremote-engine/internal/store"
	"onlyremote-engine/internal/usage"
)

const (
	cacheSweepInterval = 5 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

func serveCommand() *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), host)
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "interface to listen on")
	return cmd
}

func runServe(ctx context.Context, host string) error {
	cfg, userCfgPath, warnings, err := loadConfig(dataDir, defaultCfgPath, os.Getenv)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	for _, w := range warnings {
		log.Warn("config warning", logger.String("warning", w))
	}

	// One engine per data dir; SQLite does not like two writers.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already running with data dir %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := filepath.Join(dataDir, "engine.db")
	db, err := store.OpenAndMigrate(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	keys := resolver()
	m := metrics.New()
	eng, err := newEngine(cfg, keys, m, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	hub := events.NewHub()
	warmer := poll.NewWarmer(eng, poll.Options{
		Queries: func() []string { return cfgVal.Load().(config.Config).Warm.Queries },
		Hub:     hub,
		Logger:  log.With(logger.String("component", "warmer")),
	})
	if cfg.Warm.Enabled {
		warmer.Start(ctx, time.Duration(cfg.Warm.IntervalSeconds)*time.Second)
	}
	go scheduler.Every(ctx, cacheSweepInterval, "cache_sweep", eng.sweep, log)

	mux := httpapi.NewMux(httpapi.Deps{
		Search:      eng,
		Profiles:    db,
		Gate:        usage.NewGate(db, usageLimits(cfg.Usage)),
		Writer:      newWriter(cfg.AI, keys, log),
		Warmer:      warmer,
		Hub:         hub,
		Metrics:     m,
		Logger:      log,
		Sources:     eng.sourceNames,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg: func() (config.Config, error) {
			c, err := readConfig(userCfgPath, os.Getenv)
			if err != nil {
				return config.Config{}, err
			}
			c.App.DataDir = dataDir
			c, _ = config.NormalizeAndValidate(c)
			return c, nil
		},
		OnConfig: func(c config.Config) {
			eng.apply(c)
			log.Info("config reloaded; cache, usage and port changes apply on restart")
		},
	})

	addr := net.JoinHostPort(host, fmt.Sprint(cfg.App.Port))
	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.Recover(log),
			httpapi.AccessLog(log),
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if token := os.Getenv("ENGINE_SHUTDOWN_TOKEN"); token != "" {
		mux.HandleFunc("/shutdown", shutdownHandler(token, stop))
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info("engine listening",
		logger.String("addr", "http://"+addr),
		logger.String("db", dbPath),
		logger.String("config", userCfgPath),
		logger.String("cache", cfg.Cache.Backend))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", logger.Error(err))
	}
	if err := db.Checkpoint(sctx); err != nil {
		log.Warn("wal checkpoint on shutdown", logger.Error(err))
	}
	return nil
}
