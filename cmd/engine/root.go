package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"onlyremote-engine/internal/config"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/secrets"
)

var (
	// dataDir holds config.yml, the SQLite file and the instance lock.
	dataDir string
	// defaultCfgPath seeds <dataDir>/config.yml on first run.
	defaultCfgPath string
	noKeyring      bool

	rootCmd = &cobra.Command{
		Use:           "engine",
		Short:         "Remote job aggregation engine",
		Long:          `Aggregates remote job postings from public feeds and serves them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func execute() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	def := os.Getenv("ENGINE_DATA_DIR")
	if def == "" {
		def = "data"
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", def, "directory for config.yml, engine.db and engine.lock")
	rootCmd.PersistentFlags().StringVar(&defaultCfgPath, "default-config", filepath.Join("config", "config.yml"), "config copied into the data dir on first run")
	rootCmd.PersistentFlags().BoolVar(&noKeyring, "no-keyring", false, "resolve API keys from the environment only")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(searchCommand())
	rootCmd.AddCommand(secretCommand())
	rootCmd.AddCommand(userCommand())
}

// loadConfig bootstraps and reads <dataDir>/config.yml, applies the
// environment overlay and validates the result.
func loadConfig(dir, defaultPath string, getenv func(string) string) (config.Config, string, []string, error) {
	userPath, err := config.EnsureUserConfig(dir, defaultPath)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := readConfig(userPath, getenv)
	if err != nil {
		return config.Config{}, "", nil, err
	}
	cfg.App.DataDir = dir

	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return config.Config{}, "", nil, errors.New("invalid config " + userPath + ":\n- " + strings.Join(vr.Errors, "\n- "))
	}
	return cfg, userPath, vr.Warnings, nil
}

func readConfig(path string, getenv func(string) string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	config.OverlayEnv(&cfg, getenv)
	return cfg, nil
}

func newLogger(cfg config.Config) (logger.Logger, error) {
	return logger.New(logger.Config{Level: cfg.App.LogLevel})
}

func resolver() secrets.Resolver {
	return secrets.NewResolver(!noKeyring)
}
