package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dkowalski/queuectl/admission"
	"github.com/dkowalski/queuectl/config"
	"github.com/dkowalski/queuectl/metrics"
	"github.com/dkowalski/queuectl/store"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagDBPath     string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "queuectl",
		Short:         "A durable, multi-process job queue",
		Long:          "queuectl submits shell commands as durable jobs, dispatches them to worker processes with lease-based recovery and exponential backoff retry, and tracks them through to completion or the dead letter state.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVarP(&flagDBPath, "db", "d", "", "database file path (overrides config)")

	root.AddCommand(newEnqueueCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newDLQCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newWorkerCmd())

	return root
}

// version is overridden at build time via -ldflags.
var version = "dev"

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// loadConfig reads the active config file, falling back to defaults
// and warning (not failing) on a parse error.
func loadConfig(log *slog.Logger) (*config.Config, error) {
	cfg, err := config.LoadFile(flagConfigPath)
	if err != nil {
		log.Warn("could not read config file, using defaults", "path", flagConfigPath, "err", err)
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	return cfg, nil
}

// openStore opens the SQLite store named by the active configuration.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return store.Open(ctx, cfg.DBPath)
}

// openAdmission wires a ready-to-use admission.Service against the
// active configuration's store. The caller is responsible for closing
// the returned *store.Store once done.
func openAdmission(ctx context.Context, log *slog.Logger) (*admission.Service, *store.Store, *config.Config, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	svc := admission.New(st, uint32(cfg.MaxRetries), log)
	svc.SetMetrics(metrics.NewCollector())
	return svc, st, cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
