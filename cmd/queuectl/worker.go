package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkowalski/queuectl"
	"github.com/dkowalski/queuectl/metrics"
	"github.com/dkowalski/queuectl/pool"
	"github.com/dkowalski/queuectl/reaper"
	"github.com/dkowalski/queuectl/runner"
	"github.com/dkowalski/queuectl/worker"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage worker processes",
	}
	cmd.AddCommand(newWorkerStartCmd())
	cmd.AddCommand(newWorkerRunCmd())
	return cmd
}

// newWorkerStartCmd spawns count separate OS processes, each running
// this same binary's hidden `worker run` subcommand, and waits for
// them. Ctrl+C (or SIGTERM) is forwarded to every child; each finishes
// its current job before exiting.
func newWorkerStartCmd() *cobra.Command {
	var count int
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start one or more worker processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate own executable: %w", err)
			}

			factory := func(id string) *exec.Cmd {
				c := exec.Command(exe, "worker", "run",
					"--id", id,
					"--config", flagConfigPath,
					"--db", cfg.DBPath,
				)
				c.Stdout = os.Stdout
				c.Stderr = os.Stderr
				return c
			}

			p, err := pool.Start(count, factory, grace, log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "started %d worker(s); press Ctrl+C to stop\n", count)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			done := make(chan error, 1)
			go func() { done <- p.Wait() }()

			select {
			case <-sigCh:
				fmt.Fprintln(cmd.OutOrStdout(), "shutting down workers, waiting for current jobs to finish...")
				ctx, cancel := context.WithTimeout(context.Background(), grace+time.Second)
				defer cancel()
				return p.Shutdown(ctx)
			case err := <-done:
				return err
			}
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of worker processes to start")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "time to wait for a worker to finish its current job before force-killing it")
	return cmd
}

// newWorkerRunCmd is the hidden subcommand the parent `worker start`
// process spawns once per worker slot. It is not intended to be
// invoked directly, though nothing prevents it.
func newWorkerRunCmd() *cobra.Command {
	var id string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:    "run",
		Short:  "Run a single worker loop in the foreground (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			if id == "" {
				return fmt.Errorf("--id is required")
			}

			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			collector := metrics.NewCollector()

			w := worker.New(st, runner.NewShellRunner(), worker.Config{
				ID:           id,
				PollInterval: queuectl.PollInterval,
				Backoff:      queuectl.RetryPolicy{BackoffBase: cfg.BackoffBase},
				Metrics:      collector,
			}, log)

			// Every worker process sweeps its own stale leases. ReapLeases'
			// atomic WHERE clause makes running this redundantly across
			// processes harmless: each abandoned lease is reclaimed exactly
			// once regardless of how many processes race to sweep it.
			r := reaper.New(st, queuectl.PollInterval*5, queuectl.LeaseTTL, log)

			var metricsSrv *http.Server
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", collector.Handler())
				metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error("metrics server stopped", "worker", id, "err", err)
					}
				}()
			}

			if err := w.Start(ctx); err != nil {
				return err
			}
			if err := r.Start(ctx); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			cancel()

			if metricsSrv != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}

			_ = r.Stop(5 * time.Second)
			return w.Stop(5 * time.Second)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "worker identifier used as the lease owner")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")
	return cmd
}
