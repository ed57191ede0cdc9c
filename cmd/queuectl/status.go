package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-state job counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger()
			svc, st, cfg, err := openAdmission(ctx, log)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := svc.Stats(ctx)
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), stats)

			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "\nconfig: %s\n", flagConfigPath)
				fmt.Fprintf(cmd.OutOrStdout(), "  db_path:      %s\n", cfg.DBPath)
				fmt.Fprintf(cmd.OutOrStdout(), "  max_retries:  %d\n", cfg.MaxRetries)
				fmt.Fprintf(cmd.OutOrStdout(), "  backoff_base: %d\n", cfg.BackoffBase)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print the active configuration")
	return cmd
}
