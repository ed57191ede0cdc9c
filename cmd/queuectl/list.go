package main

import (
	"fmt"

	"github.com/dkowalski/queuectl/job"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var stateFlag string
	var limit int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := job.Unknown
			if stateFlag != "" {
				var err error
				status, err = job.ParseStatus(stateFlag)
				if err != nil {
					return fmt.Errorf("invalid --state %q: %w", stateFlag, err)
				}
			}

			ctx := cmd.Context()
			log := logger()
			svc, st, _, err := openAdmission(ctx, log)
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := svc.List(ctx, status, limit)
			if err != nil {
				return err
			}
			if verbose {
				renderJobsVerbose(cmd.OutOrStdout(), jobs)
			} else {
				renderJobsCompact(cmd.OutOrStdout(), jobs)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stateFlag, "state", "", "filter by state (pending, processing, completed, failed, dead)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of jobs to show (0 = unlimited)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show attempts, timestamps and error detail")
	return cmd
}
