package main

import (
	"fmt"

	"github.com/dkowalski/queuectl/job"
	"github.com/spf13/cobra"
)

func newDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and manage the dead letter queue",
	}
	cmd.AddCommand(newDLQListCmd())
	cmd.AddCommand(newDLQRetryCmd())
	cmd.AddCommand(newDLQClearCmd())
	return cmd
}

func newDLQListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs in the dead letter state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, st, _, err := openAdmission(ctx, logger())
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := svc.List(ctx, job.Dead, 0)
			if err != nil {
				return err
			}
			renderJobsVerbose(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
	return cmd
}

func newDLQRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Requeue a dead job back to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, st, _, err := openAdmission(ctx, logger())
			if err != nil {
				return err
			}
			defer st.Close()

			j, err := svc.RequeueFromDead(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requeued job %s\n", j.ID)
			return nil
		},
	}
	return cmd
}

func newDLQClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every dead job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, st, _, err := openAdmission(ctx, logger())
			if err != nil {
				return err
			}
			defer st.Close()

			dead, err := svc.List(ctx, job.Dead, 0)
			if err != nil {
				return err
			}
			deleted := 0
			for _, j := range dead {
				ok, err := svc.Delete(ctx, j.ID)
				if err != nil {
					return err
				}
				if ok {
					deleted++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d dead job(s)\n", deleted)
			return nil
		},
	}
	return cmd
}
