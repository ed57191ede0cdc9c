package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type enqueueSpec struct {
	Command    string `json:"command"`
	ID         string `json:"id,omitempty"`
	MaxRetries uint32 `json:"max_retries,omitempty"`
}

// parseEnqueueArg accepts either a bare shell command or a JSON object
// of the form {"command": "...", "id": "...", "max_retries": N}.
func parseEnqueueArg(arg string) (enqueueSpec, error) {
	var spec enqueueSpec
	if len(arg) > 0 && arg[0] == '{' {
		if err := json.Unmarshal([]byte(arg), &spec); err != nil {
			return enqueueSpec{}, fmt.Errorf("invalid job spec: %w", err)
		}
		if spec.Command == "" {
			return enqueueSpec{}, fmt.Errorf("invalid job spec: missing \"command\"")
		}
		return spec, nil
	}
	return enqueueSpec{Command: arg}, nil
}

func newEnqueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enqueue <command-or-json>",
		Short: "Submit a new job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseEnqueueArg(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logger()
			svc, st, _, err := openAdmission(ctx, log)
			if err != nil {
				return err
			}
			defer st.Close()

			j, err := svc.SubmitWithID(ctx, spec.ID, spec.Command, spec.MaxRetries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted job %s\n", j.ID)
			return nil
		},
	}
	return cmd
}
