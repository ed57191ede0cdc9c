package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dkowalski/queuectl/job"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// renderJobsCompact prints one line per job: id, state, command.
func renderJobsCompact(w io.Writer, jobs []*job.Job) {
	tw := newTabWriter(w)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tSTATE\tCOMMAND")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", j.ID, j.Status, j.Command)
	}
}

// renderJobsVerbose adds attempts, timestamps and error detail.
func renderJobsVerbose(w io.Writer, jobs []*job.Job) {
	tw := newTabWriter(w)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tSTATE\tATTEMPTS\tMAX_RETRIES\tCREATED_AT\tNEXT_RETRY_AT\tERROR\tCOMMAND")
	for _, j := range jobs {
		nextRetry := "-"
		if j.NextRetryAt != nil {
			nextRetry = j.NextRetryAt.Format("2006-01-02T15:04:05Z07:00")
		}
		errMsg := "-"
		if j.ErrorMessage != nil {
			errMsg = *j.ErrorMessage
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			j.ID, j.Status, j.Attempts, j.MaxRetries,
			j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), nextRetry, errMsg, j.Command)
	}
}

// renderStats prints a per-state count table, in a fixed, readable
// state order rather than map iteration order.
func renderStats(w io.Writer, stats map[job.Status]int64) {
	tw := newTabWriter(w)
	defer tw.Flush()
	fmt.Fprintln(tw, "STATE\tCOUNT")
	for _, s := range []job.Status{job.Pending, job.Processing, job.Completed, job.Failed, job.Dead} {
		fmt.Fprintf(tw, "%s\t%d\n", s, stats[s])
	}
}
