package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"redraft/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and workflow status, or a single job with --job",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if jobID != "" {
				job, err := client.Job(cmd.Context(), jobID)
				if err != nil {
					return err
				}
				renderJobStatus(cmd, job)
				return nil
			}

			status, err := client.DaemonStatus(cmd.Context())
			if err != nil {
				return err
			}
			renderDaemonStatus(cmd, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Show a single job by its job id")
	return cmd
}

func renderJobStatus(cmd *cobra.Command, job api.JobStatus) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusInfo
	switch job.State {
	case "completed":
		kind = statusOK
	case "failed":
		kind = statusError
	}

	fmt.Fprintln(out, renderStatusLine("State", kind, job.State, colorize))
	fmt.Fprintln(out, renderStatusLine("Filename", statusInfo, job.Filename, colorize))
	fmt.Fprintln(out, renderStatusLine("Handle", statusInfo, job.DownloadHandle, colorize))
	if job.Progress.Stage != "" {
		progress := fmt.Sprintf("%s %.0f%%", job.Progress.Stage, job.Progress.Percent)
		if job.Progress.Message != "" {
			progress += " - " + job.Progress.Message
		}
		fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, progress, colorize))
	}
	if job.FailureCode != "" {
		fmt.Fprintln(out, renderStatusLine("Failure", statusError,
			fmt.Sprintf("%s: %s", job.FailureCode, job.ErrorMessage), colorize))
	}
}

func renderDaemonStatus(cmd *cobra.Command, status api.DaemonStatus) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	runningKind := statusError
	runningText := "stopped"
	if status.Running {
		runningKind = statusOK
		runningText = fmt.Sprintf("pid %d", status.PID)
	}
	fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, runningText, colorize))
	fmt.Fprintln(out, renderStatusLine("Queue DB", statusInfo, status.QueueDBPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Workers", statusInfo,
		fmt.Sprintf("%d", status.Workflow.Workers), colorize))
	if status.Workflow.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, status.Workflow.LastError, colorize))
	}

	for _, health := range status.Workflow.StageHealth {
		kind := statusOK
		message := "ready"
		if !health.Ready {
			kind = statusError
			message = health.Detail
		}
		fmt.Fprintln(out, renderStatusLine("Stage "+health.Name, kind, message, colorize))
	}

	if rows := buildQueueStatsRows(status.Workflow.QueueStats); len(rows) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]tableColumn{{Title: "Status"}, {Title: "Count", Numeric: true}}, rows))
	}
}

func buildQueueStatsRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%d", stats[name])})
	}
	return rows
}
