package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redraft/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the rewrite queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.DaemonStatus(cmd.Context())
			if err != nil {
				return err
			}
			rows := buildQueueStatsRows(status.Workflow.QueueStats)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{{Title: "Status"}, {Title: "Count", Numeric: true}}, rows))
			return nil
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.QueueList(cmd.Context(), listStatuses)
			if err != nil {
				return err
			}
			if len(resp.Jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{Title: "Job ID"},
					{Title: "Filename"},
					{Title: "Status"},
					{Title: "Progress", Numeric: true},
					{Title: "Created"},
				},
				buildQueueListRows(resp.Jobs),
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove jobs from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedOnly && failedOnly {
				return fmt.Errorf("--completed and --failed are mutually exclusive")
			}
			scope := "all"
			if completedOnly {
				scope = "completed"
			}
			if failedOnly {
				scope = "failed"
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			removed, err := client.QueueClear(cmd.Context(), scope)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Remove only failed jobs")
	return cmd
}

func buildQueueListRows(jobs []api.JobStatus) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		progress := fmt.Sprintf("%.0f%%", job.Progress.Percent)
		rows = append(rows, []string{
			job.JobID,
			job.Filename,
			job.Status,
			progress,
			job.CreatedAt,
		})
	}
	return rows
}
