package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const fetchPollInterval = 2 * time.Second

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var output string
	var interval time.Duration
	var attempts int

	cmd := &cobra.Command{
		Use:   "fetch <download-handle>",
		Short: "Download a rewritten document, waiting if it is still processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			return fetchResult(cmd, client, args[0], output, interval, attempts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file for the rewritten document")
	cmd.Flags().DurationVar(&interval, "interval", fetchPollInterval, "Poll interval while the job is processing")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "Give up after this many polls (0 = wait indefinitely)")
	return cmd
}

// fetchResult polls the download endpoint until the job reaches a terminal
// state, then writes the artifact or reports the failure.
func fetchResult(cmd *cobra.Command, client *apiClient, handle, output string, interval time.Duration, attempts int) error {
	out := cmd.OutOrStdout()
	if interval <= 0 {
		interval = 2 * time.Second
	}
	reported := false

	for polls := 0; ; polls++ {
		content, err := client.Download(cmd.Context(), handle)
		if err != nil {
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.IsNotReady() {
				if attempts > 0 && polls+1 >= attempts {
					return fmt.Errorf("job still processing after %d polls; retry later with `redraft fetch %s`", attempts, handle)
				}
				if !reported {
					fmt.Fprintln(out, "Job is still processing, waiting...")
					reported = true
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(interval):
				}
				continue
			}
			return fmt.Errorf("fetch result: %w", err)
		}

		if output == "" {
			output = handle + ".txt"
		}
		if err := os.WriteFile(output, content, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(out, "Saved rewritten document to %s (%d bytes)\n", output, len(content))
		return nil
	}
}
