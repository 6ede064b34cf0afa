package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var output string

	cmd := &cobra.Command{
		Use:   "submit <document>",
		Short: "Upload a document for rewriting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			submitted, err := client.Submit(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("submit document: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job accepted\n")
			fmt.Fprintf(out, "  Job ID:          %s\n", submitted.JobID)
			fmt.Fprintf(out, "  Download handle: %s\n", submitted.DownloadHandle)

			if !wait {
				fmt.Fprintf(out, "Run `redraft fetch %s` to download the result.\n", submitted.DownloadHandle)
				return nil
			}
			return fetchResult(cmd, client, submitted.DownloadHandle, output, fetchPollInterval, 0)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the rewrite to finish and download the result")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file for the rewritten document (with --wait)")
	return cmd
}
