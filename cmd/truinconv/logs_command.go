package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"truinconv/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		match  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent log lines (use --batch to narrow to one batch)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := logs.Options{Lines: lines, Match: match}
			path := cfg.LogPath()
			out := cmd.OutOrStdout()

			tail, offset, err := logs.Tail(path, opts)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(tail) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No log lines in %s\n", path)
				}
				return nil
			}
			err = logs.Follow(cmd.Context(), path, offset, logs.DefaultPollInterval, opts, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&match, "batch", "", "Only show lines containing this batch id (or any substring)")
	return cmd
}
