package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"truinconv/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and maintain the conversion history",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				batches, err := store.ListBatches(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(batches) == 0 {
					fmt.Fprintln(out, "No batches recorded")
					return nil
				}
				rows := make([][]string, 0, len(batches))
				for _, b := range batches {
					rows = append(rows, []string{
						strconv.FormatInt(b.ID, 10),
						shortUUID(b.UUID),
						formatTimestamp(b.StartedAt),
						b.Category,
						b.SourceFormat + " -> " + b.TargetFormat,
						fmt.Sprintf("%d/%d", b.Succeeded, b.Total),
						strconv.Itoa(b.Failed),
						batchState(b),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Batch", "Started", "Category", "Formats", "OK", "Failed", "State"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum batches to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch>",
		Short: "Show per-file results of a batch (id, uuid, or uuid prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				b, err := store.FindBatch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				convs, err := store.Conversions(cmd.Context(), b.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Batch %s (%s %s -> %s)\n", b.UUID, b.Category, b.SourceFormat, b.TargetFormat)
				fmt.Fprintf(out, "Output:   %s\n", b.OutputDir)
				fmt.Fprintf(out, "Started:  %s\n", formatTimestamp(b.StartedAt))
				fmt.Fprintf(out, "State:    %s\n", batchState(b))
				rows := make([][]string, 0, len(convs))
				for _, c := range convs {
					detail := c.OutputPath
					if c.ErrorMessage != "" {
						detail = c.ErrorMessage
					}
					rows = append(rows, []string{filepath.Base(c.InputPath), string(c.Status), detail, formatDuration(c.Duration)})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Status", "Output / Error", "Time"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete batches older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			retention := cfg.HistoryRetention()
			if cmd.Flags().Changed("days") {
				retention = time.Duration(days) * 24 * time.Hour
			}
			if retention <= 0 {
				return fmt.Errorf("retention must be positive (got %d days)", int(retention.Hours()/24))
			}
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), retention)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d batches older than %d days\n", removed, int(retention.Hours()/24))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Override history.retention_days")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d batches\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

func batchState(b *history.Batch) string {
	if !b.Finished() {
		return "incomplete"
	}
	return "finished in " + formatDuration(b.Elapsed())
}

func shortUUID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
