package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"truinconv/internal/config"
	"truinconv/internal/deps"
	"truinconv/internal/history"
	"truinconv/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories and history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
			lines = append(lines, renderStatusLine("Video engine", statusInfo, cfg.Video.Engine, colorize))
			lines = append(lines, renderStatusLine("Overwrite", statusInfo, yesNo(cfg.Batch.Overwrite), colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			for _, s := range statuses {
				lines = append(lines, dependencyLine(s, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			for _, r := range preflight.RunAll(cfg) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("History", colorize)...)
			lines = append(lines, historyStatusLine(cmd.Context(), ctx, cfg, colorize))

			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func dependencyLine(s deps.Status, colorize bool) string {
	switch {
	case s.Available && s.Detail != "":
		return renderStatusLine(s.Name, statusWarn, s.Detail, colorize)
	case s.Available:
		return renderStatusLine(s.Name, statusOK, s.Command, colorize)
	case s.Optional:
		return renderStatusLine(s.Name, statusWarn, s.Detail+" (optional: "+s.Description+")", colorize)
	default:
		return renderStatusLine(s.Name, statusError, s.Detail, colorize)
	}
}

func historyStatusLine(ctx context.Context, cmdCtx *commandContext, cfg *config.Config, colorize bool) string {
	if !cfg.History.Enabled {
		return renderStatusLine("Database", statusWarn, "Disabled", colorize)
	}
	store, err := cmdCtx.openHistory()
	if err != nil {
		return renderStatusLine("Database", statusError, err.Error(), colorize)
	}
	defer store.Close()
	summary, err := store.Summarize(ctx)
	if err != nil {
		return renderStatusLine("Database", statusError, err.Error(), colorize)
	}
	return renderStatusLine("Database", statusOK, fmt.Sprintf("%s (%d batches, %s)", store.Path(), summary.Batches, summaryCounts(summary)), colorize)
}

func summaryCounts(summary history.Summary) string {
	if len(summary.ByStatus) == 0 {
		return "no conversions"
	}
	keys := make([]string, 0, len(summary.ByStatus))
	for status := range summary.ByStatus {
		keys = append(keys, string(status))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", summary.ByStatus[history.Status(key)], key))
	}
	return strings.Join(parts, ", ")
}
