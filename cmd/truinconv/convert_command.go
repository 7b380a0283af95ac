package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"truinconv/internal/batch"
	"truinconv/internal/config"
	"truinconv/internal/formats"
	"truinconv/internal/history"
	"truinconv/internal/logging"
	"truinconv/internal/router"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		categoryFlag string
		fromFlag     string
		toFlag       string
		outputFlag   string
		overwrite    bool
	)

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert files from one format to another",
		Long: "Convert every file matching --from into --to. Files with another extension are\n" +
			"skipped and listed in the result table. Outputs are named <stem>.<to>; existing\n" +
			"files get a \" (n)\" suffix unless --overwrite is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			category, err := resolveCategory(categoryFlag, fromFlag)
			if err != nil {
				return err
			}
			outputDir, err := resolveOutputDir(cfg, outputFlag)
			if err != nil {
				return err
			}
			job := batch.Job{
				Files:     args,
				Source:    fromFlag,
				Target:    toFlag,
				Category:  category,
				OutputDir: outputDir,
				Overwrite: cfg.Batch.Overwrite,
			}
			if cmd.Flags().Changed("overwrite") {
				job.Overwrite = overwrite
			}
			if err := batch.Validate(job); err != nil {
				return err
			}

			opts := []batch.Option{batch.WithLogger(logger)}
			if store := openRecorder(ctx, logger); store != nil {
				defer store.Close()
				opts = append(opts, batch.WithRecorder(store))
				defer pruneHistory(cmd.Context(), cfg, store, logger)
			}

			runner := batch.NewRunner(router.NewFromConfig(cfg, logger), opts...)
			out := cmd.OutOrStdout()
			reporter := newProgressReporter(out, len(args))
			outcome := <-runner.Start(cmd.Context(), job, reporter.handle)
			reporter.finish()
			if outcome.Err != nil {
				return outcome.Err
			}

			report := outcome.Report
			fmt.Fprintln(out, renderResults(report))
			failures := report.Failures()
			fmt.Fprintf(out, "Converted %d of %d files (%d failed, %d skipped). Batch %s\n",
				report.Count(history.StatusSucceeded), len(report.Results), len(failures),
				report.Count(history.StatusSkipped), report.BatchID)

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d files failed to convert", len(failures), len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Conversion category: images, audio, video, media, documents (default: inferred from --from)")
	cmd.Flags().StringVarP(&fromFlag, "from", "f", "", "Source format (e.g. PNG)")
	cmd.Flags().StringVarP(&toFlag, "to", "t", "", "Target format (e.g. JPG)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (default: paths.output_dir)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing output files instead of adding a numeric suffix")
	return cmd
}

func resolveCategory(categoryFlag, source string) (formats.Category, error) {
	if strings.TrimSpace(categoryFlag) != "" {
		return formats.ParseCategory(categoryFlag)
	}
	if category, ok := formats.CategoryOf(source); ok {
		return category, nil
	}
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	return "", fmt.Errorf("unknown source format %s (use --category)", formats.Normalize(source))
}

func resolveOutputDir(cfg *config.Config, flag string) (string, error) {
	dir := strings.TrimSpace(flag)
	if dir == "" {
		dir = cfg.Paths.OutputDir
	}
	if dir == "" {
		return "", nil
	}
	return config.ExpandPath(dir)
}

// openRecorder returns nil when history is disabled or unavailable; a
// conversion never fails because history could not be written.
func openRecorder(ctx *commandContext, logger *slog.Logger) *history.Store {
	store, err := ctx.openHistory()
	if err != nil {
		if !errors.Is(err, errHistoryDisabled) {
			logger.Warn("history unavailable", logging.Error(err))
		}
		return nil
	}
	return store
}

func pruneHistory(ctx context.Context, cfg *config.Config, store *history.Store, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	if _, err := store.Prune(ctx, cfg.HistoryRetention()); err != nil {
		logger.Warn("history prune failed", logging.Error(err))
	}
}

func renderResults(report *batch.Report) string {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		detail := res.Output
		if res.Err != nil {
			detail = res.Err.Error()
		}
		duration := "-"
		if res.Duration > 0 {
			duration = formatDuration(res.Duration)
		}
		rows = append(rows, []string{filepath.Base(res.Input), string(res.Status), detail, duration})
	}
	return renderTable([]string{"File", "Status", "Output / Error", "Time"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}
