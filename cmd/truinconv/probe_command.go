package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"truinconv/internal/formats"
	"truinconv/internal/media/ffprobe"
	"truinconv/internal/transcode"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var toFlag string

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show source streams and the settings a conversion would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			input := args[0]
			source := formats.Extension(input)
			category, ok := formats.CategoryOf(source)
			if !ok || (category != formats.Audio && category != formats.Video) {
				return fmt.Errorf("probe only supports audio and video sources, got %q", source)
			}

			enc := transcode.NewEncoder(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary, transcode.WithLogger(logger))
			result, err := enc.Probe(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printStreams(out, result)

			targets := formats.Targets(category, source)
			if strings.TrimSpace(toFlag) != "" {
				targets = []string{formats.Normalize(toFlag)}
			}
			fmt.Fprintln(out)
			return printDerivedSettings(out, category, result, targets)
		},
	}

	cmd.Flags().StringVarP(&toFlag, "to", "t", "", "Only show settings for this target format")
	return cmd
}

func printStreams(out io.Writer, result ffprobe.Result) {
	fmt.Fprintf(out, "Container: %s, duration %.1fs, %s\n",
		result.Format.FormatName, result.DurationSeconds(), formatBitRate(result.BitRate()))
	rows := make([][]string, 0, len(result.Streams))
	for _, s := range result.Streams {
		detail := ""
		switch s.CodecType {
		case "audio":
			detail = fmt.Sprintf("%d Hz, %d ch", s.SampleRateValue(), s.Channels)
		case "video":
			detail = fmt.Sprintf("%dx%d @ %.3g fps", s.Width, s.Height, s.FrameRateValue())
		}
		rows = append(rows, []string{strconv.Itoa(s.Index), s.CodecType, s.CodecName, detail, formatBitRate(s.BitRateValue())})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Type", "Codec", "Detail", "Bitrate"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
}

func printDerivedSettings(out io.Writer, category formats.Category, result ffprobe.Result, targets []string) error {
	rows := make([][]string, 0, len(targets))
	for _, target := range targets {
		var settings transcode.Settings
		var err error
		if category == formats.Audio {
			settings, err = transcode.AudioSettingsFor(result, target)
		} else {
			settings, err = transcode.VideoSettingsFor(result, target)
		}
		if err != nil {
			return err
		}
		rows = append(rows, []string{target, strings.Join(transcode.Args(settings, "<in>", "<out>"), " ")})
	}
	fmt.Fprintln(out, renderTable([]string{"Target", "ffmpeg arguments"}, rows, nil))
	return nil
}
