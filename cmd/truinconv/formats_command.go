package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"truinconv/internal/formats"
)

func newFormatsCommand() *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:         "formats",
		Short:       "List permitted source and target formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := formats.Categories()
			if strings.TrimSpace(categoryFlag) != "" {
				category, err := formats.ParseCategory(categoryFlag)
				if err != nil {
					return err
				}
				categories = []formats.Category{category}
			}

			out := cmd.OutOrStdout()
			for i, category := range categories {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, category.DisplayName())
				rows := make([][]string, 0)
				for _, source := range formats.Sources(category) {
					rows = append(rows, []string{source, strings.Join(formats.Targets(category, source), ", ")})
				}
				fmt.Fprintln(out, renderTable([]string{"From", "To"}, rows, nil))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Show a single category")
	return cmd
}

func newSwapCommand() *cobra.Command {
	var categoryFlag, fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:         "swap",
		Short:       "Swap source and target formats if the reverse conversion is permitted",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := resolveCategory(categoryFlag, fromFlag)
			if err != nil {
				return err
			}
			if category == "" {
				return fmt.Errorf("missing format selection")
			}
			source, target, err := formats.Swap(category, fromFlag, toFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "--from %s --to %s\n", source, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Conversion category (default: inferred from --from)")
	cmd.Flags().StringVarP(&fromFlag, "from", "f", "", "Current source format")
	cmd.Flags().StringVarP(&toFlag, "to", "t", "", "Current target format")
	return cmd
}
