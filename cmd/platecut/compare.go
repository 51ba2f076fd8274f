package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/export"
)

func newCompareCmd(o *rootOptions) *cobra.Command {
	var in inputOptions
	var chart string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the items under several what-if scenarios",
		Long: `Compare runs the engine with the current settings and with variations:
the other goal, the genetic search toggled, grid grouping toggled, half the
kerf and no margin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := in.load(o)
			if err != nil {
				return err
			}
			settings, err := o.settings(cmd, data.settings)
			if err != nil {
				return err
			}

			results := engine.CompareScenarios(cmd.Context(), engine.BuildDefaultScenarios(settings), data.items, data.offcuts)
			printComparison(cmd.OutOrStdout(), results)

			if chart == "" {
				return nil
			}
			f, err := os.Create(chart)
			if err != nil {
				return fmt.Errorf("failed to create chart: %w", err)
			}
			defer f.Close()
			return export.ExportComparisonChart(f, results)
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&chart, "chart", "", "write an HTML bar chart of the scenarios to this file")
	return cmd
}
