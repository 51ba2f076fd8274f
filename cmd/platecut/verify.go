package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/model"
)

func newVerifyCmd(o *rootOptions) *cobra.Command {
	var in inputOptions
	cmd := &cobra.Command{
		Use:   "verify RESULT.json",
		Short: "Check a saved result against its items",
		Long:  "Verify reports placements that overlap or break the kerf, leave the usable area, or cut an item the wrong number of times.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := in.load(o)
			if err != nil {
				return err
			}
			settings, err := o.settings(cmd, data.settings)
			if err != nil {
				return err
			}
			result, err := readResult(args[0])
			if err != nil {
				return err
			}

			violations := engine.VerifyResult(result, data.items, settings.Plate, settings.Cut)
			for _, v := range violations {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d violations", len(violations))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK: no violations")
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newEstimateCmd(o *rootOptions) *cobra.Command {
	var in inputOptions
	var waste float64
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate plates and cost from item area alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := in.load(o)
			if err != nil {
				return err
			}
			settings, err := o.settings(cmd, data.settings)
			if err != nil {
				return err
			}
			if waste < 0 || waste >= 100 {
				return fmt.Errorf("waste must be in [0, 100), got %g", waste)
			}
			printEstimate(cmd.OutOrStdout(), model.EstimatePlates(data.items, settings.Plate, settings.Cut, waste))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().Float64Var(&waste, "waste", 15, "waste allowance in percent")
	return cmd
}
