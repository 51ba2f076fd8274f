package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

type calculateOptions struct {
	in             inputOptions
	out            string
	save           string
	saveJob        string
	applyInventory bool
	verify         bool
	timeout        time.Duration
}

func newCalculateCmd(o *rootOptions) *cobra.Command {
	opts := &calculateOptions{}
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute cutting patterns for an item list",
		Example: `  platecut calculate --items parts.csv --kerf 3 --margin 10
  platecut calculate --template Basic --ga --out result.json
  platecut calculate --job kitchen.platecut.json --use-inventory --apply-inventory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, o, opts)
		},
	}
	opts.in.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "write the result as JSON to this file")
	f.StringVar(&opts.save, "save", "", "store the result under this id in the data directory")
	f.StringVar(&opts.saveJob, "save-job", "", "save items, offcuts, settings and result as a job file")
	f.BoolVar(&opts.applyInventory, "apply-inventory", false, "remove used offcuts from the inventory and add new leftovers")
	f.BoolVar(&opts.verify, "verify", false, "check the result for overlaps, bounds and quantities")
	f.DurationVar(&opts.timeout, "timeout", 0, "stop searching after this long and keep the best result so far")
	return cmd
}

func runCalculate(cmd *cobra.Command, o *rootOptions, opts *calculateOptions) error {
	in, err := opts.in.load(o)
	if err != nil {
		return err
	}
	settings, err := o.settings(cmd, in.settings)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	opt := engine.New(settings)
	var result model.CalculationResult
	if len(in.offcuts) > 0 {
		result, err = opt.CalculateWithOffcuts(ctx, in.items, in.offcuts)
	} else {
		result, err = opt.Calculate(ctx, in.items)
	}
	if err != nil {
		return err
	}
	klog.V(1).Infof("calculated %d patterns in %s", len(result.Patterns), time.Since(start))

	printResult(cmd.OutOrStdout(), in.name, result, settings)

	if opts.verify {
		if v := engine.VerifyResult(result, in.items, settings.Plate, settings.Cut); len(v) > 0 {
			for _, violation := range v {
				klog.Error(violation.String())
			}
			return fmt.Errorf("result has %d violations", len(v))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "\nVerified: no violations")
	}

	if opts.out != "" {
		if err := writeResult(opts.out, result); err != nil {
			return err
		}
	}
	if opts.save != "" {
		store, err := project.NewResultStore(o.resultDir())
		if err != nil {
			return err
		}
		if err := store.Put(opts.save, result); err != nil {
			return err
		}
		klog.Infof("saved result as %q", opts.save)
	}
	if opts.saveJob != "" {
		if err := saveJob(o, opts.saveJob, in, settings, result); err != nil {
			return err
		}
	}
	if opts.applyInventory {
		if err := applyInventory(o, result, settings); err != nil {
			return err
		}
	}
	return nil
}

func writeResult(path string, result model.CalculationResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func readResult(path string) (model.CalculationResult, error) {
	var result model.CalculationResult
	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read result: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to parse result: %w", err)
	}
	return result, nil
}

func saveJob(o *rootOptions, path string, in input, settings model.Settings, result model.CalculationResult) error {
	job := model.NewJob()
	job.Name = in.name
	job.Items = in.items
	job.Offcuts = in.offcuts
	job.Settings = settings
	job.Result = &result

	path = project.JobPath(path)
	if err := project.SaveJob(path, job); err != nil {
		return err
	}

	cfg, err := project.LoadAppConfig(o.configPath())
	if err != nil {
		return err
	}
	cfg.AddRecentJob(path, 10)
	return project.SaveAppConfig(o.configPath(), cfg)
}

// applyInventory books the offcuts a result used out of the inventory and
// registers the leftovers of its new-plate patterns.
func applyInventory(o *rootOptions, result model.CalculationResult, settings model.Settings) error {
	inv, err := project.LoadInventory(o.inventoryPath())
	if err != nil {
		return err
	}

	var leftovers []model.OffcutPlate
	for _, pg := range result.Patterns {
		if pg.IsOffcut {
			continue
		}
		for _, l := range model.DetectLeftovers(pg, settings.Plate.Width, settings.Plate.Height, settings.Cut.Margin, settings.Cut.Kerf) {
			leftovers = append(leftovers, l.ToOffcutPlate())
		}
	}
	inv.ApplyUsage(result.OffcutUsage, leftovers)
	klog.Infof("inventory: %d offcuts used, %d leftovers added", usedOffcuts(result.OffcutUsage), len(leftovers))
	return project.SaveInventory(o.inventoryPath(), inv)
}

func usedOffcuts(u *model.OffcutUsage) int {
	if u == nil {
		return 0
	}
	return u.PlatesUsed()
}
