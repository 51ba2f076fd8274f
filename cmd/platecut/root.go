package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/importer"
	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	dataDir string

	plateWidth  float64
	plateHeight float64
	price       string
	preset      string
	kerf        float64
	margin      float64
	goal        string
	offcutMode  string
	useGA       bool
	useGrid     bool
	seed        int64
}

func (o *rootOptions) configPath() string    { return filepath.Join(o.dataDir, "config.json") }
func (o *rootOptions) templatePath() string  { return filepath.Join(o.dataDir, "templates.json") }
func (o *rootOptions) inventoryPath() string { return filepath.Join(o.dataDir, "inventory.json") }
func (o *rootOptions) resultDir() string     { return filepath.Join(o.dataDir, "results") }

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "platecut",
		Short:         "Plate cutting optimizer",
		Long:          "PlateCut computes cutting patterns for rectangular items on stock plates and offcuts.",
		SilenceUsage:  true,
	}

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.dataDir, "data-dir", project.DefaultConfigDir(), "directory holding config, templates, inventory and saved results")
	pf.Float64Var(&o.plateWidth, "plate-width", 0, "plate width in mm")
	pf.Float64Var(&o.plateHeight, "plate-height", 0, "plate height in mm")
	pf.StringVar(&o.price, "price", "", "unit price of one plate")
	pf.StringVar(&o.preset, "plate", "", "plate preset name from the inventory")
	pf.Float64Var(&o.kerf, "kerf", 0, "material lost per cut in mm")
	pf.Float64Var(&o.margin, "margin", 0, "border kept clear on every plate edge in mm")
	pf.StringVar(&o.goal, "goal", "", "optimization goal: yield or remaining-space")
	pf.StringVar(&o.offcutMode, "offcut-mode", "", "offcut handling: consumption or optimization")
	pf.BoolVar(&o.useGA, "ga", false, "use the genetic search")
	pf.BoolVar(&o.useGrid, "grid", false, "group identical items into grids")
	pf.Int64Var(&o.seed, "seed", 0, "random seed")

	cmd.AddCommand(
		newCalculateCmd(o),
		newCompareCmd(o),
		newVerifyCmd(o),
		newEstimateCmd(o),
		newExportCmd(o),
		newServeCmd(o),
		newPresetsCmd(o),
	)
	return cmd
}

// settings resolves the effective settings: base (saved config or job),
// then any flag given on the command line.
func (o *rootOptions) settings(cmd *cobra.Command, base *model.Settings) (model.Settings, error) {
	s := model.DefaultSettings()
	if base != nil {
		s = *base
	} else {
		cfg, err := project.LoadAppConfig(o.configPath())
		if err != nil {
			return s, err
		}
		cfg.ApplyToSettings(&s)
	}

	flags := cmd.Flags()
	if o.preset != "" {
		inv, err := project.LoadInventory(o.inventoryPath())
		if err != nil {
			return s, err
		}
		p := inv.FindPlateByName(o.preset)
		if p == nil {
			return s, fmt.Errorf("unknown plate preset %q (have %s)", o.preset, strings.Join(inv.PlateNames(), ", "))
		}
		s.Plate = p.ToPlateConfig()
	}
	if flags.Changed("plate-width") {
		s.Plate.Width = o.plateWidth
	}
	if flags.Changed("plate-height") {
		s.Plate.Height = o.plateHeight
	}
	if flags.Changed("price") {
		price, err := decimal.NewFromString(o.price)
		if err != nil {
			return s, fmt.Errorf("invalid price %q: %w", o.price, err)
		}
		s.Plate.UnitPrice = price
	}
	if flags.Changed("kerf") {
		s.Cut.Kerf = o.kerf
	}
	if flags.Changed("margin") {
		s.Cut.Margin = o.margin
	}
	if flags.Changed("goal") {
		g := model.Goal(o.goal)
		if !g.Valid() {
			return s, fmt.Errorf("invalid goal %q", o.goal)
		}
		s.Goal = g
	}
	if flags.Changed("offcut-mode") {
		switch m := model.OffcutMode(o.offcutMode); m {
		case model.OffcutConsumption, model.OffcutOptimization:
			s.OffcutMode = m
		default:
			return s, fmt.Errorf("invalid offcut mode %q", o.offcutMode)
		}
	}
	if flags.Changed("ga") {
		s.UseGA = o.useGA
	}
	if flags.Changed("grid") {
		s.UseGridGrouping = o.useGrid
	}
	if flags.Changed("seed") {
		s.Seed = o.seed
	}

	if s.Plate.Width <= 0 || s.Plate.Height <= 0 {
		return s, errors.New("plate width and height must be positive")
	}
	if s.Cut.Kerf < 0 || s.Cut.Margin < 0 {
		return s, errors.New("kerf and margin must not be negative")
	}
	return s, nil
}

// inputOptions select where items and offcuts come from.
type inputOptions struct {
	items        string
	offcuts      string
	job          string
	template     string
	useInventory bool
}

func (in *inputOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&in.items, "items", "i", "", "item list (.csv, .xlsx or .dxf)")
	f.StringVar(&in.offcuts, "offcuts", "", "offcut list (.csv or .xlsx)")
	f.StringVar(&in.job, "job", "", "saved job file")
	f.StringVar(&in.template, "template", "", "job template name")
	f.BoolVar(&in.useInventory, "use-inventory", false, "also use the offcuts on hand in the inventory")
}

// input is what a command works on.
type input struct {
	name     string
	items    []model.Item
	offcuts  []model.OffcutPlate
	settings *model.Settings // from a job or template, nil otherwise
}

func (in *inputOptions) load(o *rootOptions) (input, error) {
	var res input
	sources := 0
	for _, s := range []string{in.items, in.job, in.template} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return res, errors.New("exactly one of --items, --job or --template is required")
	}

	switch {
	case in.job != "":
		job, err := project.LoadJob(in.job)
		if err != nil {
			return res, err
		}
		res.name, res.items, res.offcuts, res.settings = job.Name, job.Items, job.Offcuts, &job.Settings
	case in.template != "":
		store, err := project.LoadTemplates(o.templatePath())
		if err != nil {
			return res, err
		}
		t := store.FindByName(in.template)
		if t == nil {
			return res, fmt.Errorf("unknown template %q (have %s)", in.template, strings.Join(store.Names(), ", "))
		}
		job := t.ToJob(t.Name)
		res.name, res.items, res.offcuts, res.settings = job.Name, job.Items, job.Offcuts, &job.Settings
	default:
		imported, err := importFile(in.items)
		if err != nil {
			return res, err
		}
		res.name = strings.TrimSuffix(filepath.Base(in.items), filepath.Ext(in.items))
		res.items = imported.Items
	}

	if in.offcuts != "" {
		imported, err := importFile(in.offcuts)
		if err != nil {
			return res, err
		}
		res.offcuts = append(res.offcuts, imported.Offcuts()...)
	}
	if in.useInventory {
		inv, err := project.LoadInventory(o.inventoryPath())
		if err != nil {
			return res, err
		}
		res.offcuts = append(res.offcuts, inv.AvailableOffcuts()...)
	}
	return res, nil
}

// importFile reads an item list. Rows that failed are logged; the import
// only fails when nothing usable was read.
func importFile(path string) (importer.ImportResult, error) {
	result := importer.ImportFile(path)
	for _, w := range result.Warnings {
		klog.Warningf("%s: %s", path, w)
	}
	if len(result.Items) == 0 {
		if len(result.Errors) == 0 {
			return result, fmt.Errorf("no items found in %s", path)
		}
		errs := make([]error, len(result.Errors))
		for i, e := range result.Errors {
			errs[i] = errors.New(e)
		}
		return result, fmt.Errorf("failed to import %s: %w", path, errors.Join(errs...))
	}
	for _, e := range result.Errors {
		klog.Errorf("%s: %s", path, e)
	}
	return result, nil
}
