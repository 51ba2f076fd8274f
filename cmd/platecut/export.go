package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/export"
	"github.com/piwi3910/PlateCut/internal/gcode"
	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

var exportFormats = []string{"pdf", "labels", "xlsx", "dxf", "png", "overview", "chart", "gcode"}

type exportOptions struct {
	format  string
	out     string
	id      string
	maxSide int
	gcode   gcode.Config
}

func newExportCmd(o *rootOptions) *cobra.Command {
	opts := &exportOptions{gcode: gcode.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "export [RESULT.json]",
		Short: "Write a result as cut sheets, labels, spreadsheets, drawings or G-code",
		Example: `  platecut export result.json --format pdf --out sheets.pdf
  platecut export --id kitchen --format dxf --out drawings/
  platecut export result.json --format gcode --gcode-profile LinuxCNC --depth 18.5 --out nc/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, o, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "pdf", "output format: "+strings.Join(exportFormats, ", "))
	f.StringVarP(&opts.out, "out", "o", "", "output file, or directory for dxf, png and gcode")
	f.StringVar(&opts.id, "id", "", "export a result saved with calculate --save")
	f.IntVar(&opts.maxSide, "size", 1200, "longest side of PNG previews in pixels")
	f.StringVar(&opts.gcode.Profile, "gcode-profile", opts.gcode.Profile, "G-code dialect: "+strings.Join(gcode.ProfileNames(), ", "))
	f.Float64Var(&opts.gcode.FeedRate, "feed", opts.gcode.FeedRate, "cutting feed rate in mm/min")
	f.Float64Var(&opts.gcode.PlungeRate, "plunge", opts.gcode.PlungeRate, "plunge rate in mm/min")
	f.IntVar(&opts.gcode.SpindleSpeed, "spindle", opts.gcode.SpindleSpeed, "spindle speed in rpm")
	f.Float64Var(&opts.gcode.CutDepth, "depth", opts.gcode.CutDepth, "total cut depth in mm")
	f.Float64Var(&opts.gcode.PassDepth, "pass-depth", opts.gcode.PassDepth, "depth per pass in mm")
	f.IntVar(&opts.gcode.TabsPerSide, "tabs", opts.gcode.TabsPerSide, "holding tabs per piece side")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runExport(cmd *cobra.Command, o *rootOptions, opts *exportOptions, args []string) error {
	var (
		result model.CalculationResult
		err    error
	)
	switch {
	case len(args) == 1 && opts.id == "":
		result, err = readResult(args[0])
	case len(args) == 0 && opts.id != "":
		var store *project.ResultStore
		if store, err = project.NewResultStore(o.resultDir()); err == nil {
			result, err = store.Get(opts.id)
		}
	default:
		return fmt.Errorf("give either a result file or --id")
	}
	if err != nil {
		return err
	}
	settings, err := o.settings(cmd, nil)
	if err != nil {
		return err
	}

	var written []string
	switch opts.format {
	case "pdf":
		err = export.ExportPDF(opts.out, result, settings)
		written = []string{opts.out}
	case "labels":
		err = export.ExportLabels(opts.out, result)
		written = []string{opts.out}
	case "xlsx":
		err = export.ExportXLSX(opts.out, result, settings)
		written = []string{opts.out}
	case "dxf":
		if err = os.MkdirAll(opts.out, 0755); err == nil {
			written, err = export.ExportAllDXF(opts.out, result, settings)
		}
	case "png":
		if err = os.MkdirAll(opts.out, 0755); err == nil {
			written, err = export.SavePatternPNGs(opts.out, result, settings, opts.maxSide)
		}
	case "overview":
		img, rerr := export.RenderOverviewPNG(result, settings, opts.maxSide/4)
		if rerr != nil {
			return rerr
		}
		err = imaging.Save(img, opts.out)
		written = []string{opts.out}
	case "chart":
		err = writeChart(opts.out, result)
		written = []string{opts.out}
	case "gcode":
		var g *gcode.Generator
		if g, err = gcode.New(opts.gcode); err == nil {
			written, err = g.SaveAll(opts.out, result, settings)
		}
	default:
		return fmt.Errorf("unknown format %q (have %s)", opts.format, strings.Join(exportFormats, ", "))
	}
	if err != nil {
		return err
	}

	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Clean(p))
	}
	klog.V(1).Infof("exported %d files as %s", len(written), opts.format)
	return nil
}

func writeChart(path string, result model.CalculationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	if err := export.ExportYieldChart(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
