package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/model"
)

// ExportYieldChart renders an HTML bar chart of the yield of every pattern,
// with the plate count of each pattern as a second series.
func ExportYieldChart(w io.Writer, result model.CalculationResult) error {
	if len(result.Patterns) == 0 {
		return ErrNoPatterns
	}

	labels := make([]string, len(result.Patterns))
	yields := make([]opts.BarData, len(result.Patterns))
	counts := make([]opts.BarData, len(result.Patterns))
	for i, pg := range result.Patterns {
		labels[i] = pg.PatternID
		yields[i] = opts.BarData{Name: pg.PatternID, Value: round1(pg.Yield)}
		counts[i] = opts.BarData{Name: pg.PatternID, Value: pg.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "PlateCut yield"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Yield per pattern",
			Subtitle: fmt.Sprintf("%d plates, average %.1f%%", result.TotalPlates, result.AverageYield),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Max: 100}),
	)
	bar.SetXAxis(labels).
		AddSeries("Yield (%)", yields).
		AddSeries("Plates", counts)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// ExportComparisonChart renders plates and average yield per scenario.
// Failed scenarios are left out.
func ExportComparisonChart(w io.Writer, results []engine.ComparisonResult) error {
	var names []string
	var plates, yields []opts.BarData
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		names = append(names, r.Scenario.Name)
		plates = append(plates, opts.BarData{Name: r.Scenario.Name, Value: r.Plates})
		yields = append(yields, opts.BarData{Name: r.Scenario.Name, Value: round1(r.AverageYield)})
	}
	if len(names) == 0 {
		return fmt.Errorf("no successful scenarios to chart")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "PlateCut comparison"}),
		charts.WithTitleOpts(opts.Title{Title: "Scenario comparison"}),
	)
	bar.SetXAxis(names).
		AddSeries("Plates", plates).
		AddSeries("Average yield (%)", yields)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
