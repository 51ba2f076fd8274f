package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/model"
)

// printer groups thousands in counts, areas and money.
var printer = message.NewPrinter(language.English)

func printResult(w io.Writer, name string, result model.CalculationResult, settings model.Settings) {
	if name != "" {
		printer.Fprintf(w, "Job: %s\n", name)
	}
	printer.Fprintf(w, "Plate: %.0f x %.0f mm, kerf %.1f mm, margin %.1f mm, goal %s\n",
		settings.Plate.Width, settings.Plate.Height, settings.Cut.Kerf, settings.Cut.Margin, settings.Goal)
	printer.Fprintf(w, "Plates: %d   Pieces: %d   Average yield: %.1f%%   Cost: %s\n",
		result.TotalPlates, result.PlacedItemCount(), result.AverageYield, formatMoney(result.TotalCost))
	if m := result.Metrics; m != nil {
		printer.Fprintf(w, "Yield excluding last pattern: %.1f%%   Last pattern: %.1f%%   Target %.0f%% met: %v\n",
			m.YieldExcludingLast, m.LastPatternYield, m.TargetYield, m.MeetsYieldTarget)
	}
	if u := result.OffcutUsage; u != nil {
		printer.Fprintf(w, "Offcut plates used: %d   Pieces on offcuts: %d   Cost saved: %s\n",
			u.PlatesUsed(), u.TotalItemsOnOffcuts, formatMoney(u.CostSaved))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tSOURCE\tPLATES\tPIECES\tYIELD")
	for _, pg := range result.Patterns {
		source := "new plate"
		if pg.IsOffcut && pg.OffcutInfo != nil {
			source = pg.OffcutInfo.Name + " " + pg.OffcutInfo.Size
		}
		printer.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f%%\n", pg.PatternID, source, pg.Count, len(pg.Placements), pg.Yield)
	}
	tw.Flush()

	if len(result.SkippedItems) > 0 {
		fmt.Fprintln(w, "\nSkipped:")
		for _, s := range result.SkippedItems {
			fmt.Fprintf(w, "  %s (%s): %s\n", s.ItemName, s.Reason, s.Message)
		}
	}
}

func printComparison(w io.Writer, results []engine.ComparisonResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tPLATES\tYIELD\tCOST\tSKIPPED")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\t\n", r.Scenario.Name, r.Err)
			continue
		}
		printer.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\t%d\n",
			r.Scenario.Name, r.Plates, r.AverageYield, formatMoney(r.TotalCost), r.SkippedCount)
	}
	tw.Flush()
}

func printEstimate(w io.Writer, est model.PlateEstimate) {
	printer.Fprintf(w, "Item area:        %.0f mm²\n", est.TotalItemArea)
	printer.Fprintf(w, "Usable per plate: %.0f mm²\n", est.EffectiveArea)
	printer.Fprintf(w, "Plates (exact):   %.2f\n", est.PlatesExact)
	printer.Fprintf(w, "Plates (minimum): %d\n", est.PlatesMin)
	printer.Fprintf(w, "Plates (+%.0f%%):    %d\n", est.WastePercent, est.PlatesWithWaste)
	printer.Fprintf(w, "Estimated cost:   %s\n", formatMoney(est.EstimatedCost))
}

func formatMoney(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.InexactFloat64())
}
