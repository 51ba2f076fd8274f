package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// Sheet names of the Excel report.
const (
	SheetSummary    = "Summary"
	SheetPatterns   = "Patterns"
	SheetPlacements = "Placements"
	SheetCutList    = "Cut List"
	SheetSkipped    = "Skipped"
)

// ExportXLSX writes the result as an Excel workbook with summary, pattern,
// placement and cut-list sheets. A Skipped sheet is added when items were
// left out.
func ExportXLSX(path string, result model.CalculationResult, settings model.Settings) error {
	if len(result.Patterns) == 0 {
		return ErrNoPatterns
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"Total plates", result.TotalPlates},
		{"Average yield (%)", round1(result.AverageYield)},
		{"Total cost", result.TotalCost.InexactFloat64()},
		{"Pieces cut", result.PlacedItemCount()},
		{"Skipped items", len(result.SkippedItems)},
		{"Plate size (mm)", fmt.Sprintf("%gx%g", settings.Plate.Width, settings.Plate.Height)},
		{"Kerf (mm)", settings.Cut.Kerf},
		{"Margin (mm)", settings.Cut.Margin},
		{"Goal", string(settings.Goal)},
	}
	if m := result.Metrics; m != nil {
		summary = append(summary,
			[]any{"Yield excluding last (%)", round1(m.YieldExcludingLast)},
			[]any{"Last pattern yield (%)", round1(m.LastPatternYield)},
			[]any{"Meets yield target", m.MeetsYieldTarget},
		)
	}
	if u := result.OffcutUsage; u != nil {
		summary = append(summary,
			[]any{"Offcut plates used", u.PlatesUsed()},
			[]any{"Pieces on offcuts", u.TotalItemsOnOffcuts},
			[]any{"Cost saved", u.CostSaved.InexactFloat64()},
		)
	}
	if err := writeSheet(f, SheetSummary, summary, header); err != nil {
		return err
	}

	patterns := [][]any{{"Pattern", "Source", "Width (mm)", "Height (mm)", "Count", "Pieces per plate", "Yield (%)"}}
	placements := [][]any{{"Pattern", "Item", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)", "Rotated"}}
	for _, pg := range result.Patterns {
		w, h := patternSize(pg, settings.Plate)
		source := "New plate"
		if pg.IsOffcut && pg.OffcutInfo != nil {
			source = pg.OffcutInfo.Name
		}
		patterns = append(patterns, []any{pg.PatternID, source, w, h, pg.Count, len(pg.Placements), round1(pg.Yield)})
		for _, p := range pg.Placements {
			placements = append(placements, []any{pg.PatternID, p.Item.Name, p.X, p.Y, p.Width, p.Height, p.Rotated})
		}
	}
	if err := writeSheet(f, SheetPatterns, patterns, header); err != nil {
		return err
	}
	if err := writeSheet(f, SheetPlacements, placements, header); err != nil {
		return err
	}

	cut := [][]any{{"Item", "Width (mm)", "Height (mm)", "Pieces", "Patterns"}}
	for _, row := range CutList(result) {
		cut = append(cut, []any{row.Name, row.Width, row.Height, row.Placed, strings.Join(row.Patterns, ", ")})
	}
	if err := writeSheet(f, SheetCutList, cut, header); err != nil {
		return err
	}

	if len(result.SkippedItems) > 0 {
		skipped := [][]any{{"Item", "Reason", "Message"}}
		for _, s := range result.SkippedItems {
			skipped = append(skipped, []any{s.ItemName, string(s.Reason), s.Message})
		}
		if err := writeSheet(f, SheetSkipped, skipped, header); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSheet creates the sheet if needed and fills it row by row, styling
// the first row as a header.
func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(rows[0]))
		if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
			return err
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
