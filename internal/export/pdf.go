package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/PlateCut/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes one page per pattern with its layout diagram, followed
// by a summary page with totals, the cut list and the settings used.
func ExportPDF(path string, result model.CalculationResult, settings model.Settings) error {
	if len(result.Patterns) == 0 {
		return ErrNoPatterns
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	colors := itemColors(result)
	for _, pg := range result.Patterns {
		pdf.AddPage()
		renderPatternPage(pdf, pg, settings, colors)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func renderPatternPage(pdf *fpdf.Fpdf, pg model.PatternGroup, settings model.Settings, colors map[string]rgb) {
	plateW, plateH := patternSize(pg, settings.Plate)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	source := "New plate"
	if pg.IsOffcut && pg.OffcutInfo != nil {
		source = "Offcut " + pg.OffcutInfo.Name
	}
	title := fmt.Sprintf("Pattern %s: %s (%.0f x %.0f mm) x %d", pg.PatternID, source, plateW, plateH, pg.Count)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces per plate: %d | Used area: %.0f mm² | Plate area: %.0f mm² | Yield: %.1f%%",
		len(pg.Placements), pg.UsedArea(), plateW*plateH, pg.Yield)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawWidth/plateW, drawHeight/plateH)

	canvasW := plateW * scale
	canvasH := plateH * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Plate background
	pdf.SetFillColor(225, 225, 225)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	if m := settings.Cut.Margin; m > 0 && !pg.IsOffcut {
		drawMarginZone(pdf, offsetX, offsetY, canvasW, canvasH, m*scale)
	}

	for _, p := range pg.Placements {
		col := colors[p.Item.BaseID()]
		pw := p.Width * scale
		ph := p.Height * scale
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			name := p.Item.Name
			dims := fmt.Sprintf("%.0fx%.0f", p.Item.Width, p.Item.Height)
			if p.Rotated {
				dims += " R"
			}
			nameW := pdf.GetStringWidth(name)
			dimsW := pdf.GetStringWidth(dims)

			if nameW < pw-2 {
				pdf.SetXY(px+(pw-nameW)/2, py+ph/2-4)
				pdf.CellFormat(nameW, 4, name, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, plateW, plateH, offsetX, offsetY, canvasW, canvasH)
	drawItemsLegend(pdf, pg, colors, offsetY+canvasH+5)
}

// drawMarginZone hatches the trimmed border of a new plate.
func drawMarginZone(pdf *fpdf.Fpdf, x, y, w, h, m float64) {
	pdf.SetFillColor(255, 220, 220)
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)
	pdf.Rect(x, y, w, m, "F")
	pdf.Rect(x, y+h-m, w, m, "F")
	pdf.Rect(x, y, m, h, "F")
	pdf.Rect(x+w-m, y, m, h, "F")
	pdf.Rect(x+m, y+m, w-2*m, h-2*m, "D")
}

// drawDimensionAnnotations adds width and height labels outside the plate rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, plateW, plateH, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", plateW)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", plateH)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawItemsLegend lists each item type on the pattern with its piece count.
func drawItemsLegend(pdf *fpdf.Fpdf, pg model.PatternGroup, colors map[string]rgb, startY float64) {
	if len(pg.Placements) == 0 {
		return
	}

	type entry struct {
		item  model.Item
		count int
	}
	var entries []entry
	index := map[string]int{}
	for _, p := range pg.Placements {
		id := p.Item.BaseID()
		if i, ok := index[id]; ok {
			entries[i].count++
			continue
		}
		index[id] = len(entries)
		entries = append(entries, entry{item: p.Item, count: 1})
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Items per plate:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, e := range entries {
		col := colors[e.item.BaseID()]
		label := fmt.Sprintf("%s (%.0fx%.0f) x%d", e.item.Name, e.item.Width, e.item.Height, e.count)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.CalculationResult, settings model.Settings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cutting Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	y = sectionTitle(pdf, "Overall Statistics", y)

	summary := [][2]string{
		{"Total Plates", fmt.Sprintf("%d", result.TotalPlates)},
		{"Average Yield", fmt.Sprintf("%.1f%%", result.AverageYield)},
		{"Total Cost", result.TotalCost.StringFixed(2)},
		{"Pieces Cut", fmt.Sprintf("%d", result.PlacedItemCount())},
		{"Skipped Items", fmt.Sprintf("%d", len(result.SkippedItems))},
	}
	if m := result.Metrics; m != nil {
		summary = append(summary,
			[2]string{"Yield Excluding Last", fmt.Sprintf("%.1f%%", m.YieldExcludingLast)},
			[2]string{"Last Pattern Yield", fmt.Sprintf("%.1f%%", m.LastPatternYield)},
		)
	}
	if u := result.OffcutUsage; u != nil {
		summary = append(summary,
			[2]string{"Offcut Plates Used", fmt.Sprintf("%d", u.PlatesUsed())},
			[2]string{"Cost Saved", u.CostSaved.StringFixed(2)},
		)
	}
	y = keyValues(pdf, summary, y)
	y += 5

	y = sectionTitle(pdf, "Patterns", y)
	colWidths := []float64{25, 45, 55, 30, 30, 35}
	headers := []string{"Pattern", "Source", "Plate Size", "Count", "Pieces", "Yield"}
	rows := make([][]string, len(result.Patterns))
	for i, pg := range result.Patterns {
		w, h := patternSize(pg, settings.Plate)
		source := "New plate"
		if pg.IsOffcut && pg.OffcutInfo != nil {
			source = pg.OffcutInfo.Name
		}
		rows[i] = []string{
			pg.PatternID,
			source,
			fmt.Sprintf("%.0f x %.0f mm", w, h),
			fmt.Sprintf("%d", pg.Count),
			fmt.Sprintf("%d", len(pg.Placements)),
			fmt.Sprintf("%.1f%%", pg.Yield),
		}
	}
	y = table(pdf, colWidths, headers, rows, y)

	if len(result.SkippedItems) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Skipped Items", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, s := range result.SkippedItems {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, fmt.Sprintf("- %s: %s", s.ItemName, s.Message), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	y = sectionTitle(pdf, "Settings", y)
	pdf.SetFont("Helvetica", "", 9)
	keyValues(pdf, [][2]string{
		{"Plate", fmt.Sprintf("%.0f x %.0f mm @ %s", settings.Plate.Width, settings.Plate.Height, settings.Plate.UnitPrice.StringFixed(2))},
		{"Kerf", fmt.Sprintf("%.1f mm", settings.Cut.Kerf)},
		{"Margin", fmt.Sprintf("%.1f mm", settings.Cut.Margin)},
		{"Goal", string(settings.Goal)},
	}, y)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PlateCut", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func sectionTitle(pdf *fpdf.Fpdf, title string, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	return y + 9
}

func keyValues(pdf *fpdf.Fpdf, items [][2]string, y float64) float64 {
	for _, kv := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, kv[1], "", 0, "L", false, 0, "")
		y += 6
	}
	return y
}

// table draws a bordered table with alternating row shading. Rows that
// would run off the page continue on a new one.
func table(pdf *fpdf.Fpdf, widths []float64, headers []string, rows [][]string, y float64) float64 {
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for i, h := range headers {
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		y += 6
	}
	header()

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
			header()
			pdf.SetFont("Helvetica", "", 9)
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x := marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[j], 6, cell, "1", 0, "C", true, 0, "")
			x += widths[j]
		}
		y += 6
	}
	return y
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	switch minDim := math.Min(w, h); {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
