package export

import (
	"fmt"
	"path/filepath"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/PlateCut/internal/model"
)

// DXF layer names.
const (
	LayerPlate  = "PLATE"
	LayerMargin = "MARGIN"
	LayerItems  = "ITEMS"
	LayerLabels = "LABELS"
)

// ExportDXF writes one pattern as a DXF drawing in millimetres: the plate
// outline, the margin line for new plates, each piece as a closed outline
// and its name as text. DXF's Y axis points up, so rows are mirrored.
func ExportDXF(path string, pg model.PatternGroup, plate model.PlateConfig, cut model.CutConfig) error {
	plateW, plateH := patternSize(pg, plate)

	d := dxf.NewDrawing()
	for _, layer := range []string{LayerPlate, LayerMargin, LayerItems, LayerLabels} {
		if _, err := d.AddLayer(layer, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", layer, err)
		}
	}

	if err := d.ChangeLayer(LayerPlate); err != nil {
		return err
	}
	if err := dxfRect(d, 0, 0, plateW, plateH); err != nil {
		return err
	}

	if m := cut.Margin; m > 0 && !pg.IsOffcut {
		if err := d.ChangeLayer(LayerMargin); err != nil {
			return err
		}
		if err := dxfRect(d, m, m, plateW-2*m, plateH-2*m); err != nil {
			return err
		}
	}

	for _, p := range pg.Placements {
		y := plateH - p.Y - p.Height
		if err := d.ChangeLayer(LayerItems); err != nil {
			return err
		}
		if err := dxfRect(d, p.X, y, p.Width, p.Height); err != nil {
			return err
		}
		if err := d.ChangeLayer(LayerLabels); err != nil {
			return err
		}
		height := min(p.Width, p.Height) / 10
		if _, err := d.Text(p.Item.Name, p.X+height/2, y+p.Height/2, 0, height); err != nil {
			return fmt.Errorf("failed to add label: %w", err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

// ExportAllDXF writes pattern-<id>.dxf for every pattern into dir and
// returns the written paths in pattern order.
func ExportAllDXF(dir string, result model.CalculationResult, settings model.Settings) ([]string, error) {
	if len(result.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	paths := make([]string, 0, len(result.Patterns))
	for _, pg := range result.Patterns {
		path := filepath.Join(dir, fmt.Sprintf("pattern-%s.dxf", pg.PatternID))
		if err := ExportDXF(path, pg, settings.Plate, settings.Cut); err != nil {
			return paths, fmt.Errorf("pattern %s: %w", pg.PatternID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// dxfRect draws a closed rectangle from four LINE entities.
func dxfRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%4]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}
	return nil
}
