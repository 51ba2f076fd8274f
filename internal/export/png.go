package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/PlateCut/internal/model"
)

var (
	plateFill  = color.NRGBA{225, 225, 225, 255}
	marginFill = color.NRGBA{255, 220, 220, 255}
	edgeColor  = color.NRGBA{30, 30, 30, 255}
)

// RenderPatternPNG draws a pattern scaled so its longer plate side is
// maxSide pixels. Pieces are filled with their item color and outlined.
func RenderPatternPNG(pg model.PatternGroup, plate model.PlateConfig, cut model.CutConfig, colors map[string]rgb, maxSide int) *image.NRGBA {
	plateW, plateH := patternSize(pg, plate)
	scale := float64(maxSide) / math.Max(plateW, plateH)
	px := func(v float64) int { return int(math.Round(v * scale)) }

	img := imaging.New(max(1, px(plateW)), max(1, px(plateH)), edgeColor)
	img = imaging.Paste(img, imaging.New(max(1, px(plateW)-2), max(1, px(plateH)-2), plateFill), image.Pt(1, 1))

	if m := cut.Margin; m > 0 && !pg.IsOffcut {
		mp := px(m)
		inner := imaging.New(max(1, px(plateW)-2*mp), max(1, px(plateH)-2*mp), plateFill)
		img = imaging.Paste(img, imaging.New(max(1, px(plateW)-2), max(1, px(plateH)-2), marginFill), image.Pt(1, 1))
		img = imaging.Paste(img, inner, image.Pt(mp, mp))
	}

	for i, p := range pg.Placements {
		c, ok := colors[p.Item.BaseID()]
		if !ok {
			c = colorFor(p.Item, i)
		}
		w, h := max(1, px(p.Width)), max(1, px(p.Height))
		x, y := px(p.X), px(p.Y)
		img = imaging.Paste(img, imaging.New(w, h, edgeColor), image.Pt(x, y))
		if w > 2 && h > 2 {
			fill := color.NRGBA{uint8(c.R), uint8(c.G), uint8(c.B), 255}
			img = imaging.Paste(img, imaging.New(w-2, h-2, fill), image.Pt(x+1, y+1))
		}
	}
	return img
}

// SavePatternPNGs writes pattern-<id>.png for every pattern into dir and
// returns the written paths.
func SavePatternPNGs(dir string, result model.CalculationResult, settings model.Settings, maxSide int) ([]string, error) {
	if len(result.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	colors := itemColors(result)
	paths := make([]string, 0, len(result.Patterns))
	for _, pg := range result.Patterns {
		img := RenderPatternPNG(pg, settings.Plate, settings.Cut, colors, maxSide)
		path := filepath.Join(dir, fmt.Sprintf("pattern-%s.png", pg.PatternID))
		if err := imaging.Save(img, path); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// RenderOverviewPNG places thumbnails of all patterns side by side, each
// fitted into a thumb x thumb cell.
func RenderOverviewPNG(result model.CalculationResult, settings model.Settings, thumb int) (*image.NRGBA, error) {
	if len(result.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	const gap = 8
	colors := itemColors(result)
	sheet := imaging.New(len(result.Patterns)*(thumb+gap)+gap, thumb+2*gap, color.White)
	for i, pg := range result.Patterns {
		img := RenderPatternPNG(pg, settings.Plate, settings.Cut, colors, thumb*2)
		fitted := imaging.Fit(img, thumb, thumb, imaging.Lanczos)
		sheet = imaging.Paste(sheet, fitted, image.Pt(gap+i*(thumb+gap), gap))
	}
	return sheet, nil
}
