// Package export writes calculation results to PDF cut sheets, QR labels,
// Excel reports, DXF drawings, PNG previews and HTML charts.
package export

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"github.com/piwi3910/PlateCut/internal/model"
)

// ErrNoPatterns is returned when a result has nothing to draw.
var ErrNoPatterns = errors.New("no patterns to export")

// rgb is an 8-bit color.
type rgb struct {
	R, G, B int
}

// parseHexColor reads "#RRGGBB". ok is false for anything else.
func parseHexColor(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, true
}

// colorFor returns the item's own color, or the n-th palette entry.
func colorFor(it model.Item, n int) rgb {
	if c, ok := parseHexColor(it.Color); ok {
		return c
	}
	c, _ := parseHexColor(model.PaletteColor(n))
	return c
}

// patternSize returns the physical size of the plate a pattern is cut from.
func patternSize(pg model.PatternGroup, plate model.PlateConfig) (float64, float64) {
	if pg.IsOffcut && pg.OffcutInfo != nil {
		return pg.OffcutInfo.Width, pg.OffcutInfo.Height
	}
	return plate.Width, plate.Height
}

// CutListRow is one item type in the cut list.
type CutListRow struct {
	ItemID   string
	Name     string
	Width    float64
	Height   float64
	Placed   int
	Patterns []string
}

// CutList aggregates the placed pieces by source item, ordered naturally
// by name so "Part 2" sorts before "Part 10".
func CutList(result model.CalculationResult) []CutListRow {
	index := map[string]int{}
	var rows []CutListRow
	for _, pg := range result.Patterns {
		for _, p := range pg.Placements {
			id := p.Item.BaseID()
			i, ok := index[id]
			if !ok {
				i = len(rows)
				index[id] = i
				rows = append(rows, CutListRow{
					ItemID: id,
					Name:   p.Item.Name,
					Width:  p.Item.Width,
					Height: p.Item.Height,
				})
			}
			rows[i].Placed += pg.Count
			if !slices.Contains(rows[i].Patterns, pg.PatternID) {
				rows[i].Patterns = append(rows[i].Patterns, pg.PatternID)
			}
		}
	}
	slices.SortStableFunc(rows, func(a, b CutListRow) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})
	return rows
}

// itemColors assigns each source item a color in order of first appearance.
func itemColors(result model.CalculationResult) map[string]rgb {
	colors := map[string]rgb{}
	for pgIdx := range result.Patterns {
		for _, p := range result.Patterns[pgIdx].Placements {
			id := p.Item.BaseID()
			if _, ok := colors[id]; !ok {
				colors[id] = colorFor(p.Item, len(colors))
			}
		}
	}
	return colors
}
