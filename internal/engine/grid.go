package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/PlateCut/internal/model"
)

// minGridGroup is the smallest run of identical items worth grid packing.
const minGridGroup = 4

type sizeKey struct {
	w, h float64
}

func keyOf(it model.Item) sizeKey {
	return sizeKey{it.Width, it.Height}
}

// GridGroup is a rows x cols block of identical items. ItemWidth/ItemHeight
// are the placed (rotation-resolved) cell size.
type GridGroup struct {
	Items       []model.Item
	ItemWidth   float64
	ItemHeight  float64
	Rows        int
	Cols        int
	TotalWidth  float64 // Without trailing kerf
	TotalHeight float64
	Rotated     bool
}

// groupItemsBySize buckets items by exact size and drops buckets smaller
// than minSize.
func groupItemsBySize(items []model.Item, minSize int) map[sizeKey][]model.Item {
	groups := make(map[sizeKey][]model.Item)
	for _, it := range items {
		k := keyOf(it)
		groups[k] = append(groups[k], it)
	}
	for k, g := range groups {
		if len(g) < minSize {
			delete(groups, k)
		}
	}
	return groups
}

// calculateOptimalGrid finds the best grid of items (all the same size) that
// fits r. Every cell reserves kerf on its right and bottom edge. The yield
// goal prefers compact, near-square blocks; the remaining-space goal prefers
// blocks that leave more regular area behind. Returns nil if nothing fits.
func calculateOptimalGrid(items []model.Item, r rect, kerf float64, goal model.Goal) *GridGroup {
	n := len(items)
	if n == 0 {
		return nil
	}
	it := items[0]

	var best *GridGroup
	bestScore := math.Inf(-1)

	for _, rotated := range []bool{false, true} {
		w, h := orient(it, rotated)
		if w <= 0 || h <= 0 {
			return nil
		}
		maxCols := int(math.Floor((r.w + eps) / (w + kerf)))
		maxRows := int(math.Floor((r.h + eps) / (h + kerf)))

		for rows := 1; rows <= min(n, maxRows); rows++ {
			for cols := 1; cols <= min((n+rows-1)/rows, maxCols); cols++ {
				count := min(rows*cols, n)
				totalW := float64(cols)*w + float64(cols-1)*kerf
				totalH := float64(rows)*h + float64(rows-1)*kerf

				var score float64
				if goal == model.GoalRemainingSpace {
					remainingArea := (r.w-totalW)*r.h + (r.h-totalH)*totalW
					score = float64(count)*100 + remainingArea*0.01
				} else {
					aspect := math.Max(totalW, totalH) / math.Min(totalW, totalH)
					score = float64(count)*100 - aspect*10
				}

				if score > bestScore {
					bestScore = score
					best = &GridGroup{
						Items:       items[:count],
						ItemWidth:   w,
						ItemHeight:  h,
						Rows:        rows,
						Cols:        cols,
						TotalWidth:  totalW,
						TotalHeight: totalH,
						Rotated:     rotated,
					}
				}
			}
		}
	}
	return best
}

// cells returns the placements of g anchored at (x, y), filled row by row.
func (g *GridGroup) cells(x, y, kerf float64) []model.Placement {
	out := make([]model.Placement, 0, len(g.Items))
	for i, it := range g.Items {
		row, col := i/g.Cols, i%g.Cols
		out = append(out, model.Placement{
			Item:    it,
			X:       x + float64(col)*(g.ItemWidth+kerf),
			Y:       y + float64(row)*(g.ItemHeight+kerf),
			Width:   g.ItemWidth,
			Height:  g.ItemHeight,
			Rotated: g.Rotated,
		})
	}
	return out
}

// tryCreateDynamicGrid looks for a grid of items sized like target among
// pool, in the first free rectangle (in goal order) that holds at least two
// cells. It returns the grid, the chosen rectangle and the pool indexes used.
func tryCreateDynamicGrid(target model.Item, pool []model.Item, free []rect, kerf float64, goal model.Goal) (*GridGroup, rect, []int) {
	key := keyOf(target)
	var same []model.Item
	var idx []int
	for i, it := range pool {
		if keyOf(it) == key {
			same = append(same, it)
			idx = append(idx, i)
		}
	}
	if len(same) < 2 {
		return nil, rect{}, nil
	}

	for _, r := range sortRectsForGoal(free, goal) {
		g := calculateOptimalGrid(same, r, kerf, goal)
		if g == nil || len(g.Items) < 2 {
			continue
		}
		return g, r, idx[:len(g.Items)]
	}
	return nil, rect{}, nil
}

// sortRectsForGoal orders free rectangles bottom-left first for the
// remaining-space goal and largest first for yield.
func sortRectsForGoal(free []rect, goal model.Goal) []rect {
	sorted := make([]rect, len(free))
	copy(sorted, free)
	if goal == model.GoalRemainingSpace {
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].y != sorted[j].y {
				return sorted[i].y > sorted[j].y
			}
			return sorted[i].x < sorted[j].x
		})
		return sorted
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].area() > sorted[j].area()
	})
	return sorted
}
