package engine

import (
	"cmp"
	"slices"
	"sort"

	"github.com/piwi3910/PlateCut/internal/model"
)

// placementKey identifies a placement by product name and geometry. Unit
// identity is ignored: two pieces of the same product are interchangeable.
type placementKey struct {
	name    string
	x, y    float64
	w, h    float64
	rotated bool
}

func compareKeys(a, b placementKey) int {
	return cmp.Or(
		cmp.Compare(a.name, b.name),
		cmp.Compare(a.x, b.x),
		cmp.Compare(a.y, b.y),
		cmp.Compare(a.w, b.w),
		cmp.Compare(a.h, b.h),
		compareBool(a.rotated, b.rotated),
	)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// layoutKey returns the canonical, order-independent key of a layout.
func layoutKey(placements []model.Placement) []placementKey {
	keys := make([]placementKey, len(placements))
	for i, p := range placements {
		keys[i] = placementKey{p.Item.Name, p.X, p.Y, p.Width, p.Height, p.Rotated}
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// groupPatterns folds plates with identical layouts into pattern groups.
// The first plate of a layout supplies its placements and yield.
func groupPatterns(plates []model.Plate) []model.PatternGroup {
	singles := make([]model.PatternGroup, len(plates))
	for i, p := range plates {
		singles[i] = model.PatternGroup{Placements: p.Placements, Count: 1, Yield: p.Yield}
	}
	return mergePatterns(singles)
}

// mergePatterns merges groups with identical layouts, summing counts, then
// sorts by count descending (first seen wins ties) and assigns labels.
func mergePatterns(groups []model.PatternGroup) []model.PatternGroup {
	var merged []model.PatternGroup
	var keys [][]placementKey

	for _, g := range groups {
		k := layoutKey(g.Placements)
		found := false
		for i := range merged {
			if slices.Equal(keys[i], k) {
				merged[i].Count += g.Count
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, g)
			keys = append(keys, k)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Count > merged[j].Count
	})
	for i := range merged {
		merged[i].PatternID = model.PatternLabel(i)
	}
	return merged
}

func totalPlates(patterns []model.PatternGroup) int {
	total := 0
	for _, p := range patterns {
		total += p.Count
	}
	return total
}
