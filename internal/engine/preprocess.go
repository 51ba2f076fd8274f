package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/PlateCut/internal/model"
)

// SortStrategy orders unit items before packing.
type SortStrategy int

const (
	SortArea SortStrategy = iota
	SortWidth
	SortHeight
	SortLongEdge
	SortShortEdge
)

var sortStrategies = []SortStrategy{SortArea, SortWidth, SortHeight, SortLongEdge, SortShortEdge}

func (s SortStrategy) String() string {
	switch s {
	case SortArea:
		return "area"
	case SortWidth:
		return "width"
	case SortHeight:
		return "height"
	case SortLongEdge:
		return "long-edge"
	case SortShortEdge:
		return "short-edge"
	}
	return fmt.Sprintf("sort(%d)", int(s))
}

// ExpandItems replicates every item Quantity times. Each unit gets Quantity 1,
// the ID "<id>-<n>" and SourceID set to the original ID. Items that already
// are units pass through unchanged, so expanding twice is harmless.
func ExpandItems(items []model.Item) []model.Item {
	var expanded []model.Item
	for _, it := range items {
		if it.SourceID != "" && it.Quantity == 1 {
			expanded = append(expanded, it)
			continue
		}
		for i := 0; i < it.Quantity; i++ {
			cp := it
			cp.Quantity = 1
			cp.SourceID = it.BaseID()
			cp.ID = fmt.Sprintf("%s-%d", it.ID, i)
			expanded = append(expanded, cp)
		}
	}
	return expanded
}

// sortItems returns a sorted copy of items. Ties keep their input order.
func sortItems(items []model.Item, strategy SortStrategy) []model.Item {
	sorted := make([]model.Item, len(items))
	copy(sorted, items)

	var less func(a, b model.Item) bool
	switch strategy {
	case SortWidth:
		less = func(a, b model.Item) bool {
			if a.Width != b.Width {
				return a.Width > b.Width
			}
			return a.Height > b.Height
		}
	case SortHeight:
		less = func(a, b model.Item) bool {
			if a.Height != b.Height {
				return a.Height > b.Height
			}
			return a.Width > b.Width
		}
	case SortLongEdge:
		less = func(a, b model.Item) bool {
			la, lb := math.Max(a.Width, a.Height), math.Max(b.Width, b.Height)
			if la != lb {
				return la > lb
			}
			return math.Min(a.Width, a.Height) > math.Min(b.Width, b.Height)
		}
	case SortShortEdge:
		less = func(a, b model.Item) bool {
			sa, sb := math.Min(a.Width, a.Height), math.Min(b.Width, b.Height)
			if sa != sb {
				return sa > sb
			}
			return math.Max(a.Width, a.Height) > math.Max(b.Width, b.Height)
		}
	default:
		// Largest area first, near-square first on ties
		less = func(a, b model.Item) bool {
			if a.Area() != b.Area() {
				return a.Area() > b.Area()
			}
			return aspectDiff(a) < aspectDiff(b)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func aspectDiff(it model.Item) float64 {
	if it.Height == 0 {
		return math.Inf(1)
	}
	return math.Abs(it.Width/it.Height - 1)
}
