package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/PlateCut/internal/model"
)

// Heuristic chooses which free rectangle receives the next item.
type Heuristic int

const (
	BestShortSideFit Heuristic = iota
	BestLongSideFit
	BestAreaFit
	BottomLeft
)

func (h Heuristic) String() string {
	switch h {
	case BestShortSideFit:
		return "best-short-side-fit"
	case BestLongSideFit:
		return "best-long-side-fit"
	case BestAreaFit:
		return "best-area-fit"
	case BottomLeft:
		return "bottom-left"
	}
	return fmt.Sprintf("heuristic(%d)", int(h))
}

// heuristicOrder is the trial order for a goal. The first heuristic wins ties.
func heuristicOrder(goal model.Goal) []Heuristic {
	if goal == model.GoalRemainingSpace {
		return []Heuristic{BottomLeft, BestShortSideFit, BestLongSideFit, BestAreaFit}
	}
	return []Heuristic{BestShortSideFit, BestLongSideFit, BestAreaFit, BottomLeft}
}

// fitOrientation tries the item as given first, then rotated.
func fitOrientation(it model.Item, r rect, kerf float64) (ok, rotated bool) {
	if canPlace(it, r, kerf, false) {
		return true, false
	}
	if canPlace(it, r, kerf, true) {
		return true, true
	}
	return false, false
}

// choose returns the index of the selected free rectangle and the
// orientation, or -1 when no rectangle accepts the item.
func (h Heuristic) choose(it model.Item, free []rect, kerf float64) (int, bool) {
	best := -1
	bestRotated := false
	primary, secondary := math.Inf(1), math.Inf(1)

	for i, r := range free {
		ok, rotated := fitOrientation(it, r, kerf)
		if !ok {
			continue
		}
		w, h2 := orient(it, rotated)
		leftW := r.w - (w + kerf)
		leftH := r.h - (h2 + kerf)

		var p, s float64
		switch h {
		case BestShortSideFit:
			p, s = math.Min(leftW, leftH), math.Max(leftW, leftH)
		case BestLongSideFit:
			p, s = math.Max(leftW, leftH), math.Min(leftW, leftH)
		case BestAreaFit:
			p, s = r.area()-(w+kerf)*(h2+kerf), 0
		case BottomLeft:
			// Larger y is lower on the plate; on equal y prefer smaller x.
			p, s = -r.y, r.x
		}

		if p < primary || (p == primary && s < secondary) {
			best, bestRotated = i, rotated
			primary, secondary = p, s
		}
	}
	return best, bestRotated
}
