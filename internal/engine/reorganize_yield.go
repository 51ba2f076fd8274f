package engine

import (
	"context"
	"math"
	"math/rand"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

const yieldAttempts = 3

// reorganizeForYield tries to concentrate waste on the last plate so every
// other plate comes out fuller. A candidate is kept only when it places every
// unit on the same number of plates and raises the yield excluding the last
// plate.
func (o *Optimizer) reorganizeForYield(ctx context.Context, initial model.CalculationResult, rng *rand.Rand) model.CalculationResult {
	patterns := regularPatterns(initial.Patterns)
	if len(patterns) <= 1 {
		return initial
	}
	units := extractUnits(patterns)
	plateCount := totalPlates(patterns)

	best := initial
	bestScore := yieldExcludingLast(patterns)

	for attempt := range yieldAttempts {
		if ctx.Err() != nil {
			klog.V(2).Infof("yield reorganization cancelled after %d attempts", attempt)
			break
		}

		var order []model.Item
		if attempt == 0 {
			order = sortItems(units, SortArea)
		} else {
			order = shuffled(units, rng)
		}

		singles, ok := o.redistribute(order, plateCount, model.GoalYield, func(remaining []model.Item, i, n int) []model.Item {
			return selectForYield(remaining, i, n, attempt, rng)
		})
		if !ok {
			klog.V(3).Infof("yield attempt %d: redistribution incomplete", attempt)
			continue
		}

		score := yieldExcludingLast(singles)
		klog.V(3).Infof("yield attempt %d: %.2f%% excluding last (best %.2f%%)", attempt, score, bestScore)
		if score > bestScore {
			best = rebuildResult(mergePatterns(singles), initial, o.Settings.Plate)
			bestScore = score
		}
	}
	return best
}

// selectForYield offers the last plate everything left. Earlier plates get
// an even share on the first attempt and a random share afterwards.
func selectForYield(remaining []model.Item, i, plateCount, attempt int, rng *rand.Rand) []model.Item {
	if i == plateCount-1 {
		return remaining
	}
	target := int(math.Ceil(float64(len(remaining)) / float64(plateCount-i)))
	if attempt == 0 {
		sorted := sortItems(remaining, SortArea)
		return sorted[:min(max(target, 1), len(sorted))]
	}
	n := min(max(1, int(rng.Float64()*float64(target)*1.5)), len(remaining))
	return shuffled(remaining, rng)[:n]
}
