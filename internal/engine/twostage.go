package engine

import (
	"context"
	"math/rand"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// CalculateWithTwoStage packs with the maximal-rectangles packer, then
// redistributes the placed units across the same number of plates to serve
// the goal better. The second stage only replaces the first when it is
// strictly better; cancelling ctx keeps the best layout found so far.
func (o *Optimizer) CalculateWithTwoStage(ctx context.Context, items []model.Item) (model.CalculationResult, error) {
	stage1, err := o.CalculateMaximalRectangles(items)
	if err != nil {
		return stage1, err
	}
	klog.V(2).Infof("stage 1: %d plates, average yield %.1f%%", stage1.TotalPlates, stage1.AverageYield)

	rng := o.newRand()
	var stage2 model.CalculationResult
	if o.Settings.Goal == model.GoalRemainingSpace {
		stage2 = o.reorganizeForSpace(ctx, stage1, rng)
	} else {
		stage2 = o.reorganizeForYield(ctx, stage1, rng)
	}
	klog.V(2).Infof("stage 2: %d plates, average yield %.1f%%", stage2.TotalPlates, stage2.AverageYield)
	return stage2, nil
}

// extractUnits lists every unit placed on the regular patterns, once per
// plate of the pattern.
func extractUnits(patterns []model.PatternGroup) []model.Item {
	var units []model.Item
	for _, p := range regularPatterns(patterns) {
		for range p.Count {
			for _, pl := range p.Placements {
				units = append(units, pl.Item)
			}
		}
	}
	return units
}

// removePlaced drops one unit per placement, matched by unit ID.
func removePlaced(units []model.Item, placements []model.Placement) []model.Item {
	out := make([]model.Item, len(units))
	copy(out, units)
	for _, pl := range placements {
		for i, u := range out {
			if u.ID == pl.Item.ID {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

// selector picks the units offered to plate index i of plateCount.
type selector func(remaining []model.Item, i, plateCount int) []model.Item

// redistribute fills plateCount single plates from units, one selection per
// plate. It fails unless every unit lands and exactly plateCount plates are
// used.
func (o *Optimizer) redistribute(units []model.Item, plateCount int, goal model.Goal, pick selector) ([]model.PatternGroup, bool) {
	remaining := units
	var singles []model.PatternGroup
	placed := 0

	for i := 0; i < plateCount && len(remaining) > 0; i++ {
		plate, ok := o.packSinglePlate(pick(remaining, i, plateCount), goal)
		if !ok {
			return nil, false
		}
		singles = append(singles, model.PatternGroup{Placements: plate.Placements, Count: 1, Yield: plate.Yield})
		placed += len(plate.Placements)
		remaining = removePlaced(remaining, plate.Placements)
	}

	if placed != len(units) || len(singles) != plateCount {
		return nil, false
	}
	return singles, true
}

func shuffled(units []model.Item, rng *rand.Rand) []model.Item {
	out := make([]model.Item, len(units))
	copy(out, units)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
