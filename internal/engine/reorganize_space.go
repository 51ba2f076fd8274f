package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

const spaceAttempts = 5

// Stock sizes that are commonly reusable in a workshop.
var commonOffcutSizes = []offcutSize{
	{800, 600},
	{600, 400},
	{900, 450},
	{1000, 500},
}

type offcutSize struct {
	w, h float64
}

// desirableOffcutSizes lists the leftover sizes worth aiming for on this
// plate: halves and thirds of the usable area plus the common sizes that
// fit, largest first, at most five.
func desirableOffcutSizes(plate model.PlateConfig, cut model.CutConfig) []offcutSize {
	effW, effH := plate.EffectiveSize(cut)
	candidates := []offcutSize{
		{math.Floor(effW / 2), math.Floor(effH / 2)},
		{math.Floor(effW / 2), math.Floor(effH / 3)},
		{math.Floor(effW / 3), math.Floor(effH / 2)},
	}
	for _, s := range commonOffcutSizes {
		if s.w <= effW && s.h <= effH {
			candidates = append(candidates, s)
		}
	}

	seen := make(map[offcutSize]bool)
	var sizes []offcutSize
	for _, s := range candidates {
		if s.w <= 0 || s.h <= 0 || seen[s] {
			continue
		}
		seen[s] = true
		sizes = append(sizes, s)
	}
	sort.SliceStable(sizes, func(i, j int) bool {
		return sizes[i].w*sizes[i].h > sizes[j].w*sizes[j].h
	})
	if len(sizes) > 5 {
		sizes = sizes[:5]
	}
	return sizes
}

// reorganizeForSpace redistributes units so the leftovers come closer to the
// desirable offcut sizes. A candidate must place every unit on the same
// number of plates and strictly raise the offcut score.
func (o *Optimizer) reorganizeForSpace(ctx context.Context, initial model.CalculationResult, rng *rand.Rand) model.CalculationResult {
	patterns := regularPatterns(initial.Patterns)
	if len(patterns) <= 1 {
		return initial
	}
	units := extractUnits(patterns)
	plateCount := totalPlates(patterns)
	targets := desirableOffcutSizes(o.Settings.Plate, o.Settings.Cut)

	best := initial
	bestScore := o.offcutScore(patterns, targets)

	for attempt := range spaceAttempts {
		if ctx.Err() != nil {
			klog.V(2).Infof("space reorganization cancelled after %d attempts", attempt)
			break
		}

		var order []model.Item
		if attempt == 0 {
			order = sortItems(units, SortArea)
		} else {
			order = shuffled(units, rng)
		}

		singles, ok := o.redistribute(order, plateCount, model.GoalRemainingSpace, func(remaining []model.Item, i, n int) []model.Item {
			return o.selectForSpace(remaining, targets, attempt, rng)
		})
		if !ok {
			klog.V(3).Infof("space attempt %d: redistribution incomplete", attempt)
			continue
		}

		merged := mergePatterns(singles)
		score := o.offcutScore(merged, targets)
		klog.V(3).Infof("space attempt %d: offcut score %.1f (best %.1f)", attempt, score, bestScore)
		if score > bestScore {
			best = rebuildResult(merged, initial, o.Settings.Plate)
			bestScore = score
		}
	}
	return best
}

// selectForSpace picks units that leave roughly the largest target size
// free. The first attempt fills greedily up to a usage band; later attempts
// take a random handful.
func (o *Optimizer) selectForSpace(remaining []model.Item, targets []offcutSize, attempt int, rng *rand.Rand) []model.Item {
	if attempt > 0 {
		n := min(max(2, int(rng.Float64()*8)), len(remaining))
		return shuffled(remaining, rng)[:n]
	}

	eff := effectiveArea(o.Settings.Plate, o.Settings.Cut)
	base := 0.75
	if len(targets) > 0 && eff > 0 {
		base = 1 - targets[0].w*targets[0].h/eff
	}
	lo := math.Max(0.65, base-0.1)
	hi := math.Min(0.85, base+0.05)

	sorted := sortItems(remaining, SortArea)
	var picked []model.Item
	used := 0.0
	for _, it := range sorted {
		if used+it.Area() <= eff*hi {
			picked = append(picked, it)
			used += it.Area()
		}
		if used >= eff*lo {
			break
		}
	}
	if len(picked) == 0 && len(sorted) > 0 {
		picked = sorted[:1]
	}
	return picked
}

// offcutScore rates the leftovers of every regular pattern against the
// desirable sizes, weighted by how many plates share the pattern.
func (o *Optimizer) offcutScore(patterns []model.PatternGroup, targets []offcutSize) float64 {
	plate, cut := o.Settings.Plate, o.Settings.Cut
	plateArea := plate.Width * plate.Height
	if plateArea <= 0 {
		return 0
	}

	var score float64
	for _, p := range regularPatterns(patterns) {
		for _, l := range model.DetectLeftovers(p, plate.Width, plate.Height, cut.Margin, cut.Kerf) {
			proximity := 0.0
			for _, t := range targets {
				wr := math.Min(l.Width, t.w) / math.Max(l.Width, t.w)
				hr := math.Min(l.Height, t.h) / math.Max(l.Height, t.h)
				proximity = math.Max(proximity, (wr+hr)/2)
			}
			shape := 1 / (1 + math.Abs(l.Width/l.Height-1))
			size := l.Area() / plateArea
			score += (proximity*100 + shape*50 + size*30) * float64(p.Count)
		}
	}
	return score
}
