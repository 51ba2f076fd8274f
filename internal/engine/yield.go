package engine

import (
	"github.com/piwi3910/PlateCut/internal/model"
)

// effectiveArea returns the packable area of a plate, 0 when the margin eats it.
func effectiveArea(plate model.PlateConfig, cut model.CutConfig) float64 {
	w, h := plate.EffectiveSize(cut)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// plateYield returns used as a percentage of effective, 0 for no effective area.
func plateYield(used, effective float64) float64 {
	if effective <= 0 {
		return 0
	}
	return used / effective * 100
}

// averageYield is the plain mean of per-plate yields.
func averageYield(plates []model.Plate) float64 {
	if len(plates) == 0 {
		return 0
	}
	var total float64
	for _, p := range plates {
		total += p.Yield
	}
	return total / float64(len(plates))
}

// regularPatterns drops offcut patterns.
func regularPatterns(patterns []model.PatternGroup) []model.PatternGroup {
	var out []model.PatternGroup
	for _, p := range patterns {
		if !p.IsOffcut {
			out = append(out, p)
		}
	}
	return out
}

// yieldExcludingLast is the count-weighted yield of every pattern but the
// last. With a single pattern it is that pattern's yield.
func yieldExcludingLast(patterns []model.PatternGroup) float64 {
	switch len(patterns) {
	case 0:
		return 0
	case 1:
		return patterns[0].Yield
	}
	var weighted float64
	count := 0
	for _, p := range patterns[:len(patterns)-1] {
		weighted += p.Yield * float64(p.Count)
		count += p.Count
	}
	if count == 0 {
		return 0
	}
	return weighted / float64(count)
}

// yieldMetrics derives the secondary metrics from the regular patterns.
func yieldMetrics(patterns []model.PatternGroup) *model.YieldMetrics {
	regular := regularPatterns(patterns)
	m := &model.YieldMetrics{
		YieldExcludingLast: yieldExcludingLast(regular),
		TargetYield:        model.DefaultTargetYield,
	}
	if len(regular) > 0 {
		m.LastPatternYield = regular[len(regular)-1].Yield
	}
	m.MeetsYieldTarget = len(regular) > 1 && m.YieldExcludingLast >= m.TargetYield
	return m
}
