package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"github.com/shopspring/decimal"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

var (
	// ErrNoPlaceableItems means every item was filtered out before packing.
	ErrNoPlaceableItems = errors.New("no placeable items: check the plate size against the items")
	// ErrNoHeuristicPlaced means every heuristic failed to produce a layout.
	ErrNoHeuristicPlaced = errors.New("no heuristic could place the items")
	// ErrNoStrategyPlaced means every guillotine strategy failed.
	ErrNoStrategyPlaced = errors.New("no guillotine strategy could place the items")
	// ErrNoIndividual means the genetic search never evaluated a valid layout.
	ErrNoIndividual = errors.New("genetic search found no valid layout")
)

// PlacementError reports an item that did not fit on a freshly opened plate.
type PlacementError struct {
	ItemName string
	Width    float64
	Height   float64
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("item %q (%gx%gmm) could not be placed on an empty plate", e.ItemName, e.Width, e.Height)
}

// Optimizer runs the plate cutting engine.
type Optimizer struct {
	Settings model.Settings
}

func New(settings model.Settings) *Optimizer {
	if !settings.Goal.Valid() {
		settings.Goal = model.GoalYield
	}
	if settings.OffcutMode == "" {
		settings.OffcutMode = model.OffcutConsumption
	}
	if settings.Genetic.PopulationSize <= 0 {
		settings.Genetic = model.DefaultGeneticSettings()
	}
	return &Optimizer{Settings: settings}
}

// Calculate runs the genetic search when UseGA is set and the two-stage
// optimizer otherwise.
func (o *Optimizer) Calculate(ctx context.Context, items []model.Item) (model.CalculationResult, error) {
	if o.Settings.UseGA {
		return o.OptimizeWithGA(ctx, items)
	}
	return o.CalculateWithTwoStage(ctx, items)
}

// CalculateWithOffcuts fills the given offcuts first and packs whatever is
// left on new plates. With no offcut plates it is Calculate with the genetic
// search and grid grouping turned off.
func (o *Optimizer) CalculateWithOffcuts(ctx context.Context, items []model.Item, offcuts []model.OffcutPlate) (model.CalculationResult, error) {
	plain := o.with(false, false)

	units := 0
	for _, oc := range offcuts {
		units += max(oc.Quantity, 0)
	}
	if units == 0 {
		return plain.Calculate(ctx, items)
	}

	placed := o.placeOnOffcuts(items, offcuts)
	result, err := plain.mergeWithNewPlates(ctx, items, offcuts, placed)
	if err != nil {
		return result, err
	}

	if o.Settings.OffcutMode == model.OffcutOptimization {
		result, err = plain.dropIdleOffcuts(ctx, items, offcuts, placed, result)
		if err != nil {
			return result, err
		}
	}

	klog.V(2).Infof("offcuts: %d offcut plates used, %d new plates, average yield %.1f%%",
		result.OffcutUsage.PlatesUsed(), result.TotalPlates-result.OffcutUsage.PlatesUsed(), result.AverageYield)
	return result, nil
}

// with returns a copy of o with the genetic search and grid grouping set.
func (o *Optimizer) with(useGA, useGrid bool) *Optimizer {
	s := o.Settings
	s.UseGA = useGA
	s.UseGridGrouping = useGrid
	return &Optimizer{Settings: s}
}

func (o *Optimizer) packConfig() packConfig {
	return packConfig{
		plate: o.Settings.Plate,
		cut:   o.Settings.Cut,
		goal:  o.Settings.Goal,
		grid:  o.Settings.UseGridGrouping,
	}
}

func (o *Optimizer) newRand() *rand.Rand {
	return rand.New(rand.NewSource(o.Settings.Seed))
}

func (o *Optimizer) workers() int {
	if o.Settings.Genetic.Workers > 0 {
		return o.Settings.Genetic.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// validateItems splits items into those that fit the effective plate area in
// at least one orientation and those that are skipped. withKerf adds the kerf
// to the item footprint, as the maximal-rectangles packer does. Items with
// quantity 0 are dropped without a skip entry; when nothing with a positive
// quantity is left the error is ErrNoPlaceableItems.
func validateItems(items []model.Item, plate model.PlateConfig, cut model.CutConfig, withKerf bool) ([]model.Item, []model.SkippedItem, error) {
	effW, effH := plate.EffectiveSize(cut)
	k := 0.0
	if withKerf {
		k = cut.Kerf
	}

	var valid []model.Item
	var skipped []model.SkippedItem
	seen := make(map[string]bool)
	skip := func(s model.SkippedItem) {
		// Units of one item are reported once.
		if !seen[s.ItemID] {
			seen[s.ItemID] = true
			skipped = append(skipped, s)
		}
	}
	for _, it := range items {
		if it.Width <= 0 || it.Height <= 0 || it.Quantity < 0 {
			skip(model.SkippedItem{
				ItemID:   it.BaseID(),
				ItemName: it.Name,
				Reason:   model.SkipOther,
				Message:  fmt.Sprintf("item %q has invalid size %gx%g or quantity %d", it.Name, it.Width, it.Height, it.Quantity),
			})
			continue
		}

		if it.Quantity == 0 {
			continue
		}

		fitsNormal := it.Width+k <= effW && it.Height+k <= effH
		fitsRotated := it.Height+k <= effW && it.Width+k <= effH
		if !fitsNormal && !fitsRotated {
			skip(model.SkippedItem{
				ItemID:   it.BaseID(),
				ItemName: it.Name,
				Reason:   model.SkipTooLarge,
				Message: fmt.Sprintf("item %q (%gx%gmm) is larger than the plate (%gx%gmm) and cannot be cut",
					it.Name, it.Width, it.Height, effW, effH),
			})
			continue
		}
		valid = append(valid, it)
	}

	if len(valid) == 0 {
		return nil, skipped, ErrNoPlaceableItems
	}
	return valid, skipped, nil
}

// buildResult turns packed plates into the caller-facing result.
func buildResult(plates []model.Plate, plate model.PlateConfig, skipped []model.SkippedItem) model.CalculationResult {
	patterns := groupPatterns(plates)
	total := totalPlates(patterns)
	return model.CalculationResult{
		Patterns:     patterns,
		TotalPlates:  total,
		AverageYield: averageYield(plates),
		TotalCost:    plate.UnitPrice.Mul(decimal.NewFromInt(int64(total))),
		SkippedItems: skipped,
		Metrics:      yieldMetrics(patterns),
	}
}

// rebuildResult recomputes totals for reorganized patterns, keeping the
// skipped items and offcut usage of the original result.
func rebuildResult(patterns []model.PatternGroup, original model.CalculationResult, plate model.PlateConfig) model.CalculationResult {
	total, avg := model.CalculationResult{Patterns: patterns}.SummaryFromPatterns()
	return model.CalculationResult{
		Patterns:     patterns,
		TotalPlates:  total,
		AverageYield: avg,
		TotalCost:    plate.UnitPrice.Mul(decimal.NewFromInt(int64(total))),
		SkippedItems: original.SkippedItems,
		OffcutUsage:  original.OffcutUsage,
		Metrics:      yieldMetrics(patterns),
	}
}
