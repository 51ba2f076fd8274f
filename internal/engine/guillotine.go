package engine

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// guillotineStrategy pairs a sort order with a rotation policy.
type guillotineStrategy struct {
	sort     SortStrategy
	rotation RotationStrategy
}

func (s guillotineStrategy) String() string {
	return s.sort.String() + "/" + s.rotation.String()
}

// guillotineStrategies is the fixed trial order; earlier strategies win ties.
var guillotineStrategies = []guillotineStrategy{
	{SortArea, RotateMaxSpace},
	{SortArea, RotateFitSpace},
	{SortArea, RotatePrefer},
	{SortArea, RotateNever},
	{SortWidth, RotateMaxSpace},
	{SortWidth, RotateFitSpace},
	{SortWidth, RotateNever},
	{SortHeight, RotateMaxSpace},
	{SortHeight, RotateFitSpace},
	{SortHeight, RotateNever},
	{SortLongEdge, RotateMaxSpace},
	{SortLongEdge, RotateFitSpace},
	{SortShortEdge, RotateMaxSpace},
	{SortShortEdge, RotateFitSpace},
}

type guillotinePlate struct {
	placements []model.Placement
	spaces     []rect
	used       float64
}

func newGuillotinePlate(plate model.PlateConfig, cut model.CutConfig) *guillotinePlate {
	w, h := plate.EffectiveSize(cut)
	m := cut.Margin
	return &guillotinePlate{spaces: []rect{{x: m, y: m, w: w, h: h}}}
}

// tryPlace puts it into the largest free space that accepts it and replaces
// that space with its guillotine children.
func (p *guillotinePlate) tryPlace(it model.Item, kerf float64, strategy RotationStrategy) bool {
	sort.SliceStable(p.spaces, func(i, j int) bool {
		return p.spaces[i].area() > p.spaces[j].area()
	})
	for i, s := range p.spaces {
		ok, rotated := decideRotation(it, s, kerf, strategy)
		if !ok {
			continue
		}
		w, h := orient(it, rotated)
		p.placements = append(p.placements, model.Placement{Item: it, X: s.x, Y: s.y, Width: w, Height: h, Rotated: rotated})
		p.used += it.Width * it.Height
		p.spaces = append(p.spaces[:i], p.spaces[i+1:]...)
		p.spaces = append(p.spaces, guillotineSplit(s, w, h, kerf)...)
		return true
	}
	return false
}

// packGuillotine packs units in order onto the current plate and opens a new
// one when a unit does not fit. Earlier plates are closed for good.
func packGuillotine(units []model.Item, plate model.PlateConfig, cut model.CutConfig, rotation RotationStrategy) (*packRun, error) {
	var plates []*guillotinePlate
	for _, it := range units {
		if n := len(plates); n > 0 && plates[n-1].tryPlace(it, cut.Kerf, rotation) {
			continue
		}
		fresh := newGuillotinePlate(plate, cut)
		if !fresh.tryPlace(it, cut.Kerf, rotation) {
			return nil, &PlacementError{ItemName: it.Name, Width: it.Width, Height: it.Height}
		}
		plates = append(plates, fresh)
	}

	eff := effectiveArea(plate, cut)
	run := &packRun{plates: make([]model.Plate, len(plates))}
	for i, p := range plates {
		run.plates[i] = model.Plate{
			ID:         fmt.Sprintf("plate-%d", i+1),
			Placements: p.placements,
			UsedArea:   p.used,
			Yield:      plateYield(p.used, eff),
		}
	}
	return run, nil
}

// guillotineRuns packs units once per strategy, concurrently. Failed
// strategies leave a nil run and their error.
func (o *Optimizer) guillotineRuns(units []model.Item, plate model.PlateConfig, cut model.CutConfig) ([]*packRun, []error) {
	runs := make([]*packRun, len(guillotineStrategies))
	errs := make([]error, len(guillotineStrategies))

	var g errgroup.Group
	g.SetLimit(o.workers())
	for i, s := range guillotineStrategies {
		g.Go(func() error {
			run, err := packGuillotine(sortItems(units, s.sort), plate, cut, s.rotation)
			if run != nil {
				run.label = s.String()
			}
			runs[i], errs[i] = run, err
			return nil
		})
	}
	_ = g.Wait()
	return runs, errs
}

// CalculateGuillotine packs items with straight edge-to-edge cuts, trying
// every sort and rotation strategy and keeping the one with the fewest
// plates, then the highest average yield.
func (o *Optimizer) CalculateGuillotine(items []model.Item) (model.CalculationResult, error) {
	plate, cut := o.Settings.Plate, o.Settings.Cut
	valid, skipped, err := validateItems(items, plate, cut, false)
	if err != nil {
		return model.CalculationResult{SkippedItems: skipped}, err
	}
	units := ExpandItems(valid)

	runs, errs := o.guillotineRuns(units, plate, cut)
	var best *packRun
	for i, run := range runs {
		if errs[i] != nil {
			klog.V(3).Infof("guillotine %s failed: %v", guillotineStrategies[i], errs[i])
			continue
		}
		if betterRun(run, best, model.GoalYield) {
			best = run
		}
	}
	if best == nil {
		return model.CalculationResult{SkippedItems: skipped}, fmt.Errorf("%w: %w", ErrNoStrategyPlaced, errs[0])
	}
	klog.V(2).Infof("guillotine: best strategy %s, %d plates", best.label, len(best.plates))
	return buildResult(best.plates, plate, skipped), nil
}

// bestGuillotinePlate packs units on a plate of the given size with every
// strategy and returns the fullest first plate (ties go to more pieces).
func (o *Optimizer) bestGuillotinePlate(units []model.Item, plate model.PlateConfig, cut model.CutConfig) (model.Plate, bool) {
	if len(units) == 0 {
		return model.Plate{}, false
	}
	runs, _ := o.guillotineRuns(units, plate, cut)

	var best model.Plate
	found := false
	for _, run := range runs {
		if run == nil || len(run.plates) == 0 {
			continue
		}
		first := run.plates[0]
		if !found || first.Yield > best.Yield ||
			(first.Yield == best.Yield && len(first.Placements) > len(best.Placements)) {
			best, found = first, true
		}
	}
	return best, found
}
