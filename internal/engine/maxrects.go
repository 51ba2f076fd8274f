package engine

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

type packConfig struct {
	plate model.PlateConfig
	cut   model.CutConfig
	goal  model.Goal
	grid  bool
}

// packRun is the outcome of one packer pass over a unit list.
type packRun struct {
	plates  []model.Plate
	quality float64 // Remaining-space quality, maxrects only
	label   string
}

// mrPlate is a plate being filled by the maximal-rectangles packer.
type mrPlate struct {
	placements []model.Placement
	free       []rect
	used       float64
}

func newMRPlate(cfg packConfig) *mrPlate {
	w, h := cfg.plate.EffectiveSize(cfg.cut)
	m := cfg.cut.Margin
	return &mrPlate{free: []rect{{x: m, y: m, w: w, h: h}}}
}

func (p *mrPlate) add(pl model.Placement, kerf float64) {
	p.placements = append(p.placements, pl)
	p.used += pl.Width * pl.Height
	p.free = splitFreeRects(p.free, rect{pl.X, pl.Y, pl.Width + kerf, pl.Height + kerf})
}

func (p *mrPlate) tryPlace(it model.Item, h Heuristic, kerf float64) bool {
	idx, rotated := h.choose(it, p.free, kerf)
	if idx < 0 {
		return false
	}
	r := p.free[idx]
	w, ht := orient(it, rotated)
	p.add(model.Placement{Item: it, X: r.x, Y: r.y, Width: w, Height: ht, Rotated: rotated}, kerf)
	return true
}

// packMaxRects packs units in the given order with one heuristic. Each unit
// goes to the current plate, then to any earlier plate, then to a new plate.
// Units that are part of a large run of identical sizes are first offered as
// a grid block when grid grouping is on.
func packMaxRects(units []model.Item, cfg packConfig, h Heuristic) (*packRun, error) {
	kerf := cfg.cut.Kerf
	eligible := make(map[sizeKey]bool)
	if cfg.grid {
		for k := range groupItemsBySize(units, minGridGroup) {
			eligible[k] = true
		}
	}

	remaining := make([]model.Item, len(units))
	copy(remaining, units)

	var plates []*mrPlate
	if len(remaining) > 0 {
		plates = append(plates, newMRPlate(cfg))
	}

	for len(remaining) > 0 {
		cur := plates[len(plates)-1]
		it := remaining[0]

		if eligible[keyOf(it)] {
			if g, r, idx := tryCreateDynamicGrid(it, remaining, cur.free, kerf, cfg.goal); g != nil {
				for _, pl := range g.cells(r.x, r.y, kerf) {
					cur.add(pl, kerf)
				}
				klog.V(4).Infof("%s: grid %dx%d of %q on plate %d", h, g.Rows, g.Cols, it.Name, len(plates))
				remaining = removeIndexes(remaining, idx)
				continue
			}
		}

		remaining = remaining[1:]
		if cur.tryPlace(it, h, kerf) {
			continue
		}

		placed := false
		for _, p := range plates[:len(plates)-1] {
			if p.tryPlace(it, h, kerf) {
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		fresh := newMRPlate(cfg)
		if !fresh.tryPlace(it, h, kerf) {
			return nil, &PlacementError{ItemName: it.Name, Width: it.Width, Height: it.Height}
		}
		plates = append(plates, fresh)
	}

	eff := effectiveArea(cfg.plate, cfg.cut)
	run := &packRun{
		plates:  make([]model.Plate, len(plates)),
		quality: remainingSpaceQuality(plates, eff),
		label:   h.String(),
	}
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

// removeIndexes drops the ascending indexes idx from items.
func removeIndexes(items []model.Item, idx []int) []model.Item {
	out := make([]model.Item, 0, len(items)-len(idx))
	j := 0
	for i, it := range items {
		if j < len(idx) && idx[j] == i {
			j++
			continue
		}
		out = append(out, it)
	}
	return out
}

// remainingSpaceQuality scores how reusable the free space is, in [0, 1].
// Fewer, squarer free rectangles and one dominant free rectangle score
// higher. A plate with no free space scores 1.
func remainingSpaceQuality(plates []*mrPlate, eff float64) float64 {
	if len(plates) == 0 {
		return 0
	}
	var total float64
	for _, p := range plates {
		if len(p.free) == 0 {
			total++
			continue
		}
		var square, largest float64
		for _, r := range p.free {
			if r.w > 0 && r.h > 0 {
				square += math.Min(r.w, r.h) / math.Max(r.w, r.h)
			}
			largest = math.Max(largest, r.area())
		}
		square /= float64(len(p.free))

		share := 1.0
		if freeArea := eff - p.used; freeArea > 0 {
			share = math.Min(1, largest/freeArea)
		}
		total += 0.4/float64(1+len(p.free)) + 0.3*square + 0.3*share
	}
	return total / float64(len(plates))
}

// betterRun reports whether candidate beats best: fewer plates first, then
// average yield for the yield goal or free-space quality otherwise.
func betterRun(candidate, best *packRun, goal model.Goal) bool {
	if best == nil {
		return true
	}
	if len(candidate.plates) != len(best.plates) {
		return len(candidate.plates) < len(best.plates)
	}
	if goal == model.GoalRemainingSpace {
		return candidate.quality > best.quality
	}
	return averageYield(candidate.plates) > averageYield(best.plates)
}

// bestHeuristic packs units with every heuristic of the goal concurrently and
// keeps the best run. Units are packed in the order given.
func (o *Optimizer) bestHeuristic(units []model.Item, cfg packConfig) (*packRun, error) {
	order := heuristicOrder(cfg.goal)
	runs := make([]*packRun, len(order))
	errs := make([]error, len(order))

	var g errgroup.Group
	g.SetLimit(o.workers())
	for i, h := range order {
		g.Go(func() error {
			runs[i], errs[i] = packMaxRects(units, cfg, h)
			return nil
		})
	}
	_ = g.Wait()

	var best *packRun
	for i, run := range runs {
		if errs[i] != nil {
			klog.V(3).Infof("%s failed: %v", order[i], errs[i])
			continue
		}
		if betterRun(run, best, cfg.goal) {
			best = run
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoHeuristicPlaced, errs[0])
	}
	klog.V(3).Infof("best heuristic %s: %d plates", best.label, len(best.plates))
	return best, nil
}

// CalculateMaximalRectangles validates and expands items, sorts the units by
// area and packs them with every maximal-rectangles heuristic of the goal.
func (o *Optimizer) CalculateMaximalRectangles(items []model.Item) (model.CalculationResult, error) {
	valid, skipped, err := validateItems(items, o.Settings.Plate, o.Settings.Cut, true)
	if err != nil {
		return model.CalculationResult{SkippedItems: skipped}, err
	}
	units := sortItems(ExpandItems(valid), SortArea)
	run, err := o.bestHeuristic(units, o.packConfig())
	if err != nil {
		return model.CalculationResult{SkippedItems: skipped}, err
	}
	return buildResult(run.plates, o.Settings.Plate, skipped), nil
}

// packSinglePlate packs units without grid grouping and returns the first
// plate of the best run. Units that did not land on it stay unplaced.
func (o *Optimizer) packSinglePlate(units []model.Item, goal model.Goal) (model.Plate, bool) {
	if len(units) == 0 {
		return model.Plate{}, false
	}
	cfg := o.packConfig()
	cfg.goal = goal
	cfg.grid = false
	run, err := o.bestHeuristic(units, cfg)
	if err != nil || len(run.plates) == 0 {
		return model.Plate{}, false
	}
	return run.plates[0], true
}
