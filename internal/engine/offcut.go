package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// gridShapes are the fixed (cols, rows) blocks tried on an offcut before
// falling back to the guillotine packer.
var gridShapes = [][2]int{
	{1, 1}, {2, 1}, {1, 2}, {2, 2},
	{3, 1}, {1, 3}, {3, 2}, {2, 3}, {3, 3},
	{4, 1}, {1, 4}, {4, 2}, {2, 4}, {3, 4}, {4, 3}, {4, 4},
}

// offcutFill is the layout chosen for one offcut unit.
type offcutFill struct {
	offcut model.OffcutPlate // Unit copy, Quantity 1
	source model.OffcutPlate
	plate  model.Plate
}

// expandOffcuts turns each offcut into Quantity unit copies with IDs
// "<id>-<n>", smallest first.
func expandOffcuts(offcuts []model.OffcutPlate) []offcutFill {
	var units []offcutFill
	for _, oc := range offcuts {
		for i := 0; i < oc.Quantity; i++ {
			cp := oc
			cp.Quantity = 1
			cp.ID = fmt.Sprintf("%s-%d", oc.ID, i)
			units = append(units, offcutFill{offcut: cp, source: oc})
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].offcut.Area() < units[j].offcut.Area()
	})
	return units
}

// placeOnOffcuts fills offcuts smallest first. Each offcut gets the single
// item type, or mix of types, that reaches the highest yield on it.
func (o *Optimizer) placeOnOffcuts(items []model.Item, offcuts []model.OffcutPlate) []offcutFill {
	placed := make(map[string]int)
	next := make(map[string]int) // next free unit number per item
	kerf := o.Settings.Cut.Kerf
	var fills []offcutFill

	for _, unit := range expandOffcuts(offcuts) {
		oc := unit.offcut
		var candidates []model.Item
		for _, it := range items {
			left := it.Quantity - placed[it.BaseID()]
			if left <= 0 || it.Width <= 0 || it.Height <= 0 {
				continue
			}
			fits := (it.Width <= oc.Width && it.Height <= oc.Height) ||
				(it.Height <= oc.Width && it.Width <= oc.Height)
			if fits {
				cp := it
				cp.Quantity = left
				candidates = append(candidates, cp)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		plateCfg := model.PlateConfig{Width: oc.Width, Height: oc.Height, UnitPrice: decimal.Zero}
		cutCfg := model.CutConfig{Kerf: kerf}

		var best model.Plate
		found := false
		consider := func(p model.Plate, ok bool) {
			if !ok || len(p.Placements) == 0 {
				return
			}
			if !found || p.Yield > best.Yield ||
				(p.Yield == best.Yield && len(p.Placements) > len(best.Placements)) {
				best, found = p, true
			}
		}

		for _, it := range candidates {
			start := next[it.BaseID()]
			consider(gridOnOffcut(it, oc, kerf, start))
			consider(o.bestGuillotinePlate(expandFrom(it, start), plateCfg, cutCfg))
		}
		if len(candidates) > 1 {
			var mixed []model.Item
			for _, it := range candidates {
				mixed = append(mixed, expandFrom(it, next[it.BaseID()])...)
			}
			consider(o.bestGuillotinePlate(mixed, plateCfg, cutCfg))
		}
		if !found {
			continue
		}

		for _, pl := range best.Placements {
			base := pl.Item.BaseID()
			placed[base]++
			if n, ok := unitNumber(pl.Item); ok && n >= next[base] {
				next[base] = n + 1
			}
		}
		best.ID = oc.ID
		unit.plate = best
		fills = append(fills, unit)
		klog.V(3).Infof("offcut %s (%s): %d pieces, yield %.1f%%", oc.Name, oc.Size(), len(best.Placements), best.Yield)
	}
	return fills
}

// expandFrom expands it into units numbered from start, so units cut from
// different offcuts keep distinct IDs.
func expandFrom(it model.Item, start int) []model.Item {
	units := make([]model.Item, 0, it.Quantity)
	for i := 0; i < it.Quantity; i++ {
		cp := it
		cp.Quantity = 1
		cp.SourceID = it.BaseID()
		cp.ID = fmt.Sprintf("%s-%d", it.BaseID(), start+i)
		units = append(units, cp)
	}
	return units
}

// unitNumber returns n for a unit with the ID "<base>-<n>".
func unitNumber(unit model.Item) (int, bool) {
	suffix, ok := strings.CutPrefix(unit.ID, unit.BaseID()+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	return n, err == nil
}

// gridOnOffcut tries the fixed grid shapes, upright then turned, and keeps
// the one with the highest yield. Blocks larger than the remaining quantity
// are skipped.
func gridOnOffcut(it model.Item, oc model.OffcutPlate, kerf float64, start int) (model.Plate, bool) {
	area := oc.Area()
	if area <= 0 {
		return model.Plate{}, false
	}

	var best model.Plate
	bestYield := 0.0
	found := false
	for _, shape := range gridShapes {
		cols, rows := shape[0], shape[1]
		if cols*rows > it.Quantity {
			continue
		}
		for _, rotated := range []bool{false, true} {
			w, h := orient(it, rotated)
			totalW := w*float64(cols) + kerf*float64(cols-1)
			totalH := h*float64(rows) + kerf*float64(rows-1)
			if totalW > oc.Width+eps || totalH > oc.Height+eps {
				continue
			}
			used := w * h * float64(cols*rows)
			yield := used / area * 100
			if yield <= bestYield {
				continue
			}

			block := it
			block.Quantity = cols * rows
			units := expandFrom(block, start)
			var placements []model.Placement
			for row := 0; row < rows; row++ {
				for col := 0; col < cols; col++ {
					placements = append(placements, model.Placement{
						Item:    units[row*cols+col],
						X:       float64(col) * (w + kerf),
						Y:       float64(row) * (h + kerf),
						Width:   w,
						Height:  h,
						Rotated: rotated,
					})
				}
			}
			best = model.Plate{Placements: placements, UsedArea: used, Yield: yield}
			bestYield = yield
			found = true
		}
	}
	return best, found
}

// remainingItems subtracts what the offcuts took from the requested
// quantities and drops items with nothing left. Items the offcuts took part
// of come back as units numbered after the highest unit used on an offcut,
// so no unit ID appears twice in the merged result.
func remainingItems(items []model.Item, fills []offcutFill) []model.Item {
	placed := make(map[string]int)
	next := make(map[string]int)
	for _, f := range fills {
		for _, pl := range f.plate.Placements {
			base := pl.Item.BaseID()
			placed[base]++
			if n, ok := unitNumber(pl.Item); ok && n >= next[base] {
				next[base] = n + 1
			}
		}
	}
	var out []model.Item
	for _, it := range items {
		base := it.BaseID()
		left := it.Quantity - placed[base]
		if left <= 0 {
			continue
		}
		cp := it
		cp.Quantity = left
		if placed[base] == 0 {
			out = append(out, cp)
			continue
		}
		out = append(out, expandFrom(cp, max(next[base], placed[base]))...)
	}
	return out
}

// mergeWithNewPlates packs what the offcuts did not take onto new plates and
// merges both into one result.
func (o *Optimizer) mergeWithNewPlates(ctx context.Context, items []model.Item, offcuts []model.OffcutPlate, fills []offcutFill) (model.CalculationResult, error) {
	var fresh model.CalculationResult
	if rest := remainingItems(items, fills); len(rest) > 0 {
		var err error
		fresh, err = o.Calculate(ctx, rest)
		if err != nil && !(len(fills) > 0 && isAllSkipped(err)) {
			return fresh, err
		}
	}
	return o.mergeResults(fills, fresh, offcuts), nil
}

// isAllSkipped reports whether err only says that nothing was left to pack
// on new plates.
func isAllSkipped(err error) bool {
	return errors.Is(err, ErrNoPlaceableItems)
}

// mergeResults puts the offcut patterns first, labelled O-1, O-2, ..., and
// the new plate patterns after them. The cost covers new plates only.
func (o *Optimizer) mergeResults(fills []offcutFill, fresh model.CalculationResult, offcuts []model.OffcutPlate) model.CalculationResult {
	type offcutGroup struct {
		pattern model.PatternGroup
		key     []placementKey
		fills   []offcutFill
	}
	var groups []offcutGroup
	for _, f := range fills {
		key := layoutKey(f.plate.Placements)
		found := false
		for i := range groups {
			g := &groups[i]
			info := g.pattern.OffcutInfo
			if info.Width == f.offcut.Width && info.Height == f.offcut.Height && slices.Equal(g.key, key) {
				g.pattern.Count++
				g.fills = append(g.fills, f)
				found = true
				break
			}
		}
		if found {
			continue
		}
		groups = append(groups, offcutGroup{
			pattern: model.PatternGroup{
				Placements: f.plate.Placements,
				Count:      1,
				Yield:      f.plate.Yield,
				IsOffcut:   true,
				OffcutInfo: &model.OffcutInfo{
					Name:   f.source.Name,
					Size:   f.offcut.Size(),
					Width:  f.offcut.Width,
					Height: f.offcut.Height,
				},
			},
			key:   key,
			fills: []offcutFill{f},
		})
	}

	usage := &model.OffcutUsage{CostSaved: decimal.Zero}
	usedPerSource := make(map[string]int)
	var patterns []model.PatternGroup
	var usedArea, totalArea float64
	offcutPlates := 0

	for i, g := range groups {
		g.pattern.PatternID = fmt.Sprintf("O-%d", i+1)
		patterns = append(patterns, g.pattern)
		for _, f := range g.fills {
			var ids []string
			for _, pl := range f.plate.Placements {
				ids = append(ids, pl.Item.ID)
			}
			entry := f.source
			entry.Quantity = 1
			usage.Used = append(usage.Used, model.OffcutUsageEntry{
				Offcut:        entry,
				PatternID:     g.pattern.PatternID,
				PlatesUsed:    1,
				PlacedItemIDs: ids,
			})
			usedPerSource[f.source.ID]++
			usage.TotalItemsOnOffcuts += len(f.plate.Placements)
			usedArea += f.plate.UsedArea
			totalArea += f.offcut.Area()
			offcutPlates++
		}
	}

	for _, oc := range offcuts {
		if left := oc.Quantity - usedPerSource[oc.ID]; left > 0 {
			cp := oc
			cp.Quantity = left
			usage.Unused = append(usage.Unused, cp)
		}
	}
	usage.CostSaved = o.Settings.Plate.UnitPrice.Mul(decimal.NewFromInt(int64(offcutPlates)))

	plateArea := o.Settings.Plate.Width * o.Settings.Plate.Height
	for _, p := range fresh.Patterns {
		patterns = append(patterns, p)
		usedArea += p.UsedArea() * float64(p.Count)
		totalArea += plateArea * float64(p.Count)
	}

	avg := 0.0
	if totalArea > 0 {
		avg = usedArea / totalArea * 100
	}

	return model.CalculationResult{
		Patterns:     patterns,
		TotalPlates:  offcutPlates + fresh.TotalPlates,
		AverageYield: avg,
		TotalCost:    fresh.TotalCost,
		SkippedItems: fresh.SkippedItems,
		OffcutUsage:  usage,
		Metrics:      fresh.Metrics,
	}
}

// dropIdleOffcuts walks the offcut fills from the lowest yield up and gives
// back every offcut whose pieces fit on the new plates without adding one.
func (o *Optimizer) dropIdleOffcuts(ctx context.Context, items []model.Item, offcuts []model.OffcutPlate, fills []offcutFill, current model.CalculationResult) (model.CalculationResult, error) {
	order := make([]int, len(fills))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fills[order[a]].plate.Yield < fills[order[b]].plate.Yield
	})

	dropped := make(map[int]bool)
	newPlates := current.TotalPlates - current.OffcutUsage.PlatesUsed()
	for _, idx := range order {
		if ctx.Err() != nil {
			break
		}
		dropped[idx] = true
		var kept []offcutFill
		for i, f := range fills {
			if !dropped[i] {
				kept = append(kept, f)
			}
		}

		candidate, err := o.mergeWithNewPlates(ctx, items, offcuts, kept)
		if err != nil {
			dropped[idx] = false
			continue
		}
		candidateNew := candidate.TotalPlates - candidate.OffcutUsage.PlatesUsed()
		if candidateNew > newPlates {
			dropped[idx] = false
			continue
		}
		klog.V(3).Infof("offcut %s returned to stock: its pieces fit on the new plates", fills[idx].offcut.ID)
		current, newPlates = candidate, candidateNew
	}
	return current, nil
}
