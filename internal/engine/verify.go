package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/piwi3910/PlateCut/internal/model"
)

// ViolationKind classifies a problem found by VerifyResult.
type ViolationKind string

const (
	ViolationOverlap  ViolationKind = "overlap"
	ViolationBounds   ViolationKind = "bounds"
	ViolationQuantity ViolationKind = "quantity"
)

// Violation is one broken layout rule.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	PatternID string        `json:"pattern_id,omitempty"`
	Message   string        `json:"message"`
}

func (v Violation) String() string {
	if v.PatternID == "" {
		return fmt.Sprintf("%s: %s", v.Kind, v.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", v.Kind, v.PatternID, v.Message)
}

// VerifyResult checks a result against the items it was computed for:
// placements stay inside the usable area, keep a kerf apart, and every item
// that was not skipped is cut exactly Quantity times.
func VerifyResult(result model.CalculationResult, items []model.Item, plate model.PlateConfig, cut model.CutConfig) []Violation {
	var out []Violation

	for _, p := range result.Patterns {
		minX, minY := cut.Margin, cut.Margin
		maxX, maxY := plate.Width-cut.Margin, plate.Height-cut.Margin
		if p.IsOffcut && p.OffcutInfo != nil {
			minX, minY = 0, 0
			maxX, maxY = p.OffcutInfo.Width, p.OffcutInfo.Height
		}

		for i, a := range p.Placements {
			if a.X < minX-eps || a.Y < minY-eps || a.X+a.Width > maxX+eps || a.Y+a.Height > maxY+eps {
				out = append(out, Violation{
					Kind:      ViolationBounds,
					PatternID: p.PatternID,
					Message: fmt.Sprintf("%q at (%g, %g) size %gx%g leaves the usable area",
						a.Item.Name, a.X, a.Y, a.Width, a.Height),
				})
			}
			for _, b := range p.Placements[i+1:] {
				if tooClose(a, b, cut.Kerf) {
					out = append(out, Violation{
						Kind:      ViolationOverlap,
						PatternID: p.PatternID,
						Message:   fmt.Sprintf("%q at (%g, %g) and %q at (%g, %g) are closer than the kerf", a.Item.Name, a.X, a.Y, b.Item.Name, b.X, b.Y),
					})
				}
			}
		}
	}

	placed := make(map[string]int)
	for _, p := range result.Patterns {
		for _, pl := range p.Placements {
			placed[pl.Item.BaseID()] += p.Count
		}
	}
	skipped := make(map[string]bool)
	for _, s := range result.SkippedItems {
		skipped[s.ItemID] = true
	}
	known := make(map[string]bool)
	for _, it := range items {
		known[it.ID] = true
		want := it.Quantity
		if skipped[it.ID] {
			want = 0
		}
		if got := placed[it.ID]; got != want {
			out = append(out, Violation{
				Kind:    ViolationQuantity,
				Message: fmt.Sprintf("%q requested %d, cut %d", it.Name, want, got),
			})
		}
	}
	for _, id := range slices.Sorted(maps.Keys(placed)) {
		if !known[id] {
			out = append(out, Violation{
				Kind:    ViolationQuantity,
				Message: fmt.Sprintf("unknown item %q cut %d times", id, placed[id]),
			})
		}
	}
	return out
}

// tooClose reports whether a and b overlap once each is grown by half the
// kerf on every side.
func tooClose(a, b model.Placement, kerf float64) bool {
	sepX := a.X+a.Width+kerf <= b.X+eps || b.X+b.Width+kerf <= a.X+eps
	sepY := a.Y+a.Height+kerf <= b.Y+eps || b.Y+b.Height+kerf <= a.Y+eps
	return !sepX && !sepY
}
