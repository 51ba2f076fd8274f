package model

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OffcutPlate is a leftover plate the user already owns. It is margin-free
// and costs nothing to consume.
type OffcutPlate struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Quantity int     `json:"quantity"`
	Color    string  `json:"color,omitempty"`
}

func NewOffcutPlate(name string, w, h float64, qty int) OffcutPlate {
	return OffcutPlate{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    w,
		Height:   h,
		Quantity: qty,
	}
}

// Area returns the area of a single offcut in square mm.
func (o OffcutPlate) Area() float64 {
	return o.Width * o.Height
}

// Size returns the "WxH" label used in reports.
func (o OffcutPlate) Size() string {
	return fmt.Sprintf("%gx%g", o.Width, o.Height)
}

// OffcutInfo identifies the offcut a pattern was cut from.
type OffcutInfo struct {
	Name   string  `json:"name"`
	Size   string  `json:"size"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OffcutUsageEntry records one offcut plate that received items.
type OffcutUsageEntry struct {
	Offcut        OffcutPlate `json:"offcut"`
	PatternID     string      `json:"pattern_id"`
	PlatesUsed    int         `json:"plates_used"`
	PlacedItemIDs []string    `json:"placed_item_ids"`
}

// OffcutUsage summarizes how existing offcuts were consumed in a run.
type OffcutUsage struct {
	Used                []OffcutUsageEntry `json:"used"`
	Unused              []OffcutPlate      `json:"unused"`
	TotalItemsOnOffcuts int                `json:"total_items_on_offcuts"`
	CostSaved           decimal.Decimal    `json:"cost_saved"`
}

// PlatesUsed returns the total number of offcut plates that received items.
func (u OffcutUsage) PlatesUsed() int {
	total := 0
	for _, e := range u.Used {
		total += e.PlatesUsed
	}
	return total
}

// MinLeftoverDimension is the minimum width or height (in mm) for a remnant
// to be worth keeping as an offcut. Smaller remnants are waste.
const MinLeftoverDimension = 50.0

// MinLeftoverArea is the minimum area (in sq mm) for a remnant to be kept.
const MinLeftoverArea = 10000.0 // 100mm x 100mm equivalent

// Leftover is a reusable rectangle left on every plate of a pattern.
type Leftover struct {
	PatternID string  `json:"pattern_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Count     int     `json:"count"` // Plates carrying this leftover
}

// Area returns the area of the leftover in square mm.
func (l Leftover) Area() float64 {
	return l.Width * l.Height
}

// ToOffcutPlate converts a leftover into an offcut for future jobs.
func (l Leftover) ToOffcutPlate() OffcutPlate {
	name := fmt.Sprintf("Leftover %s %.0fx%.0f", l.PatternID, l.Width, l.Height)
	return NewOffcutPlate(name, l.Width, l.Height, l.Count)
}

// DetectLeftovers looks for the strip right of all placements and the strip
// below them on a pattern. plateW/plateH are the physical plate size; margin
// is excluded from the leftover since it is trimmed off.
func DetectLeftovers(pg PatternGroup, plateW, plateH, margin, kerf float64) []Leftover {
	right := plateW - margin
	bottom := plateH - margin

	if len(pg.Placements) == 0 {
		l := Leftover{PatternID: pg.PatternID, X: margin, Y: margin, Width: right - margin, Height: bottom - margin, Count: pg.Count}
		if !usableLeftover(l) {
			return nil
		}
		return []Leftover{l}
	}

	var maxRight, maxBottom float64
	for _, p := range pg.Placements {
		maxRight = max(maxRight, p.X+p.Width+kerf)
		maxBottom = max(maxBottom, p.Y+p.Height+kerf)
	}

	var leftovers []Leftover

	// Right strip spans the full usable height.
	if r := (Leftover{PatternID: pg.PatternID, X: maxRight, Y: margin, Width: right - maxRight, Height: bottom - margin, Count: pg.Count}); usableLeftover(r) {
		leftovers = append(leftovers, r)
	}

	// Bottom strip stops at the right strip to avoid overlap.
	usableW := min(maxRight, right) - margin
	if b := (Leftover{PatternID: pg.PatternID, X: margin, Y: maxBottom, Width: usableW, Height: bottom - maxBottom, Count: pg.Count}); usableLeftover(b) {
		leftovers = append(leftovers, b)
	}

	sort.SliceStable(leftovers, func(i, j int) bool {
		return leftovers[i].Area() > leftovers[j].Area()
	})
	return leftovers
}

func usableLeftover(l Leftover) bool {
	return l.Width >= MinLeftoverDimension && l.Height >= MinLeftoverDimension && l.Area() >= MinLeftoverArea
}
