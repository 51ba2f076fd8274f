package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// PlateEstimate holds an area-based plate purchasing estimate computed
// before running the engine.
type PlateEstimate struct {
	TotalItemArea   float64         `json:"total_item_area"`   // Item area including kerf allowance (sq mm)
	EffectiveArea   float64         `json:"effective_area"`    // Packable area of one plate (sq mm)
	PlatesExact     float64         `json:"plates_exact"`      // Fractional number of plates
	PlatesMin       int             `json:"plates_min"`        // Ceiling of exact, a lower bound
	PlatesWithWaste int             `json:"plates_with_waste"` // Recommended plates including waste factor
	WastePercent    float64         `json:"waste_percent"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
}

// EstimatePlates computes a lower bound on plates needed for items. The
// engine can only meet or exceed PlatesMin.
func EstimatePlates(items []Item, plate PlateConfig, cut CutConfig, wastePercent float64) PlateEstimate {
	var totalArea float64
	for _, it := range items {
		totalArea += (it.Width + cut.Kerf) * (it.Height + cut.Kerf) * float64(it.Quantity)
	}

	effW, effH := plate.EffectiveSize(cut)
	effArea := effW * effH
	if effW <= 0 || effH <= 0 {
		return PlateEstimate{
			TotalItemArea: totalArea,
			WastePercent:  wastePercent,
			EstimatedCost: decimal.Zero,
		}
	}

	exact := totalArea / effArea
	minPlates := int(math.Ceil(exact))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	withWaste := int(math.Ceil(exact * wasteFactor))
	if withWaste < minPlates {
		withWaste = minPlates
	}

	return PlateEstimate{
		TotalItemArea:   totalArea,
		EffectiveArea:   effArea,
		PlatesExact:     exact,
		PlatesMin:       minPlates,
		PlatesWithWaste: withWaste,
		WastePercent:    wastePercent,
		EstimatedCost:   plate.UnitPrice.Mul(decimal.NewFromInt(int64(withWaste))),
	}
}
