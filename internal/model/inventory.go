package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlatePreset is a reusable raw plate definition.
type PlatePreset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func NewPlatePreset(name string, width, height float64, unitPrice int64) PlatePreset {
	return PlatePreset{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     width,
		Height:    height,
		UnitPrice: decimal.NewFromInt(unitPrice),
	}
}

// ToPlateConfig converts the preset into the engine's plate configuration.
func (p PlatePreset) ToPlateConfig() PlateConfig {
	return PlateConfig{Width: p.Width, Height: p.Height, UnitPrice: p.UnitPrice}
}

// Inventory holds the user's plate presets and the offcuts they have on hand.
type Inventory struct {
	Plates  []PlatePreset `json:"plates"`
	Offcuts []OffcutPlate `json:"offcuts"`
}

// DefaultInventory returns an inventory with the common plate sizes and no offcuts.
func DefaultInventory() Inventory {
	return Inventory{
		Plates: []PlatePreset{
			NewPlatePreset("3x6 (1820x910)", 1820, 910, 5000),
			NewPlatePreset("4x8 (2430x1220)", 2430, 1220, 9000),
			NewPlatePreset("3x8 (2430x910)", 2430, 910, 7000),
			NewPlatePreset("Metric 2440x1220", 2440, 1220, 9000),
		},
		Offcuts: []OffcutPlate{},
	}
}

// FindPlateByName returns a pointer to the first preset with the given name, or nil.
func (inv *Inventory) FindPlateByName(name string) *PlatePreset {
	for i := range inv.Plates {
		if inv.Plates[i].Name == name {
			return &inv.Plates[i]
		}
	}
	return nil
}

// FindOffcutByID returns a pointer to the offcut with the given ID, or nil.
func (inv *Inventory) FindOffcutByID(id string) *OffcutPlate {
	for i := range inv.Offcuts {
		if inv.Offcuts[i].ID == id {
			return &inv.Offcuts[i]
		}
	}
	return nil
}

func (inv *Inventory) PlateNames() []string {
	names := make([]string, len(inv.Plates))
	for i, p := range inv.Plates {
		names[i] = p.Name
	}
	return names
}

// AvailableOffcuts returns the offcuts with a positive quantity.
func (inv *Inventory) AvailableOffcuts() []OffcutPlate {
	var out []OffcutPlate
	for _, o := range inv.Offcuts {
		if o.Quantity > 0 {
			out = append(out, o)
		}
	}
	return out
}

// ApplyUsage consumes the offcuts a run used and registers new leftovers.
// Offcuts whose quantity drops to zero are removed.
func (inv *Inventory) ApplyUsage(usage *OffcutUsage, leftovers []OffcutPlate) {
	if usage != nil {
		for _, e := range usage.Used {
			if o := inv.FindOffcutByID(e.Offcut.ID); o != nil {
				o.Quantity -= e.PlatesUsed
			}
		}
	}

	kept := inv.Offcuts[:0]
	for _, o := range inv.Offcuts {
		if o.Quantity > 0 {
			kept = append(kept, o)
		}
	}
	inv.Offcuts = append(kept, leftovers...)
}
