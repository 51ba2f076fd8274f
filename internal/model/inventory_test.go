package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultInventoryPresets(t *testing.T) {
	inv := DefaultInventory()
	if len(inv.Plates) != 4 {
		t.Fatalf("expected 4 plate presets, got %d", len(inv.Plates))
	}
	p := inv.FindPlateByName("3x6 (1820x910)")
	if p == nil {
		t.Fatal("expected 3x6 preset")
	}
	cfg := p.ToPlateConfig()
	if cfg.Width != 1820 || cfg.Height != 910 {
		t.Errorf("unexpected preset size %.0fx%.0f", cfg.Width, cfg.Height)
	}
	if !cfg.UnitPrice.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected price 5000, got %s", cfg.UnitPrice)
	}
	if inv.FindPlateByName("missing") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestAvailableOffcuts(t *testing.T) {
	inv := Inventory{Offcuts: []OffcutPlate{
		NewOffcutPlate("A", 500, 400, 2),
		NewOffcutPlate("B", 300, 300, 0),
	}}
	avail := inv.AvailableOffcuts()
	if len(avail) != 1 || avail[0].Name != "A" {
		t.Errorf("expected only offcut A, got %+v", avail)
	}
}

func TestApplyUsage(t *testing.T) {
	a := NewOffcutPlate("A", 500, 400, 2)
	b := NewOffcutPlate("B", 300, 300, 1)
	inv := Inventory{Offcuts: []OffcutPlate{a, b}}

	usage := &OffcutUsage{
		Used: []OffcutUsageEntry{
			{Offcut: a, PatternID: "O-1", PlatesUsed: 1},
			{Offcut: b, PatternID: "O-2", PlatesUsed: 1},
		},
	}
	leftover := NewOffcutPlate("Leftover A 600x500", 600, 500, 3)
	inv.ApplyUsage(usage, []OffcutPlate{leftover})

	if len(inv.Offcuts) != 2 {
		t.Fatalf("expected 2 offcuts after usage, got %d", len(inv.Offcuts))
	}
	if got := inv.FindOffcutByID(a.ID); got == nil || got.Quantity != 1 {
		t.Errorf("expected offcut A with quantity 1, got %+v", got)
	}
	if inv.FindOffcutByID(b.ID) != nil {
		t.Error("expected exhausted offcut B to be removed")
	}
	if inv.FindOffcutByID(leftover.ID) == nil {
		t.Error("expected leftover to be registered")
	}
}

func TestApplyUsageNil(t *testing.T) {
	inv := Inventory{Offcuts: []OffcutPlate{NewOffcutPlate("A", 500, 400, 1)}}
	inv.ApplyUsage(nil, nil)
	if len(inv.Offcuts) != 1 {
		t.Errorf("expected inventory unchanged, got %d offcuts", len(inv.Offcuts))
	}
}
