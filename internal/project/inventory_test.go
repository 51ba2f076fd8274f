package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestDefaultInventoryPath(t *testing.T) {
	path := DefaultInventoryPath()
	if filepath.Base(path) != "inventory.json" {
		t.Errorf("expected filename inventory.json, got %s", filepath.Base(path))
	}
	if dir := filepath.Base(filepath.Dir(path)); dir != ".platecut" {
		t.Errorf("expected parent dir .platecut, got %s", dir)
	}
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_inventory.json")

	inv := model.Inventory{
		Plates:  []model.PlatePreset{model.NewPlatePreset("Test plate", 2440, 1220, 8000)},
		Offcuts: []model.OffcutPlate{model.NewOffcutPlate("Scrap", 600, 400, 2)},
	}

	if err := SaveInventory(path, inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}

	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(loaded.Plates) != 1 {
		t.Fatalf("expected 1 plate, got %d", len(loaded.Plates))
	}
	if loaded.Plates[0].Width != 2440 {
		t.Errorf("expected width 2440, got %f", loaded.Plates[0].Width)
	}
	if !loaded.Plates[0].UnitPrice.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("expected price 8000, got %s", loaded.Plates[0].UnitPrice)
	}
	if len(loaded.Offcuts) != 1 || loaded.Offcuts[0].Quantity != 2 {
		t.Errorf("expected one offcut with quantity 2, got %+v", loaded.Offcuts)
	}
}

func TestLoadInventoryCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "inventory.json")

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(inv.Plates) == 0 {
		t.Error("expected default plates, got none")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("expected default inventory file to be created")
	}
}

func TestImportInventory(t *testing.T) {
	existing := model.Inventory{
		Plates:  []model.PlatePreset{{ID: "plate-001", Name: "Existing", Width: 1820, Height: 910}},
		Offcuts: []model.OffcutPlate{{ID: "off-001", Name: "Old scrap", Width: 500, Height: 500, Quantity: 1}},
	}
	imported := model.Inventory{
		Plates: []model.PlatePreset{
			{ID: "plate-001", Name: "Duplicate", Width: 1820, Height: 910}, // same ID, skipped
			{ID: "plate-002", Name: "New", Width: 2440, Height: 1220},
		},
		Offcuts: []model.OffcutPlate{{ID: "off-002", Name: "New scrap", Width: 300, Height: 300, Quantity: 3}},
	}

	importPath := filepath.Join(t.TempDir(), "import.json")
	data, _ := json.MarshalIndent(imported, "", "  ")
	if err := os.WriteFile(importPath, data, 0644); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}

	merged, err := ImportInventory(importPath, existing)
	if err != nil {
		t.Fatalf("ImportInventory failed: %v", err)
	}

	if len(merged.Plates) != 2 {
		t.Errorf("expected 2 plates after merge, got %d", len(merged.Plates))
	}
	if merged.Plates[0].Name != "Existing" || merged.Plates[1].Name != "New" {
		t.Errorf("unexpected plate order: %q, %q", merged.Plates[0].Name, merged.Plates[1].Name)
	}
	if len(merged.Offcuts) != 2 {
		t.Errorf("expected 2 offcuts after merge, got %d", len(merged.Offcuts))
	}
}

func TestImportInventoryMissingFile(t *testing.T) {
	existing := model.DefaultInventory()

	got, err := ImportInventory(filepath.Join(t.TempDir(), "nope.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(got.Plates) != len(existing.Plates) {
		t.Error("existing inventory should be returned untouched on error")
	}
}
