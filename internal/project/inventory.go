package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/PlateCut/internal/model"
)

// DefaultInventoryPath returns the default file path for the inventory file.
// This is located at ~/.platecut/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			return inv, SaveInventory(path, inv)
		}
		return model.Inventory{}, fmt.Errorf("failed to read inventory: %w", err)
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, fmt.Errorf("failed to parse inventory: %w", err)
	}
	if inv.Offcuts == nil {
		inv.Offcuts = []model.OffcutPlate{}
	}
	return inv, nil
}

// ImportInventory reads an inventory from path and merges it into existing.
// Plates and offcuts whose IDs are already present are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, fmt.Errorf("failed to read inventory: %w", err)
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, fmt.Errorf("failed to parse inventory: %w", err)
	}
	return MergeInventory(existing, imported), nil
}

// MergeInventory appends the plates and offcuts of add whose IDs base does
// not already contain.
func MergeInventory(base, add model.Inventory) model.Inventory {
	plateIDs := make(map[string]bool, len(base.Plates))
	for _, p := range base.Plates {
		plateIDs[p.ID] = true
	}
	offcutIDs := make(map[string]bool, len(base.Offcuts))
	for _, o := range base.Offcuts {
		offcutIDs[o.ID] = true
	}

	for _, p := range add.Plates {
		if !plateIDs[p.ID] {
			base.Plates = append(base.Plates, p)
			plateIDs[p.ID] = true
		}
	}
	for _, o := range add.Offcuts {
		if !offcutIDs[o.ID] {
			base.Offcuts = append(base.Offcuts, o)
			offcutIDs[o.ID] = true
		}
	}
	return base
}
