package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultCut.Margin = 12
	inv := model.DefaultInventory()
	inv.Offcuts = append(inv.Offcuts, model.NewOffcutPlate("Scrap", 700, 300, 1))

	if err := ExportAllData(path, cfg, model.DefaultTemplates(), inv); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.DefaultCut.Margin != 12 {
		t.Errorf("expected margin 12, got %f", backup.Config.DefaultCut.Margin)
	}
	if len(backup.Templates.Templates) != 3 {
		t.Errorf("expected 3 templates, got %d", len(backup.Templates.Templates))
	}
	if len(backup.Inventory.Offcuts) != 1 {
		t.Errorf("expected 1 offcut, got %d", len(backup.Inventory.Offcuts))
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"config":{}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for a backup without version")
	}
}

func TestImportAllDataNilSlices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"version":"1.0.0"}`), 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.RecentJobs == nil || backup.Templates.Templates == nil || backup.Inventory.Offcuts == nil {
		t.Error("expected non-nil slices after import")
	}
}
