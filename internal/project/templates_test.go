package project

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestSaveAndLoadTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")

	store := model.NewTemplateStore()
	items := []model.Item{model.NewItem("Shelf", 500, 300, 2)}
	offcuts := []model.OffcutPlate{model.NewOffcutPlate("Scrap", 600, 400, 1)}
	store.Add(model.NewJobTemplate("Cabinet", "Standard cabinet", items, offcuts, model.DefaultSettings()))

	if err := SaveTemplates(path, store); err != nil {
		t.Fatalf("SaveTemplates error: %v", err)
	}

	loaded, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates error: %v", err)
	}
	if len(loaded.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(loaded.Templates))
	}
	tmpl := loaded.Templates[0]
	if tmpl.Name != "Cabinet" {
		t.Errorf("expected 'Cabinet', got %q", tmpl.Name)
	}
	if len(tmpl.Items) != 1 || len(tmpl.Offcuts) != 1 {
		t.Errorf("expected 1 item and 1 offcut, got %d and %d", len(tmpl.Items), len(tmpl.Offcuts))
	}
}

func TestLoadTemplates_NotFoundGivesBuiltins(t *testing.T) {
	store, err := LoadTemplates(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	names := store.Names()
	if len(names) != 3 || names[0] != "Basic" {
		t.Errorf("expected the built-in templates, got %v", names)
	}
}

func TestLoadTemplates_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	if err := SaveTemplates(path, model.TemplateStore{}); err != nil {
		t.Fatal(err)
	}

	store, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates error: %v", err)
	}
	if store.Templates == nil {
		t.Error("expected a non-nil template slice")
	}
}
