package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestJobPath(t *testing.T) {
	if got := JobPath("kitchen"); got != "kitchen.platecut.json" {
		t.Errorf("expected extension to be added, got %s", got)
	}
	if got := JobPath("kitchen.json"); got != "kitchen.json" {
		t.Errorf("expected .json name untouched, got %s", got)
	}
}

func TestSaveAndLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs", JobPath("kitchen"))

	job := model.NewJob()
	job.Name = "Kitchen"
	job.Items = append(job.Items, model.NewItem("Door", 700, 400, 4))
	job.Offcuts = append(job.Offcuts, model.NewOffcutPlate("Scrap", 800, 500, 1))
	job.Settings.UseGridGrouping = true
	job.Result = &model.CalculationResult{TotalPlates: 2, AverageYield: 81.5, TotalCost: decimal.NewFromInt(10000)}

	if err := SaveJob(path, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	loaded, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if loaded.Name != "Kitchen" {
		t.Errorf("expected name Kitchen, got %q", loaded.Name)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Quantity != 4 {
		t.Errorf("unexpected items: %+v", loaded.Items)
	}
	if !loaded.Settings.UseGridGrouping {
		t.Error("expected grid grouping setting to survive")
	}
	if loaded.Result == nil || loaded.Result.TotalPlates != 2 {
		t.Fatalf("expected the saved result, got %+v", loaded.Result)
	}
	if !loaded.Result.TotalCost.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected cost 10000, got %s", loaded.Result.TotalCost)
	}
}

func TestLoadJobFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	if err := os.WriteFile(path, []byte(`{"name":"Bare"}`), 0644); err != nil {
		t.Fatal(err)
	}

	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if job.Items == nil || job.Offcuts == nil {
		t.Error("expected non-nil item and offcut slices")
	}
	if job.Settings.Plate.Width != model.DefaultPlateConfig().Width {
		t.Errorf("expected default plate width, got %f", job.Settings.Plate.Width)
	}
}

func TestLoadJobInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJob(path); err == nil {
		t.Fatal("expected parse error")
	}
}
