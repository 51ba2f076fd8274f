package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_output.pdf")

	if err := ExportPDF(path, buildTestResult(), buildTestSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Two pattern pages plus the summary
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, model.CalculationResult{}, buildTestSettings())
	if !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("expected ErrNoPatterns, got %v", err)
	}
}

func TestExportPDF_NoMarginNoMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.pdf")

	result := buildTestResult()
	result.Metrics = nil
	result.OffcutUsage = nil
	result.SkippedItems = nil
	settings := buildTestSettings()
	settings.Cut.Margin = 0

	if err := ExportPDF(path, result, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_ManyPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	base := buildTestResult().Patterns[1]
	result := model.CalculationResult{TotalPlates: 40}
	for i := range 40 {
		pg := base
		pg.PatternID = model.PatternLabel(i)
		pg.Count = 1
		result.Patterns = append(result.Patterns, pg)
	}

	// The pattern table spills onto a second summary page.
	if err := ExportPDF(path, result, buildTestSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 60, 7},
		{10, 80, 6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0fx%.0f", tt.w, tt.h), func(t *testing.T) {
			if got := labelFontSize(tt.w, tt.h); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
