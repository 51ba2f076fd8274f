package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, ExportXLSX(path, buildTestResult(), buildTestSettings()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetPatterns, SheetPlacements, SheetCutList, SheetSkipped}, f.GetSheetList())

	plates, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", plates)

	patterns, err := f.GetRows(SheetPatterns)
	require.NoError(t, err)
	require.Len(t, patterns, 3)
	assert.Equal(t, []string{"O-1", "Scrap", "600", "400", "1", "1", "60"}, patterns[1])

	placements, err := f.GetRows(SheetPlacements)
	require.NoError(t, err)
	assert.Len(t, placements, 4)

	cut, err := f.GetRows(SheetCutList)
	require.NoError(t, err)
	require.Len(t, cut, 3)
	assert.Equal(t, "Part 2", cut[1][0])
	assert.Equal(t, "O-1, A", cut[2][4])
}

func TestExportXLSX_NoSkippedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	result := buildTestResult()
	result.SkippedItems = nil

	require.NoError(t, ExportXLSX(path, result, buildTestSettings()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), SheetSkipped)
}

func TestExportXLSX_Empty(t *testing.T) {
	err := ExportXLSX(filepath.Join(t.TempDir(), "x.xlsx"), model.CalculationResult{}, buildTestSettings())
	assert.ErrorIs(t, err, ErrNoPatterns)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 42.5, round1(42.46))
	assert.Equal(t, 60.0, round1(59.96))
}
