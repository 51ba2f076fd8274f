package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PlateCut/internal/model"
)

func countEntities(t *testing.T, path string) (lines, texts int) {
	t.Helper()
	d, err := dxf.Open(path)
	require.NoError(t, err)
	for _, e := range d.Entities() {
		switch e.(type) {
		case *entity.Line:
			lines++
		case *entity.Text:
			texts++
		}
	}
	return lines, texts
}

func TestExportDXF_NewPlate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.dxf")
	s := buildTestSettings()
	pg := buildTestResult().Patterns[1]

	require.NoError(t, ExportDXF(path, pg, s.Plate, s.Cut))

	lines, texts := countEntities(t, path)
	// plate + margin + two pieces
	assert.Equal(t, 16, lines)
	assert.Equal(t, 2, texts)
}

func TestExportDXF_OffcutHasNoMargin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "o.dxf")
	s := buildTestSettings()
	pg := buildTestResult().Patterns[0]

	require.NoError(t, ExportDXF(path, pg, s.Plate, s.Cut))

	lines, texts := countEntities(t, path)
	assert.Equal(t, 8, lines)
	assert.Equal(t, 1, texts)
}

func TestExportAllDXF(t *testing.T) {
	dir := t.TempDir()

	paths, err := ExportAllDXF(dir, buildTestResult(), buildTestSettings())

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "pattern-O-1.dxf"),
		filepath.Join(dir, "pattern-A.dxf"),
	}, paths)
}

func TestExportAllDXF_Empty(t *testing.T) {
	_, err := ExportAllDXF(t.TempDir(), model.CalculationResult{}, buildTestSettings())
	assert.ErrorIs(t, err, ErrNoPatterns)
}
