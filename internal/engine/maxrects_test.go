package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PlateCut/internal/model"
)

func testPackConfig() packConfig {
	s := testSettings()
	return packConfig{plate: s.Plate, cut: s.Cut, goal: model.GoalYield}
}

func TestPackMaxRects_FillsPlateExactly(t *testing.T) {
	units := squares(4, 500)

	for _, h := range []Heuristic{BestShortSideFit, BestLongSideFit, BestAreaFit, BottomLeft} {
		t.Run(h.String(), func(t *testing.T) {
			run, err := packMaxRects(units, testPackConfig(), h)

			require.NoError(t, err)
			require.Len(t, run.plates, 1)
			assert.Len(t, run.plates[0].Placements, 4)
			assert.InDelta(t, 100.0, run.plates[0].Yield, 1e-9)
			assert.Equal(t, "plate-1", run.plates[0].ID)
		})
	}
}

func TestPackMaxRects_OpensNewPlate(t *testing.T) {
	run, err := packMaxRects(squares(5, 500), testPackConfig(), BestShortSideFit)

	require.NoError(t, err)
	require.Len(t, run.plates, 2)
	assert.Len(t, run.plates[0].Placements, 4)
	assert.Len(t, run.plates[1].Placements, 1)
	assert.Equal(t, "plate-2", run.plates[1].ID)
}

func TestPackMaxRects_BackfillsEarlierPlate(t *testing.T) {
	units := []model.Item{
		{ID: "a-0", Name: "A", Width: 1000, Height: 800, Quantity: 1},
		{ID: "b-0", Name: "B", Width: 1000, Height: 900, Quantity: 1},
		{ID: "c-0", Name: "C", Width: 1000, Height: 200, Quantity: 1},
	}

	run, err := packMaxRects(units, testPackConfig(), BestShortSideFit)

	require.NoError(t, err)
	require.Len(t, run.plates, 2)
	require.Len(t, run.plates[0].Placements, 2, "C only fits the strip left on the first plate")
	assert.Equal(t, "C", run.plates[0].Placements[1].Item.Name)
	assert.Equal(t, 800.0, run.plates[0].Placements[1].Y)
}

func TestPackMaxRects_KeepsKerfBetweenPieces(t *testing.T) {
	cfg := testPackConfig()
	cfg.cut = model.CutConfig{Kerf: 4, Margin: 10}

	run, err := packMaxRects(squares(3, 300), cfg, BestShortSideFit)

	require.NoError(t, err)
	res := buildResult(run.plates, cfg.plate, nil)
	assert.Empty(t, VerifyResult(res, []model.Item{{ID: "sq", Name: "Square", Quantity: 3}}, cfg.plate, cfg.cut))
}

func TestPackMaxRects_PlacementError(t *testing.T) {
	_, err := packMaxRects([]model.Item{{ID: "x", Name: "X", Width: 1200, Height: 10, Quantity: 1}}, testPackConfig(), BottomLeft)

	var pe *PlacementError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "X", pe.ItemName)
}

func TestPackMaxRects_GridBlock(t *testing.T) {
	cfg := testPackConfig()
	cfg.grid = true
	units := ExpandItems([]model.Item{{ID: "g", Name: "G", Width: 100, Height: 100, Quantity: 6}})

	run, err := packMaxRects(units, cfg, BestShortSideFit)

	require.NoError(t, err)
	require.Len(t, run.plates, 1)
	// A 2x3 block anchored at the origin.
	p := run.plates[0].Placements
	require.Len(t, p, 6)
	assert.Equal(t, 200.0, p[2].X)
	assert.Equal(t, 100.0, p[3].Y)
}

func TestRemoveIndexes(t *testing.T) {
	items := []model.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	assert.Equal(t, []string{"b", "d"}, ids(removeIndexes(items, []int{0, 2})))
}

func TestRemainingSpaceQuality(t *testing.T) {
	full := &mrPlate{used: 100}
	assert.Equal(t, 1.0, remainingSpaceQuality([]*mrPlate{full}, 100))

	one := &mrPlate{used: 50, free: []rect{{0, 0, 10, 5}}}
	// 0.4/2 + 0.3*0.5 + 0.3*1
	assert.InDelta(t, 0.65, remainingSpaceQuality([]*mrPlate{one}, 100), 1e-9)

	assert.Equal(t, 0.0, remainingSpaceQuality(nil, 100))
}

func TestBetterRun(t *testing.T) {
	one := &packRun{plates: []model.Plate{{Yield: 50}}, quality: 0.2}
	two := &packRun{plates: []model.Plate{{Yield: 90}, {Yield: 90}}, quality: 0.9}
	fuller := &packRun{plates: []model.Plate{{Yield: 60}}, quality: 0.1}

	assert.True(t, betterRun(one, nil, model.GoalYield))
	assert.True(t, betterRun(one, two, model.GoalYield))
	assert.True(t, betterRun(fuller, one, model.GoalYield))
	assert.False(t, betterRun(fuller, one, model.GoalRemainingSpace))
	assert.False(t, betterRun(one, one, model.GoalYield), "ties keep the earlier run")
}

func TestBestHeuristic_ErrorWrapsPlacement(t *testing.T) {
	opt := New(testSettings())
	_, err := opt.bestHeuristic([]model.Item{{ID: "x", Name: "X", Width: 2000, Height: 10, Quantity: 1}}, testPackConfig())

	assert.ErrorIs(t, err, ErrNoHeuristicPlaced)
	var pe *PlacementError
	assert.ErrorAs(t, err, &pe)
}

func TestCalculateMaximalRectangles_Deterministic(t *testing.T) {
	opt := New(testSettings())

	first, err := opt.CalculateMaximalRectangles(mixedItems())
	require.NoError(t, err)
	second, err := opt.CalculateMaximalRectangles(mixedItems())
	require.NoError(t, err)

	assert.Equal(t, first.Patterns, second.Patterns)
}

func TestPackSinglePlate(t *testing.T) {
	opt := New(testSettings())

	plate, ok := opt.packSinglePlate(squares(5, 500), model.GoalYield)

	require.True(t, ok)
	assert.Len(t, plate.Placements, 4)

	_, ok = opt.packSinglePlate(nil, model.GoalYield)
	assert.False(t, ok)
}
