package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PlateCut/internal/model"
)

func multiPlateItems() []model.Item {
	return []model.Item{
		{ID: "a", Name: "Panel", Width: 600, Height: 400, Quantity: 5},
		{ID: "b", Name: "Shelf", Width: 300, Height: 300, Quantity: 6},
		{ID: "c", Name: "Strip", Width: 900, Height: 100, Quantity: 3},
	}
}

func TestCalculateWithTwoStage_KeepsPlateCount(t *testing.T) {
	for _, goal := range []model.Goal{model.GoalYield, model.GoalRemainingSpace} {
		t.Run(string(goal), func(t *testing.T) {
			s := testSettings()
			s.Goal = goal
			s.Cut = model.CutConfig{Kerf: 2}
			opt := New(s)
			items := multiPlateItems()

			stage1, err := opt.CalculateMaximalRectangles(items)
			require.NoError(t, err)
			result, err := opt.CalculateWithTwoStage(context.Background(), items)
			require.NoError(t, err)

			requireValid(t, result, items, s)
			assert.Equal(t, stage1.TotalPlates, result.TotalPlates)
			if goal == model.GoalYield {
				assert.GreaterOrEqual(t, result.Metrics.YieldExcludingLast, stage1.Metrics.YieldExcludingLast)
			}
		})
	}
}

func TestCalculateWithTwoStage_Cancelled(t *testing.T) {
	opt := New(testSettings())
	items := multiPlateItems()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage1, err := opt.CalculateMaximalRectangles(items)
	require.NoError(t, err)
	result, err := opt.CalculateWithTwoStage(ctx, items)

	require.NoError(t, err)
	assert.Equal(t, stage1.Patterns, result.Patterns)
}

func TestExtractUnits(t *testing.T) {
	patterns := []model.PatternGroup{
		{Count: 2, Placements: []model.Placement{place("a-0", "A", 0, 0, 10, 10), place("a-1", "A", 10, 0, 10, 10)}},
		{Count: 1, Placements: []model.Placement{place("b-0", "B", 0, 0, 10, 10)}},
		{Count: 3, IsOffcut: true, Placements: []model.Placement{place("c-0", "C", 0, 0, 10, 10)}},
	}

	units := extractUnits(patterns)

	assert.Equal(t, []string{"a-0", "a-1", "a-0", "a-1", "b-0"}, ids(units))
}

func TestRemovePlaced_OnePerPlacement(t *testing.T) {
	units := []model.Item{{ID: "a-0"}, {ID: "a-0"}, {ID: "b-0"}}

	rest := removePlaced(units, []model.Placement{{Item: model.Item{ID: "a-0"}}})

	assert.Equal(t, []string{"a-0", "b-0"}, ids(rest))
	assert.Len(t, units, 3, "input untouched")
}

func TestSelectForYield(t *testing.T) {
	units := []model.Item{
		{ID: "s", Width: 10, Height: 10},
		{ID: "l", Width: 50, Height: 50},
		{ID: "m", Width: 30, Height: 30},
		{ID: "x", Width: 20, Height: 20},
	}
	rng := rand.New(rand.NewSource(1))

	assert.Equal(t, []string{"l", "m"}, ids(selectForYield(units, 0, 2, 0, rng)))
	assert.Len(t, selectForYield(units, 1, 2, 0, rng), 4, "the last plate gets everything")

	picked := selectForYield(units, 0, 2, 1, rng)
	assert.NotEmpty(t, picked)
	assert.LessOrEqual(t, len(picked), 3)
}

func TestRebuildResult(t *testing.T) {
	s := testSettings()
	original := model.CalculationResult{
		SkippedItems: []model.SkippedItem{{ItemID: "x"}},
		OffcutUsage:  &model.OffcutUsage{TotalItemsOnOffcuts: 2},
	}
	patterns := []model.PatternGroup{{PatternID: "A", Count: 3, Yield: 90}, {PatternID: "B", Count: 1, Yield: 50}}

	r := rebuildResult(patterns, original, s.Plate)

	assert.Equal(t, 4, r.TotalPlates)
	assert.InDelta(t, 80.0, r.AverageYield, 1e-9)
	assert.Equal(t, "400", r.TotalCost.String())
	assert.Equal(t, original.SkippedItems, r.SkippedItems)
	assert.Same(t, original.OffcutUsage, r.OffcutUsage)
	assert.Equal(t, 90.0, r.Metrics.YieldExcludingLast)
}
