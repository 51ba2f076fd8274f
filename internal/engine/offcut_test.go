package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PlateCut/internal/model"
)

func scrap(id string, w, h float64, qty int) model.OffcutPlate {
	return model.OffcutPlate{ID: id, Name: "Scrap " + id, Width: w, Height: h, Quantity: qty}
}

func TestExpandOffcuts_SmallestFirst(t *testing.T) {
	units := expandOffcuts([]model.OffcutPlate{scrap("big", 800, 800, 1), scrap("small", 300, 300, 2)})

	require.Len(t, units, 3)
	assert.Equal(t, "small-0", units[0].offcut.ID)
	assert.Equal(t, "small-1", units[1].offcut.ID)
	assert.Equal(t, "big-0", units[2].offcut.ID)
	assert.Equal(t, 1, units[0].offcut.Quantity)
	assert.Equal(t, "small", units[0].source.ID)
}

func TestGridOnOffcut(t *testing.T) {
	it := model.Item{ID: "p", Name: "P", Width: 200, Height: 100, Quantity: 10}

	plate, ok := gridOnOffcut(it, scrap("o", 450, 250, 1), 10, 0)

	require.True(t, ok)
	require.Len(t, plate.Placements, 4)
	assert.InDelta(t, 80000.0/112500*100, plate.Yield, 1e-9)
	last := plate.Placements[3]
	assert.Equal(t, 210.0, last.X)
	assert.Equal(t, 110.0, last.Y)
	assert.Equal(t, "p-3", last.Item.ID)
	assert.Equal(t, "p", last.Item.SourceID)
}

func TestGridOnOffcut_CappedByQuantity(t *testing.T) {
	it := model.Item{ID: "p", Name: "P", Width: 200, Height: 100, Quantity: 3}

	plate, ok := gridOnOffcut(it, scrap("o", 450, 250, 1), 10, 5)

	require.True(t, ok)
	require.Len(t, plate.Placements, 3)
	assert.True(t, plate.Placements[0].Rotated)
	assert.Equal(t, "p-5", plate.Placements[0].Item.ID)
}

func TestGridOnOffcut_NoFit(t *testing.T) {
	_, ok := gridOnOffcut(model.Item{ID: "p", Width: 500, Height: 500, Quantity: 1}, scrap("o", 300, 300, 1), 0, 0)
	assert.False(t, ok)
}

func TestRemainingItems(t *testing.T) {
	items := []model.Item{
		{ID: "a", Quantity: 3},
		{ID: "b", Quantity: 1},
	}
	fills := []offcutFill{{plate: model.Plate{Placements: []model.Placement{
		{Item: model.Item{ID: "a-0", SourceID: "a"}},
		{Item: model.Item{ID: "b-0", SourceID: "b"}},
	}}}}

	rest := remainingItems(items, fills)

	// The two pieces of "a" the offcut did not take continue after a-0.
	assert.Equal(t, []string{"a-1", "a-2"}, ids(rest))
	for _, u := range rest {
		assert.Equal(t, 1, u.Quantity)
		assert.Equal(t, "a", u.SourceID)
	}
}

func TestRemainingItems_UntouchedItemsStayWhole(t *testing.T) {
	items := []model.Item{{ID: "a", Quantity: 3}, {ID: "b", Quantity: 2}}
	fills := []offcutFill{{plate: model.Plate{Placements: []model.Placement{
		{Item: model.Item{ID: "a-4", SourceID: "a"}},
	}}}}

	rest := remainingItems(items, fills)

	assert.Equal(t, []string{"a-5", "a-6", "b"}, ids(rest))
	assert.Equal(t, 2, rest[2].Quantity)
}

func TestUnitNumber(t *testing.T) {
	n, ok := unitNumber(model.Item{ID: "ab12-7", SourceID: "ab12"})
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = unitNumber(model.Item{ID: "ab12"})
	assert.False(t, ok)
}

func TestCalculateWithOffcuts_FillsOffcutFirst(t *testing.T) {
	s := testSettings()
	items := []model.Item{{ID: "a", Name: "A", Width: 300, Height: 300, Quantity: 5}}
	offcuts := []model.OffcutPlate{scrap("s", 600, 600, 1)}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, offcuts)

	require.NoError(t, err)
	requireValid(t, result, items, s)
	require.Len(t, result.Patterns, 2)

	oc := result.Patterns[0]
	assert.Equal(t, "O-1", oc.PatternID)
	assert.True(t, oc.IsOffcut)
	assert.Len(t, oc.Placements, 4)
	require.NotNil(t, oc.OffcutInfo)
	assert.Equal(t, "600x600", oc.OffcutInfo.Size)
	assert.False(t, result.Patterns[1].IsOffcut)

	assert.Equal(t, 2, result.TotalPlates)
	assert.Equal(t, "100", result.TotalCost.String())
	assert.InDelta(t, 450000.0/1360000*100, result.AverageYield, 1e-9)

	usage := result.OffcutUsage
	require.NotNil(t, usage)
	assert.Equal(t, 4, usage.TotalItemsOnOffcuts)
	assert.Equal(t, "100", usage.CostSaved.String())
	assert.Empty(t, usage.Unused)
	require.Len(t, usage.Used, 1)
	assert.Equal(t, "s", usage.Used[0].Offcut.ID)
	assert.Equal(t, "O-1", usage.Used[0].PatternID)
}

func TestCalculateWithOffcuts_EverythingOnOffcuts(t *testing.T) {
	s := testSettings()
	items := []model.Item{{ID: "a", Name: "A", Width: 300, Height: 300, Quantity: 4}}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, []model.OffcutPlate{scrap("s", 600, 600, 2)})

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPlates)
	assert.True(t, result.TotalCost.IsZero())
	require.Len(t, result.OffcutUsage.Unused, 1)
	assert.Equal(t, 1, result.OffcutUsage.Unused[0].Quantity)
}

func TestCalculateWithOffcuts_IdenticalOffcutsGrouped(t *testing.T) {
	s := testSettings()
	items := []model.Item{{ID: "a", Name: "A", Width: 300, Height: 300, Quantity: 8}}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, []model.OffcutPlate{scrap("s", 600, 600, 2)})

	require.NoError(t, err)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, 2, result.Patterns[0].Count)
	assert.Len(t, result.OffcutUsage.Used, 2)
	requireValid(t, result, items, s)
}

func TestCalculateWithOffcuts_NoOffcuts(t *testing.T) {
	s := testSettings()
	s.UseGA = true
	items := mixedItems()

	withOffcuts, err := New(s).CalculateWithOffcuts(context.Background(), items, nil)
	require.NoError(t, err)

	plain := s
	plain.UseGA = false
	expected, err := New(plain).Calculate(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, expected.Patterns, withOffcuts.Patterns)
	assert.Nil(t, withOffcuts.OffcutUsage)
}

func TestCalculateWithOffcuts_OptimizationReturnsIdleOffcut(t *testing.T) {
	s := testSettings()
	s.OffcutMode = model.OffcutOptimization
	items := []model.Item{{ID: "a", Name: "A", Width: 300, Height: 300, Quantity: 5}}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, []model.OffcutPlate{scrap("s", 600, 600, 1)})

	require.NoError(t, err)
	// All five pieces fit on the one new plate anyway, so the offcut stays in stock.
	assert.Equal(t, 1, result.TotalPlates)
	assert.Empty(t, result.OffcutUsage.Used)
	require.Len(t, result.OffcutUsage.Unused, 1)
	requireValid(t, result, items, s)
}

func TestCalculateWithOffcuts_MixedTypes(t *testing.T) {
	s := testSettings()
	items := []model.Item{
		{ID: "a", Name: "A", Width: 400, Height: 200, Quantity: 1},
		{ID: "b", Name: "B", Width: 200, Height: 200, Quantity: 1},
	}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, []model.OffcutPlate{scrap("s", 600, 200, 1)})

	require.NoError(t, err)
	require.Len(t, result.Patterns, 1)
	assert.Len(t, result.Patterns[0].Placements, 2, "both types share the offcut")
	assert.InDelta(t, 100.0, result.Patterns[0].Yield, 1e-9)
	requireValid(t, result, items, s)
}

func TestCalculateWithOffcuts_PackerBeatsFixedGrid(t *testing.T) {
	s := testSettings()
	items := []model.Item{{ID: "a", Name: "A", Width: 100, Height: 100, Quantity: 50}}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, []model.OffcutPlate{scrap("s", 1000, 1000, 1)})

	require.NoError(t, err)
	// A 4x4 block would hold 16; the packer fits all 50 on the offcut.
	assert.Equal(t, 1, result.TotalPlates)
	require.Len(t, result.Patterns, 1)
	assert.True(t, result.Patterns[0].IsOffcut)
	assert.Equal(t, 50, result.OffcutUsage.TotalItemsOnOffcuts)
	assert.True(t, result.TotalCost.IsZero())
	requireValid(t, result, items, s)
}

func TestCalculateWithOffcuts_UnitIDsUnique(t *testing.T) {
	s := testSettings()
	items := []model.Item{{ID: "a", Name: "A", Width: 300, Height: 300, Quantity: 6}}

	result, err := New(s).CalculateWithOffcuts(context.Background(), items, []model.OffcutPlate{scrap("s", 320, 320, 1)})

	require.NoError(t, err)
	requireValid(t, result, items, s)
	require.Len(t, result.Patterns, 2)

	seen := make(map[string]string)
	for _, pg := range result.Patterns {
		for _, pl := range pg.Placements {
			if prev, dup := seen[pl.Item.ID]; dup {
				t.Errorf("unit %q on both %s and %s", pl.Item.ID, prev, pg.PatternID)
			}
			seen[pl.Item.ID] = pg.PatternID
		}
	}
	require.Len(t, result.OffcutUsage.Used, 1)
	assert.Equal(t, []string{"a-0"}, result.OffcutUsage.Used[0].PlacedItemIDs)
	assert.Equal(t, "O-1", seen["a-0"])
}
