package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/piwi3910/PlateCut/internal/model"
)

func makeGAOptimizer() *Optimizer {
	s := testSettings()
	s.UseGA = true
	s.Cut = model.CutConfig{Kerf: 3, Margin: 10}
	return New(s)
}

func TestGeneticOptimizerPlacesAllParts(t *testing.T) {
	opt := makeGAOptimizer()
	items := multiPlateItems()

	result, err := opt.OptimizeWithGA(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := result.PlacedItemCount(); got != 14 {
		t.Errorf("expected 14 pieces placed, got %d", got)
	}
	if v := VerifyResult(result, items, opt.Settings.Plate, opt.Settings.Cut); len(v) != 0 {
		t.Errorf("unexpected violations: %v", v)
	}
}

func TestGeneticOptimizerBetterThanOrEqualToGreedy(t *testing.T) {
	opt := makeGAOptimizer()
	items := multiPlateItems()

	greedy, err := opt.CalculateMaximalRectangles(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ga, err := opt.OptimizeWithGA(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The area-sorted identity chromosome reproduces the greedy packing and
	// elitism keeps it, so the search never ends up worse.
	if ga.TotalPlates > greedy.TotalPlates {
		t.Errorf("genetic search used %d plates, greedy used %d", ga.TotalPlates, greedy.TotalPlates)
	}
}

func TestGeneticOptimizerDeterministic(t *testing.T) {
	items := multiPlateItems()

	a, err := makeGAOptimizer().OptimizeWithGA(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := makeGAOptimizer().OptimizeWithGA(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.TotalPlates != b.TotalPlates || a.AverageYield != b.AverageYield {
		t.Errorf("same seed gave different results: %d/%.3f vs %d/%.3f",
			a.TotalPlates, a.AverageYield, b.TotalPlates, b.AverageYield)
	}
}

func TestGeneticOptimizerCancelled(t *testing.T) {
	opt := makeGAOptimizer()
	items := multiPlateItems()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := opt.OptimizeWithGA(ctx, items)
	if err != nil {
		t.Fatalf("cancelled search should return the initial best, got %v", err)
	}
	if result.TotalPlates == 0 {
		t.Error("expected a layout from the initial population")
	}
}

func TestGeneticOptimizerPartTooLargeForPlate(t *testing.T) {
	opt := makeGAOptimizer()

	result, err := opt.OptimizeWithGA(context.Background(), []model.Item{
		{ID: "ok", Name: "Ok", Width: 100, Height: 100, Quantity: 2},
		{ID: "big", Name: "TooBig", Width: 5000, Height: 3000, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SkippedItems) != 1 {
		t.Errorf("expected 1 skipped item, got %d", len(result.SkippedItems))
	}
}

func TestOrderCrossoverPreservesAllGenes(t *testing.T) {
	ga := &geneticOptimizer{config: model.DefaultGeneticSettings(), rng: rand.New(rand.NewSource(123))}

	parent1 := chromosome{strategy: SortArea, order: []int{0, 1, 2, 3, 4}}
	parent2 := chromosome{strategy: SortWidth, order: []int{4, 3, 2, 1, 0}}

	for i := 0; i < 50; i++ {
		child := ga.orderCrossover(parent1, parent2)

		if len(child.order) != 5 {
			t.Fatalf("expected 5 genes, got %d", len(child.order))
		}
		seen := make(map[int]bool)
		for _, idx := range child.order {
			if seen[idx] {
				t.Errorf("duplicate index %d in child %v", idx, child.order)
			}
			seen[idx] = true
		}
		if child.strategy != SortArea && child.strategy != SortWidth {
			t.Errorf("child strategy %v from neither parent", child.strategy)
		}
	}
}

func TestMutateKeepsPermutation(t *testing.T) {
	cfg := model.DefaultGeneticSettings()
	cfg.MutationRate = 1
	ga := &geneticOptimizer{config: cfg, rng: rand.New(rand.NewSource(9))}
	c := chromosome{strategy: SortArea, order: []int{0, 1, 2, 3}}

	for i := 0; i < 20; i++ {
		ga.mutate(&c)
	}

	sum := 0
	for _, idx := range c.order {
		sum += idx
	}
	if len(c.order) != 4 || sum != 6 {
		t.Errorf("mutation broke the permutation: %v", c.order)
	}
}

func TestCopyChromosomeIsDeep(t *testing.T) {
	ga := &geneticOptimizer{}
	c := chromosome{order: []int{0, 1, 2}}

	cp := ga.copyChromosome(c)
	cp.order[0] = 2

	if c.order[0] != 0 {
		t.Error("copy shares the order slice")
	}
}
