package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// chromosome is a candidate solution: a sort strategy plus a permutation of
// the strategy-sorted units.
type chromosome struct {
	strategy  SortStrategy
	order     []int // Indexes into the strategy-sorted unit list
	fitness   float64
	run       *packRun
	evaluated bool
}

// geneticOptimizer searches unit orderings for the maximal-rectangles packer.
type geneticOptimizer struct {
	opt    *Optimizer
	config model.GeneticSettings
	cfg    packConfig
	sorted map[SortStrategy][]model.Item
	n      int
	rng    *rand.Rand
}

func newGeneticOptimizer(opt *Optimizer, units []model.Item) *geneticOptimizer {
	g := &geneticOptimizer{
		opt:    opt,
		config: opt.Settings.Genetic,
		cfg:    opt.packConfig(),
		sorted: make(map[SortStrategy][]model.Item, len(sortStrategies)),
		n:      len(units),
		rng:    opt.newRand(),
	}
	for _, s := range sortStrategies {
		g.sorted[s] = sortItems(units, s)
	}
	return g
}

// OptimizeWithGA evolves unit orderings and packs each with the
// maximal-rectangles packer. Fitness favours fewer plates first; ctx is
// checked between generations and the best individual so far is returned
// when it is cancelled.
func (o *Optimizer) OptimizeWithGA(ctx context.Context, items []model.Item) (model.CalculationResult, error) {
	valid, skipped, err := validateItems(items, o.Settings.Plate, o.Settings.Cut, true)
	if err != nil {
		return model.CalculationResult{SkippedItems: skipped}, err
	}
	units := ExpandItems(valid)
	if len(units) == 0 {
		return buildResult(nil, o.Settings.Plate, skipped), nil
	}

	g := newGeneticOptimizer(o, units)
	best, err := g.optimize(ctx)
	if err != nil {
		return model.CalculationResult{SkippedItems: skipped}, err
	}
	klog.V(2).Infof("genetic search: %d plates, average yield %.1f%%", len(best.plates), averageYield(best.plates))
	return buildResult(best.plates, o.Settings.Plate, skipped), nil
}

func (g *geneticOptimizer) optimize(ctx context.Context) (*packRun, error) {
	population := g.initPopulation()
	g.evaluateAll(population)

	for gen := 0; gen < g.config.Generations; gen++ {
		if ctx.Err() != nil {
			klog.V(2).Infof("genetic search cancelled at generation %d", gen)
			break
		}
		sortByFitness(population)

		newPop := make([]chromosome, 0, g.config.PopulationSize)

		eliteCount := min(g.config.EliteCount, len(population))
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, g.copyChromosome(population[i]))
		}

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			newPop = append(newPop, child)
		}

		g.evaluateAll(newPop)
		population = newPop
		klog.V(3).Infof("generation %d: best fitness %.2f", gen, bestFitness(population))
	}

	sortByFitness(population)
	if population[0].run == nil {
		return nil, ErrNoIndividual
	}
	return population[0].run, nil
}

// initPopulation seeds one unshuffled chromosome per sort strategy and fills
// the rest with random strategies and permutations. The seeded chromosomes
// decode to the greedy sorted packings, so with elitism the search never
// returns more plates than the best of them; a fully random population would
// start elsewhere and can end worse.
func (g *geneticOptimizer) initPopulation() []chromosome {
	size := max(g.config.PopulationSize, 1)
	population := make([]chromosome, size)

	for i := range population {
		if i < len(sortStrategies) {
			population[i] = chromosome{strategy: sortStrategies[i], order: identity(g.n)}
			continue
		}
		population[i] = chromosome{
			strategy: sortStrategies[g.rng.Intn(len(sortStrategies))],
			order:    g.rng.Perm(g.n),
		}
	}
	return population
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// evaluateAll computes the fitness of every chromosome not yet evaluated.
// Decoding is independent per chromosome, so it runs on the worker pool.
func (g *geneticOptimizer) evaluateAll(population []chromosome) {
	var eg errgroup.Group
	eg.SetLimit(g.opt.workers())
	for i := range population {
		if population[i].evaluated {
			continue
		}
		eg.Go(func() error {
			c := &population[i]
			c.run, c.fitness = g.evaluate(*c)
			c.evaluated = true
			return nil
		})
	}
	_ = eg.Wait()
}

// evaluate decodes c and scores it. A chromosome that cannot be packed gets
// negative infinity.
func (g *geneticOptimizer) evaluate(c chromosome) (*packRun, float64) {
	run, err := g.opt.bestHeuristic(g.decode(c), g.cfg)
	if err != nil {
		return nil, math.Inf(-1)
	}

	avg := averageYield(run.plates)
	fitness := -1000 * float64(len(run.plates))
	if g.cfg.goal == model.GoalRemainingSpace {
		fitness += avg * 0.5
	} else {
		fitness += avg
	}
	return run, fitness
}

// decode builds the unit order a chromosome describes.
func (g *geneticOptimizer) decode(c chromosome) []model.Item {
	sorted := g.sorted[c.strategy]
	ordered := make([]model.Item, len(c.order))
	for i, idx := range c.order {
		ordered[i] = sorted[idx]
	}
	return ordered
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return best
}

// orderCrossover copies a random slice of parent1's order and fills the
// remaining positions with parent2's indexes in their original order. The
// strategy comes from either parent with equal chance.
func (g *geneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	child := chromosome{order: make([]int, n)}
	if n == 0 {
		child.strategy = parent1.strategy
		return child
	}

	start := g.rng.Intn(n)
	end := start + g.rng.Intn(n-start)

	used := make([]bool, n)
	filled := make([]bool, n)
	for i := start; i <= end; i++ {
		child.order[i] = parent1.order[i]
		used[parent1.order[i]] = true
		filled[i] = true
	}

	pos := 0
	for _, idx := range parent2.order {
		if used[idx] {
			continue
		}
		for filled[pos] {
			pos++
		}
		child.order[pos] = idx
		filled[pos] = true
	}

	if g.rng.Float64() > 0.5 {
		child.strategy = parent1.strategy
	} else {
		child.strategy = parent2.strategy
	}
	return child
}

// mutate re-rolls the strategy and swaps two positions, each with the
// configured probability.
func (g *geneticOptimizer) mutate(c *chromosome) {
	if g.rng.Float64() < g.config.MutationRate {
		c.strategy = sortStrategies[g.rng.Intn(len(sortStrategies))]
	}
	n := len(c.order)
	if n >= 2 && g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}
}

// copyChromosome creates a deep copy of a chromosome.
func (g *geneticOptimizer) copyChromosome(c chromosome) chromosome {
	cp := c
	cp.order = make([]int, len(c.order))
	copy(cp.order, c.order)
	return cp
}

func sortByFitness(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
}

func bestFitness(population []chromosome) float64 {
	best := math.Inf(-1)
	for _, c := range population {
		best = math.Max(best, c.fitness)
	}
	return best
}
