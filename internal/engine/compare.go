package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/PlateCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the calculation result and headline figures for a
// single scenario. Err is set when the scenario could not be calculated.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       model.CalculationResult
	Plates       int
	AverageYield float64
	TotalCost    decimal.Decimal
	SkippedCount int
	Err          error
}

// CompareScenarios runs the engine for each scenario and returns the results
// in scenario order. Offcuts are used when given.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, items []model.Item, offcuts []model.OffcutPlate) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := New(scenario.Settings)
		var result model.CalculationResult
		var err error
		if len(offcuts) > 0 {
			result, err = opt.CalculateWithOffcuts(ctx, items, offcuts)
		} else {
			result, err = opt.Calculate(ctx, items)
		}

		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Result:       result,
			Plates:       result.TotalPlates,
			AverageYield: result.AverageYield,
			TotalCost:    result.TotalCost,
			SkippedCount: len(result.SkippedItems),
			Err:          err,
		})
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: the other goal
	altGoal := base
	if base.Goal == model.GoalRemainingSpace {
		altGoal.Goal = model.GoalYield
		scenarios = append(scenarios, ComparisonScenario{Name: "Yield Goal", Settings: altGoal})
	} else {
		altGoal.Goal = model.GoalRemainingSpace
		scenarios = append(scenarios, ComparisonScenario{Name: "Remaining Space Goal", Settings: altGoal})
	}

	// Scenario: toggle the genetic search
	ga := base
	ga.UseGA = !base.UseGA
	name := "Genetic Search"
	if base.UseGA {
		name = "Two-Stage Only"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: ga})

	// Scenario: toggle grid grouping
	grid := base
	grid.UseGridGrouping = !base.UseGridGrouping
	name = "Grid Grouping"
	if base.UseGridGrouping {
		name = "No Grid Grouping"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: grid})

	// Scenario: Tighter kerf (simulate thinner blade)
	if base.Cut.Kerf > 1.0 {
		tightKerf := base
		tightKerf.Cut.Kerf = base.Cut.Kerf * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", tightKerf.Cut.Kerf),
			Settings: tightKerf,
		})
	}

	// Scenario: No margin
	if base.Cut.Margin > 0 {
		noMargin := base
		noMargin.Cut.Margin = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Margin",
			Settings: noMargin,
		})
	}

	return scenarios
}
