package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ColorPalette is the default set of display colors handed out to new items.
var ColorPalette = []string{
	"#4CAF50", // green
	"#2196F3", // blue
	"#FF9800", // orange
	"#9C27B0", // purple
	"#00BCD4", // cyan
	"#F44336", // red
	"#FFEB3B", // yellow
	"#795548", // brown
	"#607D8B", // blue grey
	"#E91E63", // pink
}

// PaletteColor returns the palette color for the n-th item, wrapping around.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return ColorPalette[n%len(ColorPalette)]
}

// Item represents a rectangular product to be cut from plates.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Quantity int     `json:"quantity"`
	Color    string  `json:"color,omitempty"` // Presentation only, never interpreted by the engine

	// SourceID is set on unit instances and names the item they were expanded from.
	SourceID string `json:"source_id,omitempty"`
}

// BaseID returns the ID of the item this piece was expanded from.
func (it Item) BaseID() string {
	if it.SourceID != "" {
		return it.SourceID
	}
	return it.ID
}

func NewItem(name string, w, h float64, qty int) Item {
	return Item{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    w,
		Height:   h,
		Quantity: qty,
	}
}

// Area returns the area of a single piece in square mm.
func (it Item) Area() float64 {
	return it.Width * it.Height
}

// PlateConfig describes the raw stock plate.
type PlateConfig struct {
	Width     float64         `json:"width"`  // mm
	Height    float64         `json:"height"` // mm
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CutConfig holds the blade kerf and the uniform edge margin.
type CutConfig struct {
	Kerf   float64 `json:"kerf"`   // Material lost per cut in mm
	Margin float64 `json:"margin"` // Border kept clear on all four edges in mm
}

// EffectiveSize returns the packable width and height of a plate.
// Either value may be zero or negative when the margin eats the whole plate.
func (p PlateConfig) EffectiveSize(cut CutConfig) (float64, float64) {
	return p.Width - 2*cut.Margin, p.Height - 2*cut.Margin
}

// Goal selects what the optimizer favors once plate count is tied.
type Goal string

const (
	GoalYield          Goal = "yield"           // Highest material yield
	GoalRemainingSpace Goal = "remaining-space" // Large, regular leftover regions
)

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	return g == GoalYield || g == GoalRemainingSpace
}

// OffcutMode selects how existing leftover plates are filled.
type OffcutMode string

const (
	OffcutConsumption  OffcutMode = "consumption"  // Best-yield fit per offcut
	OffcutOptimization OffcutMode = "optimization" // Same search, caller may reject non-improving offcuts
)

// Placement is one item instance bound to a position on a plate.
// Width and Height are already rotation-resolved; Rotated is informational.
type Placement struct {
	Item    Item    `json:"item"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Rotated bool    `json:"rotated"`
}

// Area returns the placed area.
func (p Placement) Area() float64 {
	return p.Width * p.Height
}

// Plate is one physical raw plate produced by a packer.
type Plate struct {
	ID         string      `json:"id"`
	Placements []Placement `json:"placements"`
	UsedArea   float64     `json:"used_area"`
	Yield      float64     `json:"yield"`
}

// PatternGroup is a placement layout shared by Count identical plates.
type PatternGroup struct {
	PatternID  string      `json:"pattern_id"`
	Placements []Placement `json:"placements"`
	Count      int         `json:"count"`
	Yield      float64     `json:"yield"`
	IsOffcut   bool        `json:"is_offcut,omitempty"`
	OffcutInfo *OffcutInfo `json:"offcut_info,omitempty"`
}

// PlacedCount returns the number of pieces cut across all plates of the pattern.
func (pg PatternGroup) PlacedCount() int {
	return len(pg.Placements) * pg.Count
}

// UsedArea returns the placed area on a single plate of the pattern.
func (pg PatternGroup) UsedArea() float64 {
	var total float64
	for _, p := range pg.Placements {
		total += p.Area()
	}
	return total
}

// SkipReason explains why an item was left out of a run.
type SkipReason string

const (
	SkipTooLarge SkipReason = "TOO_LARGE"
	SkipOther    SkipReason = "OTHER"
)

// SkippedItem reports an item filtered out before packing.
type SkippedItem struct {
	ItemID   string     `json:"item_id"`
	ItemName string     `json:"item_name"`
	Reason   SkipReason `json:"reason"`
	Message  string     `json:"message"`
}

// DefaultTargetYield is the yield percentage all-but-last plates should reach.
const DefaultTargetYield = 85.0

// YieldMetrics holds secondary yield figures that treat the last pattern as a remainder.
type YieldMetrics struct {
	YieldExcludingLast float64 `json:"yield_excluding_last"`
	LastPatternYield   float64 `json:"last_pattern_yield"`
	MeetsYieldTarget   bool    `json:"meets_yield_target"`
	TargetYield        float64 `json:"target_yield"`
}

// CalculationResult is the engine's only output.
type CalculationResult struct {
	Patterns     []PatternGroup  `json:"patterns"`
	TotalPlates  int             `json:"total_plates"`
	AverageYield float64         `json:"average_yield"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	SkippedItems []SkippedItem   `json:"skipped_items,omitempty"`
	OffcutUsage  *OffcutUsage    `json:"offcut_usage,omitempty"`
	Metrics      *YieldMetrics   `json:"metrics,omitempty"`
}

// PlacedItemCount returns the number of pieces cut across every pattern.
func (r CalculationResult) PlacedItemCount() int {
	total := 0
	for _, p := range r.Patterns {
		total += p.PlacedCount()
	}
	return total
}

// SummaryFromPatterns re-derives the plate count and the count-weighted
// average yield from the pattern groups alone.
func (r CalculationResult) SummaryFromPatterns() (int, float64) {
	plates := 0
	var weighted float64
	for _, p := range r.Patterns {
		plates += p.Count
		weighted += p.Yield * float64(p.Count)
	}
	if plates == 0 {
		return 0, 0
	}
	return plates, weighted / float64(plates)
}

// GeneticSettings holds parameters for the genetic algorithm optimizer.
type GeneticSettings struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	MutationRate   float64 `json:"mutation_rate"`
	TournamentSize int     `json:"tournament_size"`
	EliteCount     int     `json:"elite_count"`
	Workers        int     `json:"workers,omitempty"` // 0 = GOMAXPROCS
}

// PatternLabel returns the label for the n-th pattern group: A..Z, then AA, AB, ...
func PatternLabel(n int) string {
	label := ""
	for n >= 0 {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
	}
	return label
}

func DefaultGeneticSettings() GeneticSettings {
	return GeneticSettings{
		PopulationSize: 20,
		Generations:    15,
		MutationRate:   0.2,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// Settings holds everything one engine run needs besides the item list.
type Settings struct {
	Plate           PlateConfig     `json:"plate"`
	Cut             CutConfig       `json:"cut"`
	Goal            Goal            `json:"goal"`
	UseGA           bool            `json:"use_ga"`
	UseGridGrouping bool            `json:"use_grid_grouping"`
	OffcutMode      OffcutMode      `json:"offcut_mode"`
	Seed            int64           `json:"seed"`
	Genetic         GeneticSettings `json:"genetic"`
}

func DefaultPlateConfig() PlateConfig {
	return PlateConfig{Width: 1820, Height: 910, UnitPrice: decimal.NewFromInt(5000)}
}

func DefaultCutConfig() CutConfig {
	return CutConfig{Kerf: 4, Margin: 20}
}

func DefaultSettings() Settings {
	return Settings{
		Plate:           DefaultPlateConfig(),
		Cut:             DefaultCutConfig(),
		Goal:            GoalYield,
		UseGA:           false,
		UseGridGrouping: false,
		OffcutMode:      OffcutConsumption,
		Seed:            42,
		Genetic:         DefaultGeneticSettings(),
	}
}

// Job ties items, owned offcuts and settings together for save/load.
type Job struct {
	Name     string             `json:"name"`
	Items    []Item             `json:"items"`
	Offcuts  []OffcutPlate      `json:"offcuts"`
	Settings Settings           `json:"settings"`
	Result   *CalculationResult `json:"result,omitempty"`
}

func NewJob() Job {
	return Job{
		Name:     "Untitled",
		Items:    []Item{},
		Offcuts:  []OffcutPlate{},
		Settings: DefaultSettings(),
	}
}
