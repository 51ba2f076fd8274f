// Package gcode turns cutting patterns into G-code programs for CNC panel
// cutters and routers, and parses programs back into moves.
package gcode

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
)

// Config holds the machine parameters of a program. The tool diameter is
// taken from the kerf so every cut stays inside the gap the optimizer left.
type Config struct {
	Profile      string  `json:"profile"`
	FeedRate     float64 `json:"feed_rate"`   // mm/min
	PlungeRate   float64 `json:"plunge_rate"` // mm/min
	SpindleSpeed int     `json:"spindle_speed"`
	SafeZ        float64 `json:"safe_z"`
	CutDepth     float64 `json:"cut_depth"` // plate thickness plus breakthrough
	PassDepth    float64 `json:"pass_depth"`
	TabsPerSide  int     `json:"tabs_per_side"`
	TabWidth     float64 `json:"tab_width"`
	TabHeight    float64 `json:"tab_height"`
}

// DefaultConfig returns parameters for an 18 mm plate on a Grbl machine.
func DefaultConfig() Config {
	return Config{
		Profile:      "Grbl",
		FeedRate:     1500,
		PlungeRate:   500,
		SpindleSpeed: 18000,
		SafeZ:        5,
		CutDepth:     18,
		PassDepth:    6,
		TabWidth:     8,
		TabHeight:    2,
	}
}

// Generator produces G-code for cutting patterns.
type Generator struct {
	Config  Config
	profile Profile
}

func New(cfg Config) (*Generator, error) {
	p, ok := ProfileByName(cfg.Profile)
	if !ok {
		return nil, fmt.Errorf("unknown gcode profile %q (have %s)", cfg.Profile, strings.Join(ProfileNames(), ", "))
	}
	if cfg.CutDepth <= 0 || cfg.PassDepth <= 0 {
		return nil, errors.New("cut depth and pass depth must be positive")
	}
	if cfg.FeedRate <= 0 || cfg.PlungeRate <= 0 {
		return nil, errors.New("feed and plunge rates must be positive")
	}
	return &Generator{Config: cfg, profile: p}, nil
}

// GeneratePattern produces the program for one plate cut with the pattern.
// Pieces are cut along their outline offset by half the kerf.
func (g *Generator) GeneratePattern(pg model.PatternGroup, plate model.PlateConfig, cut model.CutConfig) string {
	var b strings.Builder

	g.writeHeader(&b, pg, plate, cut)
	for i, p := range pg.Placements {
		g.writePiece(&b, p, i+1, cut.Kerf/2)
	}
	g.writeFooter(&b)

	klog.V(3).Infof("gcode: pattern %s, %d pieces, %d bytes", pg.PatternID, len(pg.Placements), b.Len())
	return b.String()
}

// GenerateAll produces one program per pattern, in result order.
func (g *Generator) GenerateAll(result model.CalculationResult, settings model.Settings) []string {
	codes := make([]string, 0, len(result.Patterns))
	for _, pg := range result.Patterns {
		codes = append(codes, g.GeneratePattern(pg, settings.Plate, settings.Cut))
	}
	return codes
}

// SaveAll writes pattern-<id>.nc for every pattern into dir.
func (g *Generator) SaveAll(dir string, result model.CalculationResult, settings model.Settings) ([]string, error) {
	if len(result.Patterns) == 0 {
		return nil, errors.New("no patterns to generate")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	paths := make([]string, 0, len(result.Patterns))
	for i, code := range g.GenerateAll(result, settings) {
		path := filepath.Join(dir, fmt.Sprintf("pattern-%s.nc", result.Patterns[i].PatternID))
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *Generator) writeHeader(b *strings.Builder, pg model.PatternGroup, plate model.PlateConfig, cut model.CutConfig) {
	p := g.profile
	w, h := plate.Width, plate.Height
	source := "new plate"
	if pg.IsOffcut && pg.OffcutInfo != nil {
		w, h = pg.OffcutInfo.Width, pg.OffcutInfo.Height
		source = "offcut " + pg.OffcutInfo.Name
	}

	// Some dialects use parentheses for comments, so none inside the text.

	b.WriteString(g.comment(fmt.Sprintf("PlateCut G-code: pattern %s, cut %d times", pg.PatternID, pg.Count)))
	b.WriteString(g.comment(fmt.Sprintf("Plate: %.1f x %.1f mm, %s", w, h, source)))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, Yield: %.1f%%", len(pg.Placements), pg.Yield)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		cut.Kerf, g.Config.FeedRate, g.Config.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %.1fmm passes", g.Config.CutDepth, g.Config.PassDepth)))
	b.WriteString(g.comment("Profile: " + p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	if p.SpindleStart != "" {
		fmt.Fprintf(b, p.SpindleStart+"\n", g.Config.SpindleSpeed)
	}
	fmt.Fprintf(b, "%s Z%s\n", p.RapidMove, g.format(g.Config.SafeZ))
	fmt.Fprintf(b, "%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile
	b.WriteString(g.comment("=== Pattern complete ==="))
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
	for _, code := range p.EndCode {
		b.WriteString(strings.ReplaceAll(code, "[SafeZ]", g.format(g.Config.SafeZ)) + "\n")
	}
}

func (g *Generator) writePiece(b *strings.Builder, p model.Placement, n int, toolR float64) {
	x0 := p.X - toolR
	y0 := p.Y - toolR
	x1 := p.X + p.Width + toolR
	y1 := p.Y + p.Height + toolR

	rotated := ""
	if p.Rotated {
		rotated = " [rotated]"
	}
	b.WriteString(g.comment(fmt.Sprintf("--- Piece %d: %s %.1f x %.1f%s ---",
		n, p.Item.Name, p.Item.Width, p.Item.Height, rotated)))

	passes := g.passes()
	for pass := 1; pass <= passes; pass++ {
		depth := math.Min(float64(pass)*g.Config.PassDepth, g.Config.CutDepth)
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, passes, depth)))

		fmt.Fprintf(b, "%s X%s Y%s\n", g.profile.RapidMove, g.format(x0), g.format(y0))
		fmt.Fprintf(b, "%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Config.PlungeRate))

		if pass == passes && g.Config.TabsPerSide > 0 {
			g.writePerimeterWithTabs(b, x0, y0, x1, y1, depth)
		} else {
			g.writePerimeter(b, x0, y0, x1, y1)
		}
		fmt.Fprintf(b, "%s Z%s\n", g.profile.RapidMove, g.format(g.Config.SafeZ))
	}
	b.WriteString("\n")
}

func (g *Generator) passes() int {
	return max(1, int(math.Ceil(g.Config.CutDepth/g.Config.PassDepth-1e-9)))
}

func (g *Generator) writePerimeter(b *strings.Builder, x0, y0, x1, y1 float64) {
	p := g.profile
	fmt.Fprintf(b, "%s X%s Y%s F%s\n", p.FeedMove, g.format(x1), g.format(y0), g.format(g.Config.FeedRate))
	fmt.Fprintf(b, "%s X%s Y%s\n", p.FeedMove, g.format(x1), g.format(y1))
	fmt.Fprintf(b, "%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y1))
	fmt.Fprintf(b, "%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y0))
}

// writePerimeterWithTabs cuts the four sides, lifting to leave TabHeight
// of material under each evenly spaced tab.
func (g *Generator) writePerimeterWithTabs(b *strings.Builder, x0, y0, x1, y1, depth float64) {
	tabDepth := math.Max(0, depth-g.Config.TabHeight)
	corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
	for side := range 4 {
		from, to := corners[side], corners[side+1]
		g.writeSideWithTabs(b, from[0], from[1], to[0], to[1], depth, tabDepth)
	}
}

func (g *Generator) writeSideWithTabs(b *strings.Builder, x0, y0, x1, y1, cutDepth, tabDepth float64) {
	feed := g.profile.FeedMove
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length < 0.001 {
		return
	}
	nx, ny := dx/length, dy/length
	tw := g.Config.TabWidth
	spacing := length / float64(g.Config.TabsPerSide+1)

	for t := 1; t <= g.Config.TabsPerSide; t++ {
		center := spacing * float64(t)
		start, end := center-tw/2, center+tw/2
		if start <= 0 || end >= length {
			continue
		}
		fmt.Fprintf(b, "%s X%s Y%s F%s\n", feed, g.format(x0+nx*start), g.format(y0+ny*start), g.format(g.Config.FeedRate))
		fmt.Fprintf(b, "%s Z%s\n", feed, g.format(-tabDepth))
		fmt.Fprintf(b, "%s X%s Y%s\n", feed, g.format(x0+nx*end), g.format(y0+ny*end))
		fmt.Fprintf(b, "%s Z%s\n", feed, g.format(-cutDepth))
	}
	fmt.Fprintf(b, "%s X%s Y%s F%s\n", feed, g.format(x1), g.format(y1), g.format(g.Config.FeedRate))
}

func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

func (g *Generator) format(v float64) string {
	return strconv.FormatFloat(v, 'f', g.profile.DecimalPlaces, 64)
}
