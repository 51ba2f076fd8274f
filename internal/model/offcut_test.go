package model

import (
	"testing"
)

func TestDetectLeftoversEmptyPattern(t *testing.T) {
	pg := PatternGroup{PatternID: "A", Count: 2}
	leftovers := DetectLeftovers(pg, 1820, 910, 20, 4)
	if len(leftovers) != 1 {
		t.Fatalf("expected 1 leftover for empty pattern, got %d", len(leftovers))
	}
	l := leftovers[0]
	if l.Width != 1780 || l.Height != 870 {
		t.Errorf("expected full effective area as leftover, got %.0fx%.0f", l.Width, l.Height)
	}
	if l.Count != 2 {
		t.Errorf("expected leftover count to follow pattern count, got %d", l.Count)
	}
}

func TestDetectLeftoversRightStrip(t *testing.T) {
	pg := PatternGroup{
		PatternID: "A",
		Count:     1,
		Placements: []Placement{
			{Item: Item{Name: "P1"}, X: 20, Y: 20, Width: 1000, Height: 866},
		},
	}
	leftovers := DetectLeftovers(pg, 1820, 910, 20, 4)
	foundRight := false
	for _, l := range leftovers {
		if l.X == 1024 && l.Width == 776 && l.Height == 870 {
			foundRight = true
		}
	}
	if !foundRight {
		t.Errorf("expected right strip 776x870 at x=1024, got %+v", leftovers)
	}
}

func TestDetectLeftoversBottomStrip(t *testing.T) {
	pg := PatternGroup{
		PatternID: "B",
		Count:     1,
		Placements: []Placement{
			{Item: Item{Name: "P1"}, X: 20, Y: 20, Width: 1776, Height: 400},
		},
	}
	leftovers := DetectLeftovers(pg, 1820, 910, 20, 4)
	foundBottom := false
	for _, l := range leftovers {
		if l.Y == 424 && l.Height == 466 {
			foundBottom = true
		}
	}
	if !foundBottom {
		t.Errorf("expected bottom strip at y=424, got %+v", leftovers)
	}
}

func TestDetectLeftoversIgnoresSlivers(t *testing.T) {
	pg := PatternGroup{
		PatternID: "C",
		Count:     1,
		Placements: []Placement{
			{Item: Item{Name: "Full"}, X: 20, Y: 20, Width: 1750, Height: 840},
		},
	}
	leftovers := DetectLeftovers(pg, 1820, 910, 20, 4)
	if len(leftovers) != 0 {
		t.Errorf("expected no leftovers for slivers under the minimum, got %+v", leftovers)
	}
}

func TestDetectLeftoversSortedByArea(t *testing.T) {
	pg := PatternGroup{
		PatternID: "D",
		Count:     1,
		Placements: []Placement{
			{Item: Item{Name: "P"}, X: 20, Y: 20, Width: 600, Height: 500},
		},
	}
	leftovers := DetectLeftovers(pg, 1820, 910, 20, 4)
	for i := 1; i < len(leftovers); i++ {
		if leftovers[i].Area() > leftovers[i-1].Area() {
			t.Errorf("leftovers not sorted by area descending at %d", i)
		}
	}
}

func TestLeftoverToOffcutPlate(t *testing.T) {
	l := Leftover{PatternID: "A", Width: 500, Height: 300, Count: 3}
	o := l.ToOffcutPlate()
	if o.Width != 500 || o.Height != 300 || o.Quantity != 3 {
		t.Errorf("unexpected offcut %+v", o)
	}
	if o.ID == "" || o.Name == "" {
		t.Error("expected generated ID and name")
	}
	if o.Size() != "500x300" {
		t.Errorf("expected size 500x300, got %s", o.Size())
	}
}

func TestOffcutUsagePlatesUsed(t *testing.T) {
	u := OffcutUsage{Used: []OffcutUsageEntry{{PlatesUsed: 1}, {PlatesUsed: 2}}}
	if u.PlatesUsed() != 3 {
		t.Errorf("expected 3 plates used, got %d", u.PlatesUsed())
	}
}
