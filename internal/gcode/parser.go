package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType classifies a toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: positioning, not cutting
	MoveFeed                    // G1 in the XY plane
	MovePlunge                  // G1 with Z decreasing only
	MoveRetract                 // Z increasing only
)

// Move is one parsed G0/G1 command.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Length is the XY distance travelled.
func (m Move) Length() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// ParseGCode parses a program into moves, tracking absolute position.
// Lines other than G0/G1 are ignored.
func ParseGCode(code string) []Move {
	var moves []Move
	curX, curY, curZ, curFeed := 0.0, 0.0, 0.0, 0.0

	for _, line := range strings.Split(code, "\n") {
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.Index(line, "("); idx >= 0 {
			if end := strings.LastIndex(line, ")"); end > idx {
				line = line[:idx] + line[end+1:]
			} else {
				line = line[:idx]
			}
		}
		upper := strings.ToUpper(strings.TrimSpace(line))
		if upper == "" {
			continue
		}

		fields := strings.Fields(upper)
		var isRapid bool
		switch fields[0] {
		case "G0", "G00":
			isRapid = true
		case "G1", "G01":
		default:
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})
		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}
	return moves
}

func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Summary aggregates a parsed program.
type Summary struct {
	CutLength   float64 `json:"cut_length_mm"`
	RapidLength float64 `json:"rapid_length_mm"`
	Plunges     int     `json:"plunges"`
	CutMinutes  float64 `json:"cut_minutes"` // feed moves only; rapids and plunges excluded
}

// Summarize totals the cutting and rapid distances of moves.
func Summarize(moves []Move) Summary {
	var s Summary
	for _, m := range moves {
		switch m.Type {
		case MoveFeed:
			l := m.Length()
			s.CutLength += l
			if m.FeedRate > 0 {
				s.CutMinutes += l / m.FeedRate
			}
		case MoveRapid:
			s.RapidLength += m.Length()
		case MovePlunge:
			s.Plunges++
		}
	}
	return s
}
