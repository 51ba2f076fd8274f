package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PlateCut/internal/model"
)

// dxfTolerance is the endpoint distance under which loose segments are joined.
const dxfTolerance = 0.01

type point struct{ X, Y float64 }

// segment is a line between two points, used for chaining disconnected
// LINE and ARC entities into closed outlines.
type segment struct {
	start point
	end   point
}

// bounds is an axis-aligned bounding box.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func boundsOf(pts []point) bounds {
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		b.minX = math.Min(b.minX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxX = math.Max(b.maxX, p.X)
		b.maxY = math.Max(b.maxY, p.Y)
	}
	return b
}

func (b bounds) width() float64  { return b.maxX - b.minX }
func (b bounds) height() float64 { return b.maxY - b.minY }

// ImportDXF imports items from a DXF file. Each closed shape (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) becomes a rectangle the size of
// its bounding box. Shapes of the same size are merged into one item.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []bounds
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, lwPolylineBounds(e))

		case *entity.Circle:
			r := e.Radius
			shapes = append(shapes, bounds{e.Center[0] - r, e.Center[1] - r, e.Center[0] + r, e.Center[1] + r})

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			segments = append(segments, pointsToSegments(pts)...)

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	for _, chain := range chainSegments(segments, dxfTolerance) {
		shapes = append(shapes, boundsOf(chain))
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	index := map[string]int{}
	for _, b := range shapes {
		w, h := roundTenth(b.width()), roundTenth(b.height())
		if w < 0.1 || h < 0.1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", w, h))
			continue
		}
		key := fmt.Sprintf("%gx%g", w, h)
		if i, ok := index[key]; ok {
			result.Items[i].Quantity++
			continue
		}
		n := len(result.Items)
		item := model.NewItem(fmt.Sprintf("DXF %s", key), w, h, 1)
		item.ID = stableID("dxf", key)
		item.Color = model.PaletteColor(n)
		index[key] = n
		result.Items = append(result.Items, item)
	}

	return result
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// lwPolylineBounds returns the bounding box of a polyline, including the
// outward extent of bulged (arc) segments.
func lwPolylineBounds(lw *entity.LwPolyline) bounds {
	var pts []point
	for i, v := range lw.Vertices {
		current := point{v[0], v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) > 1e-9 {
			next := lw.Vertices[(i+1)%len(lw.Vertices)]
			pts = append(pts, bulgeArcPoints(current, point{next[0], next[1]}, bulge, 32)...)
			continue
		}
		pts = append(pts, current)
	}
	return boundsOf(pts)
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 point, bulge float64, numSegments int) []point {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-9 {
		return []point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := range pts {
		angle := startAngle + float64(i)/float64(numSegments)*(endAngle-startAngle)
		pts[i] = point{cx + radius*math.Cos(angle), cy + radius*math.Sin(angle)}
	}
	return pts
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := range pts {
		angle := startRad + float64(i)/float64(numSegments)*(endRad-startRad)
		pts[i] = point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []point) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines. Open
// chains are dropped. Outlines come back largest first.
func chainSegments(segs []segment, tolerance float64) [][]point {
	used := make([]bool, len(segs))
	var outlines [][]point

	for start := range segs {
		if used[start] {
			continue
		}
		chain := []point{segs[start].start, segs[start].end}
		used[start] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea computes the absolute area of a polygon using the shoelace formula.
func outlineArea(o []point) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := range n {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}
