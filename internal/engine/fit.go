package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/PlateCut/internal/model"
)

// eps absorbs float noise in fit and containment checks.
const eps = 0.001

type rect struct {
	x, y, w, h float64
}

func (r rect) area() float64 {
	return r.w * r.h
}

// orient returns the placed width and height of it.
func orient(it model.Item, rotated bool) (float64, float64) {
	if rotated {
		return it.Height, it.Width
	}
	return it.Width, it.Height
}

// canPlace reports whether it, plus kerf on the right and bottom, fits in r.
func canPlace(it model.Item, r rect, kerf float64, rotated bool) bool {
	w, h := orient(it, rotated)
	return w+kerf <= r.w+eps && h+kerf <= r.h+eps
}

// RotationStrategy controls which orientation the guillotine packer picks
// when both fit.
type RotationStrategy int

const (
	RotateMaxSpace RotationStrategy = iota // Keep the larger residual rectangle
	RotateFitSpace                         // Match the free space's aspect ratio
	RotatePrefer                           // Always rotate
	RotateNever                            // Never rotate
)

func (s RotationStrategy) String() string {
	switch s {
	case RotateMaxSpace:
		return "max-space"
	case RotateFitSpace:
		return "fit-space"
	case RotatePrefer:
		return "prefer-rotate"
	case RotateNever:
		return "no-rotate"
	}
	return fmt.Sprintf("rotation(%d)", int(s))
}

// decideRotation picks an orientation for it in r. When only one orientation
// fits it wins regardless of strategy. ok is false when neither fits.
func decideRotation(it model.Item, r rect, kerf float64, strategy RotationStrategy) (ok, rotated bool) {
	normal := canPlace(it, r, kerf, false)
	turned := canPlace(it, r, kerf, true)

	switch {
	case !normal && !turned:
		return false, false
	case normal && !turned:
		return true, false
	case !normal && turned:
		return true, true
	}

	switch strategy {
	case RotatePrefer:
		return true, true
	case RotateNever:
		return true, false
	case RotateFitSpace:
		spaceRatio := r.w / r.h
		diffNormal := math.Abs(spaceRatio - it.Width/it.Height)
		diffTurned := math.Abs(spaceRatio - it.Height/it.Width)
		return true, diffTurned < diffNormal
	default:
		w, h := orient(it, false)
		normalMax := maxArea(guillotineSplit(r, w, h, kerf))
		w, h = orient(it, true)
		turnedMax := maxArea(guillotineSplit(r, w, h, kerf))
		return true, turnedMax > normalMax
	}
}

// guillotineSplit cuts what is left of r after placing a w x h piece in its
// top-left corner. The right child spans the full height of r, the lower
// child only the piece's width.
func guillotineSplit(r rect, w, h, kerf float64) []rect {
	var out []rect
	if r.w > w+kerf+eps {
		out = append(out, rect{x: r.x + w + kerf, y: r.y, w: r.w - w - kerf, h: r.h})
	}
	if r.h > h+kerf+eps {
		out = append(out, rect{x: r.x, y: r.y + h + kerf, w: w, h: r.h - h - kerf})
	}
	return out
}

func maxArea(rects []rect) float64 {
	best := 0.0
	for _, r := range rects {
		best = math.Max(best, r.area())
	}
	return best
}
