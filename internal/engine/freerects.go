package engine

// splitFreeRects removes the placed footprint from every free rectangle it
// overlaps. Each overlapped rectangle yields up to four maximal children
// (right, below, left, above) that may overlap each other. Rectangles
// contained in another are pruned afterwards.
func splitFreeRects(free []rect, placed rect) []rect {
	next := make([]rect, 0, len(free)+4)
	for _, r := range free {
		if !rectsOverlap(r, placed) {
			next = append(next, r)
			continue
		}
		next = append(next, splitAround(r, placed)...)
	}
	return pruneContained(next)
}

func splitAround(r, placed rect) []rect {
	var out []rect
	// Right strip (full height of r)
	if placed.x+placed.w < r.x+r.w-eps {
		out = append(out, rect{
			x: placed.x + placed.w, y: r.y,
			w: (r.x + r.w) - (placed.x + placed.w), h: r.h,
		})
	}
	// Strip below (full width of r)
	if placed.y+placed.h < r.y+r.h-eps {
		out = append(out, rect{
			x: r.x, y: placed.y + placed.h,
			w: r.w, h: (r.y + r.h) - (placed.y + placed.h),
		})
	}
	// Left strip
	if placed.x > r.x+eps {
		out = append(out, rect{
			x: r.x, y: r.y,
			w: placed.x - r.x, h: r.h,
		})
	}
	// Strip above
	if placed.y > r.y+eps {
		out = append(out, rect{
			x: r.x, y: r.y,
			w: r.w, h: placed.y - r.y,
		})
	}
	return out
}

// rectsOverlap returns true if two rectangles overlap (not just touch).
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w-eps && a.x+a.w > b.x+eps &&
		a.y < b.y+b.h-eps && a.y+a.h > b.y+eps
}

// pruneContained removes every rect contained in another. Of two identical
// rects the first one is kept.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			if containsRect(a, b) && j > i {
				// Identical: the later copy goes.
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+eps && outer.y <= inner.y+eps &&
		outer.x+outer.w >= inner.x+inner.w-eps &&
		outer.y+outer.h >= inner.y+inner.h-eps
}
