package task

// Spiral is the center-outward task manager: the task
// grid is swept ring by ring, outward from the center cell, with Trigo
// choosing the ring's rotation direction (counterclockwise when true,
// clockwise when false) and Inverse choosing which corner of each ring
// the sweep starts from. Grid cells that fall outside the task grid
// (a non-square render area relative to its center) are skipped without
// breaking the ring order, so a clipped spiral still covers every
// in-bounds cell exactly once.
type Spiral struct {
	Trigo   bool
	Inverse bool
}

type gridPoint struct{ x, y int }

// ringPerimeter returns the grid cells forming the square ring of
// Chebyshev radius r around (cx,cy), in clockwise order starting at the
// ring's top-left corner; r=0 is just the center cell.
func ringPerimeter(cx, cy, r int) []gridPoint {
	if r == 0 {
		return []gridPoint{{cx, cy}}
	}
	pts := make([]gridPoint, 0, 8*r)
	for x := cx - r; x <= cx+r; x++ {
		pts = append(pts, gridPoint{x, cy - r})
	}
	for y := cy - r + 1; y <= cy+r; y++ {
		pts = append(pts, gridPoint{cx + r, y})
	}
	for x := cx + r - 1; x >= cx-r; x-- {
		pts = append(pts, gridPoint{x, cy + r})
	}
	for y := cy + r - 1; y >= cy-r+1; y-- {
		pts = append(pts, gridPoint{cx - r, y})
	}
	return pts
}

func reversePoints(pts []gridPoint) []gridPoint {
	out := make([]gridPoint, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// rotatePoints starts the cycle at its midpoint instead of index 0, the
// Inverse toggle's effect on which corner of the ring a sweep begins at.
func rotatePoints(pts []gridPoint) []gridPoint {
	if len(pts) <= 1 {
		return pts
	}
	mid := len(pts) / 2
	out := make([]gridPoint, 0, len(pts))
	out = append(out, pts[mid:]...)
	out = append(out, pts[:mid]...)
	return out
}

func (s Spiral) Units(area Rect, unitWidth, unitHeight int) []Unit {
	nw, nh := grid(area, unitWidth, unitHeight)
	total := nw * nh
	units := make([]Unit, 0, total)
	if total == 0 {
		return units
	}
	visited := make([]bool, total)
	cx, cy := nw/2, nh/2

	add := func(p gridPoint) {
		if p.x < 0 || p.y < 0 || p.x >= nw || p.y >= nh {
			return
		}
		idx := p.y*nw + p.x
		if visited[idx] {
			return
		}
		visited[idx] = true
		units = append(units, unitAt(area, unitWidth, unitHeight, p.x, p.y))
	}

	// The maximum ring radius that can still touch the grid, a safety
	// bound against an infinite loop should every cell already be
	// visited by some earlier, unexpectedly large ring.
	maxRing := cx
	for _, d := range []int{nw - 1 - cx, cy, nh - 1 - cy} {
		if d > maxRing {
			maxRing = d
		}
	}

	for r := 0; r <= maxRing && len(units) < total; r++ {
		pts := ringPerimeter(cx, cy, r)
		if s.Inverse {
			pts = rotatePoints(pts)
		}
		if s.Trigo {
			pts = reversePoints(pts)
		}
		for _, p := range pts {
			add(p)
		}
	}
	return units
}
