// Package task implements the task decomposition a render area is split
// into: task units over a rectangular render area, the Line and Spiral
// traversal managers that order those units, and the StandAlone executor
// that drives a pond worker pool over the ordered list with periodic
// checkpointing.
package task

// Rect is a half-open pixel rectangle [X0,X1) x [Y0,Y1).
type Rect struct {
	X0, Y0, X1, Y1 int
}

func (r Rect) Width() int  { return r.X1 - r.X0 }
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// Unit is one task unit: a sub-rectangle of the render area, clipped at
// the image boundary so edge units may be smaller than TaskWidth x
// TaskHeight.
type Unit struct {
	Rect Rect
}

// Manager is the capability every traversal order implements: given the
// render area and the unit size, produce the ordered list of task units
// a task executor will walk.
type Manager interface {
	Units(area Rect, unitWidth, unitHeight int) []Unit
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func unitAt(area Rect, unitWidth, unitHeight, gx, gy int) Unit {
	x0 := area.X0 + gx*unitWidth
	y0 := area.Y0 + gy*unitHeight
	x1 := x0 + unitWidth
	y1 := y0 + unitHeight
	if x1 > area.X1 {
		x1 = area.X1
	}
	if y1 > area.Y1 {
		y1 = area.Y1
	}
	return Unit{Rect: Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func grid(area Rect, unitWidth, unitHeight int) (nw, nh int) {
	return ceilDiv(area.Width(), unitWidth), ceilDiv(area.Height(), unitHeight)
}
