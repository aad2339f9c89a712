package task

// LineOrder names one of the eight reading orders: the
// first two letters are the fast axis (LR/RL = left-right/right-left
// over columns, TB/BT = top-bottom/bottom-top over rows) and the last
// two are the slow axis.
type LineOrder int

const (
	LRTB LineOrder = iota
	LRBT
	RLTB
	RLBT
	TBLR
	TBRL
	BTLR
	BTRL
)

// Line is the row-major/column-major task manager, with an optional
// Snake toggle that reverses every other row/column so the traversal
// path is contiguous (a printer's "boustrophedon" scan).
type Line struct {
	Order LineOrder
	Snake bool
}

func (l Line) columnMajor() bool {
	switch l.Order {
	case TBLR, TBRL, BTLR, BTRL:
		return true
	default:
		return false
	}
}

// reverseFast reports whether the fast axis (columns for the four
// row-major orders, rows for the four column-major orders) runs in
// decreasing index order.
func (l Line) reverseFast() bool {
	switch l.Order {
	case RLTB, RLBT, BTLR, BTRL:
		return true
	default:
		return false
	}
}

// reverseSlow reports whether the slow axis (rows for row-major orders,
// columns for column-major orders) runs in decreasing index order.
func (l Line) reverseSlow() bool {
	switch l.Order {
	case LRBT, RLBT, TBRL, BTRL:
		return true
	default:
		return false
	}
}

func axisRange(n int, reverse bool) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if reverse {
			out[i] = n - 1 - i
		} else {
			out[i] = i
		}
	}
	return out
}

func (l Line) Units(area Rect, unitWidth, unitHeight int) []Unit {
	nw, nh := grid(area, unitWidth, unitHeight)
	units := make([]Unit, 0, nw*nh)

	if !l.columnMajor() {
		rows := axisRange(nh, l.reverseSlow())
		for slowIdx, y := range rows {
			reverse := l.reverseFast()
			if l.Snake && slowIdx%2 == 1 {
				reverse = !reverse
			}
			for _, x := range axisRange(nw, reverse) {
				units = append(units, unitAt(area, unitWidth, unitHeight, x, y))
			}
		}
		return units
	}

	cols := axisRange(nw, l.reverseSlow())
	for slowIdx, x := range cols {
		reverse := l.reverseFast()
		if l.Snake && slowIdx%2 == 1 {
			reverse = !reverse
		}
		for _, y := range axisRange(nh, reverse) {
			units = append(units, unitAt(area, unitWidth, unitHeight, x, y))
		}
	}
	return units
}
