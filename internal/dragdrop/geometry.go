package dragdrop

// Point is a pointer position in the drop surface's coordinate space.
type Point struct {
	X, Y float64
}

// Rect is an element bounding box.
type Rect struct {
	X, Y, W, H float64
}

// midY returns the vertical midpoint of the rect.
func (r Rect) midY() float64 { return r.Y + r.H/2 }

// contains reports whether p falls inside the rect.
func (r Rect) contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// centerDistSq returns the squared distance from p to the rect center.
func (r Rect) centerDistSq(p Point) float64 {
	dx := p.X - (r.X + r.W/2)
	dy := p.Y - (r.Y + r.H/2)
	return dx*dx + dy*dy
}

// RowPosition computes the insertion point for a row-oriented list: above
// the hovered card's vertical midpoint inserts before it, below inserts
// after.
func RowPosition(card Rect, p Point) Position {
	if p.Y < card.midY() {
		return PositionBefore
	}
	return PositionAfter
}

// Cell pairs a card ID with its bounding box for grid hit-testing.
type Cell struct {
	CardID string
	Rect   Rect
}

// GridInsertion computes the insertion index for a grid-oriented list by
// the nearest-cell heuristic: find the cell nearest the pointer, then pick
// the gap before or after it from which side of the cell's horizontal
// center the pointer sits on (same-row gaps), falling back to the vertical
// midpoint for pointers above or below the cell's row. Returns the index
// in cells order at which to insert, i.e. len(cells) appends.
func GridInsertion(cells []Cell, p Point) int {
	if len(cells) == 0 {
		return 0
	}

	nearest := 0
	best := cells[0].Rect.centerDistSq(p)
	for i := 1; i < len(cells); i++ {
		if d := cells[i].Rect.centerDistSq(p); d < best {
			best = d
			nearest = i
		}
	}

	r := cells[nearest].Rect
	sameRow := p.Y >= r.Y && p.Y < r.Y+r.H
	if sameRow {
		if p.X < r.X+r.W/2 {
			return nearest
		}
		return nearest + 1
	}
	if p.Y < r.midY() {
		return nearest
	}
	return nearest + 1
}
