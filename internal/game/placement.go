package game

import "github.com/zyedidia/generic/mapset"

// PlacementResult is the outcome of a placement attempt.
type PlacementResult uint8

const (
	PlaceSuccess PlacementResult = iota
	PlaceUnable
	PlaceWrongLength
)

func (r PlacementResult) String() string {
	switch r {
	case PlaceSuccess:
		return "ship was placed successfully"
	case PlaceUnable:
		return "unable to place ship here"
	case PlaceWrongLength:
		return "no ship with this length in hand"
	}
	return "unknown placement result"
}

// Orientation is one of the three hex axes a straight ship can lie on.
type Orientation uint8

const (
	VerticalLeft  Orientation = iota // (x, y+i)
	VerticalRight                    // (x+i, y+i)
	Horizontal                       // (x+i, y)
)

var orientations = []Orientation{VerticalLeft, VerticalRight, Horizontal}

// ParseOrientation accepts the short names vl, vr and h.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "vl":
		return VerticalLeft, true
	case "vr":
		return VerticalRight, true
	case "h":
		return Horizontal, true
	}
	return 0, false
}

func (o Orientation) String() string {
	switch o {
	case VerticalLeft:
		return "vl"
	case VerticalRight:
		return "vr"
	}
	return "h"
}

// Line returns the cells of a straight ship of the given length starting at
// (x, y).
func Line(x, y, length int, o Orientation) []Position {
	out := make([]Position, length)
	for i := range out {
		switch o {
		case VerticalLeft:
			out[i] = Position{x, y + i}
		case VerticalRight:
			out[i] = Position{x + i, y + i}
		default:
			out[i] = Position{x + i, y}
		}
	}
	return out
}

// Place validates the candidate cells as one ship and, only if every check
// passes, commits it to the board.
func (p *Player) Place(cells []Position) PlacementResult {
	if !p.Hand.Has(len(cells)) {
		return PlaceWrongLength
	}
	candidate := mapset.New[Position]()
	touchesCorner := false
	for _, c := range cells {
		if !p.Board.InBound(c.X, c.Y) || candidate.Has(c) {
			return PlaceUnable
		}
		candidate.Put(c)
		if p.Board.IsCorner(c) {
			touchesCorner = true
		}
	}
	for _, c := range cells {
		for _, n := range p.Board.Neighborhood(c) {
			if p.Board.State(n.X, n.Y) != Empty && !candidate.Has(n) {
				return PlaceUnable
			}
		}
	}
	if !connected(cells) {
		return PlaceUnable
	}
	if touchesCorner && p.cornerShips+1 > p.CornerQuota() {
		return PlaceUnable
	}

	for _, c := range cells {
		p.Board.transition(c, Empty, Ship)
	}
	p.Hand.take(len(cells))
	if touchesCorner {
		p.cornerShips++
	}
	return PlaceSuccess
}

// connected reports whether cells form one component under hex adjacency.
func connected(cells []Position) bool {
	if len(cells) <= 1 {
		return true
	}
	seen := mapset.New[Position]()
	seen.Put(cells[0])
	queue := []Position{cells[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range cells {
			if !seen.Has(c) && Adjacent(cur, c) {
				seen.Put(c)
				queue = append(queue, c)
			}
		}
	}
	return seen.Size() == len(cells)
}
