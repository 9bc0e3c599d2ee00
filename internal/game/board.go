package game

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// CellState is the state of a single board cell.
type CellState uint8

const (
	NotOnBoard CellState = iota
	Empty
	Ship
	Fired
	Dead
	Missed
)

func (s CellState) String() string {
	switch s {
	case NotOnBoard:
		return "not_on_board"
	case Empty:
		return "empty"
	case Ship:
		return "ship"
	case Fired:
		return "fired"
	case Dead:
		return "dead"
	case Missed:
		return "missed"
	}
	return fmt.Sprintf("CellState(%d)", uint8(s))
}

// Position is a cell address in staggered-row coordinates: X is the storage
// column, Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Cell equality is by position; State is carried along for convenience.
type Cell struct {
	Position
	State CellState
}

// Board is a hexagon of the given side stored as 2*side-1 rows of
// 2*side-1 columns. Columns outside the hexagon are NotOnBoard.
type Board struct {
	side    int
	cells   [][]CellState
	square  int
	poses   mapset.Set[Position]
	corners mapset.Set[Position]
}

// NewBoard builds an empty hexagonal board. side < 1 is a programming error.
func NewBoard(side int) *Board {
	if side < 1 {
		panic(fmt.Sprintf("game: board side must be >= 1, got %d", side))
	}
	b := &Board{side: side}
	b.Reset()
	return b
}

// Reset returns every on-board cell to Empty and refills the pose pool.
func (b *Board) Reset() {
	n := b.Rows()
	b.cells = make([][]CellState, n)
	b.poses = mapset.New[Position]()
	b.square = 0
	for y := 0; y < n; y++ {
		b.cells[y] = make([]CellState, n)
		for x := 0; x < n; x++ {
			if b.InBound(x, y) {
				b.cells[y][x] = Empty
				b.poses.Put(Position{x, y})
				b.square++
			}
		}
	}
	s := b.side - 1
	b.corners = mapset.New[Position]()
	for _, c := range []Position{
		{0, 0}, {s, 0},
		{0, s}, {2 * s, s},
		{s, 2 * s}, {2 * s, 2 * s},
	} {
		b.corners.Put(c)
	}
}

func (b *Board) Side() int { return b.side }

// Rows is the number of rows, which is also the storage width.
func (b *Board) Rows() int { return 2*b.side - 1 }

// Square is the number of on-board cells.
func (b *Board) Square() int { return b.square }

// RowSpan returns the first and last on-board column of row y.
func (b *Board) RowSpan(y int) (first, last int) {
	first = max(0, y-(b.side-1))
	last = min(2*b.side-2, y+b.side-1)
	return first, last
}

// InBound reports whether (x, y) is an on-board cell.
func (b *Board) InBound(x, y int) bool {
	if y < 0 || y > 2*b.side-2 {
		return false
	}
	first, last := b.RowSpan(y)
	return x >= first && x <= last
}

// State returns the state at (x, y); anything off the board is NotOnBoard.
func (b *Board) State(x, y int) CellState {
	if !b.InBound(x, y) {
		return NotOnBoard
	}
	return b.cells[y][x]
}

// Cell returns the cell at p.
func (b *Board) Cell(p Position) Cell { return Cell{Position: p, State: b.State(p.X, p.Y)} }

// IsCorner reports whether p is one of the six hexagon extremes.
func (b *Board) IsCorner(p Position) bool { return b.corners.Has(p) }

// Corners lists the distinct corner positions.
func (b *Board) Corners() []Position { return setKeys(b.corners) }

// Poses returns a snapshot of the empty on-board positions that are still
// available for placement, in row-major order.
func (b *Board) Poses() []Position {
	out := make([]Position, 0, b.poses.Size())
	b.each(func(p Position) {
		if b.poses.Has(p) {
			out = append(out, p)
		}
	})
	return out
}

// PosesCount is the size of the placement pool.
func (b *Board) PosesCount() int { return b.poses.Size() }

// Neighborhood returns p and its hex neighbours that lie on the board: the
// 3x3 window around p without the (x+1, y-1) and (x-1, y+1) corners.
func (b *Board) Neighborhood(p Position) []Position {
	out := make([]Position, 0, 7)
	for y := p.Y - 1; y <= p.Y+1; y++ {
		for x := p.X - 1; x <= p.X+1; x++ {
			if (x == p.X+1 && y == p.Y-1) || (x == p.X-1 && y == p.Y+1) {
				continue
			}
			if b.InBound(x, y) {
				out = append(out, Position{x, y})
			}
		}
	}
	return out
}

// Adjacent reports whether a and b are distinct hex neighbours.
func Adjacent(a, b Position) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return false
	}
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		return false
	}
	return !(dx == 1 && dy == -1) && !(dx == -1 && dy == 1)
}

// Count returns how many on-board cells are in state s.
func (b *Board) Count(s CellState) int {
	n := 0
	b.each(func(p Position) {
		if b.cells[p.Y][p.X] == s {
			n++
		}
	})
	return n
}

// transition moves an on-board cell from one state to another. It refuses
// any move the cell state machine does not allow.
func (b *Board) transition(p Position, from, to CellState) bool {
	if !b.InBound(p.X, p.Y) || b.cells[p.Y][p.X] != from || !allowed(from, to) {
		return false
	}
	b.cells[p.Y][p.X] = to
	if from == Empty {
		b.poses.Remove(p)
	}
	return true
}

func allowed(from, to CellState) bool {
	switch from {
	case Empty:
		return to == Ship || to == Missed
	case Ship:
		return to == Fired
	case Fired:
		return to == Dead
	}
	return false
}

// each walks the on-board cells in row-major order.
func (b *Board) each(fn func(Position)) {
	for y := 0; y < b.Rows(); y++ {
		first, last := b.RowSpan(y)
		for x := first; x <= last; x++ {
			fn(Position{x, y})
		}
	}
}

// Bits flattens the board row-major over on-board cells: 1 where a ship
// segment is (Ship, Fired or Dead), 0 elsewhere.
func (b *Board) Bits() []uint8 {
	out := make([]uint8, 0, b.square)
	b.each(func(p Position) {
		switch b.cells[p.Y][p.X] {
		case Ship, Fired, Dead:
			out = append(out, 1)
		default:
			out = append(out, 0)
		}
	})
	return out
}

// Index is the row-major ordinal of an on-board position, matching Bits.
func (b *Board) Index(p Position) (int, bool) {
	if !b.InBound(p.X, p.Y) {
		return 0, false
	}
	idx := 0
	for y := 0; y < p.Y; y++ {
		first, last := b.RowSpan(y)
		idx += last - first + 1
	}
	first, _ := b.RowSpan(p.Y)
	return idx + p.X - first, true
}

// At is the inverse of Index.
func (b *Board) At(idx int) (Position, bool) {
	if idx < 0 || idx >= b.square {
		return Position{}, false
	}
	for y := 0; y < b.Rows(); y++ {
		first, last := b.RowSpan(y)
		if w := last - first + 1; idx >= w {
			idx -= w
			continue
		}
		return Position{first + idx, y}, true
	}
	return Position{}, false
}

func setKeys(s mapset.Set[Position]) []Position {
	out := make([]Position, 0, s.Size())
	s.Each(func(p Position) { out = append(out, p) })
	return out
}
