package game

import "github.com/zyedidia/generic/mapset"

// FireResult is the outcome of a shot.
type FireResult uint8

const (
	FireUnable FireResult = iota
	FireMissed
	FireHit
	FireDestroyed
)

func (r FireResult) String() string {
	switch r {
	case FireUnable:
		return "unable"
	case FireMissed:
		return "missed"
	case FireHit:
		return "hit"
	case FireDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Fireable reports whether a shot at s would land: the cell is on board and
// has not been shot before.
func Fireable(s CellState) bool { return s == Empty || s == Ship }

// TakeFire resolves an enemy shot at (x, y) on this player's board.
func (p *Player) TakeFire(x, y int) FireResult {
	pos := Position{x, y}
	switch p.Board.State(x, y) {
	case Empty:
		p.Board.transition(pos, Empty, Missed)
		return FireMissed
	case Ship:
		p.Board.transition(pos, Ship, Fired)
		p.Hand.loseCell()
		if p.Board.sink(pos) {
			return FireDestroyed
		}
		return FireHit
	}
	return FireUnable
}

// ShipAt returns the connected ship segment containing p, or nil when there
// is no ship there.
func (b *Board) ShipAt(p Position) []Position {
	switch b.State(p.X, p.Y) {
	case Ship, Fired, Dead:
	default:
		return nil
	}
	return b.component(p, func(s CellState) bool { return s == Ship || s == Fired || s == Dead })
}

// sink checks the Ship/Fired component around p. When no Ship cell is left
// every Fired cell in it becomes Dead.
func (b *Board) sink(p Position) bool {
	comp := b.component(p, func(s CellState) bool { return s == Ship || s == Fired })
	for _, c := range comp {
		if b.cells[c.Y][c.X] == Ship {
			return false
		}
	}
	for _, c := range comp {
		b.transition(c, Fired, Dead)
	}
	return true
}

// component collects the cells reachable from start through hex neighbours
// whose state satisfies member.
func (b *Board) component(start Position, member func(CellState) bool) []Position {
	visited := mapset.New[Position]()
	visited.Put(start)
	stack := []Position{start}
	var out []Position
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		for _, n := range b.Neighborhood(cur) {
			if visited.Has(n) || !member(b.cells[n.Y][n.X]) {
				continue
			}
			visited.Put(n)
			stack = append(stack, n)
		}
	}
	return out
}
