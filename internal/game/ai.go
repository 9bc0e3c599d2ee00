package game

import (
	"math/rand"
	"time"
)

// AIStrategy is the targeting policy of a computer player.
type AIStrategy uint8

const (
	// Simple fires at a uniformly random on-board cell.
	Simple AIStrategy = iota
	// HuntTarget fires around the last unresolved hit.
	HuntTarget
)

func (s AIStrategy) String() string {
	if s == HuntTarget {
		return "hunt_target"
	}
	return "simple"
}

// AI chooses targets on the opponent's board.
type AI struct {
	Strategy AIStrategy
	lastHit  *Position
	rng      *rand.Rand
}

func NewAI(strategy AIStrategy, rng *rand.Rand) *AI {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AI{Strategy: strategy, rng: rng}
}

// LastHit returns the hit the AI is currently working around.
func (a *AI) LastHit() (Position, bool) {
	if a.lastHit == nil {
		return Position{}, false
	}
	return *a.lastHit, true
}

// Fire picks a target on the enemy board, shoots it and updates the
// hunting state. An Unable result is returned as is.
func (a *AI) Fire(enemy *Player) (Position, FireResult) {
	var target Position
	if a.Strategy == HuntTarget && a.lastHit != nil {
		target = a.hunt(enemy.Board)
	} else {
		target = a.random(enemy.Board)
	}
	res := enemy.TakeFire(target.X, target.Y)
	if a.Strategy == HuntTarget {
		switch res {
		case FireDestroyed:
			a.lastHit = nil
		case FireHit:
			hit := target
			a.lastHit = &hit
		}
	}
	return target, res
}

func (a *AI) random(b *Board) Position {
	pos, _ := b.At(a.rng.Intn(b.Square()))
	return pos
}

// hunt samples the hex window around the last hit. When that window has
// nothing left to shoot, it widens to the cells bordering the whole damaged
// segment; when that is exhausted too the hunt is dropped.
func (a *AI) hunt(b *Board) Position {
	last := *a.lastHit
	if !hasFireable(b, b.Neighborhood(last)) {
		var frontier []Position
		for _, c := range b.component(last, func(s CellState) bool { return s == Fired }) {
			for _, n := range b.Neighborhood(c) {
				if Fireable(b.State(n.X, n.Y)) {
					frontier = append(frontier, n)
				}
			}
		}
		if len(frontier) == 0 {
			a.lastHit = nil
			return a.random(b)
		}
		return frontier[a.rng.Intn(len(frontier))]
	}
	for {
		x := last.X - 1 + a.rng.Intn(3)
		y := last.Y - 1 + a.rng.Intn(3)
		p := Position{x, y}
		if b.InBound(x, y) && Adjacent(last, p) && Fireable(b.State(x, y)) {
			return p
		}
	}
}

func hasFireable(b *Board, cells []Position) bool {
	for _, c := range cells {
		if Fireable(b.State(c.X, c.Y)) {
			return true
		}
	}
	return false
}
