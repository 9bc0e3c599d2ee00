package game

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// PlacementStrategy selects how a fleet is generated automatically.
type PlacementStrategy uint8

const (
	// Uniform samples any empty position for every ship.
	Uniform PlacementStrategy = iota
	// Zoned samples inside a growing sub-region so ships spread out, then
	// falls back to Uniform.
	Zoned
)

func (s PlacementStrategy) String() string {
	if s == Zoned {
		return "zoned"
	}
	return "uniform"
}

const (
	DefaultUniformBudget = 500 * time.Millisecond
	DefaultZonedBudget   = 100 * time.Millisecond
	DefaultMaxResets     = 100
)

// Autogen places whole fleets. A search that runs out of budget fails and
// the fleet is reset and searched again, up to MaxResets times.
type Autogen struct {
	Strategy      PlacementStrategy
	UniformBudget time.Duration
	ZonedBudget   time.Duration
	MaxResets     int
	Rand          *rand.Rand
	Logger        zerolog.Logger
}

// NewAutogen returns an Autogen with default budgets.
func NewAutogen(strategy PlacementStrategy, rng *rand.Rand) *Autogen {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Autogen{
		Strategy:      strategy,
		UniformBudget: DefaultUniformBudget,
		ZonedBudget:   DefaultZonedBudget,
		MaxResets:     DefaultMaxResets,
		Rand:          rng,
		Logger:        zerolog.Nop(),
	}
}

// AutoPlace generates the whole fleet of p with default budgets.
func AutoPlace(p *Player, strategy PlacementStrategy, rng *rand.Rand) bool {
	return NewAutogen(strategy, rng).Place(p)
}

// Place clears p and generates its fleet. It reports false, with p reset,
// when every attempt ran out of budget.
func (a *Autogen) Place(p *Player) bool {
	resets := max(1, a.MaxResets)
	for attempt := 1; attempt <= resets; attempt++ {
		p.Reset()
		var ok bool
		if a.Strategy == Zoned {
			ok = a.zoned(p)
		} else {
			ok = a.uniform(p, time.Now().Add(a.UniformBudget))
		}
		if ok {
			a.Logger.Debug().
				Str("player", p.Ref.String()).
				Str("strategy", a.Strategy.String()).
				Int("attempt", attempt).
				Msg("fleet generated")
			return true
		}
		a.Logger.Debug().
			Str("player", p.Ref.String()).
			Int("attempt", attempt).
			Msg("placement budget exhausted, resetting fleet")
	}
	p.Reset()
	a.Logger.Warn().
		Str("player", p.Ref.String()).
		Int("side", p.Board.Side()).
		Int("ship_max", p.Hand.ShipMax()).
		Msg("fleet generation failed")
	return false
}

// uniform places every ship left in hand, in hand order.
func (a *Autogen) uniform(p *Player, deadline time.Time) bool {
	for _, length := range p.Hand.Ships() {
		if !a.placeOne(p, length, p.Board.Poses(), nil, deadline) {
			return false
		}
	}
	return true
}

// Zone is a rectangle of storage coordinates, Min inclusive and Max
// exclusive.
type Zone struct {
	Min, Max Position
}

func (z Zone) Contains(p Position) bool {
	return p.X >= z.Min.X && p.X < z.Max.X && p.Y >= z.Min.Y && p.Y < z.Max.Y
}

// ZoneAt is the size x size rectangle in one of the four storage corners:
// 0 top left, 1 top right, 2 bottom right, 3 bottom left.
func ZoneAt(b *Board, corner, size int) Zone {
	n := b.Rows()
	size = min(size, n)
	z := Zone{Max: Position{size, size}}
	if corner == 1 || corner == 2 {
		z.Min.X, z.Max.X = n-size, n
	}
	if corner == 2 || corner == 3 {
		z.Min.Y, z.Max.Y = n-size, n
	}
	return z
}

// zoned places each ship wholly inside a zone that moves to the next
// storage corner for every ship, starting from a random one, and grows by
// one row and column each time. A ship that cannot be placed inside its
// zone in time hands the rest of the fleet to uniform.
func (a *Autogen) zoned(p *Player) bool {
	overall := time.Now().Add(a.UniformBudget)
	corner := a.Rand.Intn(4)
	size := p.Board.Side()
	for _, length := range p.Hand.Ships() {
		z := ZoneAt(p.Board, corner, size)
		var pool []Position
		for _, pos := range p.Board.Poses() {
			if z.Contains(pos) {
				pool = append(pool, pos)
			}
		}
		deadline := time.Now().Add(a.ZonedBudget)
		if !a.placeOne(p, length, pool, z.Contains, deadline) {
			return a.uniform(p, overall)
		}
		corner = (corner + 1) % 4
		size++
	}
	return true
}

// placeOne samples a start cell from pool and an orientation until the ship
// fits or the deadline passes. When within is set every cell of the ship
// must satisfy it.
func (a *Autogen) placeOne(p *Player, length int, pool []Position, within func(Position) bool, deadline time.Time) bool {
	if len(pool) == 0 {
		return false
	}
	for !time.Now().After(deadline) {
		start := pool[a.Rand.Intn(len(pool))]
		line := Line(start.X, start.Y, length, orientations[a.Rand.Intn(len(orientations))])
		if within != nil && !all(line, within) {
			continue
		}
		if p.Place(line) == PlaceSuccess {
			return true
		}
	}
	return false
}

func all(cells []Position, ok func(Position) bool) bool {
	for _, c := range cells {
		if !ok(c) {
			return false
		}
	}
	return true
}
