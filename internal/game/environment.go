package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Difficulty selects the computer player's placement and targeting.
type Difficulty int

const (
	Easy Difficulty = iota
	Hard
)

// Placement is the autogeneration strategy for the difficulty.
func (d Difficulty) Placement() PlacementStrategy {
	if d >= Hard {
		return Zoned
	}
	return Uniform
}

// Targeting is the AI strategy for the difficulty.
func (d Difficulty) Targeting() AIStrategy {
	if d >= Hard {
		return HuntTarget
	}
	return Simple
}

var (
	ErrSeatsTaken  = errors.New("both seats are taken")
	ErrUnknownSeat = errors.New("unknown seat")
)

// Environment holds the shared parameters of one game and its two seats.
type Environment struct {
	Side       int
	ShipMax    int
	Difficulty Difficulty
	Autogen    *Autogen
	Logger     zerolog.Logger

	players [2]*Player
	ais     [2]*AI
	rng     *rand.Rand
}

// Options tune environment construction.
type Options struct {
	Rand          *rand.Rand
	Logger        zerolog.Logger
	UniformBudget time.Duration
	ZonedBudget   time.Duration
	MaxResets     int
}

// NewEnvironment validates the fleet density for the board and lowers
// shipMax until it fits.
func NewEnvironment(side int, diff Difficulty, shipMax int, opts Options) *Environment {
	if side < 1 {
		panic(fmt.Sprintf("game: board side must be >= 1, got %d", side))
	}
	if shipMax < 1 {
		panic(fmt.Sprintf("game: shipMax must be >= 1, got %d", shipMax))
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	fitted := FitShipMax(3*side*(side-1)+1, shipMax)
	if fitted != shipMax {
		opts.Logger.Info().
			Int("side", side).
			Int("requested", shipMax).
			Int("ship_max", fitted).
			Msg("fleet too dense for board, ship_max lowered")
	}
	ag := NewAutogen(diff.Placement(), rng)
	ag.Logger = opts.Logger
	if opts.UniformBudget > 0 {
		ag.UniformBudget = opts.UniformBudget
	}
	if opts.ZonedBudget > 0 {
		ag.ZonedBudget = opts.ZonedBudget
	}
	if opts.MaxResets > 0 {
		ag.MaxResets = opts.MaxResets
	}
	return &Environment{
		Side:       side,
		ShipMax:    fitted,
		Difficulty: diff,
		Autogen:    ag,
		Logger:     opts.Logger,
		rng:        rng,
	}
}

// ShipsCount is the number of ships in each fleet.
func (e *Environment) ShipsCount() int { return ShipsCount(e.ShipMax) }

// AddPlayer takes the next free seat. Bots get an AI and an autogenerated
// fleet straight away.
func (e *Environment) AddPlayer(kind Kind, name string) (PlayerRef, error) {
	seat := -1
	for i, p := range e.players {
		if p == nil {
			seat = i
			break
		}
	}
	if seat < 0 {
		return PlayerRef{}, ErrSeatsTaken
	}
	ref := PlayerRef{Seat: seat, Kind: kind, Name: name}
	p := NewPlayer(ref, e.Side, e.ShipMax)
	e.players[seat] = p
	if kind == Bot {
		e.ais[seat] = NewAI(e.Difficulty.Targeting(), e.rng)
		if !e.Autogen.Place(p) {
			return ref, fmt.Errorf("generate fleet for %s: board too crowded", ref)
		}
	}
	e.Logger.Debug().Str("player", ref.String()).Msg("player seated")
	return ref, nil
}

// Player returns the seat's player.
func (e *Environment) Player(ref PlayerRef) (*Player, error) {
	if ref.Seat < 0 || ref.Seat > 1 || e.players[ref.Seat] == nil {
		return nil, ErrUnknownSeat
	}
	return e.players[ref.Seat], nil
}

// Seat returns the player at seat i, or nil.
func (e *Environment) Seat(i int) *Player {
	if i < 0 || i > 1 {
		return nil
	}
	return e.players[i]
}

// AI returns the targeting state of a bot seat.
func (e *Environment) AI(ref PlayerRef) *AI {
	if ref.Seat < 0 || ref.Seat > 1 {
		return nil
	}
	return e.ais[ref.Seat]
}

// Place puts a ship on the board of ref.
func (e *Environment) Place(ref PlayerRef, cells []Position) (PlacementResult, error) {
	p, err := e.Player(ref)
	if err != nil {
		return PlaceUnable, err
	}
	return p.Place(cells), nil
}

// AutoPlace regenerates the fleet of ref with the environment's strategy.
func (e *Environment) AutoPlace(ref PlayerRef) (bool, error) {
	p, err := e.Player(ref)
	if err != nil {
		return false, err
	}
	return e.Autogen.Place(p), nil
}

// Fire resolves a shot by shooter at the opponent's board.
func (e *Environment) Fire(shooter PlayerRef, x, y int) (FireResult, error) {
	me, err := e.Player(shooter)
	if err != nil {
		return FireUnable, err
	}
	enemy := e.players[shooter.Opponent()]
	if enemy == nil {
		return FireUnable, ErrUnknownSeat
	}
	res := enemy.TakeFire(x, y)
	me.RecordShot(res)
	return res, nil
}

// BotFire lets the AI of a bot seat take one shot.
func (e *Environment) BotFire(bot PlayerRef) (Position, FireResult, error) {
	me, err := e.Player(bot)
	if err != nil {
		return Position{}, FireUnable, err
	}
	ai := e.ais[bot.Seat]
	enemy := e.players[bot.Opponent()]
	if ai == nil || enemy == nil {
		return Position{}, FireUnable, ErrUnknownSeat
	}
	pos, res := ai.Fire(enemy)
	me.RecordShot(res)
	return pos, res, nil
}
