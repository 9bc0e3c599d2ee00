package game

import "fmt"

// Kind tells who drives a player.
type Kind uint8

const (
	User Kind = iota
	Bot
)

func (k Kind) String() string {
	if k == Bot {
		return "bot"
	}
	return "user"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "user":
		*k = User
	case "bot":
		*k = Bot
	default:
		return fmt.Errorf("unknown player kind %q", b)
	}
	return nil
}

// PlayerRef identifies one of the two seats in an environment.
type PlayerRef struct {
	Seat int    `json:"seat"`
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// Opponent is the seat across the table.
func (r PlayerRef) Opponent() int { return 1 - r.Seat }

func (r PlayerRef) String() string { return fmt.Sprintf("%s#%d(%s)", r.Kind, r.Seat, r.Name) }

// Player owns exactly one board and one hand.
type Player struct {
	Ref   PlayerRef
	Board *Board
	Hand  *Hand

	cornerShips int
	shotsCount  int
	missedCount int
}

// NewPlayer seats a player with an empty board and a full hand.
func NewPlayer(ref PlayerRef, side, shipMax int) *Player {
	return &Player{
		Ref:   ref,
		Board: NewBoard(side),
		Hand:  NewHand(shipMax),
	}
}

// Reset clears the board and returns every ship to hand.
func (p *Player) Reset() {
	p.Board.Reset()
	p.Hand.Reset()
	p.cornerShips = 0
}

func (p *Player) IsFleetPlaced() bool { return p.Hand.IsFleetPlaced() }

func (p *Player) IsDefeated() bool { return p.Hand.IsDefeated() }

// CornerShips is the number of placed ships touching a corner.
func (p *Player) CornerShips() int { return p.cornerShips }

// CornerQuota is the most corner ships a full fleet may hold.
func (p *Player) CornerQuota() int { return ShipsCount(p.Hand.ShipMax()) / 10 }

func (p *Player) ShotsCount() int { return p.shotsCount }

func (p *Player) MissedCount() int { return p.missedCount }

// RecordShot updates the shooter's counters after a shot at the opponent.
func (p *Player) RecordShot(res FireResult) {
	if res == FireUnable {
		return
	}
	p.shotsCount++
	if res == FireMissed {
		p.missedCount++
	}
}
