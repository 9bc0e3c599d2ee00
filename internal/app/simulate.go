package app

import (
	"errors"

	"battlebee/internal/game"
)

// SimResult is the outcome of one bot against bot game.
type SimResult struct {
	Winner game.PlayerRef
	Stats  [2]PlayerStats
	Turns  int
}

// Simulate plays two bots against each other with the usual turn rules.
// The first bot shoots first.
func Simulate(s Settings) (*SimResult, error) {
	env := game.NewEnvironment(s.Side, s.Difficulty, s.ShipMax, s.Options)
	var refs [2]game.PlayerRef
	for i, name := range []string{"bot-a", "bot-b"} {
		ref, err := env.AddPlayer(game.Bot, name)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}

	res := &SimResult{}
	active := 0
	limit := 64 * env.Seat(0).Board.Square()
	for shot := 0; shot < limit; shot++ {
		_, out, err := env.BotFire(refs[active])
		if err != nil {
			return nil, err
		}
		if env.Seat(1 - active).IsDefeated() {
			res.Winner = refs[active]
			break
		}
		if out == game.FireMissed {
			active = 1 - active
			res.Turns++
		}
	}
	if !env.Seat(0).IsDefeated() && !env.Seat(1).IsDefeated() {
		return nil, errors.New("simulation did not finish")
	}
	for i, ref := range refs {
		p := env.Seat(i)
		res.Stats[i] = PlayerStats{Name: ref.Name, Shots: p.ShotsCount(), Missed: p.MissedCount()}
	}
	s.Options.Logger.Debug().
		Str("winner", res.Winner.Name).
		Int("turns", res.Turns).
		Msg("simulation finished")
	return res, nil
}
