package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestEnvironmentLowersShipMax(t *testing.T) {
	env := NewEnvironment(3, Easy, 4, Options{Rand: rand.New(rand.NewSource(1))})
	if env.ShipMax != 2 {
		t.Fatalf("ship_max=%d, want 2", env.ShipMax)
	}
	if env.ShipsCount() != 3 {
		t.Fatalf("ships count=%d", env.ShipsCount())
	}
	env = NewEnvironment(6, Easy, 4, Options{})
	if env.ShipMax != 4 {
		t.Fatalf("side 6 fits ship_max 4, got %d", env.ShipMax)
	}
}

func TestEnvironmentSeatsAndBotFleet(t *testing.T) {
	env := NewEnvironment(6, Hard, 4, Options{Rand: rand.New(rand.NewSource(2))})
	user, err := env.AddPlayer(User, "alice")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	bot, err := env.AddPlayer(Bot, "bot")
	if err != nil {
		t.Fatalf("add bot: %v", err)
	}
	if user.Seat != 0 || bot.Seat != 1 || user.Opponent() != 1 {
		t.Fatalf("seats: user=%d bot=%d", user.Seat, bot.Seat)
	}
	if _, err := env.AddPlayer(User, "carol"); !errors.Is(err, ErrSeatsTaken) {
		t.Fatalf("expected ErrSeatsTaken, got %v", err)
	}
	bp, _ := env.Player(bot)
	if !bp.IsFleetPlaced() {
		t.Fatalf("bot fleet should be generated on join")
	}
	if env.AI(bot) == nil || env.AI(bot).Strategy != HuntTarget {
		t.Fatalf("hard bot should hunt")
	}
	up, _ := env.Player(user)
	if up.IsFleetPlaced() {
		t.Fatalf("user places their own fleet")
	}
}

func TestEnvironmentFireCountsShots(t *testing.T) {
	env := NewEnvironment(5, Easy, 2, Options{Rand: rand.New(rand.NewSource(3))})
	user, _ := env.AddPlayer(User, "alice")
	bot, _ := env.AddPlayer(Bot, "bot")
	bp, _ := env.Player(bot)

	var ship, water Position
	bp.Board.each(func(p Position) {
		switch bp.Board.State(p.X, p.Y) {
		case Ship:
			ship = p
		case Empty:
			water = p
		}
	})
	if res, err := env.Fire(user, water.X, water.Y); err != nil || res != FireMissed {
		t.Fatalf("water shot: %v %v", res, err)
	}
	if res, _ := env.Fire(user, ship.X, ship.Y); res != FireHit && res != FireDestroyed {
		t.Fatalf("ship shot: %v", res)
	}
	if res, _ := env.Fire(user, ship.X, ship.Y); res != FireUnable {
		t.Fatalf("repeat shot: %v", res)
	}
	up, _ := env.Player(user)
	if up.ShotsCount() != 2 || up.MissedCount() != 1 {
		t.Fatalf("shots=%d missed=%d", up.ShotsCount(), up.MissedCount())
	}
	if _, err := env.Fire(PlayerRef{Seat: 4}, 0, 0); !errors.Is(err, ErrUnknownSeat) {
		t.Fatalf("expected ErrUnknownSeat, got %v", err)
	}
}

func TestBotFireTargetsOpponent(t *testing.T) {
	env := NewEnvironment(4, Easy, 1, Options{Rand: rand.New(rand.NewSource(4))})
	user, _ := env.AddPlayer(User, "alice")
	bot, _ := env.AddPlayer(Bot, "bot")
	up, _ := env.Player(user)
	if res := up.Place([]Position{{3, 3}}); res != PlaceSuccess {
		t.Fatalf("place: %v", res)
	}
	for i := 0; i < 10000 && !up.IsDefeated(); i++ {
		if _, _, err := env.BotFire(bot); err != nil {
			t.Fatalf("bot fire: %v", err)
		}
	}
	if !up.IsDefeated() {
		t.Fatalf("bot never sank the user's only ship")
	}
	bp, _ := env.Player(bot)
	if bp.ShotsCount() == 0 || bp.Board.Count(Missed) != 0 {
		t.Fatalf("bot shots must land on the user's board only")
	}
}
