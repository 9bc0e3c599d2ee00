package app

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"battlebee/internal/game"
)

func settings(side, shipMax int, mode Mode, seed int64) Settings {
	return Settings{
		Side:    side,
		ShipMax: shipMax,
		Mode:    mode,
		Options: game.Options{Rand: rand.New(rand.NewSource(seed))},
	}
}

func firstCell(b *game.Board, s game.CellState) game.Position {
	for i := 0; i < b.Square(); i++ {
		p, _ := b.At(i)
		if b.State(p.X, p.Y) == s {
			return p
		}
	}
	return game.Position{X: -1, Y: -1}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(settings(5, 2, "duel", 1), "a", "b"); !errors.Is(err, ErrBadMode) {
		t.Fatalf("expected ErrBadMode, got %v", err)
	}
}

func TestHotSeatQuickWin(t *testing.T) {
	g, err := New(settings(3, 1, ModeHotSeat, 1), "alice", "bob")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var events []string
	g.OnEvent = func(e Event) { events = append(events, e.Type) }

	if _, err := g.Fire(2, 2); !errors.Is(err, ErrFleetNotPlaced) {
		t.Fatalf("firing before placing: %v", err)
	}
	if res, err := g.PlaceShip(1, game.Horizontal, 1, 0); err != nil || res != game.PlaceSuccess {
		t.Fatalf("alice place: %v %v", res, err)
	}
	if g.Active().Name != "bob" {
		t.Fatalf("seat should pass to bob, active=%s", g.Active())
	}
	if res, _ := g.PlaceShip(2, game.Horizontal, 2, 2); res != game.PlaceWrongLength {
		t.Fatalf("length 2 is not in hand: %v", res)
	}
	if res, _ := g.PlaceShip(1, game.VerticalLeft, 2, 2); res != game.PlaceSuccess {
		t.Fatalf("bob place: %v", res)
	}
	if g.Active().Name != "alice" {
		t.Fatalf("alice shoots first, active=%s", g.Active())
	}

	rep, err := g.Fire(2, 2)
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if rep.Shot.Result != game.FireDestroyed || !rep.Finished || rep.Winner == nil || rep.Winner.Name != "alice" {
		t.Fatalf("report=%+v", rep)
	}
	if _, err := g.Fire(0, 0); !errors.Is(err, ErrGameOver) {
		t.Fatalf("fire after the end: %v", err)
	}

	sum, err := g.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := "I won \"bob\" in Battlebee game with hexagonal field with side length 3 and 1 ships\nshots: 1\nmissed: 0"
	if sum != want {
		t.Fatalf("summary=%q", sum)
	}
	wantEvents := []string{EventPlaced, EventTurn, EventPlaced, EventTurn, EventShot, EventFinished}
	if strings.Join(events, ",") != strings.Join(wantEvents, ",") {
		t.Fatalf("events=%v", events)
	}
}

func TestHotSeatTurnRules(t *testing.T) {
	g, err := New(settings(5, 2, ModeHotSeat, 7), "alice", "bob")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	steps := []struct {
		length int
		o      game.Orientation
		x, y   int
	}{
		{2, game.VerticalLeft, 0, 1},
		{1, game.Horizontal, 3, 0},
		{1, game.Horizontal, 6, 6},
	}
	for _, s := range steps {
		if res, err := g.PlaceShip(s.length, s.o, s.x, s.y); err != nil || res != game.PlaceSuccess {
			t.Fatalf("place %+v: %v %v", s, res, err)
		}
	}
	if g.Active().Seat != 1 {
		t.Fatalf("bob arranges next")
	}
	if _, err := g.Fire(0, 0); !errors.Is(err, ErrFleetNotPlaced) {
		t.Fatalf("bob has no fleet yet: %v", err)
	}
	if err := g.Auto(); err != nil {
		t.Fatalf("auto: %v", err)
	}
	if g.Active().Seat != 0 {
		t.Fatalf("alice fires first")
	}

	// a miss passes the turn
	water := g.Env.Seat(1).Board.Poses()[0]
	rep, err := g.Fire(water.X, water.Y)
	if err != nil || rep.Shot.Result != game.FireMissed || rep.KeepsTurn {
		t.Fatalf("miss: %+v %v", rep, err)
	}
	if g.Active().Seat != 1 {
		t.Fatalf("turn should pass to bob")
	}
	if err := g.Auto(); !errors.Is(err, ErrBattleStarted) {
		t.Fatalf("auto during battle: %v", err)
	}

	// a kill keeps it, and so does a refused shot
	rep, _ = g.Fire(3, 0)
	if rep.Shot.Result != game.FireDestroyed || !rep.KeepsTurn || g.Active().Seat != 1 {
		t.Fatalf("kill: %+v", rep)
	}
	rep, _ = g.Fire(3, 0)
	if rep.Shot.Result != game.FireUnable || !rep.KeepsTurn {
		t.Fatalf("repeat shot: %+v", rep)
	}
	rep, _ = g.Fire(0, 1)
	if rep.Shot.Result != game.FireHit || g.Active().Seat != 1 {
		t.Fatalf("hit: %+v", rep)
	}

	stats := g.Stats()
	if stats[0].Shots != 1 || stats[0].Missed != 1 {
		t.Fatalf("alice stats=%+v", stats[0])
	}
	if stats[1].Shots != 2 || stats[1].Missed != 0 {
		t.Fatalf("bob stats=%+v", stats[1])
	}
	if _, err := g.Summary(); err == nil {
		t.Fatalf("summary of an open game should fail")
	}
}

func TestBotGamePlaysToTheEnd(t *testing.T) {
	g, err := New(settings(5, 2, ModeBot, 11), "alice", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := g.Auto(); err != nil {
		t.Fatalf("auto: %v", err)
	}
	if _, err := g.PlaceShip(1, game.Horizontal, 0, 0); !errors.Is(err, ErrFleetPlaced) {
		t.Fatalf("placing over a full fleet: %v", err)
	}

	enemy := g.Env.Seat(1).Board
	for i := 0; i < enemy.Square() && !g.Finished(); i++ {
		p, _ := enemy.At(i)
		rep, err := g.Fire(p.X, p.Y)
		if err != nil {
			t.Fatalf("fire %v: %v", p, err)
		}
		if !rep.Finished && g.Active().Seat != 0 {
			t.Fatalf("turn must come back to the user after the bot")
		}
		for _, r := range rep.Replies {
			if r.Shooter.Kind != game.Bot || r.Result == game.FireUnable {
				t.Fatalf("bad reply %+v", r)
			}
		}
	}
	if !g.Finished() {
		t.Fatalf("sweeping the whole board must end the game")
	}
	w, ok := g.Winner()
	if !ok {
		t.Fatalf("no winner")
	}
	loser := g.Env.Seat(w.Opponent())
	if !loser.IsDefeated() {
		t.Fatalf("loser fleet still afloat")
	}
	if sum, _ := g.Summary(); !strings.Contains(sum, "Battlebee") {
		t.Fatalf("summary=%q", sum)
	}
	if firstCell(loser.Board, game.Ship).X != -1 {
		t.Fatalf("loser still has intact ship cells")
	}
}

func TestFireAsChecksTheSeat(t *testing.T) {
	g, err := New(settings(3, 1, ModeHotSeat, 2), "alice", "bob")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	g.PlaceShip(1, game.Horizontal, 1, 0)
	g.PlaceShip(1, game.VerticalLeft, 2, 2)

	if _, err := g.FireAs(1, 0, 0); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("bob fired out of turn: %v", err)
	}
	rep, err := g.FireAs(0, 2, 2)
	if err != nil || !rep.Finished {
		t.Fatalf("alice: %+v %v", rep, err)
	}
	if _, err := g.FireAs(1, 0, 0); !errors.Is(err, ErrGameOver) {
		t.Fatalf("after the end: %v", err)
	}
}

func TestHotSeatRerollKeepsFirstShot(t *testing.T) {
	g, err := New(settings(5, 2, ModeHotSeat, 11), "alice", "bob")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, who := range []string{"alice", "bob"} {
		if err := g.Auto(); err != nil {
			t.Fatalf("auto %s: %v", who, err)
		}
	}
	if g.Active().Name != "alice" {
		t.Fatalf("alice fires first, active=%s", g.Active())
	}
	if err := g.Auto(); err != nil {
		t.Fatalf("re-roll: %v", err)
	}
	if g.Active().Name != "alice" || !g.Env.Seat(0).IsFleetPlaced() {
		t.Fatalf("re-roll handed the seat over, active=%s", g.Active())
	}
	if _, err := g.PlaceShip(1, game.Horizontal, 0, 0); !errors.Is(err, ErrFleetPlaced) {
		t.Fatalf("placing on a complete fleet: %v", err)
	}
}
