package game

import (
	"math/rand"
	"testing"
)

func newTestPlayer(side, shipMax int) *Player {
	return NewPlayer(PlayerRef{Seat: 0, Kind: User, Name: "user"}, side, shipMax)
}

func TestPlaceSingleShipNextToExisting(t *testing.T) {
	p := newTestPlayer(5, 2)
	p.Board.cells[1][1] = Ship
	if res := p.Place([]Position{{0, 1}}); res == PlaceSuccess {
		t.Fatalf("ship touching (1,1) must be refused")
	}
	if res := p.Place([]Position{{1, 3}}); res != PlaceSuccess {
		t.Fatalf("expected success, got %v", res)
	}
}

func TestPlaceTwoCellShipNextToExisting(t *testing.T) {
	p := newTestPlayer(5, 2)
	p.Board.cells[1][1] = Ship
	if res := p.Place([]Position{{0, 0}, {0, 1}}); res == PlaceSuccess {
		t.Fatalf("ship touching (1,1) must be refused")
	}
	if res := p.Place([]Position{{1, 3}, {2, 3}}); res != PlaceSuccess {
		t.Fatalf("expected success, got %v", res)
	}
	if p.Board.State(1, 3) != Ship || p.Board.State(2, 3) != Ship {
		t.Fatalf("cells should be ships")
	}
	if p.Hand.Has(2) || p.Hand.FleetCells() != 2 {
		t.Fatalf("length 2 should have moved to the fleet")
	}
}

func TestPlaceWrongLength(t *testing.T) {
	p := newTestPlayer(5, 1)
	if res := p.Place([]Position{{2, 2}, {3, 2}}); res != PlaceWrongLength {
		t.Fatalf("expected WrongLength, got %v", res)
	}
	if res := p.Place(nil); res != PlaceWrongLength {
		t.Fatalf("empty ship should be WrongLength, got %v", res)
	}
}

func TestPlaceRejectsOutOfBoundsAndLeavesNoTrace(t *testing.T) {
	p := newTestPlayer(5, 3)
	before := p.Board.PosesCount()
	if res := p.Place(Line(7, 7, 3, Horizontal)); res != PlaceUnable {
		t.Fatalf("expected Unable, got %v", res)
	}
	if p.Board.PosesCount() != before || p.Board.Count(Ship) != 0 || !p.Hand.Has(3) {
		t.Fatalf("rejected placement changed the board or hand")
	}
}

func TestPlaceRejectsDisconnectedAndDuplicateCells(t *testing.T) {
	p := newTestPlayer(6, 3)
	if res := p.Place([]Position{{2, 2}, {5, 5}}); res != PlaceUnable {
		t.Fatalf("split ship should be Unable, got %v", res)
	}
	if res := p.Place([]Position{{2, 2}, {2, 2}}); res != PlaceUnable {
		t.Fatalf("duplicate cell should be Unable, got %v", res)
	}
	if res := p.Place([]Position{{2, 2}, {3, 3}}); res != PlaceSuccess {
		t.Fatalf("diagonal neighbours form a ship, got %v", res)
	}
}

func TestPlaceLinesOnEveryAxis(t *testing.T) {
	p := newTestPlayer(6, 3)
	for _, c := range []struct {
		x, y int
		o    Orientation
	}{
		{1, 1, VerticalLeft},
		{5, 1, VerticalRight},
		{4, 8, Horizontal},
	} {
		if res := p.Place(Line(c.x, c.y, 3, c.o)); res != PlaceSuccess && res != PlaceWrongLength {
			t.Fatalf("line %v at (%d,%d): %v", c.o, c.x, c.y, res)
		}
	}
	if p.Board.Count(Ship) != 3 {
		t.Fatalf("only one length-3 ship exists, got %d ship cells", p.Board.Count(Ship))
	}
}

func TestCornerQuota(t *testing.T) {
	p := newTestPlayer(6, 4) // 10 ships, quota 1
	if p.CornerQuota() != 1 {
		t.Fatalf("quota=%d", p.CornerQuota())
	}
	if res := p.Place([]Position{{0, 0}}); res != PlaceSuccess {
		t.Fatalf("first corner ship should fit, got %v", res)
	}
	if res := p.Place([]Position{{10, 10}}); res != PlaceUnable {
		t.Fatalf("second corner ship exceeds the quota, got %v", res)
	}
	if p.Board.State(10, 10) != Empty {
		t.Fatalf("refused corner must stay empty")
	}
	if res := p.Place([]Position{{5, 5}}); res != PlaceSuccess {
		t.Fatalf("non-corner ship should fit, got %v", res)
	}
}

func TestCornerQuotaZeroForSmallFleets(t *testing.T) {
	p := newTestPlayer(3, 1)
	if res := p.Place([]Position{{0, 0}}); res != PlaceUnable {
		t.Fatalf("one-ship fleet has no corner allowance, got %v", res)
	}
	if res := p.Place([]Position{{1, 0}}); res != PlaceSuccess {
		t.Fatalf("expected success, got %v", res)
	}
}

func TestPlacedShipsNeverTouch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := newTestPlayer(7, 4)
	var ships [][]Position
	for i := 0; i < 5000 && !p.IsFleetPlaced(); i++ {
		hand := p.Hand.Ships()
		pos, _ := p.Board.At(rng.Intn(p.Board.Square()))
		line := Line(pos.X, pos.Y, hand[rng.Intn(len(hand))], orientations[rng.Intn(3)])
		if p.Place(line) == PlaceSuccess {
			ships = append(ships, line)
		}
	}
	if !p.IsFleetPlaced() {
		t.Fatalf("fleet not placed, hand: %v", p.Hand.Ships())
	}
	cells := 0
	for _, s := range ships {
		cells += len(s)
	}
	if cells != p.Board.Count(Ship) {
		t.Fatalf("recorded %d ship cells, board has %d", cells, p.Board.Count(Ship))
	}
	assertShipsApart(t, p.Board, ships)
}

func TestTouchingShipsAreDetected(t *testing.T) {
	b := NewBoard(5)
	apart := [][]Position{{{2, 2}}, {{4, 2}}}
	if _, _, found := touchingShips(b, apart); found {
		t.Fatalf("ships two cells apart reported as touching")
	}
	touching := [][]Position{{{2, 2}}, {{3, 2}}}
	a, n, found := touchingShips(b, touching)
	if !found || a != (Position{2, 2}) || n != (Position{3, 2}) {
		t.Fatalf("touching ships not detected: %v %v %v", a, n, found)
	}
}

// touchingShips finds a cell of one ship bordering a cell of another.
func touchingShips(b *Board, ships [][]Position) (cell, other Position, found bool) {
	owner := map[Position]int{}
	for i, s := range ships {
		for _, c := range s {
			owner[c] = i
		}
	}
	for i, s := range ships {
		for _, c := range s {
			for _, n := range b.Neighborhood(c) {
				if j, ok := owner[n]; ok && j != i {
					return c, n, true
				}
			}
		}
	}
	return Position{}, Position{}, false
}

func assertShipsApart(t *testing.T, b *Board, ships [][]Position) {
	t.Helper()
	if c, n, found := touchingShips(b, ships); found {
		t.Fatalf("ship cell %v touches another ship at %v", c, n)
	}
}
