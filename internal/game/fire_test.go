package game

import "testing"

func TestSingleCellFleetDestroyed(t *testing.T) {
	p := newTestPlayer(3, 1)
	if res := p.Place([]Position{{1, 0}}); res != PlaceSuccess {
		t.Fatalf("place: %v", res)
	}
	if !p.IsFleetPlaced() {
		t.Fatalf("fleet should be placed")
	}
	if p.IsDefeated() {
		t.Fatalf("not defeated before any shot")
	}
	if res := p.TakeFire(1, 0); res != FireDestroyed {
		t.Fatalf("expected Destroyed, got %v", res)
	}
	if !p.IsDefeated() {
		t.Fatalf("expected defeat")
	}
	if p.Board.State(1, 0) != Dead {
		t.Fatalf("sunk cell should be Dead, got %v", p.Board.State(1, 0))
	}
}

func TestTwoCellShipHitThenDestroyed(t *testing.T) {
	p := newTestPlayer(5, 2)
	if res := p.Place([]Position{{0, 1}, {0, 2}}); res != PlaceSuccess {
		t.Fatalf("place: %v", res)
	}
	if res := p.TakeFire(0, 1); res != FireHit {
		t.Fatalf("expected Hit, got %v", res)
	}
	if p.IsDefeated() {
		t.Fatalf("not defeated with cells and ships left")
	}
	if p.Board.State(0, 1) != Fired {
		t.Fatalf("hit cell should be Fired")
	}
	if res := p.TakeFire(0, 2); res != FireDestroyed {
		t.Fatalf("expected Destroyed, got %v", res)
	}
	for _, c := range []Position{{0, 1}, {0, 2}} {
		if p.Board.State(c.X, c.Y) != Dead {
			t.Fatalf("%v should be Dead after sinking", c)
		}
	}
	if p.IsDefeated() {
		t.Fatalf("ships still in hand, not defeated")
	}
}

func TestFireTwiceIsUnable(t *testing.T) {
	p := newTestPlayer(5, 2)
	p.Place([]Position{{2, 2}, {3, 2}})
	for _, c := range []struct {
		pos   Position
		first FireResult
	}{
		{Position{0, 0}, FireMissed},
		{Position{2, 2}, FireHit},
		{Position{3, 2}, FireDestroyed},
	} {
		if res := p.TakeFire(c.pos.X, c.pos.Y); res != c.first {
			t.Fatalf("first shot at %v: %v, want %v", c.pos, res, c.first)
		}
		for i := 0; i < 3; i++ {
			if res := p.TakeFire(c.pos.X, c.pos.Y); res != FireUnable {
				t.Fatalf("repeat shot at %v: %v, want Unable", c.pos, res)
			}
		}
	}
	if res := p.TakeFire(9, 0); res != FireUnable {
		t.Fatalf("off-board shot should be Unable, got %v", res)
	}
}

func TestShipDestroyedOnLastCellInAnyOrder(t *testing.T) {
	ship := Line(3, 3, 4, VerticalRight)
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, order := range orders {
		p := newTestPlayer(8, 4)
		if res := p.Place(ship); res != PlaceSuccess {
			t.Fatalf("place: %v", res)
		}
		for i, idx := range order {
			c := ship[idx]
			res := p.TakeFire(c.X, c.Y)
			want := FireHit
			if i == len(order)-1 {
				want = FireDestroyed
			}
			if res != want {
				t.Fatalf("order %v shot %d at %v: %v, want %v", order, i, c, res, want)
			}
		}
		if p.Board.Count(Dead) != 4 || p.Board.Count(Fired) != 0 {
			t.Fatalf("all four cells should be Dead")
		}
		if p.Hand.FleetCells() != 0 {
			t.Fatalf("fleet cells=%d", p.Hand.FleetCells())
		}
	}
}

func TestSinkingOneShipLeavesOthers(t *testing.T) {
	p := newTestPlayer(8, 3)
	p.Place(Line(1, 1, 2, Horizontal))
	p.Place(Line(5, 1, 2, Horizontal))
	p.TakeFire(1, 1)
	p.TakeFire(5, 1)
	if res := p.TakeFire(2, 1); res != FireDestroyed {
		t.Fatalf("expected Destroyed, got %v", res)
	}
	if p.Board.State(5, 1) != Fired {
		t.Fatalf("other ship's hit must stay Fired")
	}
}

func TestDefeatRequiresEveryCell(t *testing.T) {
	p := newTestPlayer(6, 2)
	p.Place(Line(1, 1, 2, Horizontal))
	p.Place([]Position{{5, 5}})
	p.Place([]Position{{8, 8}})
	targets := []Position{{1, 1}, {2, 1}, {5, 5}, {8, 8}}
	for i, c := range targets {
		if p.IsDefeated() {
			t.Fatalf("defeated after %d of %d cells", i, len(targets))
		}
		p.TakeFire(c.X, c.Y)
	}
	if !p.IsDefeated() {
		t.Fatalf("expected defeat")
	}
}
