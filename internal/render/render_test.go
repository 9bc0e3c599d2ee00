package render

import (
	"bytes"
	"strings"
	"testing"

	"battlebee/internal/game"
)

func TestBoardLayoutSide3(t *testing.T) {
	p := game.NewPlayer(game.PlayerRef{}, 3, 1)
	if p.Place([]game.Position{{X: 1, Y: 0}}) != game.PlaceSuccess {
		t.Fatalf("place")
	}
	p.TakeFire(2, 2)

	want := "" +
		"  1 2 3 4 5 \n" +
		"A   . # .     1-3\n" +
		"B  . . . .    1-4\n" +
		"C . . o . .   1-5\n" +
		"D  . . . .    2-5\n" +
		"E   . . .     3-5\n"
	if got := String(p.Board, false); got != want {
		t.Fatalf("board:\n%s\nwant:\n%s", got, want)
	}
}

func TestEnemyViewHidesShips(t *testing.T) {
	p := game.NewPlayer(game.PlayerRef{}, 5, 2)
	p.Place([]game.Position{{X: 0, Y: 1}, {X: 0, Y: 2}})
	p.TakeFire(0, 1)

	own := String(p.Board, false)
	enemy := String(p.Board, true)
	if !strings.Contains(own, "#") || !strings.Contains(own, "x") {
		t.Fatalf("own view:\n%s", own)
	}
	if strings.Contains(enemy, "#") {
		t.Fatalf("enemy view shows ships:\n%s", enemy)
	}
	if !strings.Contains(enemy, "x") {
		t.Fatalf("enemy view must show hits:\n%s", enemy)
	}
}

func TestColorWrapsGlyphs(t *testing.T) {
	p := game.NewPlayer(game.PlayerRef{}, 3, 1)
	p.Place([]game.Position{{X: 1, Y: 0}})
	var buf bytes.Buffer
	if err := Board(&buf, p.Board, Options{Color: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), ansiCyan+"#"+ansiReset) {
		t.Fatalf("ship not coloured: %q", buf.String())
	}
}

func TestWideBoardsKeepRowsAligned(t *testing.T) {
	b := game.NewBoard(6)
	lines := strings.Split(strings.TrimRight(String(b, false), "\n"), "\n")
	if len(lines) != b.Rows()+1 {
		t.Fatalf("lines=%d", len(lines))
	}
	// the column ranges start at the same offset on every row
	at := strings.LastIndex(lines[1], " ")
	for i, l := range lines[1:] {
		if got := strings.LastIndex(l, " "); got != at {
			t.Fatalf("row %d range at %d, want %d", i, got, at)
		}
	}
}
