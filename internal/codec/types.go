package codec

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"battlebee/internal/game"
	"battlebee/internal/merkle"
	"battlebee/internal/zk"
)

// BoardFile is a saved fleet layout, one cell list per ship.
type BoardFile struct {
	Side    int               `json:"side"`
	ShipMax int               `json:"ship_max"`
	Ships   [][]game.Position `json:"ships"`
}

// Secret is what the defender keeps after committing a board.
type Secret struct {
	Side    int          `json:"side"`
	Bits    []uint8      `json:"bits"`
	Tree    *merkle.Tree `json:"tree"`
	SaltHex string       `json:"salt_hex"`
}

type ShotProofPayload struct {
	Proof  []byte        `json:"proof"`
	Public zk.ShotPublic `json:"public"` // salted root, cell index and hit bit
}

// CellView is one cell as seen by a given viewer.
type CellView struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	State string `json:"state"`
}

// BoardView is a board snapshot; enemy views hide intact ships.
type BoardView struct {
	Side   int        `json:"side"`
	Square int        `json:"square"`
	Cells  []CellView `json:"cells"`
}

// NewBoardView snapshots b. When hideShips is set, Ship cells are reported
// as empty.
func NewBoardView(b *game.Board, hideShips bool) BoardView {
	v := BoardView{Side: b.Side(), Square: b.Square(), Cells: make([]CellView, 0, b.Square())}
	for i := 0; i < b.Square(); i++ {
		p, _ := b.At(i)
		s := b.State(p.X, p.Y)
		if hideShips && s == game.Ship {
			s = game.Empty
		}
		v.Cells = append(v.Cells, CellView{X: p.X, Y: p.Y, State: s.String()})
	}
	return v
}

// NewBoardFile saves the fleet of p.
func NewBoardFile(p *game.Player) BoardFile {
	f := BoardFile{Side: p.Board.Side(), ShipMax: p.Hand.ShipMax()}
	seen := mapset.New[game.Position]()
	for i := 0; i < p.Board.Square(); i++ {
		c, _ := p.Board.At(i)
		if seen.Has(c) {
			continue
		}
		ship := p.Board.ShipAt(c)
		for _, s := range ship {
			seen.Put(s)
		}
		if len(ship) > 0 {
			f.Ships = append(f.Ships, ship)
		}
	}
	return f
}

// Player replays the saved layout through the placement rules.
func (f BoardFile) Player(name string) (*game.Player, error) {
	if f.Side < 1 || f.ShipMax < 1 {
		return nil, errors.New("board file needs side and ship_max")
	}
	p := game.NewPlayer(game.PlayerRef{Kind: game.User, Name: name}, f.Side, f.ShipMax)
	for i, ship := range f.Ships {
		if res := p.Place(ship); res != game.PlaceSuccess {
			return nil, fmt.Errorf("ship %d: %s", i+1, res)
		}
	}
	if !p.IsFleetPlaced() {
		return nil, fmt.Errorf("fleet incomplete, still in hand: %v", p.Hand.Ships())
	}
	return p, nil
}
