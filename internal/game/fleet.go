package game

import "fmt"

// MaxFleetDensity caps the share of board cells a full fleet may occupy.
const MaxFleetDensity = 0.3

// Hand is a player's stock of unplaced ships plus the running count of
// placed, not yet destroyed ship cells.
type Hand struct {
	shipMax    int
	ships      []int // unplaced lengths, longest first
	fleetCells int
}

// NewHand builds the triangular fleet for shipMax: shipMax-L+1 ships of
// every length L in 1..shipMax. shipMax < 1 is a programming error.
func NewHand(shipMax int) *Hand {
	if shipMax < 1 {
		panic(fmt.Sprintf("game: shipMax must be >= 1, got %d", shipMax))
	}
	h := &Hand{shipMax: shipMax}
	h.Reset()
	return h
}

// Reset puts the whole fleet back in hand.
func (h *Hand) Reset() {
	h.ships = h.ships[:0]
	for l := h.shipMax; l >= 1; l-- {
		for i := 0; i < h.shipMax-l+1; i++ {
			h.ships = append(h.ships, l)
		}
	}
	h.fleetCells = 0
}

func (h *Hand) ShipMax() int { return h.shipMax }

// ShipsCount is the number of ships in a full fleet.
func ShipsCount(shipMax int) int { return shipMax * (shipMax + 1) / 2 }

// FleetSize is the number of cells a full fleet occupies.
func FleetSize(shipMax int) int { return shipMax * (shipMax + 1) * (shipMax + 2) / 6 }

// FitShipMax lowers shipMax until a full fleet covers at most
// MaxFleetDensity of a board with the given square. It never goes below 1.
func FitShipMax(square, shipMax int) int {
	for shipMax > 1 && float64(FleetSize(shipMax))/float64(square) > MaxFleetDensity {
		shipMax--
	}
	return shipMax
}

// Ships returns the unplaced lengths in hand order.
func (h *Hand) Ships() []int { return append([]int(nil), h.ships...) }

// Has reports whether a ship of the given length is still in hand.
func (h *Hand) Has(length int) bool {
	for _, l := range h.ships {
		if l == length {
			return true
		}
	}
	return false
}

// take moves one ship of the given length from hand into the fleet.
func (h *Hand) take(length int) bool {
	for i, l := range h.ships {
		if l == length {
			h.ships = append(h.ships[:i], h.ships[i+1:]...)
			h.fleetCells += length
			return true
		}
	}
	return false
}

func (h *Hand) loseCell() {
	if h.fleetCells > 0 {
		h.fleetCells--
	}
}

// FleetCells is the number of placed ship cells not yet hit.
func (h *Hand) FleetCells() int { return h.fleetCells }

// IsFleetPlaced reports whether every ship has left the hand.
func (h *Hand) IsFleetPlaced() bool { return len(h.ships) == 0 }

// IsDefeated reports whether the fleet is fully placed and fully hit.
func (h *Hand) IsDefeated() bool { return h.IsFleetPlaced() && h.fleetCells == 0 }
