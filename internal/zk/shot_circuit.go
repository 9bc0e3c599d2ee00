// Package zk proves single cells of a committed board with groth16.
package zk

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// ShotCircuit proves that Hit is the leaf at Index of the board tree sealed
// as MiMC(Salt, root). The little-endian bits of Index pick the side of
// each sibling.
type ShotCircuit struct {
	Salt     frontend.Variable   `gnark:",secret"`
	Siblings []frontend.Variable `gnark:",secret"`

	Root  frontend.Variable `gnark:",public"`
	Index frontend.Variable `gnark:",public"`
	Hit   frontend.Variable `gnark:",public"`
}

// NewShotCircuit allocates a circuit for trees of the given depth.
func NewShotCircuit(depth int) *ShotCircuit {
	return &ShotCircuit{Siblings: make([]frontend.Variable, depth)}
}

func (c *ShotCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.Hit)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	digest := func(xs ...frontend.Variable) frontend.Variable {
		h.Reset()
		h.Write(xs...)
		return h.Sum()
	}

	node := digest(c.Hit)
	right := api.ToBinary(c.Index, len(c.Siblings))
	for i, sib := range c.Siblings {
		node = digest(api.Select(right[i], sib, node), api.Select(right[i], node, sib))
	}
	api.AssertIsEqual(digest(c.Salt, node), c.Root)
	return nil
}
