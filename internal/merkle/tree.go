// Package merkle commits a board to a MiMC Merkle root over BN254, hashed
// the same way the shot circuit hashes it.
package merkle

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

var (
	ErrNoLeaves   = errors.New("merkle: no leaves")
	ErrOutOfRange = errors.New("merkle: leaf index out of range")
)

// Tree is a complete binary tree stored level by level. Levels[0] holds the
// leaf hashes and Levels[Depth] the root.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"`
}

// Opening authenticates one leaf. Right[i] is 1 when the running node is
// the right child at level i.
type Opening struct {
	Bit      uint8      `json:"bit"`
	Siblings []*big.Int `json:"siblings"`
	Right    []uint8    `json:"right"`
}

func hash(xs ...*big.Int) *big.Int {
	h := mimc.NewMiMC()
	var e fr.Element
	for _, x := range xs {
		e.SetBigInt(x)
		b := e.Bytes()
		h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Leaf is the hash of one occupancy bit.
func Leaf(bit uint8) *big.Int { return hash(big.NewInt(int64(bit))) }

// Node joins two children.
func Node(left, right *big.Int) *big.Int { return hash(left, right) }

// Seal hides a root behind a salt.
func Seal(salt, root *big.Int) *big.Int { return hash(salt, root) }

// NewSalt draws a uniformly random field element.
func NewSalt() (*big.Int, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return nil, err
	}
	return e.BigInt(new(big.Int)), nil
}

// DepthFor is the depth of the smallest complete tree with n leaves.
func DepthFor(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Build hashes the bits into a tree padded with zero leaves. Trees always
// have at least one level so every opening carries a sibling.
func Build(leaves []uint8) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	depth := max(1, DepthFor(len(leaves)))
	level := make([]*big.Int, 1<<depth)
	pad := Leaf(0)
	for i := range level {
		if i < len(leaves) {
			level[i] = Leaf(leaves[i])
		} else {
			level[i] = pad
		}
	}
	t := &Tree{Depth: depth, Levels: [][]*big.Int{level}}
	for len(level) > 1 {
		up := make([]*big.Int, len(level)/2)
		for i := range up {
			up[i] = Node(level[2*i], level[2*i+1])
		}
		t.Levels = append(t.Levels, up)
		level = up
	}
	return t, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[t.Depth][0]) }

// Open returns the authentication path of leaf idx holding bit.
func (t *Tree) Open(idx int, bit uint8) (Opening, error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return Opening{}, ErrOutOfRange
	}
	o := Opening{
		Bit:      bit,
		Siblings: make([]*big.Int, t.Depth),
		Right:    make([]uint8, t.Depth),
	}
	for lvl := 0; lvl < t.Depth; lvl++ {
		o.Right[lvl] = uint8(idx & 1)
		o.Siblings[lvl] = new(big.Int).Set(t.Levels[lvl][idx^1])
		idx >>= 1
	}
	return o, nil
}

// Verify recomputes the root from the opening.
func (o Opening) Verify(root *big.Int) bool {
	if len(o.Siblings) != len(o.Right) {
		return false
	}
	cur := Leaf(o.Bit)
	for i, sib := range o.Siblings {
		if o.Right[i] == 1 {
			cur = Node(sib, cur)
		} else {
			cur = Node(cur, sib)
		}
	}
	return cur.Cmp(root) == 0
}

// Index is the leaf position encoded by the direction bits.
func (o Opening) Index() int {
	idx := 0
	for i := len(o.Right) - 1; i >= 0; i-- {
		idx = idx<<1 | int(o.Right[i])
	}
	return idx
}
