package zk

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"battlebee/internal/merkle"
)

var ErrRootMismatch = errors.New("zk: proof is for another root")

// ShotPublic are the public inputs of a shot proof.
type ShotPublic struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"`
	Hit   uint8    `json:"hit"`
}

// Prove shows that the opened leaf sits under the sealed root. Keys for the
// opening's depth must already exist under keysDir.
func Prove(keysDir string, o merkle.Opening, salt, sealed *big.Int) ([]byte, ShotPublic, error) {
	depth := len(o.Siblings)
	if depth == 0 || len(o.Right) != depth {
		return nil, ShotPublic{}, errors.New("zk: malformed opening")
	}
	pub := ShotPublic{Root: new(big.Int).Set(sealed), Index: o.Index(), Hit: o.Bit}

	assign := pub.assignment(depth)
	assign.Salt = salt
	for i, s := range o.Siblings {
		assign.Siblings[i] = s
	}
	w, err := frontend.NewWitness(assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, ShotPublic{}, err
	}

	cs, err := circuit(depth)
	if err != nil {
		return nil, ShotPublic{}, err
	}
	pkPath, _ := KeyPaths(keysDir, depth)
	pk, err := loadProvingKey(pkPath)
	if err != nil {
		return nil, ShotPublic{}, fmt.Errorf("proving key: %w", err)
	}
	proof, err := groth16.Prove(cs, pk, w)
	if err != nil {
		return nil, ShotPublic{}, err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, ShotPublic{}, err
	}
	return buf.Bytes(), pub, nil
}

// Verify checks a serialized proof against the expected root. A nil error
// means the proof holds.
func Verify(keysDir string, depth int, proof []byte, pub ShotPublic, root *big.Int) error {
	if pub.Root == nil {
		return errors.New("zk: public root missing")
	}
	if pub.Root.Cmp(root) != 0 {
		return ErrRootMismatch
	}
	w, err := frontend.NewWitness(pub.assignment(depth), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	_, vkPath := KeyPaths(keysDir, depth)
	vk, err := loadVerifyingKey(vkPath)
	if err != nil {
		return fmt.Errorf("verifying key: %w", err)
	}
	p := groth16.NewProof(ecc.BN254)
	if _, err := p.ReadFrom(bytes.NewReader(proof)); err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}
	return groth16.Verify(p, vk, w)
}

func (p ShotPublic) assignment(depth int) *ShotCircuit {
	c := NewShotCircuit(depth)
	c.Root = p.Root
	c.Index = p.Index
	c.Hit = p.Hit
	return c
}
