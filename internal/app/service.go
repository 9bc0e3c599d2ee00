package app

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"battlebee/internal/codec"
	"battlebee/internal/game"
	"battlebee/internal/merkle"
	"battlebee/internal/zk"
)

var ErrNotShot = errors.New("cell has not been fired at")

type CommitResult struct {
	RootHex string
	Secret  codec.Secret
}

// TreeDepth is the Merkle depth used for boards of the given side.
func TreeDepth(side int) int {
	return max(1, merkle.DepthFor(3*side*(side-1)+1))
}

// Commit hides the board behind a salted MiMC root and makes sure proving
// keys for its depth exist under keysDir.
func Commit(b *game.Board, keysDir string) (*CommitResult, error) {
	if b.Count(game.Ship)+b.Count(game.Fired)+b.Count(game.Dead) == 0 {
		return nil, errors.New("board has no ships")
	}
	bits := b.Bits()
	t, err := merkle.Build(bits)
	if err != nil {
		return nil, err
	}

	// the salt makes equal boards commit to different roots
	salt, err := merkle.NewSalt()
	if err != nil {
		return nil, err
	}
	sealed := merkle.Seal(salt, t.Root())

	if keysDir != "" {
		if err := zk.EnsureKeys(keysDir, t.Depth); err != nil {
			return nil, fmt.Errorf("shot keys: %w", err)
		}
	}

	sec := codec.Secret{
		Side:    b.Side(),
		Bits:    bits,
		Tree:    t,
		SaltHex: FormatHex(salt),
	}
	return &CommitResult{RootHex: FormatHex(sealed), Secret: sec}, nil
}

type ShootResult struct {
	Payload codec.ShotProofPayload
	Bit     uint8
}

// Shoot answers a shot at (x, y) with a proof of the committed bit.
func Shoot(sec codec.Secret, keysDir string, x, y int) (*ShootResult, error) {
	if sec.Tree == nil || sec.Side < 1 {
		return nil, errors.New("secret has no tree")
	}
	idx, ok := game.NewBoard(sec.Side).Index(game.Position{X: x, Y: y})
	if !ok || idx >= len(sec.Bits) {
		return nil, fmt.Errorf("cell %s is not on the board", codec.FormatCell(x, y))
	}
	salt, err := ParseHex(sec.SaltHex)
	if err != nil {
		return nil, fmt.Errorf("secret salt: %w", err)
	}

	opening, err := sec.Tree.Open(idx, sec.Bits[idx])
	if err != nil {
		return nil, err
	}
	proof, pub, err := zk.Prove(keysDir, opening, salt, merkle.Seal(salt, sec.Tree.Root()))
	if err != nil {
		return nil, err
	}
	return &ShootResult{
		Payload: codec.ShotProofPayload{Proof: proof, Public: pub},
		Bit:     opening.Bit,
	}, nil
}

type VerifyResult struct {
	Valid bool
	Hit   uint8
	Cell  game.Position
}

// VerifyWithRoot checks a shot proof for a board of the given side against
// the root published at commit time.
func VerifyWithRoot(keysDir string, side int, root *big.Int, payload codec.ShotProofPayload) (*VerifyResult, error) {
	if payload.Public.Root == nil || payload.Public.Root.Sign() == 0 {
		payload.Public.Root = new(big.Int).Set(root)
	}
	if payload.Public.Hit != 0 && payload.Public.Hit != 1 {
		return nil, fmt.Errorf("invalid hit public output")
	}
	cell, ok := game.NewBoard(side).At(payload.Public.Index)
	if !ok {
		return nil, fmt.Errorf("index %d is not on a side %d board", payload.Public.Index, side)
	}

	if err := zk.Verify(keysDir, TreeDepth(side), payload.Proof, payload.Public, root); err != nil {
		return nil, err
	}
	return &VerifyResult{Valid: true, Hit: payload.Public.Hit, Cell: cell}, nil
}

func FormatHex(v *big.Int) string { return fmt.Sprintf("0x%x", v) }

// ParseHex reads a 0x-prefixed field element.
func ParseHex(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("expected 0x-prefixed hex, got %q", s)
	}
	v, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, fmt.Errorf("cannot parse hex %q", s)
	}
	return v, nil
}
