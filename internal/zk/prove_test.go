package zk

import (
	"errors"
	"math/big"
	"os"
	"testing"

	"battlebee/internal/merkle"
)

func TestProveAndVerifyShot(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	leaves := []uint8{0, 1, 0, 0, 1, 1, 0}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	salt, err := merkle.NewSalt()
	if err != nil {
		t.Fatalf("salt: %v", err)
	}
	root := merkle.Seal(salt, tree.Root())

	dir := t.TempDir()
	if err := EnsureKeys(dir, tree.Depth); err != nil {
		t.Fatalf("keys: %v", err)
	}
	pkPath, _ := KeyPaths(dir, tree.Depth)
	before, _ := os.Stat(pkPath)
	if err := EnsureKeys(dir, tree.Depth); err != nil {
		t.Fatalf("cached keys: %v", err)
	}
	if after, _ := os.Stat(pkPath); !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("existing keys should be reused")
	}

	o, _ := tree.Open(4, leaves[4])
	proof, pub, err := Prove(dir, o, salt, root)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if pub.Hit != 1 || pub.Index != 4 {
		t.Fatalf("public=%+v", pub)
	}
	if err := Verify(dir, tree.Depth, proof, pub, root); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// the same proof must not pass for another cell or the opposite bit
	moved := pub
	moved.Index = 3
	if err := Verify(dir, tree.Depth, proof, moved, root); err == nil {
		t.Fatalf("proof verified for the wrong cell")
	}
	flipped := pub
	flipped.Hit = 0
	if err := Verify(dir, tree.Depth, proof, flipped, root); err == nil {
		t.Fatalf("proof verified for the wrong bit")
	}
	if err := Verify(dir, tree.Depth, proof, pub, big.NewInt(7)); !errors.Is(err, ErrRootMismatch) {
		t.Fatalf("other root: %v", err)
	}
}

func TestProveRejectsMalformedOpening(t *testing.T) {
	if _, _, err := Prove(t.TempDir(), merkle.Opening{}, big.NewInt(1), big.NewInt(1)); err == nil {
		t.Fatalf("empty opening should fail")
	}
}

func TestKeyPathsAreKeyedByDepth(t *testing.T) {
	pk, vk := KeyPaths("keys", 5)
	if pk != "keys/shot-d5.pk" || vk != "keys/shot-d5.vk" {
		t.Fatalf("pk=%s vk=%s", pk, vk)
	}
}
