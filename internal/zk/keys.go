package zk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/dolthub/swiss"
)

var (
	compiledMu sync.Mutex
	compiled   = swiss.NewMap[int, constraint.ConstraintSystem](4)
)

// KeyPaths returns the proving and verifying key files for a tree depth.
func KeyPaths(dir string, depth int) (pk, vk string) {
	base := filepath.Join(dir, fmt.Sprintf("shot-d%d", depth))
	return base + ".pk", base + ".vk"
}

// circuit compiles the shot circuit once per depth.
func circuit(depth int) (constraint.ConstraintSystem, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if cs, ok := compiled.Get(depth); ok {
		return cs, nil
	}
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, NewShotCircuit(depth))
	if err != nil {
		return nil, fmt.Errorf("compile depth %d: %w", depth, err)
	}
	compiled.Put(depth, cs)
	return cs, nil
}

// EnsureKeys runs the groth16 setup for depth unless both key files under
// dir already load.
func EnsureKeys(dir string, depth int) error {
	pkPath, vkPath := KeyPaths(dir, depth)
	if _, err := loadProvingKey(pkPath); err == nil {
		if _, err := loadVerifyingKey(vkPath); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	cs, err := circuit(depth)
	if err != nil {
		return err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return err
	}
	if err := writeKey(vkPath, vk); err != nil {
		return err
	}
	return writeKey(pkPath, pk)
}

func loadProvingKey(path string) (groth16.ProvingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	return pk, readKey(path, pk)
}

func loadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	return vk, readKey(path, vk)
}

// writeKey goes through a temporary file so readers never see half a key.
func writeKey(path string, k io.WriterTo) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := k.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readKey(path string, k io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.ReadFrom(f)
	return err
}
