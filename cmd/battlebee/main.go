package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"battlebee/internal/app"
	"battlebee/internal/codec"
	"battlebee/internal/config"
	"battlebee/internal/game"
	"battlebee/internal/logging"
	"battlebee/internal/render"
	"battlebee/internal/server"
	"battlebee/internal/zk"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "play":
		cmdPlay()
	case "simulate":
		cmdSimulate()
	case "serve":
		cmdServe()
	case "init":
		cmdInit()
	case "commit":
		cmdCommit()
	case "prove":
		cmdProve()
	case "verify":
		cmdVerify()
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Battlebee CLI

Commands:
  play     [--config battlebee.yaml]                 interactive game in the terminal
  simulate --games N --side S --ship-max M --difficulty D
  serve    --addr :8080 --keys ./keys
  init     --side S --ship-max M --out board.json
  commit   --board board.json --secret secret.json --keys ./keys
  prove    --secret secret.json --keys ./keys --cell "3 B" --out proof.json
  verify   --keys ./keys --side S --root ROOT_HEX --proof proof.json [--cell "3 B"]`)
}

// setup parses the common flags, loads configuration and builds the logger.
func setup(fs *flag.FlagSet) (*config.Config, zerolog.Logger) {
	path := fs.String("config", os.Getenv("CONFIG_PATH"), "YAML config file")
	level := fs.String("log-level", "", "log level override")
	_ = fs.Parse(os.Args[2:])

	file := *path
	if file == "" {
		file = "battlebee.yaml"
	}
	cfg, err := config.Load(file)
	if err != nil {
		log.Fatal(err)
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	return cfg, logging.New(cfg.Log)
}

// applyGameFlags copies explicitly set flags over the config.
func applyGameFlags(fs *flag.FlagSet, cfg *config.Config, side, shipMax, diff *int) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "side":
			cfg.Game.Side = *side
		case "ship-max":
			cfg.Game.ShipMax = *shipMax
		case "difficulty":
			cfg.Game.Difficulty = *diff
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
}

func cmdPlay() {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfg, logger := setup(fs)
	r := newREPL(cfg, logger, os.Stdin, render.Stdout())
	r.color = render.ColorTerminal(os.Stdout)
	r.run()
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address")
	keys := fs.String("keys", "", "keys directory")
	cfg, logger := setup(fs)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *keys != "" {
		cfg.Server.KeysDir = *keys
	}

	srv := server.New(cfg, logger)
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()
	if err := srv.Start(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	side := fs.Int("side", 0, "board side length")
	shipMax := fs.Int("ship-max", 0, "longest ship")
	diff := fs.Int("difficulty", 0, "0 uniform placement, 1 zoned")
	out := fs.String("out", "board.json", "output board file")
	cfg, _ := setup(fs)
	applyGameFlags(fs, cfg, side, shipMax, diff)

	env := game.NewEnvironment(cfg.Game.Side, game.Difficulty(cfg.Game.Difficulty), cfg.Game.ShipMax, game.Options{})
	p := game.NewPlayer(game.PlayerRef{Name: "me"}, env.Side, env.ShipMax)
	if !env.Autogen.Place(p) {
		log.Fatal(app.ErrGenerationFailed)
	}
	if err := saveJSON(*out, codec.NewBoardFile(p)); err != nil {
		log.Fatal(err)
	}
	fmt.Print(render.String(p.Board, false))
	fmt.Println("✓ wrote", *out)
}

func cmdCommit() {
	fs := flag.NewFlagSet("commit", flag.ExitOnError)
	boardPath := fs.String("board", "board.json", "board file")
	secretPath := fs.String("secret", "secret.json", "defender secret state")
	keysDir := fs.String("keys", "./keys", "keys directory")
	_ = fs.Parse(os.Args[2:])

	var bf codec.BoardFile
	if err := loadJSON(*boardPath, &bf); err != nil {
		log.Fatal(err)
	}
	p, err := bf.Player("me")
	if err != nil {
		log.Fatal(err)
	}
	res, err := app.Commit(p.Board, *keysDir)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("ROOT:", res.RootHex)
	if err := saveJSON(*secretPath, &res.Secret); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ wrote", *secretPath)
}

func cmdProve() {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	secretPath := fs.String("secret", "secret.json", "defender secret state")
	keysDir := fs.String("keys", "./keys", "keys directory")
	cell := fs.String("cell", "", `target cell, column then row letters, e.g. "3 B"`)
	out := fs.String("out", "proof.json", "proof output")
	_ = fs.Parse(os.Args[2:])

	x, y, err := parseCellArg(*cell)
	if err != nil {
		log.Fatal(err)
	}
	var sec codec.Secret
	if err := loadJSON(*secretPath, &sec); err != nil {
		log.Fatal(err)
	}
	res, err := app.Shoot(sec, *keysDir, x, y)
	if err != nil {
		log.Fatal(err)
	}
	if err := saveJSON(*out, &res.Payload); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("✓ wrote %s (result: %s)\n", *out, hitWord(res.Bit))
}

func cmdVerify() {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	keysDir := fs.String("keys", "./keys", "keys directory")
	side := fs.Int("side", 0, "board side length")
	rootHex := fs.String("root", "", "root hex prefixed 0x")
	proofPath := fs.String("proof", "proof.json", "proof payload json")
	cell := fs.String("cell", "", "expected cell, optional")
	_ = fs.Parse(os.Args[2:])

	if *rootHex == "" || *side < 1 {
		log.Fatal("--root and --side required")
	}
	root, err := app.ParseHex(*rootHex)
	if err != nil {
		log.Fatal(err)
	}
	var payload codec.ShotProofPayload
	if err := loadJSON(*proofPath, &payload); err != nil {
		log.Fatal(err)
	}

	res, err := app.VerifyWithRoot(*keysDir, *side, root, payload)
	if err != nil {
		log.Fatal(err)
	}
	if !res.Valid {
		log.Fatal(errors.New("invalid proof"))
	}
	if *cell != "" {
		x, y, err := parseCellArg(*cell)
		if err != nil {
			log.Fatal(err)
		}
		if res.Cell != (game.Position{X: x, Y: y}) {
			log.Fatalf("proof is for %s but expected %s", codec.FormatCell(res.Cell.X, res.Cell.Y), *cell)
		}
	}
	_, vk := zk.KeyPaths(*keysDir, app.TreeDepth(*side))
	fmt.Printf("%s at %s (vk %s)\n", hitWord(res.Hit), codec.FormatCell(res.Cell.X, res.Cell.Y), vk)
}

func hitWord(bit uint8) string {
	if bit == 1 {
		return "HIT"
	}
	return "MISS"
}

// parseCellArg reads "3 B" or "3B".
func parseCellArg(s string) (x, y int, err error) {
	var col, row string
	if _, err := fmt.Sscanf(s, "%s %s", &col, &row); err != nil {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		col, row = s[:i], s[i:]
	}
	return codec.ParseCell(col, row)
}

func saveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	return dec.Decode(v)
}
