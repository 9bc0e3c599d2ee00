package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"battlebee/internal/app"
	"battlebee/internal/config"
)

type simTotals struct {
	games  int
	wins   [2]int
	shots  [2]int
	missed [2]int
	turns  int
}

func cmdSimulate() {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	games := fs.Int("games", 100, "number of games")
	side := fs.Int("side", 0, "board side length")
	shipMax := fs.Int("ship-max", 0, "longest ship")
	diff := fs.Int("difficulty", 0, "0 simple bots, 1 hunting bots")
	cfg, logger := setup(fs)
	applyGameFlags(fs, cfg, side, shipMax, diff)

	start := time.Now()
	tot, err := simulate(cfg, *games, func(i int, c *config.Config) app.Settings {
		if c.Game.Seed != 0 {
			c.Game.Seed += int64(i)
		}
		return app.SettingsFrom(c, logger)
	})
	if err != nil {
		log.Fatal(err)
	}
	logger.Info().
		Int("games", tot.games).
		Dur("took", time.Since(start)).
		Msg("simulation done")
	printTotals(tot)
}

func simulate(cfg *config.Config, n int, settings func(int, *config.Config) app.Settings) (simTotals, error) {
	var tot simTotals
	for i := 0; i < n; i++ {
		c := *cfg
		res, err := app.Simulate(settings(i, &c))
		if err != nil {
			return tot, fmt.Errorf("game %d: %w", i+1, err)
		}
		tot.games++
		tot.wins[res.Winner.Seat]++
		tot.turns += res.Turns
		for s, st := range res.Stats {
			tot.shots[s] += st.Shots
			tot.missed[s] += st.Missed
		}
	}
	return tot, nil
}

func printTotals(t simTotals) {
	if t.games == 0 {
		fmt.Println("no games played")
		return
	}
	fmt.Printf("games: %d\n", t.games)
	for i, name := range []string{"bot-a", "bot-b"} {
		fmt.Printf("%s: wins %d, avg shots %.1f, avg missed %.1f\n", name, t.wins[i],
			float64(t.shots[i])/float64(t.games), float64(t.missed[i])/float64(t.games))
	}
	fmt.Printf("avg turns: %.1f\n", float64(t.turns)/float64(t.games))
}
