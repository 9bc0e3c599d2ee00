package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"battlebee/internal/app"
	"battlebee/internal/codec"
	"battlebee/internal/config"
	"battlebee/internal/game"
	"battlebee/internal/render"
)

type command struct {
	usage string
	help  string
	run   func(r *repl, args []string) error
}

var errExit = errors.New("exit")

var commands map[string]command

func init() {
	commands = map[string]command{
		"new": {
			usage: "new [side] [ship_max] [bot|hs] [0|1] [name1] [name2]",
			help:  "start a new game; missing arguments come from the config",
			run:   (*repl).cmdNew,
		},
		"place": {
			usage: "place <length> <vl|vr|h> <column> <row>",
			help:  "place a ship from your hand, e.g. place 3 vr 2 B",
			run:   (*repl).cmdPlace,
		},
		"auto": {
			usage: "auto",
			help:  "generate the whole fleet of the active player",
			run:   (*repl).cmdAuto,
		},
		"fire": {
			usage: "fire <column> <row>",
			help:  "shoot at the enemy board, e.g. fire 4 C",
			run:   (*repl).cmdFire,
		},
		"show": {
			usage: "show <my|enemy>",
			help:  "draw your board or what you know of the enemy's",
			run:   (*repl).cmdShow,
		},
		"stat": {
			usage: "stat [name]",
			help:  "shots and misses of every player or of one",
			run:   (*repl).cmdStat,
		},
		"share": {
			usage: "share",
			help:  "copy the result of a finished game to the clipboard",
			run:   (*repl).cmdShare,
		},
		"help": {
			usage: "help [command]",
			help:  "list commands or describe one",
			run:   (*repl).cmdHelp,
		},
		"clear": {
			usage: "clear",
			help:  "clear the screen",
			run:   (*repl).cmdClear,
		},
		"exit": {
			usage: "exit",
			help:  "leave the game",
			run:   func(*repl, []string) error { return errExit },
		},
	}
}

// repl is the terminal front end over one game at a time.
type repl struct {
	cfg    *config.Config
	logger zerolog.Logger
	in     *bufio.Scanner
	out    io.Writer
	color  bool
	clip   func(string) error

	game *app.Game
}

func newREPL(cfg *config.Config, logger zerolog.Logger, in io.Reader, out io.Writer) *repl {
	return &repl{
		cfg:    cfg,
		logger: logger,
		in:     bufio.NewScanner(in),
		out:    out,
		clip:   clipboard.WriteAll,
	}
}

func (r *repl) run() {
	if err := r.start(*r.cfg, "player1", "player2"); err != nil {
		fmt.Fprintln(r.out, err)
	}
	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return
		}
		if r.exec(r.in.Text()) {
			return
		}
	}
}

// exec runs one line and reports whether the session should end.
func (r *repl) exec(line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		fmt.Fprintf(r.out, "Command '%s' doesn't exist! Enter 'help' for help\n", args[0])
		return false
	}
	err := cmd.run(r, args[1:])
	switch {
	case errors.Is(err, errExit):
		return true
	case err != nil:
		fmt.Fprintln(r.out, err)
	}
	return false
}

func (r *repl) start(cfg config.Config, first, second string) error {
	g, err := app.New(app.SettingsFrom(&cfg, r.logger), first, second)
	if err != nil {
		return err
	}
	r.game = g
	if g.Mode == app.ModeBot {
		fmt.Fprintln(r.out, "New game with bot started. Enter command:")
	} else {
		fmt.Fprintln(r.out, "New hot seat game started. Enter command:")
	}
	if g.Env.ShipMax != cfg.Game.ShipMax {
		fmt.Fprintf(r.out, "Fleet too large for this board, longest ship is now %d\n", g.Env.ShipMax)
	}
	fmt.Fprintf(r.out, "%s places the fleet: %v\n", g.Active().Name, g.Env.Seat(0).Hand.Ships())
	return nil
}

func (r *repl) cmdNew(args []string) error {
	if len(args) > 6 {
		return errors.New("More command arguments than expected")
	}
	cfg := *r.cfg
	first, second := "player1", "player2"
	for i, a := range args {
		var err error
		switch i {
		case 0:
			cfg.Game.Side, err = strconv.Atoi(a)
			if err == nil && cfg.Game.Side < 2 {
				err = errors.New("too small")
			}
			if err != nil {
				return errors.New("Wrong side!")
			}
		case 1:
			cfg.Game.ShipMax, err = strconv.Atoi(a)
			if err != nil || cfg.Game.ShipMax < 1 {
				return errors.New("Wrong ship length!")
			}
		case 2:
			if a != string(app.ModeBot) && a != string(app.ModeHotSeat) {
				return errors.New("Wrong mode!")
			}
			cfg.Game.Mode = a
		case 3:
			cfg.Game.Difficulty, err = strconv.Atoi(a)
			if err != nil || cfg.Game.Difficulty < 0 || cfg.Game.Difficulty > 1 {
				return errors.New("Wrong difficulty!")
			}
		case 4:
			first = a
		case 5:
			second = a
		}
	}
	return r.start(cfg, first, second)
}

func (r *repl) cmdPlace(args []string) error {
	if len(args) != 4 {
		return errors.New("Wrong command arguments amount")
	}
	length, err := strconv.Atoi(args[0])
	if err != nil || length < 1 {
		return errors.New("Wrong placement data")
	}
	o, ok := game.ParseOrientation(strings.ToLower(args[1]))
	if !ok {
		return errors.New("unknown rotation!")
	}
	x, y, err := codec.ParseCell(args[2], args[3])
	if err != nil {
		return errors.New("Wrong placement data")
	}
	who := r.game.Active()
	res, err := r.game.PlaceShip(length, o, x, y)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, res)
	if res == game.PlaceSuccess {
		r.afterPlacement(who)
	}
	return nil
}

func (r *repl) cmdAuto(args []string) error {
	if len(args) != 0 {
		return errors.New("Wrong command arguments amount")
	}
	who := r.game.Active()
	if err := r.game.Auto(); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Field was generated")
	r.afterPlacement(who)
	return nil
}

func (r *repl) afterPlacement(who game.PlayerRef) {
	p := r.game.Env.Seat(who.Seat)
	if !p.IsFleetPlaced() {
		fmt.Fprintf(r.out, "still in hand: %v\n", p.Hand.Ships())
		return
	}
	fmt.Fprintf(r.out, "%s placed their fleet\n", who.Name)
	if r.game.Active() != who {
		fmt.Fprintf(r.out, "%s's move\n", r.game.Active().Name)
	}
}

func (r *repl) cmdFire(args []string) error {
	if len(args) != 2 {
		return errors.New("Wrong command arguments amount")
	}
	x, y, err := codec.ParseCell(args[0], args[1])
	if err != nil {
		return errors.New("Wrong fire data")
	}
	rep, err := r.game.Fire(x, y)
	switch {
	case errors.Is(err, app.ErrFleetNotPlaced):
		return errors.New("you should place all your fleet before fire!")
	case err != nil:
		return err
	}
	r.printShot(rep.Shot)
	for _, s := range rep.Replies {
		r.printShot(s)
	}
	if rep.Finished {
		fmt.Fprintf(r.out, "%s won!\n", rep.Winner.Name)
		return nil
	}
	if !rep.KeepsTurn && r.game.Mode == app.ModeHotSeat {
		fmt.Fprintf(r.out, "%s's move\n", r.game.Active().Name)
	}
	return nil
}

func (r *repl) printShot(s app.Shot) {
	fmt.Fprintf(r.out, "%s: %s at %s\n", s.Shooter.Name, s.Result, codec.FormatCell(s.Pos.X, s.Pos.Y))
}

func (r *repl) cmdShow(args []string) error {
	if len(args) != 1 {
		return errors.New("Wrong command arguments amount")
	}
	var b *game.Board
	hide := false
	switch args[0] {
	case "my":
		b = r.game.Env.Seat(r.viewer()).Board
	case "enemy":
		b = r.game.Env.Seat(1 - r.viewer()).Board
		hide = true
	default:
		return errors.New("Wrong option")
	}
	return render.Board(r.out, b, render.Options{HideShips: hide, Color: r.color})
}

// viewer is the seat whose eyes the board is drawn through. Against the
// bot it is always the user.
func (r *repl) viewer() int {
	if r.game.Mode == app.ModeBot {
		return 0
	}
	return r.game.Active().Seat
}

func (r *repl) cmdStat(args []string) error {
	if len(args) > 1 {
		return errors.New("More command arguments than expected")
	}
	stats := r.game.Stats()
	for _, s := range stats {
		if len(args) == 1 && s.Name != args[0] {
			continue
		}
		render.Stats(r.out, s.Name, s.Shots, s.Missed)
		if len(args) == 1 {
			return nil
		}
	}
	if len(args) == 1 {
		return errors.New("Non-existent username!")
	}
	return nil
}

func (r *repl) cmdShare(args []string) error {
	text, err := r.game.Summary()
	if err != nil {
		return err
	}
	if err := r.clip(text); err != nil {
		r.logger.Debug().Err(err).Msg("clipboard")
		fmt.Fprintln(r.out, text)
		return nil
	}
	fmt.Fprintln(r.out, "Result copied to clipboard")
	return nil
}

func (r *repl) cmdHelp(args []string) error {
	if len(args) > 1 {
		return errors.New("More command arguments than expected")
	}
	if len(args) == 1 {
		c, ok := commands[args[0]]
		if !ok {
			return fmt.Errorf("Command '%s' doesn't exist!", args[0])
		}
		fmt.Fprintf(r.out, "%s\n  %s\n", c.usage, c.help)
		return nil
	}
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(r.out, "%-55s %s\n", commands[n].usage, commands[n].help)
	}
	return nil
}

func (r *repl) cmdClear(args []string) error {
	fmt.Fprint(r.out, "\x1b[H\x1b[2J")
	return nil
}
