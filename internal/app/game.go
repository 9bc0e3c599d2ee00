package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"battlebee/internal/config"
	"battlebee/internal/game"
)

// Mode is who sits in the second seat.
type Mode string

const (
	ModeBot     Mode = "bot"
	ModeHotSeat Mode = "hs"
)

var (
	ErrGameOver         = errors.New("game is over")
	ErrFleetPlaced      = errors.New("fleet is already placed")
	ErrFleetNotPlaced   = errors.New("place all your fleet before firing")
	ErrOpponentNotReady = errors.New("opponent has not placed their fleet yet")
	ErrBattleStarted    = errors.New("fleets cannot change once shooting has started")
	ErrGenerationFailed = errors.New("could not generate a fleet for this board")
	ErrBadMode          = errors.New("mode must be bot or hs")
	ErrNotYourTurn      = errors.New("not your turn")
)

// Settings describe a new game.
type Settings struct {
	Side       int
	ShipMax    int
	Mode       Mode
	Difficulty game.Difficulty
	Options    game.Options
}

// Shot is one resolved shot.
type Shot struct {
	Shooter game.PlayerRef  `json:"shooter"`
	Pos     game.Position   `json:"pos"`
	Result  game.FireResult `json:"-"`
	Outcome string          `json:"result"`
}

// TurnReport is what happened after the active player fired.
type TurnReport struct {
	Shot      Shot            `json:"shot"`
	KeepsTurn bool            `json:"keeps_turn"`
	Replies   []Shot          `json:"replies,omitempty"` // bot shots that followed
	Finished  bool            `json:"finished"`
	Winner    *game.PlayerRef `json:"winner,omitempty"`
}

// PlayerStats are the presentation counters of one player.
type PlayerStats struct {
	Name   string `json:"name"`
	Shots  int    `json:"shots"`
	Missed int    `json:"missed"`
}

// Event is pushed to the observer after every state change.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	EventPlaced   = "placed"
	EventShot     = "shot"
	EventTurn     = "turn"
	EventFinished = "finished"
)

// Game is one match between two seats with turn bookkeeping on top of the
// engine. It is not safe for concurrent use.
type Game struct {
	ID     string
	Mode   Mode
	Env    *game.Environment
	Logger zerolog.Logger

	// OnEvent, when set, receives every event synchronously.
	OnEvent func(Event)

	refs     [2]game.PlayerRef
	active   int
	started  bool
	finished bool
	winner   *game.PlayerRef
}

// New seats the players. In bot mode the second name is ignored and the
// bot's fleet is generated immediately.
func New(s Settings, first, second string) (*Game, error) {
	if s.Mode != ModeBot && s.Mode != ModeHotSeat {
		return nil, ErrBadMode
	}
	env := game.NewEnvironment(s.Side, s.Difficulty, s.ShipMax, s.Options)
	g := &Game{
		ID:     uuid.New().String(),
		Mode:   s.Mode,
		Env:    env,
		Logger: s.Options.Logger,
	}
	ref, err := env.AddPlayer(game.User, first)
	if err != nil {
		return nil, err
	}
	g.refs[0] = ref
	if s.Mode == ModeBot {
		ref, err = env.AddPlayer(game.Bot, "bot")
	} else {
		ref, err = env.AddPlayer(game.User, second)
	}
	if err != nil {
		return nil, fmt.Errorf("seat second player: %w", err)
	}
	g.refs[1] = ref
	g.Logger.Info().
		Str("game", g.ID).
		Str("mode", string(s.Mode)).
		Int("side", env.Side).
		Int("ship_max", env.ShipMax).
		Msg("game created")
	return g, nil
}

func (g *Game) Active() game.PlayerRef { return g.refs[g.active] }

func (g *Game) Waiting() game.PlayerRef { return g.refs[1-g.active] }

// Seats returns both player refs in seat order.
func (g *Game) Seats() [2]game.PlayerRef { return g.refs }

func (g *Game) Finished() bool { return g.finished }

func (g *Game) Winner() (game.PlayerRef, bool) {
	if g.winner == nil {
		return game.PlayerRef{}, false
	}
	return *g.winner, true
}

func (g *Game) player(ref game.PlayerRef) *game.Player { return g.Env.Seat(ref.Seat) }

// PlaceShip puts a straight ship of the given length for the active player.
func (g *Game) PlaceShip(length int, o game.Orientation, x, y int) (game.PlacementResult, error) {
	if err := g.canArrange(); err != nil {
		return game.PlaceUnable, err
	}
	ref := g.Active()
	res, err := g.Env.Place(ref, game.Line(x, y, length, o))
	if err != nil {
		return res, err
	}
	g.Logger.Debug().
		Str("game", g.ID).
		Str("player", ref.Name).
		Int("length", length).
		Str("orientation", o.String()).
		Int("x", x).Int("y", y).
		Str("result", res.String()).
		Msg("place ship")
	if res == game.PlaceSuccess {
		g.notify(EventPlaced, map[string]any{"player": ref, "length": length})
		g.afterArrange()
	}
	return res, nil
}

// Auto regenerates the active player's whole fleet. Re-rolling a complete
// fleet keeps the seat.
func (g *Game) Auto() error {
	if g.finished {
		return ErrGameOver
	}
	if g.started {
		return ErrBattleStarted
	}
	ref := g.Active()
	rerolled := g.player(ref).IsFleetPlaced()
	ok, err := g.Env.AutoPlace(ref)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGenerationFailed
	}
	g.notify(EventPlaced, map[string]any{"player": ref, "auto": true})
	if !rerolled {
		g.afterArrange()
	}
	return nil
}

func (g *Game) canArrange() error {
	switch {
	case g.finished:
		return ErrGameOver
	case g.started:
		return ErrBattleStarted
	case g.player(g.Active()).IsFleetPlaced():
		return ErrFleetPlaced
	}
	return nil
}

// afterArrange hands the seat over once a hot-seat player's fleet is done.
func (g *Game) afterArrange() {
	if g.Mode == ModeHotSeat && g.player(g.Active()).IsFleetPlaced() {
		g.switchPlayers()
	}
}

// FireAs fires for the player in seat, which must be the active one.
func (g *Game) FireAs(seat, x, y int) (*TurnReport, error) {
	if !g.finished && g.active != seat {
		return nil, ErrNotYourTurn
	}
	return g.Fire(x, y)
}

// Fire shoots at the waiting player's board. Hits and refused shots keep
// the turn; a miss passes it. In bot mode the bot then fires until it
// misses or wins.
func (g *Game) Fire(x, y int) (*TurnReport, error) {
	if g.finished {
		return nil, ErrGameOver
	}
	shooter, target := g.Active(), g.Waiting()
	if !g.player(shooter).IsFleetPlaced() {
		return nil, ErrFleetNotPlaced
	}
	if !g.player(target).IsFleetPlaced() {
		return nil, ErrOpponentNotReady
	}
	res, err := g.Env.Fire(shooter, x, y)
	if err != nil {
		return nil, err
	}
	if res != game.FireUnable {
		g.started = true
	}
	shot := newShot(shooter, game.Position{X: x, Y: y}, res)
	g.notify(EventShot, shot)
	report := &TurnReport{Shot: shot, KeepsTurn: res != game.FireMissed}

	if g.checkDefeat(shooter, target) {
		report.Finished, report.Winner = true, g.winner
		return report, nil
	}
	if res != game.FireMissed {
		return report, nil
	}
	g.switchPlayers()
	if g.Mode == ModeBot {
		report.Replies = g.botTurn()
		report.Finished, report.Winner = g.finished, g.winner
	}
	return report, nil
}

// botTurn lets the bot fire until it misses or wins. Refused shots are
// retried; their number is bounded by the board size.
func (g *Game) botTurn() []Shot {
	bot, user := g.Active(), g.Waiting()
	var shots []Shot
	limit := 64 * g.player(user).Board.Square()
	for i := 0; i < limit; i++ {
		pos, res, err := g.Env.BotFire(bot)
		if err != nil {
			g.Logger.Error().Err(err).Str("game", g.ID).Msg("bot fire")
			break
		}
		if res == game.FireUnable {
			continue
		}
		shot := newShot(bot, pos, res)
		shots = append(shots, shot)
		g.notify(EventShot, shot)
		if g.checkDefeat(bot, user) {
			return shots
		}
		if res == game.FireMissed {
			g.switchPlayers()
			return shots
		}
	}
	g.Logger.Warn().Str("game", g.ID).Msg("bot gave up its turn")
	g.switchPlayers()
	return shots
}

func (g *Game) checkDefeat(shooter, target game.PlayerRef) bool {
	if !g.player(target).IsDefeated() {
		return false
	}
	g.finished = true
	w := shooter
	g.winner = &w
	g.Logger.Info().
		Str("game", g.ID).
		Str("winner", shooter.Name).
		Int("shots", g.player(shooter).ShotsCount()).
		Msg("game finished")
	g.notify(EventFinished, map[string]any{"winner": shooter})
	return true
}

func (g *Game) switchPlayers() {
	g.active = 1 - g.active
	g.notify(EventTurn, map[string]any{"active": g.Active()})
}

func (g *Game) notify(kind string, payload any) {
	if g.OnEvent != nil {
		g.OnEvent(Event{Type: kind, Payload: payload})
	}
}

// Stats returns the counters of both players in seat order.
func (g *Game) Stats() []PlayerStats {
	out := make([]PlayerStats, 0, 2)
	for _, ref := range g.refs {
		p := g.player(ref)
		out = append(out, PlayerStats{Name: ref.Name, Shots: p.ShotsCount(), Missed: p.MissedCount()})
	}
	return out
}

// Summary is the shareable result line of a finished game.
func (g *Game) Summary() (string, error) {
	if !g.finished || g.winner == nil {
		return "", errors.New("game is not finished")
	}
	w := g.player(*g.winner)
	loser := g.refs[g.winner.Opponent()]
	return fmt.Sprintf("I won %q in Battlebee game with hexagonal field with side length %d and %d ships\nshots: %d\nmissed: %d",
		loser.Name, g.Env.Side, g.Env.ShipsCount(), w.ShotsCount(), w.MissedCount()), nil
}

func newShot(by game.PlayerRef, pos game.Position, res game.FireResult) Shot {
	return Shot{Shooter: by, Pos: pos, Result: res, Outcome: res.String()}
}

// SettingsFrom builds game settings from configuration. A zero seed picks
// a time based one.
func SettingsFrom(cfg *config.Config, logger zerolog.Logger) Settings {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return Settings{
		Side:       cfg.Game.Side,
		ShipMax:    cfg.Game.ShipMax,
		Mode:       Mode(cfg.Game.Mode),
		Difficulty: game.Difficulty(cfg.Game.Difficulty),
		Options: game.Options{
			Rand:          rand.New(rand.NewSource(seed)),
			Logger:        logger,
			UniformBudget: cfg.Autogen.UniformBudget,
			ZonedBudget:   cfg.Autogen.ZonedBudget,
			MaxResets:     cfg.Autogen.MaxResets,
		},
	}
}
