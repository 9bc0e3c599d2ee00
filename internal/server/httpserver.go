package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"battlebee/internal/app"
	"battlebee/internal/codec"
	"battlebee/internal/config"
	"battlebee/internal/game"
	"battlebee/internal/zk"
)

const (
	minSide = 2
	maxSide = 40
)

// Server hosts games against the bot over a JSON API.
type Server struct {
	Config  *config.Config
	KeysDir string
	Logger  zerolog.Logger

	games    *registry
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	startAt  int64

	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg *config.Config, logger zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		Config:  cfg,
		KeysDir: cfg.Server.KeysDir,
		Logger:  logger,
		games:   newRegistry(cfg.Server.MaxGames),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		startAt: time.Now().UnixMilli(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/games", s.handleCreate)
	mux.HandleFunc("GET /v1/games/{id}", s.handleGet)
	mux.HandleFunc("DELETE /v1/games/{id}", s.handleDelete)
	mux.HandleFunc("POST /v1/games/{id}/place", s.handlePlace)
	mux.HandleFunc("POST /v1/games/{id}/auto", s.handleAuto)
	mux.HandleFunc("POST /v1/games/{id}/fire", s.handleFire)
	mux.HandleFunc("GET /v1/games/{id}/commitment", s.handleCommitment)
	mux.HandleFunc("GET /v1/games/{id}/proof", s.handleProof)
	mux.HandleFunc("GET /v1/games/{id}/events", s.handleEvents)
	mux.HandleFunc("POST /v1/verify", s.handleVerify)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler is the full middleware stack around the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Routes(mux)
	return WithCORS(s.logRequests(mux))
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // proofs and first key setup are slow
		IdleTimeout:  60 * time.Second,
	}
	s.Logger.Info().Str("addr", addr).Str("keys", s.KeysDir).Msg("listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes every event stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.games.closeAll()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownGame):
		return http.StatusNotFound
	case errors.Is(err, ErrRegistryFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, app.ErrGameOver),
		errors.Is(err, app.ErrFleetPlaced),
		errors.Is(err, app.ErrFleetNotPlaced),
		errors.Is(err, app.ErrOpponentNotReady),
		errors.Is(err, app.ErrBattleStarted),
		errors.Is(err, app.ErrNotYourTurn),
		errors.Is(err, app.ErrNotShot):
		return http.StatusConflict
	case errors.Is(err, app.ErrGenerationFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	return nil
}

// === Views ===

type gameView struct {
	ID         string            `json:"id"`
	Mode       app.Mode          `json:"mode"`
	Side       int               `json:"side"`
	ShipMax    int               `json:"ship_max"`
	ShipsCount int               `json:"ships_count"`
	Active     game.PlayerRef    `json:"active"`
	Finished   bool              `json:"finished"`
	Winner     *game.PlayerRef   `json:"winner,omitempty"`
	Hand       []int             `json:"hand"`
	Stats      []app.PlayerStats `json:"stats"`
	Own        codec.BoardView   `json:"own"`
	Enemy      codec.BoardView   `json:"enemy"`
}

// view snapshots a game from the user's seat. Callers hold sess.mu.
func view(g *app.Game) gameView {
	me, enemy := g.Env.Seat(0), g.Env.Seat(1)
	v := gameView{
		ID:         g.ID,
		Mode:       g.Mode,
		Side:       g.Env.Side,
		ShipMax:    g.Env.ShipMax,
		ShipsCount: g.Env.ShipsCount(),
		Active:     g.Active(),
		Finished:   g.Finished(),
		Hand:       append([]int{}, me.Hand.Ships()...),
		Stats:      g.Stats(),
		Own:        codec.NewBoardView(me.Board, false),
		Enemy:      codec.NewBoardView(enemy.Board, true),
	}
	if w, ok := g.Winner(); ok {
		v.Winner = &w
	}
	return v
}

// === Games ===

type createReq struct {
	Name       string `json:"name"`
	Side       int    `json:"side"`
	ShipMax    int    `json:"ship_max"`
	Difficulty *int   `json:"difficulty"`
	Seed       int64  `json:"seed"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	cfg := *s.Config
	if req.Side != 0 {
		cfg.Game.Side = req.Side
	}
	if req.ShipMax != 0 {
		cfg.Game.ShipMax = req.ShipMax
	}
	if req.Difficulty != nil {
		cfg.Game.Difficulty = *req.Difficulty
	}
	if req.Seed != 0 {
		cfg.Game.Seed = req.Seed
	}
	cfg.Game.Mode = string(app.ModeBot)
	if cfg.Game.Side < minSide || cfg.Game.Side > maxSide {
		writeError(w, http.StatusBadRequest, fmt.Errorf("side must be within %d..%d", minSide, maxSide))
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "player"
	}

	g, err := app.New(app.SettingsFrom(&cfg, s.Logger), name, "")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	sess := &session{game: g, hub: newHub(cfg.Server.EventBuffer, s.Logger), created: time.Now()}
	g.OnEvent = sess.hub.broadcast
	v := view(g)
	if err := s.games.add(g.ID, sess); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.Logger.Info().Str("game", g.ID).Str("player", name).Msg("game hosted")
	writeJSON(w, http.StatusCreated, v)
}

// withGame runs fn with the session of the {id} path value locked.
func (s *Server) withGame(w http.ResponseWriter, r *http.Request, fn func(sess *session)) {
	sess, err := s.games.get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.withGame(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, view(sess.game))
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.games.remove(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, ErrUnknownGame)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type placeReq struct {
	Length      int    `json:"length"`
	Orientation string `json:"orientation"` // vl, vr or h
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	o, ok := game.ParseOrientation(req.Orientation)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown orientation %q", req.Orientation))
		return
	}
	s.withGame(w, r, func(sess *session) {
		res, err := sess.game.PlaceShip(req.Length, o, req.X, req.Y)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if res != game.PlaceSuccess {
			writeError(w, http.StatusUnprocessableEntity, errors.New(res.String()))
			return
		}
		writeJSON(w, http.StatusOK, view(sess.game))
	})
}

func (s *Server) handleAuto(w http.ResponseWriter, r *http.Request) {
	s.withGame(w, r, func(sess *session) {
		if err := sess.game.Auto(); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, view(sess.game))
	})
}

type fireReq struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type fireResp struct {
	Report *app.TurnReport `json:"report"`
	Game   gameView        `json:"game"`
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	var req fireReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.withGame(w, r, func(sess *session) {
		rep, err := sess.game.FireAs(0, req.X, req.Y)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, fireResp{Report: rep, Game: view(sess.game)})
	})
}

// === Commitment / proofs ===

// commitment returns the bot board commitment, building it once.
func (sess *session) commitment() (*app.CommitResult, error) {
	if sess.commit != nil {
		return sess.commit, nil
	}
	res, err := app.Commit(sess.game.Env.Seat(1).Board, "")
	if err != nil {
		return nil, err
	}
	sess.commit = res
	return res, nil
}

func (s *Server) handleCommitment(w http.ResponseWriter, r *http.Request) {
	s.withGame(w, r, func(sess *session) {
		c, err := sess.commitment()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rootHex": c.RootHex,
			"side":    c.Secret.Side,
			"depth":   c.Secret.Tree.Depth,
		})
	})
}

// handleProof proves the bot's bit at a cell the user already shot at.
func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, errors.New("x and y query parameters are required"))
		return
	}
	s.withGame(w, r, func(sess *session) {
		board := sess.game.Env.Seat(1).Board
		if !board.InBound(x, y) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("cell %s is not on the board", codec.FormatCell(x, y)))
			return
		}
		if game.Fireable(board.State(x, y)) {
			writeError(w, statusFor(app.ErrNotShot), app.ErrNotShot)
			return
		}
		c, err := sess.commitment()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if err := zk.EnsureKeys(s.KeysDir, c.Secret.Tree.Depth); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		res, err := app.Shoot(c.Secret, s.KeysDir, x, y)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"payload": res.Payload,
			"bit":     res.Bit,
			"rootHex": c.RootHex,
			"side":    c.Secret.Side,
		})
	})
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type verifyReq struct {
	RootHex string                 `json:"rootHex,omitempty"`
	RootDec flexString             `json:"rootDec,omitempty"`
	Side    int                    `json:"side"`
	Payload codec.ShotProofPayload `json:"payload"`
}

func (req verifyReq) root() (*big.Int, error) {
	if h := strings.TrimSpace(req.RootHex); h != "" {
		if !strings.HasPrefix(h, "0x") && !strings.HasPrefix(h, "0X") {
			h = "0x" + h
		}
		return app.ParseHex(strings.ToLower(h))
	}
	if d := strings.TrimSpace(string(req.RootDec)); d != "" {
		n, ok := new(big.Int).SetString(d, 10)
		if !ok {
			return nil, errors.New("invalid rootDec")
		}
		return n, nil
	}
	return nil, errors.New("must provide rootHex or rootDec")
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	root, err := req.root()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Side < 1 {
		writeError(w, http.StatusBadRequest, errors.New("side is required"))
		return
	}
	// the root in the request is the one that counts
	req.Payload.Public.Root = nil
	res, err := app.VerifyWithRoot(s.KeysDir, req.Side, root, req.Payload)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": res.Valid,
		"hit":   res.Hit,
		"cell":  res.Cell,
		"label": codec.FormatCell(res.Cell.X, res.Cell.Y),
	})
}

// === Events ===

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.games.get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	sess.mu.Lock()
	welcome, err := json.Marshal(app.Event{Type: msgWelcome, Payload: view(sess.game)})
	if err == nil {
		c := newConnection(ws, sess.hub)
		sess.hub.subscribe(c, welcome)
		sess.mu.Unlock()
		s.Logger.Debug().Str("game", sess.game.ID).Str("remote", r.RemoteAddr).Msg("event stream opened")
		c.serve(s.ctx)
		return
	}
	sess.mu.Unlock()
	ws.Close()
}

// === Health ===

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"games":     s.games.count(),
		"startedAt": s.startAt,
	})
}

// === Middleware ===

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot hijack")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		ev := s.Logger.Debug()
		if rec.status >= http.StatusInternalServerError {
			ev = s.Logger.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// In dev we allow any origin. For production, set this to the specific origin(s).
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
