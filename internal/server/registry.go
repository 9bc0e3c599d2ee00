package server

import (
	"errors"
	"sync"
	"time"

	"github.com/dolthub/swiss"

	"battlebee/internal/app"
)

var (
	ErrUnknownGame  = errors.New("unknown game")
	ErrRegistryFull = errors.New("too many games in progress")
)

// session is one hosted game with its commitment and event subscribers.
type session struct {
	mu      sync.Mutex
	game    *app.Game
	commit  *app.CommitResult // bot board, computed on first request
	hub     *hub
	created time.Time
}

// registry holds live sessions by game id.
type registry struct {
	mu    sync.RWMutex
	games *swiss.Map[string, *session]
	max   int
}

func newRegistry(max int) *registry {
	return &registry{games: swiss.NewMap[string, *session](uint32(max)), max: max}
}

// add stores s, evicting finished games when the registry is full.
func (r *registry) add(id string, s *session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.games.Count() >= r.max {
		var done []string
		r.games.Iter(func(id string, s *session) (stop bool) {
			s.mu.Lock()
			if s.game.Finished() {
				done = append(done, id)
			}
			s.mu.Unlock()
			return false
		})
		for _, id := range done {
			if old, ok := r.games.Get(id); ok {
				old.hub.closeAll()
			}
			r.games.Delete(id)
		}
		if r.games.Count() >= r.max {
			return ErrRegistryFull
		}
	}
	r.games.Put(id, s)
	return nil
}

func (r *registry) get(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.games.Get(id)
	if !ok {
		return nil, ErrUnknownGame
	}
	return s, nil
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.games.Get(id)
	if ok {
		s.hub.closeAll()
		r.games.Delete(id)
	}
	return ok
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games.Count()
}

func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games.Iter(func(_ string, s *session) (stop bool) {
		s.hub.closeAll()
		return false
	})
}
