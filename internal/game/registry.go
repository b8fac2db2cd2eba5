package game

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/handquiz/internal/quiz"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Registry keeps the live games in memory, keyed by session id.
type Registry struct {
	config    Config
	games     map[string]*Game
	observers []func(Event)
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry whose games share config.
func NewRegistry(config Config) *Registry {
	return &Registry{
		config: config,
		games:  make(map[string]*Game),
	}
}

// Observe registers fn on every game created after this call.
func (r *Registry) Observe(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Create starts a new game. A nil or empty bank uses the registry default.
func (r *Registry) Create(questions []quiz.Question) (*Game, error) {
	cfg := r.config
	if len(questions) > 0 {
		cfg.Questions = questions
	}

	g, err := New(uuid.New().String(), cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.games[g.ID()] = g
	observers := append(([]func(Event))(nil), r.observers...)
	r.mu.Unlock()

	for _, fn := range observers {
		g.Subscribe(fn)
	}

	return g, nil
}

// Get returns the game with the given id.
func (r *Registry) Get(id string) (*Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// Delete abandons a game.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return ErrNotFound
	}
	delete(r.games, id)
	return nil
}

// List returns all live games, oldest first.
func (r *Registry) List() []*Game {
	r.mu.RLock()
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		return games[i].StartedAt().Before(games[j].StartedAt())
	})
	return games
}

// Latest returns the most recently started game, or nil when there is none.
func (r *Registry) Latest() *Game {
	games := r.List()
	if len(games) == 0 {
		return nil
	}
	return games[len(games)-1]
}
