package calculator

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry holds the open sessions. All sessions share one history.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	history  Recorder
	solver   Solver
}

func NewRegistry(rec Recorder, solver Solver) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		history:  rec,
		solver:   solver,
	}
}

func (r *Registry) Create(ctx context.Context) *Session {
	s := NewSession(uuid.NewString(), r.history, r.solver)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	sessionsGauge.Add(ctx, 1)
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	sessionsGauge.Add(ctx, -1)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
