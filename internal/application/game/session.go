package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

var (
	// ErrTickInProgress is returned when a mutation arrives while another one is running
	ErrTickInProgress = errors.New("a tick is already in progress")

	// ErrNoGame is returned before any campaign has been started or loaded
	ErrNoGame = errors.New("no game loaded")
)

// Session owns the live world of one game. Mutations are serialized and fail fast with
// ErrTickInProgress instead of queueing. Readers get an immutable copy published after
// every mutation, so they never wait for a tick.
type Session struct {
	mu        sync.Mutex
	state     *simulation.State
	policy    *planner.Policy
	published atomic.Pointer[simulation.State]
	config    atomic.Pointer[planner.Config]
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Start replaces the live world and the policy that plays its AI companies
func (s *Session) Start(state *simulation.State, cfg planner.Config) error {
	if !s.mu.TryLock() {
		return ErrTickInProgress
	}
	defer s.mu.Unlock()

	s.state = state
	s.policy = planner.NewPolicy(cfg)
	s.config.Store(&cfg)
	s.published.Store(state.Clone())
	return nil
}

// Mutate runs fn with exclusive access to the live world. The published view is refreshed
// afterwards even when fn fails, since rejected decisions never change state anyway.
func (s *Session) Mutate(ctx context.Context, fn func(ctx context.Context, state *simulation.State, policy *planner.Policy) error) error {
	if !s.mu.TryLock() {
		return ErrTickInProgress
	}
	defer s.mu.Unlock()

	if s.state == nil {
		return ErrNoGame
	}
	err := fn(ctx, s.state, s.policy)
	s.published.Store(s.state.Clone())
	return err
}

// View returns the last published world. Callers must treat it as read-only and clone it
// before simulating forward.
func (s *Session) View() (*simulation.State, error) {
	st := s.published.Load()
	if st == nil {
		return nil, ErrNoGame
	}
	return st, nil
}

// PlannerConfig returns the configuration of the active AI policy
func (s *Session) PlannerConfig() (planner.Config, error) {
	cfg := s.config.Load()
	if cfg == nil {
		return planner.Config{}, ErrNoGame
	}
	return *cfg, nil
}

// Busy reports whether a mutation is running
func (s *Session) Busy() bool {
	if s.mu.TryLock() {
		s.mu.Unlock()
		return false
	}
	return true
}
